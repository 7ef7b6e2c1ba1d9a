package gwosc

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
)

// URLCache persists parsed strain files keyed by URL. Samples are stored
// XOR-delta encoded and zstd compressed, and expire after a TTL.
type URLCache struct {
	db      *badger.DB
	ttl     time.Duration
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// OpenURLCache opens (or creates) a cache in dir. An empty dir keeps the
// cache in memory.
func OpenURLCache(dir string, ttl time.Duration) (*URLCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open url cache")
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create encoder")
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, errors.Wrap(err, "create decoder")
	}

	return &URLCache{db: db, ttl: ttl, encoder: encoder, decoder: decoder}, nil
}

// Get returns the cached samples for url.
func (u *URLCache) Get(url string) ([]float64, bool, error) {
	var payload []byte
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(url))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			payload = append([]byte{}, val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "read url cache")
	}

	samples, err := u.decode(payload)
	if err != nil {
		return nil, false, err
	}

	return samples, true, nil
}

// Put stores samples for url.
func (u *URLCache) Put(url string, samples []float64) error {
	payload := u.encode(samples)
	return u.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(url), payload)
		if u.ttl > 0 {
			e = e.WithTTL(u.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Close releases the database and codecs.
func (u *URLCache) Close() error {
	u.encoder.Close()
	u.decoder.Close()
	return u.db.Close()
}

// encode writes the sample count followed by each value XORed with its
// predecessor, then compresses.
func (u *URLCache) encode(samples []float64) []byte {
	raw := make([]byte, 8+8*len(samples))
	binary.LittleEndian.PutUint64(raw, uint64(len(samples)))

	var prev uint64
	for i, v := range samples {
		bits := math.Float64bits(v)
		binary.LittleEndian.PutUint64(raw[8+8*i:], bits^prev)
		prev = bits
	}

	return u.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2))
}

func (u *URLCache) decode(payload []byte) ([]float64, error) {
	raw, err := u.decoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, errors.Wrap(err, "decompress url cache entry")
	}
	if len(raw) < 8 {
		return nil, errors.Mark(errors.New("url cache entry too short"), ErrMalformed)
	}

	n := binary.LittleEndian.Uint64(raw)
	if uint64(len(raw)-8) != 8*n {
		return nil, errors.Mark(errors.Newf("url cache entry holds %d bytes for %d samples", len(raw)-8, n), ErrMalformed)
	}

	samples := make([]float64, n)
	var prev uint64
	for i := range samples {
		bits := binary.LittleEndian.Uint64(raw[8+8*i:]) ^ prev
		samples[i] = math.Float64frombits(bits)
		prev = bits
	}

	return samples, nil
}
