package gwosc

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// ParseText reads strain samples from the archive's text format: optional
// '#' header lines followed by one value per line, with "nan" marking
// missing samples. Gzip-compressed input is detected and decompressed.
func ParseText(r io.Reader) ([]float64, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	head, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "peek strain file")
	}

	var src io.Reader = br
	if bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "open gzip stream"), ErrMalformed)
		}
		defer zr.Close()
		src = zr
	}

	samples := make([]float64, 0, 1<<20)
	sc := bufio.NewScanner(src)
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 || text[0] == '#' {
			continue
		}
		v, err := strconv.ParseFloat(string(text), 64)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "line %d", line), ErrMalformed)
		}
		samples = append(samples, v)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read strain file"), ErrMalformed)
	}

	return samples, nil
}
