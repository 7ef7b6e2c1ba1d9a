package cache_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/cache"
)

var _ = Describe("LRU", func() {
	var c *cache.LRU[int]

	BeforeEach(func() {
		c = cache.New[int](2, cache.WithName("test"))
	})

	Describe("Put and Get", func() {
		It("Should return stored values", func() {
			c.Put("a", 1)
			v, ok := c.Get("a")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(1))
		})
		It("Should evict the least recently used entry", func() {
			c.Put("a", 1)
			c.Put("b", 2)
			_, _ = c.Get("a")
			c.Put("c", 3)
			_, ok := c.Get("b")
			Expect(ok).To(BeFalse())
			_, ok = c.Get("a")
			Expect(ok).To(BeTrue())
			Expect(c.Len()).To(Equal(2))
			Expect(c.Stats().Evictions).To(Equal(uint64(1)))
		})
		It("Should overwrite without growing", func() {
			c.Put("a", 1)
			c.Put("a", 5)
			v, _ := c.Get("a")
			Expect(v).To(Equal(5))
			Expect(c.Len()).To(Equal(1))
		})
	})

	Describe("TTL", func() {
		It("Should expire old entries", func() {
			now := time.Unix(1000, 0)
			c = cache.New[int](4, cache.WithTTL(time.Minute), cache.WithClock(func() time.Time { return now }))
			c.Put("a", 1)
			now = now.Add(30 * time.Second)
			_, ok := c.Get("a")
			Expect(ok).To(BeTrue())
			now = now.Add(2 * time.Minute)
			Expect(c.Stats().Expired).To(Equal(1))
			_, ok = c.Get("a")
			Expect(ok).To(BeFalse())
			Expect(c.Len()).To(Equal(0))
		})
	})

	Describe("GetOrLoad", func() {
		It("Should load once and then hit", func() {
			calls := 0
			load := func() (int, error) {
				calls++
				return 42, nil
			}
			v, cached, err := c.GetOrLoad("k", load)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(42))
			Expect(cached).To(BeFalse())
			v, cached, err = c.GetOrLoad("k", load)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(42))
			Expect(cached).To(BeTrue())
			Expect(calls).To(Equal(1))
		})
		It("Should not cache failures", func() {
			boom := errors.New("boom")
			_, _, err := c.GetOrLoad("k", func() (int, error) { return 0, boom })
			Expect(err).To(MatchError(boom))
			Expect(c.Len()).To(Equal(0))
		})
		It("Should collapse concurrent loads of one key", func() {
			var calls atomic.Int32
			release := make(chan struct{})
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					v, _, err := c.GetOrLoad("slow", func() (int, error) {
						calls.Add(1)
						<-release
						return 7, nil
					})
					Expect(err).ToNot(HaveOccurred())
					Expect(v).To(Equal(7))
				}()
			}
			Eventually(calls.Load).Should(Equal(int32(1)))
			close(release)
			wg.Wait()
			Expect(calls.Load()).To(BeNumerically("<=", 8))
			v, ok := c.Get("slow")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(7))
		})
	})

	Describe("Stats", func() {
		It("Should count hits and misses", func() {
			c.Put("a", 1)
			_, _ = c.Get("a")
			_, _ = c.Get("b")
			s := c.Stats()
			Expect(s.Name).To(Equal("test"))
			Expect(s.Hits).To(Equal(uint64(1)))
			Expect(s.Misses).To(Equal(uint64(1)))
			Expect(s.HitRate).To(BeNumerically("~", 0.5, 1e-12))
			Expect(s.Capacity).To(Equal(2))
		})
	})

	Describe("Key", func() {
		It("Should be deterministic and sensitive to every part", func() {
			a := cache.Key("L1", 1187008832.0, 1187008960.0, 4096)
			Expect(a).To(Equal(cache.Key("L1", 1187008832.0, 1187008960.0, 4096)))
			Expect(a).ToNot(Equal(cache.Key("H1", 1187008832.0, 1187008960.0, 4096)))
			Expect(a).To(HaveLen(64))
		})
	})
})
