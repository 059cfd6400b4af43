package cache_test

import (
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"helpdesk.app/triage/internal/cache"
)

var _ = Describe("PolicyCache", func() {
	var c *cache.PolicyCache

	BeforeEach(func() {
		c = cache.NewPolicyCache()
	})

	It("misses before anything is stored", func() {
		_, ok := c.Get(cache.PricingContextKey)
		Expect(ok).To(BeFalse())
	})

	It("returns what was stored", func() {
		c.Put(cache.PricingContextKey, "our plans start at $10/month")

		got, ok := c.Get(cache.PricingContextKey)
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal("our plans start at $10/month"))
	})

	It("keeps the last write", func() {
		c.Put(cache.PricingContextKey, "first")
		c.Put(cache.PricingContextKey, "second")

		got, _ := c.Get(cache.PricingContextKey)
		Expect(got).To(Equal("second"))
	})

	It("survives concurrent readers and writers", func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				c.Put(cache.PricingContextKey, fmt.Sprintf("answer %d", i))
			}(i)
			go func() {
				defer wg.Done()
				c.Get(cache.PricingContextKey)
			}()
		}
		wg.Wait()

		got, ok := c.Get(cache.PricingContextKey)
		Expect(ok).To(BeTrue())
		Expect(got).To(HavePrefix("answer "))
	})
})
