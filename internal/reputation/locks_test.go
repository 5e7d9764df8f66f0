package reputation

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("keyedMutex", func() {
	ginkgo.It("should serialise holders of the same key", func() {
		// Given
		locks := newKeyedMutex()
		var active, peak int32
		var wg sync.WaitGroup

		// When
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locks.Lock("acme")
				defer unlock()
				n := atomic.AddInt32(&active, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
			}()
		}
		wg.Wait()

		// Then
		gomega.Expect(atomic.LoadInt32(&peak)).To(gomega.Equal(int32(1)))
	})

	ginkgo.It("should not block different keys", func() {
		// Given
		locks := newKeyedMutex()
		unlockA := locks.Lock("a")
		defer unlockA()

		// When
		done := make(chan struct{})
		go func() {
			unlock := locks.Lock("b")
			unlock()
			close(done)
		}()

		// Then
		gomega.Eventually(done).Should(gomega.BeClosed())
	})

	ginkgo.It("should forget keys once released", func() {
		// Given
		locks := newKeyedMutex()

		// When
		unlock := locks.Lock("acme")
		gomega.Expect(locks.locks).To(gomega.HaveKey("acme"))
		unlock()

		// Then
		gomega.Expect(locks.locks).To(gomega.BeEmpty())
	})
})
