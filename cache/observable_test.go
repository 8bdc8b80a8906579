/*
Copyright 2025 The statekit authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cache

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

// receive returns the next update delivered on the watch, failing the
// test if none arrives in time.
func receive[K comparable, V any](g *WithT, w *Watch[K, V]) Update[V] {
	var update Update[V]
	g.Eventually(w.ResultChan()).Should(Receive(&update))
	return update
}

func TestObservable_Watch(t *testing.T) {
	t.Run("delivers the current state first", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4)
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		w := cache.Watch("z")
		defer w.Stop()
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))

		cache.Set("z", 5)
		g.Expect(receive(g, w)).To(Equal(Update[int]{Value: 5, Present: true}))

		cache.Delete("z")
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))
	})

	t.Run("starts with the value of a present key", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4)
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		cache.Set("a", 1)
		w := cache.Watch("a")
		defer w.Stop()
		g.Expect(receive(g, w)).To(Equal(Update[int]{Value: 1, Present: true}))

		cache.Set("a", 2)
		g.Expect(receive(g, w)).To(Equal(Update[int]{Value: 2, Present: true}))
	})

	t.Run("delete of an absent key is delivered", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4)
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		w := cache.Watch("ghost")
		defer w.Stop()
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))

		cache.Delete("ghost")
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))
	})

	t.Run("eviction is observed as absence", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](2)
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		w := cache.Watch("a")
		defer w.Stop()
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))

		cache.Set("a", 1)
		g.Expect(receive(g, w)).To(Equal(Update[int]{Value: 1, Present: true}))

		// Filling the cache evicts "a", the least recently used key.
		cache.Set("b", 2)
		cache.Set("c", 3)
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))
		g.Expect(cache.Contains("a")).To(BeFalse())
	})

	t.Run("watching does not make a key recently used", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](2)
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		cache.Set("a", 1)
		cache.Set("b", 2)
		w := cache.Watch("a")
		defer w.Stop()
		g.Expect(receive(g, w)).To(Equal(Update[int]{Value: 1, Present: true}))

		// "a" is still the least recently used key.
		cache.Set("c", 3)
		g.Expect(cache.Contains("a")).To(BeFalse())
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))
	})

	t.Run("expiry is observed as absence", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4, WithTTL(50*time.Millisecond))
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		w := cache.Watch("k")
		defer w.Stop()
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))

		cache.Set("k", 1)
		g.Expect(receive(g, w)).To(Equal(Update[int]{Value: 1, Present: true}))

		time.Sleep(100 * time.Millisecond)
		g.Expect(cache.Len()).To(Equal(0))
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))
	})

	t.Run("watch of an expired key starts absent", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4, WithTTL(50*time.Millisecond))
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		cache.Set("k", 1)
		time.Sleep(100 * time.Millisecond)

		w := cache.Watch("k")
		defer w.Stop()
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))
	})

	t.Run("clear notifies every watched key", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4)
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		cache.Set("a", 1)
		wa := cache.Watch("a")
		defer wa.Stop()
		wb := cache.Watch("b")
		defer wb.Stop()
		g.Expect(receive(g, wa)).To(Equal(Update[int]{Value: 1, Present: true}))
		g.Expect(receive(g, wb)).To(Equal(Update[int]{}))

		cache.Clear()
		g.Expect(receive(g, wa)).To(Equal(Update[int]{}))
		g.Expect(receive(g, wb)).To(Equal(Update[int]{}))
	})

	t.Run("every watch on a key gets the full sequence", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4)
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		w1 := cache.Watch("k")
		defer w1.Stop()
		w2 := cache.Watch("k")
		defer w2.Stop()

		cache.Set("k", 1)
		cache.Delete("k")

		for _, w := range []*Watch[string, int]{w1, w2} {
			g.Expect(receive(g, w)).To(Equal(Update[int]{}))
			g.Expect(receive(g, w)).To(Equal(Update[int]{Value: 1, Present: true}))
			g.Expect(receive(g, w)).To(Equal(Update[int]{}))
		}
	})

	t.Run("updates arrive in application order", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4)
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		w := cache.Watch("n")
		defer w.Stop()
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))

		const n = 100
		for i := 0; i < n; i++ {
			cache.Set("n", i)
		}
		for i := 0; i < n; i++ {
			g.Expect(receive(g, w)).To(Equal(Update[int]{Value: i, Present: true}))
		}
	})

	t.Run("a slow receiver does not block the cache", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4)
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		w := cache.Watch("k")
		defer w.Stop()

		// Nobody receives while the cache keeps moving.
		for i := 0; i < 500; i++ {
			cache.Set("k", i)
		}
		g.Expect(cache.Len()).To(Equal(1))

		// The queued updates are still delivered in order.
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))
		g.Expect(receive(g, w)).To(Equal(Update[int]{Value: 0, Present: true}))
	})
}

func TestWatch_Stop(t *testing.T) {
	t.Run("closes the result channel", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4)
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		w := cache.Watch("k")
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))
		w.Stop()
		g.Eventually(w.ResultChan()).Should(BeClosed())

		// Stopping twice is fine.
		w.Stop()
	})

	t.Run("stopped watches get no further updates", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4)
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		w := cache.Watch("k")
		g.Expect(receive(g, w)).To(Equal(Update[int]{}))
		w.Stop()
		g.Eventually(w.ResultChan()).Should(BeClosed())

		cache.Set("k", 1)
		_, open := <-w.ResultChan()
		g.Expect(open).To(BeFalse())
	})

	t.Run("stopping the last watch prunes the subject", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4)
		g.Expect(err).ToNot(HaveOccurred())
		defer cache.Close()

		w1 := cache.Watch("k")
		w2 := cache.Watch("k")

		subjects := func() int {
			cache.mu.Lock()
			defer cache.mu.Unlock()
			return len(cache.subjects)
		}
		g.Expect(subjects()).To(Equal(1))

		w1.Stop()
		g.Expect(subjects()).To(Equal(1))

		w2.Stop()
		g.Expect(subjects()).To(Equal(0))
	})
}

func TestObservable_Close(t *testing.T) {
	t.Run("stops active watches", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4)
		g.Expect(err).ToNot(HaveOccurred())

		w := cache.Watch("k")
		cache.Close()
		g.Eventually(w.ResultChan()).Should(BeClosed())

		// Stop after Close is fine.
		w.Stop()
	})

	t.Run("watch on a closed cache is already closed", func(t *testing.T) {
		g := NewWithT(t)
		cache, err := NewObservable[string, int](4)
		g.Expect(err).ToNot(HaveOccurred())
		cache.Close()

		w := cache.Watch("k")
		g.Expect(w.ResultChan()).To(BeClosed())
		w.Stop()
	})
}
