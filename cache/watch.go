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

// Update is a single observed state of a watched key. Present reports
// whether the key held a value at the time of the update; when false,
// Value is the zero value.
type Update[V any] struct {
	Value   V
	Present bool
}

// Watch is a handle on a single-key observation, obtained from
// Observable.Watch. Receive updates from ResultChan and call Stop to end
// the observation.
type Watch[K comparable, V any] struct {
	store *store[K, V]
	key   K

	ch     chan Update[V]
	wakeCh chan struct{}
	done   chan struct{}

	// queue and stopped are guarded by store.mu.
	queue   []Update[V]
	stopped bool
}

// ResultChan returns the channel on which updates are delivered. The
// channel is closed when the watch is stopped or the cache is closed.
func (w *Watch[K, V]) ResultChan() <-chan Update[V] {
	return w.ch
}

// Stop ends the observation and closes the result channel. Updates not
// yet received are discarded. Stop may be called multiple times and from
// any goroutine.
func (w *Watch[K, V]) Stop() {
	c := w.store
	c.mu.Lock()
	if w.stopped {
		c.mu.Unlock()
		return
	}
	w.stopped = true
	if sub, found := c.subjects[w.key]; found {
		delete(sub.watches, w)
		if len(sub.watches) == 0 {
			delete(c.subjects, w.key)
		}
	}
	c.mu.Unlock()
	close(w.done)
	recordWatchDecrement(c.metrics)
}

// wake signals the pump that new updates are queued. The signal channel
// has a capacity of one, so cache operations never block here.
func (w *Watch[K, V]) wake() {
	select {
	case w.wakeCh <- struct{}{}:
	default:
	}
}

func wakeAll[K comparable, V any](watches []*Watch[K, V]) {
	for _, w := range watches {
		w.wake()
	}
}

// run pumps queued updates to the result channel. It takes the store
// lock only to swap out the queue, and sends with the lock released, so
// a slow or absent receiver never blocks cache operations.
func (w *Watch[K, V]) run() {
	defer close(w.ch)
	for {
		select {
		case <-w.done:
			return
		case <-w.wakeCh:
		}
		for {
			w.store.mu.Lock()
			batch := w.queue
			w.queue = nil
			w.store.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, u := range batch {
				select {
				case w.ch <- u:
				case <-w.done:
					return
				}
			}
		}
	}
}
