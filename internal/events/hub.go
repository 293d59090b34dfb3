package events

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

// Hub fans events out to in-process subscribers. Slow subscribers miss
// events instead of blocking publishers.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}

	onSubscribersChanged func(n int)
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// OnSubscribersChanged registers a callback receiving the subscriber count.
func (h *Hub) OnSubscribersChanged(fn func(n int)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSubscribersChanged = fn
}

func (h *Hub) Publish(_ context.Context, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.notify()
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			close(ch)
			h.notify()
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// notify must be called with mu held.
func (h *Hub) notify() {
	if h.onSubscribersChanged != nil {
		h.onSubscribersChanged(len(h.subs))
	}
}
