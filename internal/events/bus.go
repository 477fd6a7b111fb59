package events

import (
	"context"
	"sync"

	"github.com/jshan/storefront-backend/pkg/logger"
)

// Bus is an in-process publisher for subscribers living inside this binary
// (the websocket order feed, tests). Delivery is non-blocking: a subscriber
// that stops draining its channel loses events rather than stalling the
// order flow.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan OrderStatusChanged
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan OrderStatusChanged)}
}

// Subscribe returns a buffered event channel and a cancel function that
// closes it. The caller must stop reading only after cancelling.
func (b *Bus) Subscribe() (<-chan OrderStatusChanged, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan OrderStatusChanged, 64)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (b *Bus) PublishOrderStatusChanged(_ context.Context, evt OrderStatusChanged) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			logger.Warn("Event bus subscriber buffer full, dropping event", map[string]interface{}{
				"order_id":   evt.OrderID,
				"new_status": evt.NewStatus,
			})
		}
	}
	return nil
}
