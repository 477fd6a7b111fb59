package events

import (
	"context"

	"github.com/jshan/storefront-backend/pkg/logger"
)

// Publisher is the explicit event channel out of the order orchestrator.
// Publishing happens strictly after the surrounding transaction commits, so
// subscribers never observe a transition that later rolled back.
type Publisher interface {
	PublishOrderStatusChanged(ctx context.Context, evt OrderStatusChanged) error
}

type multiPublisher struct {
	sinks []Publisher
}

// Multi fans an event out to several publishers. A failing sink is logged
// and does not stop delivery to the others.
func Multi(sinks ...Publisher) Publisher {
	return &multiPublisher{sinks: sinks}
}

func (m *multiPublisher) PublishOrderStatusChanged(ctx context.Context, evt OrderStatusChanged) error {
	var firstErr error
	for _, sink := range m.sinks {
		if err := sink.PublishOrderStatusChanged(ctx, evt); err != nil {
			logger.Error("Event sink failed to publish order status change", err, map[string]interface{}{
				"order_id":   evt.OrderID,
				"new_status": evt.NewStatus,
			})
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
