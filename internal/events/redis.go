package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jshan/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "orders.status-changed"

// RedisPublisher pushes order status events onto a Redis pub/sub channel for
// out-of-process consumers (the fulfillment notifier among them).
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) PublishOrderStatusChanged(ctx context.Context, evt OrderStatusChanged) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal order status event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish order status event: %w", err)
	}

	logger.Debug("Order status event published to Redis", map[string]interface{}{
		"channel":    p.channel,
		"order_id":   evt.OrderID,
		"new_status": evt.NewStatus,
	})
	return nil
}
