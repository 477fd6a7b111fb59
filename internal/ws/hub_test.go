package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jshan/storefront-backend/internal/app/model"
	"github.com/jshan/storefront-backend/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubTestEvent(userID, orderID uint) events.OrderStatusChanged {
	return events.OrderStatusChanged{
		EventID:        uuid.NewString(),
		OrderID:        orderID,
		UserID:         userID,
		PreviousStatus: model.OrderStatusPending,
		NewStatus:      model.OrderStatusProcessing,
		OccurredAt:     time.Now(),
	}
}

func newTestClient(hub *Hub, userID uint) *Client {
	return &Client{
		Hub:    hub,
		UserID: userID,
		Send:   make(chan []byte, 256),
	}
}

func TestHub_RegisterAndNotify(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, 1)
	hub.Register(client)

	require.Eventually(t, func() bool {
		return hub.IsUserOnline(1)
	}, time.Second, 5*time.Millisecond)

	hub.Notify(newHubTestEvent(1, 100))

	select {
	case data := <-client.Send:
		var evt events.OrderStatusChanged
		require.NoError(t, json.Unmarshal(data, &evt))
		assert.Equal(t, uint(100), evt.OrderID)
		assert.Equal(t, model.OrderStatusProcessing, evt.NewStatus)
	case <-time.After(time.Second):
		t.Fatal("client did not receive the event")
	}
}

func TestHub_EventOnlyReachesOwner(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	owner := newTestClient(hub, 1)
	other := newTestClient(hub, 2)
	hub.Register(owner)
	hub.Register(other)

	require.Eventually(t, func() bool {
		return hub.IsUserOnline(1) && hub.IsUserOnline(2)
	}, time.Second, 5*time.Millisecond)

	hub.Notify(newHubTestEvent(1, 100))

	select {
	case <-owner.Send:
	case <-time.After(time.Second):
		t.Fatal("owner did not receive the event")
	}

	select {
	case <-other.Send:
		t.Fatal("event leaked to another user's session")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_MultipleSessionsPerUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	phone := newTestClient(hub, 1)
	laptop := newTestClient(hub, 1)
	hub.Register(phone)
	hub.Register(laptop)

	require.Eventually(t, func() bool {
		return hub.sessionCount(1) == 2
	}, time.Second, 5*time.Millisecond)

	hub.Notify(newHubTestEvent(1, 100))

	for _, client := range []*Client{phone, laptop} {
		select {
		case <-client.Send:
		case <-time.After(time.Second):
			t.Fatal("a session missed the event")
		}
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, 1)
	hub.Register(client)

	require.Eventually(t, func() bool {
		return hub.IsUserOnline(1)
	}, time.Second, 5*time.Millisecond)

	hub.Unregister(client)

	require.Eventually(t, func() bool {
		return !hub.IsUserOnline(1)
	}, time.Second, 5*time.Millisecond)

	// The send channel is closed so the write pump can exit
	_, open := <-client.Send
	assert.False(t, open)
}

func TestHub_ConsumeBridgesBusEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	bus := events.NewBus()
	feed, cancel := bus.Subscribe()
	defer cancel()
	go hub.Consume(feed)

	client := newTestClient(hub, 1)
	hub.Register(client)

	require.Eventually(t, func() bool {
		return hub.IsUserOnline(1)
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, bus.PublishOrderStatusChanged(context.Background(), newHubTestEvent(1, 7)))

	select {
	case data := <-client.Send:
		var evt events.OrderStatusChanged
		require.NoError(t, json.Unmarshal(data, &evt))
		assert.Equal(t, uint(7), evt.OrderID)
	case <-time.After(time.Second):
		t.Fatal("bus event never reached the websocket client")
	}
}
