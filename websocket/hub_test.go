package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub) *Client {
	return &Client{
		id:   uuid.New().String(),
		hub:  hub,
		send: make(chan WSEvent, 8),
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub)
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.ConnectedClients() == 1
	}, time.Second, 5*time.Millisecond)

	hub.unregister <- client
	require.Eventually(t, func() bool {
		return hub.ConnectedClients() == 0
	}, time.Second, 5*time.Millisecond)

	// send is closed on unregister
	_, open := <-client.send
	assert.False(t, open)
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := newTestClient(hub)
	second := newTestClient(hub)
	hub.register <- first
	hub.register <- second
	require.Eventually(t, func() bool {
		return hub.ConnectedClients() == 2
	}, time.Second, 5*time.Millisecond)

	hub.BroadcastBuddyEvent("trip_start", map[string]interface{}{"destination": "Library"})

	for _, client := range []*Client{first, second} {
		select {
		case event := <-client.send:
			assert.Equal(t, "trip_start", event.Type)
			assert.False(t, event.Timestamp.IsZero())
		case <-time.After(time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestHubDropsSlowConsumer(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{id: uuid.New().String(), hub: hub, send: make(chan WSEvent)}
	hub.register <- slow
	require.Eventually(t, func() bool {
		return hub.ConnectedClients() == 1
	}, time.Second, 5*time.Millisecond)

	// Nothing drains slow.send, so the broadcast evicts the client
	hub.BroadcastBuddyEvent("emergency", nil)

	require.Eventually(t, func() bool {
		return hub.ConnectedClients() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub() // Run not started: queue fills up

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.BroadcastBuddyEvent("location_update", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastBuddyEvent blocked")
	}
}
