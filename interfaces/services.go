package interfaces

import (
	"bayroute/models"
	"context"
)

// NotificationTransport is the abstract delivery channel for fan-out
// records. Delivery is best-effort: a returned error marks one failed
// delivery and never aborts the fan-out.
type NotificationTransport interface {
	Send(ctx context.Context, record models.DeliveryRecord) error
}

// LocationSource produces a current device position. The engine's core paths
// have samples pushed in by the host; the source only backs location
// synthesis when no sample has been seen yet.
type LocationSource interface {
	CurrentLocation(ctx context.Context) (latitude, longitude float64, err error)
}

// BuddyBroadcaster mirrors engine events to connected UI clients. A nil
// broadcaster is valid and means no mirroring.
type BuddyBroadcaster interface {
	BroadcastBuddyEvent(eventType string, payload interface{})
}
