package storage

import (
	"context"
	"errors"
)

// Fixed keys in the process-wide key/value store. Values are UTF-8 JSON.
const (
	BuddyDataKey   = "bayroute-buddy-data"
	TripHistoryKey = "bayroute-trip-history"
)

// ErrKeyNotFound is returned when a key has never been written.
var ErrKeyNotFound = errors.New("key not found")

// SnapshotStore is the durable resource behind the buddy engine. It holds
// whole-state snapshots under fixed keys and is assumed to serialize writes
// per key.
type SnapshotStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
