package repository

import (
	"context"

	"github.com/fleetgen/backend/domain"
)

// StoredEvent pairs a domain event with its position in the log.
type StoredEvent struct {
	Seq   int64
	Event domain.VehicleEvent
}

// EventLog is the append-only, per-aggregate ordered log of domain events.
type EventLog interface {
	Append(ctx context.Context, event domain.VehicleEvent) error
	// ReadBatch returns up to limit events with Seq greater than afterSeq,
	// in log order. An empty result means the log is exhausted.
	ReadBatch(ctx context.Context, afterSeq int64, limit int) ([]StoredEvent, error)
}
