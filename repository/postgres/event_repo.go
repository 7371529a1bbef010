package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetgen/backend/domain"
	"github.com/fleetgen/backend/repository"
)

type eventLog struct {
	pool *pgxpool.Pool
}

// NewEventLog returns a Postgres-backed append-only event log.
func NewEventLog(pool *pgxpool.Pool) repository.EventLog {
	return &eventLog{pool: pool}
}

func (l *eventLog) Append(ctx context.Context, event domain.VehicleEvent) error {
	const query = `
	INSERT INTO vehicle_events (id, event_type, event_type_version, aggregate_type, aggregate_id, data, actor, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
	`
	_, err := l.pool.Exec(ctx, query,
		event.ID,
		event.EventType,
		event.EventTypeVersion,
		event.AggregateType,
		event.AggregateID,
		[]byte(event.Data),
		event.User,
		nullTime(event.Timestamp),
	)
	return classify(err)
}

func (l *eventLog) ReadBatch(ctx context.Context, afterSeq int64, limit int) ([]repository.StoredEvent, error) {
	const query = `
	SELECT seq, id, event_type, event_type_version, aggregate_type, aggregate_id, data, actor, created_at
	FROM vehicle_events
	WHERE seq > $1
	ORDER BY seq ASC
	LIMIT $2
	`
	rows, err := l.pool.Query(ctx, query, afterSeq, clampLimit(limit))
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var events []repository.StoredEvent
	for rows.Next() {
		var stored repository.StoredEvent
		var data []byte
		if err := rows.Scan(
			&stored.Seq,
			&stored.Event.ID,
			&stored.Event.EventType,
			&stored.Event.EventTypeVersion,
			&stored.Event.AggregateType,
			&stored.Event.AggregateID,
			&data,
			&stored.Event.User,
			&stored.Event.Timestamp,
		); err != nil {
			return nil, classify(err)
		}
		stored.Event.Data = append([]byte(nil), data...)
		events = append(events, stored)
	}
	return events, classify(rows.Err())
}
