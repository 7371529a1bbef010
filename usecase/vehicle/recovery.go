package vehicle

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/fleetgen/backend/domain"
	"github.com/fleetgen/backend/repository"
)

// Projector re-derives vehicle state from previously emitted domain
// events. It is a recovery path: only an explicit replay driver may
// invoke it, never the live command path.
type Projector struct {
	vehicles repository.VehicleRepository
	logger   *zap.Logger
}

func NewProjector(vehicles repository.VehicleRepository, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{
		vehicles: vehicles,
		logger:   logger,
	}
}

// Apply folds one event into the store. Applying the same event twice
// leaves the store in the same state as applying it once.
func (p *Projector) Apply(ctx context.Context, event domain.VehicleEvent) error {
	var tag struct {
		ModType domain.ModType `json:"modType"`
	}
	if err := json.Unmarshal(event.Data, &tag); err != nil {
		return fmt.Errorf("decode event %s data: %w", event.ID, err)
	}

	if tag.ModType == domain.ModTypeDelete {
		// Absence is not an error; replayed deletes are no-ops for
		// vehicles already gone.
		if err := p.vehicles.Delete(ctx, event.AggregateID); err != nil {
			return err
		}
		p.logger.Info("recovery applied",
			zap.String("mod_type", string(tag.ModType)),
			zap.String("aggregate_id", event.AggregateID))
		return nil
	}

	snapshot, err := decodeSnapshot(event)
	if err != nil {
		return err
	}
	snapshot.ID = event.AggregateID

	if err := p.vehicles.Upsert(ctx, snapshot); err != nil {
		return err
	}
	p.logger.Info("recovery applied",
		zap.String("mod_type", string(tag.ModType)),
		zap.String("aggregate_id", event.AggregateID))
	return nil
}

// decodeSnapshot selects the decoding strategy by event type version.
// Version 0 predates the snapshot schema and is a hard error: hitting
// it during replay means the log holds events this build cannot mend.
func decodeSnapshot(event domain.VehicleEvent) (*domain.Vehicle, error) {
	switch event.EventTypeVersion {
	case domain.EventTypeVersion:
		var payload domain.EventPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode event %s snapshot: %w", event.ID, err)
		}
		// The modType marker describes the transition, not the
		// aggregate; it is stripped by taking only the snapshot.
		vehicle := payload.Vehicle
		return &vehicle, nil
	default:
		return nil, fmt.Errorf("event %s: unsupported eventTypeVersion %d", event.ID, event.EventTypeVersion)
	}
}
