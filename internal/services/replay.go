package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fleetgen/backend/repository"
	vehicleUC "github.com/fleetgen/backend/usecase/vehicle"
)

// ReplayConfig controls how the event log is walked.
type ReplayConfig struct {
	BatchSize int
	// Pause between batches so a long replay does not starve the pool.
	BatchDelay time.Duration
}

// Replayer drives the recovery projector over the event log. It is the
// only caller of Projector.Apply; the live command path never routes
// through it.
type Replayer struct {
	events    repository.EventLog
	projector *vehicleUC.Projector
	logger    *zap.Logger
	cfg       ReplayConfig
}

func NewReplayer(events repository.EventLog, projector *vehicleUC.Projector, logger *zap.Logger, cfg ReplayConfig) *Replayer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Replayer{
		events:    events,
		projector: projector,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run replays the full log from the beginning, in log order, until it
// is exhausted or ctx is cancelled. Per-event failures are logged and
// skipped so one poison event cannot wedge recovery.
func (r *Replayer) Run(ctx context.Context) error {
	var afterSeq int64
	var applied int

	for {
		batch, err := r.events.ReadBatch(ctx, afterSeq, r.cfg.BatchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}

		for _, stored := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.projector.Apply(ctx, stored.Event); err != nil {
				r.logger.Error("replay apply failed",
					zap.Int64("seq", stored.Seq),
					zap.String("aggregate_id", stored.Event.AggregateID),
					zap.Error(err))
				continue
			}
			applied++
		}
		afterSeq = batch[len(batch)-1].Seq

		if r.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.cfg.BatchDelay):
			}
		}
	}

	r.logger.Info("event replay finished", zap.Int("events_applied", applied))
	return nil
}
