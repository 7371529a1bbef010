package generation

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fleetgen/backend/domain"
	"github.com/fleetgen/backend/usecase"
)

const defaultInterval = 50 * time.Millisecond

// Envelope is the generation-feed topic message.
type Envelope struct {
	AT        string                  `json:"at"`
	ET        string                  `json:"et"`
	Aid       string                  `json:"aid"`
	Timestamp string                  `json:"timestamp"`
	Data      domain.GeneratedVehicle `json:"data"`
}

// LiveUpdate is the live-update topic message: the same envelope plus
// the running total, for richer real-time clients.
type LiveUpdate struct {
	Type           string   `json:"type"`
	Data           Envelope `json:"data"`
	GeneratedCount int      `json:"generatedCount"`
}

// Status is a read-only snapshot of the run state.
type Status struct {
	IsGenerating   bool   `json:"isGenerating"`
	GeneratedCount int    `json:"generatedCount"`
	Status         string `json:"status"`
}

// Engine owns the single process-wide generation run. Start, Stop and
// the tick handler serialize on one mutex over {running, count, cancel}
// so two near-simultaneous starts cannot both win.
type Engine struct {
	broker   usecase.Broker
	logger   *zap.Logger
	interval time.Duration

	mu      sync.Mutex
	running bool
	count   int
	cancel  context.CancelFunc
}

func New(broker usecase.Broker, interval time.Duration, logger *zap.Logger) *Engine {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		broker:   broker,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the periodic production loop and resets the counter.
// It returns domain.ErrGenerationRunning without side effects when a
// run is already active, and returns as soon as the loop is scheduled.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return domain.ErrGenerationRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.running = true
	e.count = 0
	e.cancel = cancel

	go e.loop(ctx)

	e.logger.Info("vehicle generation started")
	return nil
}

// Stop halts the loop. No tick begins after the cancellation is
// observed; one already dispatched may complete. The counter keeps its
// last value until the next Start.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return domain.ErrGenerationNotRunning
	}

	e.running = false
	e.cancel()
	e.cancel = nil

	e.logger.Info("vehicle generation stopped")
	return nil
}

// GetStatus never mutates state and is safe to call concurrently with
// Start and Stop.
func (e *Engine) GetStatus() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	status := "stopped"
	if e.running {
		status = "running"
	}
	return Status{
		IsGenerating:   e.running,
		GeneratedCount: e.count,
		Status:         status,
	}
}

func (e *Engine) loop(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.count++
	count := e.count
	e.mu.Unlock()

	record := randomVehicle()
	aid := record.Aid()
	envelope := Envelope{
		AT:        domain.AggregateTypeVehicle,
		ET:        "Generated",
		Aid:       aid,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Data:      record,
	}

	// Publishes are fire-and-forget with independent delivery; a slow
	// publish must not delay the next tick.
	go e.publish(usecase.TopicVehicleGenerated, envelope)
	go e.publish(usecase.TopicWebsocketUpdates, LiveUpdate{
		Type:           "VehicleGenerated",
		Data:           envelope,
		GeneratedCount: count,
	})

	e.logger.Debug("vehicle generated",
		zap.String("aid", aid[:8]),
		zap.Int("total", count))
}

func (e *Engine) publish(topic string, payload any) {
	if err := e.broker.Publish(context.Background(), topic, payload); err != nil {
		e.logger.Error("generation publish failed",
			zap.String("topic", topic),
			zap.Error(err))
	}
}

func randomVehicle() domain.GeneratedVehicle {
	return domain.GeneratedVehicle{
		Type:        domain.VehicleTypes[rand.IntN(len(domain.VehicleTypes))],
		PowerSource: domain.VehiclePowerSources[rand.IntN(len(domain.VehiclePowerSources))],
		HP:          randomBetween(domain.HPMin, domain.HPMax),
		Year:        randomBetween(domain.YearMin, domain.YearMax),
		TopSpeed:    randomBetween(domain.TopSpeedMin, domain.TopSpeedMax),
	}
}

func randomBetween(min, max int) int {
	return min + rand.IntN(max-min+1)
}
