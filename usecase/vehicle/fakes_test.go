package vehicle

import (
	"context"
	"strings"
	"sync"

	"github.com/fleetgen/backend/domain"
	"github.com/fleetgen/backend/repository"
)

type fakeVehicleRepo struct {
	mu        sync.Mutex
	vehicles  map[string]domain.Vehicle
	createErr error
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[string]domain.Vehicle)}
}

func (r *fakeVehicleRepo) GetByID(_ context.Context, id, organizationID string) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[id]
	if !ok || (organizationID != "" && vehicle.OrganizationID != organizationID) {
		return nil, domain.ErrVehicleNotFound
	}
	copied := vehicle
	return &copied, nil
}

func (r *fakeVehicleRepo) List(_ context.Context, filter repository.VehicleFilter, _ repository.VehiclePagination, _ repository.VehicleSort) ([]domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Vehicle
	for _, vehicle := range r.vehicles {
		if filter.Name != "" && !strings.Contains(vehicle.Name, filter.Name) {
			continue
		}
		if filter.Active != nil && vehicle.Active != *filter.Active {
			continue
		}
		out = append(out, vehicle)
	}
	return out, nil
}

func (r *fakeVehicleRepo) Count(ctx context.Context, filter repository.VehicleFilter) (int, error) {
	listing, err := r.List(ctx, filter, repository.VehiclePagination{}, repository.VehicleSort{})
	return len(listing), err
}

func (r *fakeVehicleRepo) Create(_ context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[vehicle.ID]; ok {
		return nil, domain.ErrVehicleExists
	}
	r.vehicles[vehicle.ID] = *vehicle
	return vehicle, nil
}

func (r *fakeVehicleRepo) Merge(_ context.Context, id string, update repository.VehicleUpdate, actor string) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[id]
	if !ok {
		return nil, domain.ErrVehicleNotFound
	}
	if update.Name != nil {
		vehicle.Name = *update.Name
	}
	if update.Description != nil {
		vehicle.Description = *update.Description
	}
	if update.Active != nil {
		vehicle.Active = *update.Active
	}
	vehicle.Touch(actor)
	r.vehicles[id] = vehicle
	return &vehicle, nil
}

func (r *fakeVehicleRepo) Replace(_ context.Context, replacement *domain.Vehicle) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[replacement.ID]; !ok {
		return nil, domain.ErrVehicleNotFound
	}
	r.vehicles[replacement.ID] = *replacement
	copied := *replacement
	return &copied, nil
}

func (r *fakeVehicleRepo) Upsert(_ context.Context, vehicle *domain.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (r *fakeVehicleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.vehicles, id)
	return nil
}

func (r *fakeVehicleRepo) DeleteMany(_ context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for _, id := range ids {
		if _, ok := r.vehicles[id]; ok {
			delete(r.vehicles, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeVehicleRepo) get(id string) (domain.Vehicle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[id]
	return vehicle, ok
}

func (r *fakeVehicleRepo) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.vehicles)
}

type fakeEventLog struct {
	mu        sync.Mutex
	events    []domain.VehicleEvent
	appendErr error
	failFor   map[string]error
}

func newFakeEventLog() *fakeEventLog {
	return &fakeEventLog{failFor: make(map[string]error)}
}

func (l *fakeEventLog) Append(_ context.Context, event domain.VehicleEvent) error {
	if l.appendErr != nil {
		return l.appendErr
	}
	if err := l.failFor[event.AggregateID]; err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *fakeEventLog) ReadBatch(_ context.Context, afterSeq int64, limit int) ([]repository.StoredEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []repository.StoredEvent
	for i, event := range l.events {
		seq := int64(i + 1)
		if seq <= afterSeq {
			continue
		}
		out = append(out, repository.StoredEvent{Seq: seq, Event: event})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (l *fakeEventLog) all() []domain.VehicleEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.VehicleEvent(nil), l.events...)
}

type publishedMessage struct {
	Topic   string
	Payload any
}

type fakeBroker struct {
	mu         sync.Mutex
	published  []publishedMessage
	publishErr error
}

func (b *fakeBroker) Publish(_ context.Context, topic string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, publishedMessage{Topic: topic, Payload: payload})
	return b.publishErr
}

func (b *fakeBroker) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

func (b *fakeBroker) messages() []publishedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]publishedMessage(nil), b.published...)
}
