package vehicle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetgen/backend/domain"
	"github.com/fleetgen/backend/repository"
	"github.com/fleetgen/backend/usecase"
)

// viewUpdateType is the message type the gateway bridge listens for on
// the materialized-view topic.
const viewUpdateType = "GeneratorVehicleModified"

// ViewUpdate is the materialized-view topic envelope.
type ViewUpdate struct {
	Type string         `json:"type"`
	Data domain.Vehicle `json:"data"`
}

// deletePlaceholder is published after a bulk delete instead of per-id
// payloads. Subscribers key on the "deleted" sentinel together with the
// "ANY" filter convention; the shape is load-bearing, do not enrich it.
var deletePlaceholder = domain.Vehicle{ID: "deleted", Name: "", Active: false, Description: ""}

// Input carries the caller-supplied mutable fields of a vehicle.
// Nil pointers mean "not provided".
type Input struct {
	OrganizationID string
	Name           *string
	Description    *string
	Active         *bool
}

// ListQuery bundles the listing arguments.
type ListQuery struct {
	Filter                repository.VehicleFilter
	Pagination            repository.VehiclePagination
	Sort                  repository.VehicleSort
	QueryTotalResultCount bool
}

// ListResult is the listing plus the optional decoupled total.
type ListResult struct {
	Listing               []domain.Vehicle `json:"listing"`
	QueryTotalResultCount *int             `json:"queryTotalResultCount,omitempty"`
}

// DeleteResult is the aggregate-level outcome of a bulk delete.
type DeleteResult struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// UseCase executes vehicle commands: every successful mutation writes
// the store, appends exactly one domain event, and notifies the
// materialized-view topic. Store write and event append are awaited;
// the notify is fire-and-forget.
type UseCase struct {
	vehicles repository.VehicleRepository
	events   repository.EventLog
	broker   usecase.Broker
	logger   *zap.Logger
}

func New(vehicles repository.VehicleRepository, events repository.EventLog, broker usecase.Broker, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		vehicles: vehicles,
		events:   events,
		broker:   broker,
		logger:   logger,
	}
}

// Create assigns a fresh id and persists the vehicle. Active defaults
// to false unless the caller set it explicitly.
func (uc *UseCase) Create(ctx context.Context, actor string, input Input) (*domain.Vehicle, error) {
	if input.Name == nil || *input.Name == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "vehicle name is required")
	}

	vehicle := &domain.Vehicle{
		ID:             uuid.NewString(),
		OrganizationID: input.OrganizationID,
		Name:           *input.Name,
		Active:         false,
	}
	if input.Description != nil {
		vehicle.Description = *input.Description
	}
	if input.Active != nil {
		vehicle.Active = *input.Active
	}
	vehicle.Touch(actor)

	created, err := uc.vehicles.Create(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	if err := uc.appendEvent(ctx, domain.ModTypeCreate, created.ID, actor, created); err != nil {
		return nil, err
	}
	uc.notifyView(*created)

	return created, nil
}

// Update mutates an existing vehicle. merge=true applies only the
// provided fields; merge=false replaces all mutable fields, defaulting
// absent ones to their zero values.
func (uc *UseCase) Update(ctx context.Context, actor, id string, input Input, merge bool) (*domain.Vehicle, error) {
	if id == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "vehicle id is required")
	}

	var updated *domain.Vehicle
	var err error
	modType := domain.ModTypeUpdateReplace

	if merge {
		modType = domain.ModTypeUpdateMerge
		updated, err = uc.vehicles.Merge(ctx, id, repository.VehicleUpdate{
			Name:        input.Name,
			Description: input.Description,
			Active:      input.Active,
		}, actor)
	} else {
		replacement := &domain.Vehicle{
			ID:             id,
			OrganizationID: input.OrganizationID,
			Metadata:       &domain.VehicleMetadata{UpdatedBy: actor},
		}
		if input.Name != nil {
			replacement.Name = *input.Name
		}
		if input.Description != nil {
			replacement.Description = *input.Description
		}
		if input.Active != nil {
			replacement.Active = *input.Active
		}
		updated, err = uc.vehicles.Replace(ctx, replacement)
	}
	if err != nil {
		return nil, err
	}

	if err := uc.appendEvent(ctx, modType, id, actor, updated); err != nil {
		return nil, err
	}
	uc.notifyView(*updated)

	return updated, nil
}

// Delete removes the listed ids from the store and appends one DELETE
// event per requested id, whether or not the store had it. Event append
// failures never roll back the deletion outcome.
func (uc *UseCase) Delete(ctx context.Context, actor string, ids []string) (DeleteResult, error) {
	if len(ids) == 0 {
		return DeleteResult{}, domain.NewError(domain.ErrCodeInvalid, "at least one vehicle id is required")
	}

	deleted, err := uc.vehicles.DeleteMany(ctx, ids)
	if err != nil {
		return DeleteResult{}, err
	}

	for _, id := range ids {
		if err := uc.appendEvent(ctx, domain.ModTypeDelete, id, actor, nil); err != nil {
			uc.logger.Error("delete event append failed",
				zap.String("vehicle_id", id),
				zap.Error(err))
		}
	}

	uc.notifyView(deletePlaceholder)

	encoded, _ := json.Marshal(ids)
	if deleted != len(ids) {
		return DeleteResult{Code: 400, Message: fmt.Sprintf("Vehicle with ids %s not found for deletion", encoded)}, nil
	}
	return DeleteResult{Code: 200, Message: fmt.Sprintf("Vehicle with ids %s has been deleted", encoded)}, nil
}

// List re-queries the store; the total is a separate count query issued
// only when requested, as an independent read.
func (uc *UseCase) List(ctx context.Context, query ListQuery) (ListResult, error) {
	listing, err := uc.vehicles.List(ctx, query.Filter, query.Pagination, query.Sort)
	if err != nil {
		return ListResult{}, err
	}

	result := ListResult{Listing: listing}
	if query.QueryTotalResultCount {
		total, err := uc.vehicles.Count(ctx, query.Filter)
		if err != nil {
			return ListResult{}, err
		}
		result.QueryTotalResultCount = &total
	}
	return result, nil
}

// Get fetches one vehicle scoped to an organization.
func (uc *UseCase) Get(ctx context.Context, id, organizationID string) (*domain.Vehicle, error) {
	if id == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "vehicle id is required")
	}
	return uc.vehicles.GetByID(ctx, id, organizationID)
}

func (uc *UseCase) appendEvent(ctx context.Context, modType domain.ModType, aggregateID, actor string, snapshot *domain.Vehicle) error {
	event, err := domain.NewVehicleEvent(uuid.NewString(), modType, aggregateID, actor, snapshot)
	if err != nil {
		return err
	}
	return uc.events.Append(ctx, event)
}

// notifyView publishes the materialized-view update as a detached task.
// A lost notification must not fail a successful mutation.
func (uc *UseCase) notifyView(vehicle domain.Vehicle) {
	go func() {
		if err := uc.broker.Publish(context.Background(), usecase.TopicMaterializedView, ViewUpdate{
			Type: viewUpdateType,
			Data: vehicle,
		}); err != nil {
			uc.logger.Error("materialized view publish failed",
				zap.String("vehicle_id", vehicle.ID),
				zap.Error(err))
		}
	}()
}
