package repository

import (
	"context"

	"github.com/fleetgen/backend/domain"
)

// VehicleFilter narrows listing queries. Name is a substring match;
// a nil Active includes both values.
type VehicleFilter struct {
	Name           string
	OrganizationID string
	Active         *bool
}

// VehiclePagination controls listing windows. Count of zero falls back
// to the repository default.
type VehiclePagination struct {
	Page  int
	Count int
}

// VehicleSort orders listing results.
type VehicleSort struct {
	Field string
	Asc   bool
}

// VehicleUpdate carries the mutable fields of a merge update. Nil
// pointers mean "leave the stored value alone".
type VehicleUpdate struct {
	Name        *string
	Description *string
	Active      *bool
}

// VehicleRepository is the durable store for vehicle current state.
type VehicleRepository interface {
	GetByID(ctx context.Context, id, organizationID string) (*domain.Vehicle, error)
	List(ctx context.Context, filter VehicleFilter, pagination VehiclePagination, sort VehicleSort) ([]domain.Vehicle, error)
	Count(ctx context.Context, filter VehicleFilter) (int, error)
	Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	// Merge applies only the non-nil fields of update.
	Merge(ctx context.Context, id string, update VehicleUpdate, actor string) (*domain.Vehicle, error)
	// Replace overwrites all mutable fields of the stored vehicle.
	Replace(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	// Upsert writes a full snapshot regardless of prior state. Used by
	// event replay, never by the live command path.
	Upsert(ctx context.Context, vehicle *domain.Vehicle) error
	// Delete removes a single vehicle; absence is not an error.
	Delete(ctx context.Context, id string) error
	// DeleteMany removes every listed id and reports how many existed.
	DeleteMany(ctx context.Context, ids []string) (int, error)
}
