package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetgen/backend/domain"
	"github.com/fleetgen/backend/repository"
)

type vehicleRepository struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository returns a Postgres-backed implementation of VehicleRepository.
func NewVehicleRepository(pool *pgxpool.Pool) repository.VehicleRepository {
	return &vehicleRepository{pool: pool}
}

const vehicleColumns = `id, organization_id, name, description, active, created_by, created_at, updated_by, updated_at`

func (r *vehicleRepository) GetByID(ctx context.Context, id, organizationID string) (*domain.Vehicle, error) {
	const query = `
	SELECT ` + vehicleColumns + `
	FROM vehicles
	WHERE id = $1
	  AND ($2 = '' OR organization_id = $2)
	`
	row := r.pool.QueryRow(ctx, query, id, organizationID)
	return scanVehicle(row)
}

func (r *vehicleRepository) List(ctx context.Context, filter repository.VehicleFilter, pagination repository.VehiclePagination, sort repository.VehicleSort) ([]domain.Vehicle, error) {
	query := `
	SELECT ` + vehicleColumns + `
	FROM vehicles
	WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
	  AND ($2 = '' OR organization_id = $2)
	  AND ($3::boolean IS NULL OR active = $3)
	ORDER BY ` + sortClause(sort) + `
	LIMIT $4 OFFSET $5
	`
	limit := clampLimit(pagination.Count)
	offset := pagination.Page * limit

	rows, err := r.pool.Query(ctx, query, filter.Name, filter.OrganizationID, filter.Active, limit, offset)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *vehicle)
	}
	return vehicles, classify(rows.Err())
}

func (r *vehicleRepository) Count(ctx context.Context, filter repository.VehicleFilter) (int, error) {
	const query = `
	SELECT COUNT(*)
	FROM vehicles
	WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
	  AND ($2 = '' OR organization_id = $2)
	  AND ($3::boolean IS NULL OR active = $3)
	`
	var total int
	if err := r.pool.QueryRow(ctx, query, filter.Name, filter.OrganizationID, filter.Active).Scan(&total); err != nil {
		return 0, classify(err)
	}
	return total, nil
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	if vehicle == nil || vehicle.ID == "" {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO vehicles (id, organization_id, name, description, active, created_by, created_at, updated_by, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	meta := vehicle.Metadata
	if meta == nil {
		meta = &domain.VehicleMetadata{}
	}
	if _, err := r.pool.Exec(ctx, query,
		vehicle.ID,
		vehicle.OrganizationID,
		vehicle.Name,
		vehicle.Description,
		vehicle.Active,
		meta.CreatedBy,
		nullTime(meta.CreatedAt),
		meta.UpdatedBy,
		nullTime(meta.UpdatedAt),
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrVehicleExists
		}
		return nil, classify(err)
	}

	return vehicle, nil
}

func (r *vehicleRepository) Merge(ctx context.Context, id string, update repository.VehicleUpdate, actor string) (*domain.Vehicle, error) {
	const query = `
	UPDATE vehicles
	SET name = COALESCE($2, name),
		description = COALESCE($3, description),
		active = COALESCE($4, active),
		updated_by = $5,
		updated_at = NOW()
	WHERE id = $1
	RETURNING ` + vehicleColumns + `
	`
	row := r.pool.QueryRow(ctx, query, id, update.Name, update.Description, update.Active, actor)
	return scanVehicle(row)
}

func (r *vehicleRepository) Replace(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	if vehicle == nil || vehicle.ID == "" {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	UPDATE vehicles
	SET organization_id = $2,
		name = $3,
		description = $4,
		active = $5,
		updated_by = $6,
		updated_at = NOW()
	WHERE id = $1
	RETURNING ` + vehicleColumns + `
	`
	meta := vehicle.Metadata
	if meta == nil {
		meta = &domain.VehicleMetadata{}
	}
	row := r.pool.QueryRow(ctx, query,
		vehicle.ID,
		vehicle.OrganizationID,
		vehicle.Name,
		vehicle.Description,
		vehicle.Active,
		meta.UpdatedBy,
	)
	return scanVehicle(row)
}

func (r *vehicleRepository) Upsert(ctx context.Context, vehicle *domain.Vehicle) error {
	if vehicle == nil || vehicle.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO vehicles (id, organization_id, name, description, active, created_by, created_at, updated_by, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()), $8, COALESCE($9, NOW()))
	ON CONFLICT (id) DO UPDATE
	SET organization_id = EXCLUDED.organization_id,
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		active = EXCLUDED.active,
		updated_by = EXCLUDED.updated_by,
		updated_at = EXCLUDED.updated_at
	`
	meta := vehicle.Metadata
	if meta == nil {
		meta = &domain.VehicleMetadata{}
	}
	_, err := r.pool.Exec(ctx, query,
		vehicle.ID,
		vehicle.OrganizationID,
		vehicle.Name,
		vehicle.Description,
		vehicle.Active,
		meta.CreatedBy,
		nullTime(meta.CreatedAt),
		meta.UpdatedBy,
		nullTime(meta.UpdatedAt),
	)
	return classify(err)
}

func (r *vehicleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM vehicles WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return classify(err)
}

func (r *vehicleRepository) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `DELETE FROM vehicles WHERE id = ANY($1)`
	tag, err := r.pool.Exec(ctx, query, ids)
	if err != nil {
		return 0, classify(err)
	}
	return int(tag.RowsAffected()), nil
}

func scanVehicle(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	var meta domain.VehicleMetadata
	var createdAt, updatedAt *time.Time

	if err := row.Scan(
		&vehicle.ID,
		&vehicle.OrganizationID,
		&vehicle.Name,
		&vehicle.Description,
		&vehicle.Active,
		&meta.CreatedBy,
		&createdAt,
		&meta.UpdatedBy,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVehicleNotFound
		}
		return nil, classify(err)
	}

	if createdAt != nil {
		meta.CreatedAt = *createdAt
	}
	if updatedAt != nil {
		meta.UpdatedAt = *updatedAt
	}
	vehicle.Metadata = &meta

	return &vehicle, nil
}

func sortClause(sort repository.VehicleSort) string {
	column := "updated_at"
	switch sort.Field {
	case "name":
		column = "name"
	case "active":
		column = "active"
	case "creationTimestamp":
		column = "created_at"
	}
	direction := "DESC"
	if sort.Asc {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
