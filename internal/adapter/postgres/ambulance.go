package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

type AmbulanceRepo struct {
	db *pgxpool.Pool
}

func NewAmbulanceRepo(db *pgxpool.Pool) *AmbulanceRepo {
	return &AmbulanceRepo{db: db}
}

const ambulanceColumns = `
	id, registration_number, vehicle_model, vehicle_type,
	driver_id, driver_name,
	latitude, longitude, location_updated_at,
	status, created_at`

func scanAmbulance(row pgx.Row) (*models.Ambulance, error) {
	var (
		a         models.Ambulance
		lat, lon  *float64
		updatedAt *time.Time
	)

	err := row.Scan(
		&a.ID, &a.RegistrationNumber, &a.VehicleModel, &a.VehicleType,
		&a.DriverID, &a.DriverName,
		&lat, &lon, &updatedAt,
		&a.Status, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	// The three position columns are written together, so either all are
	// set or none is.
	if lat != nil && lon != nil && updatedAt != nil {
		a.Position = &models.Position{Latitude: *lat, Longitude: *lon, UpdatedAt: *updatedAt}
	}
	return &a, nil
}

func (r *AmbulanceRepo) Create(ctx context.Context, a *models.Ambulance) (*models.Ambulance, error) {
	const op = "AmbulanceRepo.Create"
	q := TxorDB(ctx, r.db)

	query := `
		INSERT INTO ambulances (id, registration_number, vehicle_model, vehicle_type, driver_id, driver_name, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at;`

	err := q.QueryRow(ctx, query,
		a.ID, a.RegistrationNumber, a.VehicleModel, a.VehicleType,
		a.DriverID, a.DriverName, a.Status, a.CreatedAt,
	).Scan(&a.CreatedAt)
	if err != nil {
		// Unique violations on driver_id or registration_number mean the
		// vehicle or driver binding already exists.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, types.ErrAmbulanceRegistered
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

func (r *AmbulanceRepo) Get(ctx context.Context, id uuid.UUID) (*models.Ambulance, error) {
	const op = "AmbulanceRepo.Get"
	q := TxorDB(ctx, r.db)

	query := `SELECT ` + ambulanceColumns + ` FROM ambulances WHERE id = $1;`

	a, err := scanAmbulance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrAmbulanceNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// GetForUpdate locks the ambulance row until the surrounding transaction
// ends. Callers must already hold the request lock when both are needed.
func (r *AmbulanceRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Ambulance, error) {
	const op = "AmbulanceRepo.GetForUpdate"
	q := TxorDB(ctx, r.db)

	query := `SELECT ` + ambulanceColumns + ` FROM ambulances WHERE id = $1 FOR UPDATE;`

	a, err := scanAmbulance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrAmbulanceNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (r *AmbulanceRepo) Update(ctx context.Context, a *models.Ambulance) error {
	const op = "AmbulanceRepo.Update"
	q := TxorDB(ctx, r.db)

	var lat, lon *float64
	var updatedAt *time.Time
	if a.Position != nil {
		lat = &a.Position.Latitude
		lon = &a.Position.Longitude
		updatedAt = &a.Position.UpdatedAt
	}

	query := `
		UPDATE ambulances
		SET registration_number = $2,
		    vehicle_model = $3,
		    vehicle_type = $4,
		    driver_id = $5,
		    driver_name = $6,
		    latitude = $7,
		    longitude = $8,
		    location_updated_at = $9,
		    status = $10
		WHERE id = $1;`

	tag, err := q.Exec(ctx, query,
		a.ID, a.RegistrationNumber, a.VehicleModel, a.VehicleType,
		a.DriverID, a.DriverName,
		lat, lon, updatedAt,
		a.Status,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrAmbulanceNotFound
	}
	return nil
}

// UpdatePosition overwrites the last known position in place and returns
// the fresh row. No position history is kept.
func (r *AmbulanceRepo) UpdatePosition(ctx context.Context, id uuid.UUID, lat, lon float64, at time.Time) (*models.Ambulance, error) {
	const op = "AmbulanceRepo.UpdatePosition"
	q := TxorDB(ctx, r.db)

	query := `
		UPDATE ambulances
		SET latitude = $2, longitude = $3, location_updated_at = $4
		WHERE id = $1
		RETURNING ` + ambulanceColumns + `;`

	a, err := scanAmbulance(q.QueryRow(ctx, query, id, lat, lon, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrAmbulanceNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (r *AmbulanceRepo) ByDriver(ctx context.Context, driverID uuid.UUID) (*models.Ambulance, error) {
	const op = "AmbulanceRepo.ByDriver"
	q := TxorDB(ctx, r.db)

	query := `SELECT ` + ambulanceColumns + ` FROM ambulances WHERE driver_id = $1;`

	a, err := scanAmbulance(q.QueryRow(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrAmbulanceNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (r *AmbulanceRepo) List(ctx context.Context, onlyAvailable bool) ([]models.Ambulance, error) {
	const op = "AmbulanceRepo.List"
	q := TxorDB(ctx, r.db)

	query := `SELECT ` + ambulanceColumns + ` FROM ambulances`
	var args []any
	if onlyAvailable {
		query += ` WHERE status = $1`
		args = append(args, types.AmbulanceAvailable)
	}
	query += ` ORDER BY created_at;`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Ambulance
	for rows.Next() {
		a, err := scanAmbulance(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (r *AmbulanceRepo) CountAvailable(ctx context.Context) (int, error) {
	const op = "AmbulanceRepo.CountAvailable"
	q := TxorDB(ctx, r.db)

	var count int
	query := `SELECT COUNT(*) FROM ambulances WHERE status = $1;`

	if err := q.QueryRow(ctx, query, types.AmbulanceAvailable).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// AmbulanceDriver reports the driver bound to the ambulance, if any.
func (r *AmbulanceRepo) AmbulanceDriver(ctx context.Context, ambulanceID uuid.UUID) (*uuid.UUID, error) {
	const op = "AmbulanceRepo.AmbulanceDriver"
	q := TxorDB(ctx, r.db)

	var driverID *uuid.UUID
	query := `SELECT driver_id FROM ambulances WHERE id = $1;`

	if err := q.QueryRow(ctx, query, ambulanceID).Scan(&driverID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrAmbulanceNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return driverID, nil
}
