package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

type RequestRepo struct {
	db *pgxpool.Pool
}

func NewRequestRepo(db *pgxpool.Pool) *RequestRepo {
	return &RequestRepo{db: db}
}

const requestColumns = `
	id, patient_id, ambulance_id, driver_id,
	pickup_latitude, pickup_longitude, pickup_address,
	destination_latitude, destination_longitude, destination_address,
	priority, reason, notes, status,
	distance_km, eta_minutes, rejection_reason,
	created_at, assigned_at, enroute_at, arrived_at,
	transporting_at, delivered_at, completed_at, rejected_at`

func scanRequest(row pgx.Row) (*models.AmbulanceRequest, error) {
	var (
		req                models.AmbulanceRequest
		destLat, destLon   *float64
		destAddr, pickAddr *string
	)

	err := row.Scan(
		&req.ID, &req.PatientID, &req.AmbulanceID, &req.DriverID,
		&req.Pickup.Latitude, &req.Pickup.Longitude, &pickAddr,
		&destLat, &destLon, &destAddr,
		&req.Priority, &req.Reason, &req.Notes, &req.Status,
		&req.DistanceKm, &req.ETAMinutes, &req.RejectionReason,
		&req.CreatedAt, &req.AssignedAt, &req.EnrouteAt, &req.ArrivedAt,
		&req.TransportingAt, &req.DeliveredAt, &req.CompletedAt, &req.RejectedAt,
	)
	if err != nil {
		return nil, err
	}

	if pickAddr != nil {
		req.Pickup.Address = *pickAddr
	}
	if destLat != nil && destLon != nil {
		dest := models.Location{Latitude: *destLat, Longitude: *destLon}
		if destAddr != nil {
			dest.Address = *destAddr
		}
		req.Destination = &dest
	}
	return &req, nil
}

func (r *RequestRepo) Create(ctx context.Context, req *models.AmbulanceRequest) (*models.AmbulanceRequest, error) {
	const op = "RequestRepo.Create"
	q := TxorDB(ctx, r.db)

	var destLat, destLon *float64
	var destAddr *string
	if req.Destination != nil {
		destLat = &req.Destination.Latitude
		destLon = &req.Destination.Longitude
		if req.Destination.Address != "" {
			destAddr = &req.Destination.Address
		}
	}
	var pickAddr *string
	if req.Pickup.Address != "" {
		pickAddr = &req.Pickup.Address
	}

	query := `
		INSERT INTO ambulance_requests (
			id, patient_id,
			pickup_latitude, pickup_longitude, pickup_address,
			destination_latitude, destination_longitude, destination_address,
			priority, reason, notes, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at;`

	err := q.QueryRow(ctx, query,
		req.ID, req.PatientID,
		req.Pickup.Latitude, req.Pickup.Longitude, pickAddr,
		destLat, destLon, destAddr,
		req.Priority, req.Reason, req.Notes, req.Status, req.CreatedAt,
	).Scan(&req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return req, nil
}

func (r *RequestRepo) Get(ctx context.Context, id uuid.UUID) (*models.AmbulanceRequest, error) {
	const op = "RequestRepo.Get"
	q := TxorDB(ctx, r.db)

	query := `SELECT ` + requestColumns + ` FROM ambulance_requests WHERE id = $1;`

	req, err := scanRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrRequestNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}

// GetForUpdate locks the request row until the surrounding transaction
// ends. This is the first lock taken in every approve/reject/advance
// transaction; the ambulance lock always comes second.
func (r *RequestRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.AmbulanceRequest, error) {
	const op = "RequestRepo.GetForUpdate"
	q := TxorDB(ctx, r.db)

	query := `SELECT ` + requestColumns + ` FROM ambulance_requests WHERE id = $1 FOR UPDATE;`

	req, err := scanRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrRequestNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}

func (r *RequestRepo) Update(ctx context.Context, req *models.AmbulanceRequest) error {
	const op = "RequestRepo.Update"
	q := TxorDB(ctx, r.db)

	query := `
		UPDATE ambulance_requests
		SET ambulance_id = $2,
		    driver_id = $3,
		    status = $4,
		    distance_km = $5,
		    eta_minutes = $6,
		    rejection_reason = $7,
		    assigned_at = $8,
		    enroute_at = $9,
		    arrived_at = $10,
		    transporting_at = $11,
		    delivered_at = $12,
		    completed_at = $13,
		    rejected_at = $14
		WHERE id = $1;`

	tag, err := q.Exec(ctx, query,
		req.ID, req.AmbulanceID, req.DriverID, req.Status,
		req.DistanceKm, req.ETAMinutes, req.RejectionReason,
		req.AssignedAt, req.EnrouteAt, req.ArrivedAt,
		req.TransportingAt, req.DeliveredAt, req.CompletedAt, req.RejectedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrRequestNotFound
	}
	return nil
}

// ListPending returns waiting requests for the staff queue, emergencies
// first, oldest first within a priority.
func (r *RequestRepo) ListPending(ctx context.Context) ([]models.AmbulanceRequest, error) {
	const op = "RequestRepo.ListPending"
	q := TxorDB(ctx, r.db)

	query := `
		SELECT ` + requestColumns + `
		FROM ambulance_requests
		WHERE status = $1
		ORDER BY CASE priority WHEN 'emergency' THEN 0 ELSE 1 END, created_at;`

	return r.list(ctx, op, q, query, types.StatusPending)
}

func (r *RequestRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]models.AmbulanceRequest, error) {
	const op = "RequestRepo.ListByPatient"
	q := TxorDB(ctx, r.db)

	query := `
		SELECT ` + requestColumns + `
		FROM ambulance_requests
		WHERE patient_id = $1
		ORDER BY created_at DESC;`

	return r.list(ctx, op, q, query, patientID)
}

func (r *RequestRepo) list(ctx context.Context, op string, q Querier, query string, args ...any) ([]models.AmbulanceRequest, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.AmbulanceRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// ActiveByDriver returns the driver's request in a post-assignment,
// non-terminal status. At most one such row exists per driver.
func (r *RequestRepo) ActiveByDriver(ctx context.Context, driverID uuid.UUID) (*models.AmbulanceRequest, error) {
	const op = "RequestRepo.ActiveByDriver"
	q := TxorDB(ctx, r.db)

	query := `
		SELECT ` + requestColumns + `
		FROM ambulance_requests
		WHERE driver_id = $1 AND status = ANY($2)
		ORDER BY assigned_at DESC
		LIMIT 1;`

	active := make([]string, 0, len(types.ActiveStatuses))
	for _, s := range types.ActiveStatuses {
		active = append(active, string(s))
	}

	req, err := scanRequest(q.QueryRow(ctx, query, driverID, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrRequestNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}

// HasActiveRequest reports whether the patient has an active request on
// the ambulance. Used by channel authorization.
func (r *RequestRepo) HasActiveRequest(ctx context.Context, patientID, ambulanceID uuid.UUID) (bool, error) {
	const op = "RequestRepo.HasActiveRequest"
	q := TxorDB(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM ambulance_requests
			WHERE patient_id = $1 AND ambulance_id = $2 AND status = ANY($3)
		);`

	active := make([]string, 0, len(types.ActiveStatuses))
	for _, s := range types.ActiveStatuses {
		active = append(active, string(s))
	}

	var exists bool
	if err := q.QueryRow(ctx, query, patientID, ambulanceID, active).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
