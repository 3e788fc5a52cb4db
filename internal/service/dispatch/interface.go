package dispatch

import (
	"context"
	"time"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

type RequestRepo interface {
	Create(ctx context.Context, req *models.AmbulanceRequest) (*models.AmbulanceRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AmbulanceRequest, error)
	// GetForUpdate locks the request row for the duration of the
	// surrounding transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.AmbulanceRequest, error)
	Update(ctx context.Context, req *models.AmbulanceRequest) error
	// ListPending returns pending requests, emergencies first, then by
	// creation time ascending.
	ListPending(ctx context.Context) ([]models.AmbulanceRequest, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]models.AmbulanceRequest, error)
	// ActiveByDriver returns the driver's unique request in a
	// post-assignment, non-terminal status, or nil.
	ActiveByDriver(ctx context.Context, driverID uuid.UUID) (*models.AmbulanceRequest, error)
}

type AmbulanceRepo interface {
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Ambulance, error)
	Update(ctx context.Context, a *models.Ambulance) error
	// UpdatePosition overwrites the ambulance's last known position and
	// returns the fresh snapshot. No history is retained.
	UpdatePosition(ctx context.Context, id uuid.UUID, lat, lon float64, at time.Time) (*models.Ambulance, error)
}

// LocationPublisher fans an ambulance snapshot out to live subscribers.
// Implementations must be safe to call after the transaction committed;
// the coordinator never publishes while holding entity locks.
type LocationPublisher interface {
	PublishSnapshot(ctx context.Context, a *models.Ambulance)
}
