package app

import (
	"context"

	repo "github.com/cliniktrak/ambulance-dispatch/internal/adapter/postgres"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

// accessRepo joins the ambulance and request repositories into the single
// lookup surface the subscription gateway expects.
type accessRepo struct {
	ambulances *repo.AmbulanceRepo
	requests   *repo.RequestRepo
}

func (r *accessRepo) AmbulanceDriver(ctx context.Context, ambulanceID uuid.UUID) (*uuid.UUID, error) {
	return r.ambulances.AmbulanceDriver(ctx, ambulanceID)
}

func (r *accessRepo) HasActiveRequest(ctx context.Context, patientID, ambulanceID uuid.UUID) (bool, error) {
	return r.requests.HasActiveRequest(ctx, patientID, ambulanceID)
}
