package models

import (
	"time"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

// AmbulanceRequest is a single ride request. It is created in pending and
// only ever terminated (completed, rejected), never deleted. Distance and
// ETA are frozen at assignment time and never recomputed.
type AmbulanceRequest struct {
	ID          uuid.UUID
	PatientID   uuid.UUID
	AmbulanceID *uuid.UUID
	DriverID    *uuid.UUID

	Pickup      Location
	Destination *Location

	Priority types.Priority
	Reason   *string
	Notes    *string

	Status types.RequestStatus

	// Frozen at approval
	DistanceKm *float64
	ETAMinutes *int

	RejectionReason *string

	// One timestamp per entered state
	CreatedAt      time.Time
	AssignedAt     *time.Time
	EnrouteAt      *time.Time
	ArrivedAt      *time.Time
	TransportingAt *time.Time
	DeliveredAt    *time.Time
	CompletedAt    *time.Time
	RejectedAt     *time.Time
}

// StampStatus records entry into status at time now on the matching
// timestamp field.
func (r *AmbulanceRequest) StampStatus(status types.RequestStatus, now time.Time) {
	switch status {
	case types.StatusAssigned:
		r.AssignedAt = &now
	case types.StatusEnroute:
		r.EnrouteAt = &now
	case types.StatusArrived:
		r.ArrivedAt = &now
	case types.StatusTransporting:
		r.TransportingAt = &now
	case types.StatusDelivered:
		r.DeliveredAt = &now
	case types.StatusCompleted:
		r.CompletedAt = &now
	case types.StatusRejected:
		r.RejectedAt = &now
	}
}
