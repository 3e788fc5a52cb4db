package models

import (
	"time"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

// LocationEvent is a full-state position snapshot for one ambulance.
// Events carry no diff and no sequence number; subscribers overwrite their
// local view keyed by ambulance id and compare UpdatedAt to discard stale
// deliveries.
type LocationEvent struct {
	AmbulanceID        uuid.UUID             `json:"ambulance_id"`
	RegistrationNumber string                `json:"registration_number"`
	Latitude           float64               `json:"latitude"`
	Longitude          float64               `json:"longitude"`
	Status             types.AmbulanceStatus `json:"status"`
	UpdatedAt          time.Time             `json:"location_updated_at"`
	DriverName         *string               `json:"driver_name"`
}

// NewLocationEvent builds the snapshot for an ambulance with a known position.
func NewLocationEvent(a *Ambulance) LocationEvent {
	e := LocationEvent{
		AmbulanceID:        a.ID,
		RegistrationNumber: a.RegistrationNumber,
		Status:             a.Status,
		DriverName:         a.DriverName,
	}
	if a.Position != nil {
		e.Latitude = a.Position.Latitude
		e.Longitude = a.Position.Longitude
		e.UpdatedAt = a.Position.UpdatedAt
	}
	return e
}

/* ======================= rabbitmq ======================= */

// LocationUpdateMessage is the inbound payload on the high-frequency
// location queue. Timestamp is optional; the store sets its own clock when
// it is absent.
type LocationUpdateMessage struct {
	AmbulanceID uuid.UUID  `json:"ambulance_id"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}
