package models

import (
	"time"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

// Position is an ambulance's last known location. The three fields are
// all-or-nothing: a coordinate is never stored without its timestamp.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Location is a point a request refers to. Address is optional free text.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// InRange reports whether the coordinate is a valid lat/lon pair.
func (l Location) InRange() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

type Ambulance struct {
	ID                 uuid.UUID
	RegistrationNumber string
	VehicleModel       *string
	VehicleType        types.VehicleType
	DriverID           *uuid.UUID
	DriverName         *string
	Position           *Position
	Status             types.AmbulanceStatus
	CreatedAt          time.Time
}
