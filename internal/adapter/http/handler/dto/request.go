package dto

import (
	"time"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
	"github.com/cliniktrak/ambulance-dispatch/pkg/validator"
)

type CreateRequestReq struct {
	PickupLatitude       float64  `json:"pickup_latitude"`
	PickupLongitude      float64  `json:"pickup_longitude"`
	PickupAddress        string   `json:"pickup_address"`
	DestinationLatitude  *float64 `json:"destination_latitude"`
	DestinationLongitude *float64 `json:"destination_longitude"`
	DestinationAddress   string   `json:"destination_address"`
	Priority             string   `json:"priority"`
	Reason               *string  `json:"reason"`
	Notes                *string  `json:"notes"`
}

func (r *CreateRequestReq) Validate(v *validator.Validator) {
	// Pickup
	v.Check(r.PickupLatitude >= -90 && r.PickupLatitude <= 90, "pickup_latitude", "must be between -90 and 90")
	v.Check(r.PickupLongitude >= -180 && r.PickupLongitude <= 180, "pickup_longitude", "must be between -180 and 180")
	v.Check(len(r.PickupAddress) <= 255, "pickup_address", "must not be more than 255 characters long")

	// Destination is optional but must be a complete pair
	if r.DestinationLatitude != nil || r.DestinationLongitude != nil {
		v.Check(r.DestinationLatitude != nil, "destination_latitude", "must be provided with destination_longitude")
		v.Check(r.DestinationLongitude != nil, "destination_longitude", "must be provided with destination_latitude")
		if r.DestinationLatitude != nil && r.DestinationLongitude != nil {
			v.Check(*r.DestinationLatitude >= -90 && *r.DestinationLatitude <= 90, "destination_latitude", "must be between -90 and 90")
			v.Check(*r.DestinationLongitude >= -180 && *r.DestinationLongitude <= 180, "destination_longitude", "must be between -180 and 180")
		}
	}
	v.Check(len(r.DestinationAddress) <= 255, "destination_address", "must not be more than 255 characters long")

	// Priority
	v.Check(r.Priority != "", "priority", "must be provided")
	if r.Priority != "" {
		v.Check(validator.PermittedValue(r.Priority, "emergency", "non_emergency"), "priority", "must be one of emergency or non_emergency")
	}

	if r.Reason != nil {
		v.Check(len(*r.Reason) <= 500, "reason", "must not be more than 500 characters long")
	}
	if r.Notes != nil {
		v.Check(len(*r.Notes) <= 1000, "notes", "must not be more than 1000 characters long")
	}
}

func (r *CreateRequestReq) ToModel(patientID uuid.UUID) *models.AmbulanceRequest {
	req := &models.AmbulanceRequest{
		PatientID: patientID,
		Pickup: models.Location{
			Latitude:  r.PickupLatitude,
			Longitude: r.PickupLongitude,
			Address:   r.PickupAddress,
		},
		Priority: types.Priority(r.Priority),
		Reason:   r.Reason,
		Notes:    r.Notes,
	}
	if r.DestinationLatitude != nil && r.DestinationLongitude != nil {
		req.Destination = &models.Location{
			Latitude:  *r.DestinationLatitude,
			Longitude: *r.DestinationLongitude,
			Address:   r.DestinationAddress,
		}
	}
	return req
}

type ApproveRequestReq struct {
	AmbulanceID      string   `json:"ambulance_id"`
	CurrentLatitude  *float64 `json:"current_latitude"`
	CurrentLongitude *float64 `json:"current_longitude"`
}

func (r *ApproveRequestReq) Validate(v *validator.Validator) {
	v.Check(r.AmbulanceID != "", "ambulance_id", "must be provided")
	if r.AmbulanceID != "" {
		_, err := uuid.Parse(r.AmbulanceID)
		v.Check(err == nil, "ambulance_id", "must be a valid UUID")
	}

	// The driver's position seeds the frozen distance/ETA estimate.
	v.Check(r.CurrentLatitude != nil, "current_latitude", "must be provided")
	v.Check(r.CurrentLongitude != nil, "current_longitude", "must be provided")
	if r.CurrentLatitude != nil {
		v.Check(*r.CurrentLatitude >= -90 && *r.CurrentLatitude <= 90, "current_latitude", "must be between -90 and 90")
	}
	if r.CurrentLongitude != nil {
		v.Check(*r.CurrentLongitude >= -180 && *r.CurrentLongitude <= 180, "current_longitude", "must be between -180 and 180")
	}
}

// Position returns the driver's reported location. Only valid after a
// successful Validate.
func (r *ApproveRequestReq) Position() models.Location {
	var pos models.Location
	if r.CurrentLatitude != nil {
		pos.Latitude = *r.CurrentLatitude
	}
	if r.CurrentLongitude != nil {
		pos.Longitude = *r.CurrentLongitude
	}
	return pos
}

type RejectRequestReq struct {
	Reason string `json:"reason"`
}

func (r *RejectRequestReq) Validate(v *validator.Validator) {
	v.Check(r.Reason != "", "reason", "must be provided")
	v.Check(len(r.Reason) <= 500, "reason", "must not be more than 500 characters long")
}

type StatusUpdateReq struct {
	Status    string   `json:"status"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r *StatusUpdateReq) Validate(v *validator.Validator) {
	v.Check(r.Status != "", "status", "must be provided")
	if r.Status != "" {
		v.Check(
			validator.PermittedValue(r.Status, "enroute", "arrived", "transporting", "delivered", "completed"),
			"status",
			"must be one of enroute, arrived, transporting, delivered, completed",
		)
	}

	// Position is optional but must be a complete pair
	if r.Latitude != nil || r.Longitude != nil {
		v.Check(r.Latitude != nil, "latitude", "must be provided with longitude")
		v.Check(r.Longitude != nil, "longitude", "must be provided with latitude")
		if r.Latitude != nil && r.Longitude != nil {
			v.Check(*r.Latitude >= -90 && *r.Latitude <= 90, "latitude", "must be between -90 and 90")
			v.Check(*r.Longitude >= -180 && *r.Longitude <= 180, "longitude", "must be between -180 and 180")
		}
	}
}

func (r *StatusUpdateReq) Position() *models.Location {
	if r.Latitude == nil || r.Longitude == nil {
		return nil
	}
	return &models.Location{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

type RequestResponse struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	AmbulanceID     *uuid.UUID `json:"ambulance_id,omitempty"`
	DriverID        *uuid.UUID `json:"driver_id,omitempty"`
	Pickup          Point      `json:"pickup"`
	Destination     *Point     `json:"destination,omitempty"`
	Priority        string     `json:"priority"`
	Reason          *string    `json:"reason,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	Status          string     `json:"status"`
	DistanceKm      *float64   `json:"distance_km,omitempty"`
	ETAMinutes      *int       `json:"eta_minutes,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	AssignedAt      *time.Time `json:"assigned_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

func FromRequestModel(m *models.AmbulanceRequest) RequestResponse {
	resp := RequestResponse{
		ID:          m.ID,
		PatientID:   m.PatientID,
		AmbulanceID: m.AmbulanceID,
		DriverID:    m.DriverID,
		Pickup: Point{
			Latitude:  m.Pickup.Latitude,
			Longitude: m.Pickup.Longitude,
			Address:   m.Pickup.Address,
		},
		Priority:        string(m.Priority),
		Reason:          m.Reason,
		Notes:           m.Notes,
		Status:          string(m.Status),
		DistanceKm:      m.DistanceKm,
		ETAMinutes:      m.ETAMinutes,
		RejectionReason: m.RejectionReason,
		CreatedAt:       m.CreatedAt,
		AssignedAt:      m.AssignedAt,
		CompletedAt:     m.CompletedAt,
	}
	if m.Destination != nil {
		resp.Destination = &Point{
			Latitude:  m.Destination.Latitude,
			Longitude: m.Destination.Longitude,
			Address:   m.Destination.Address,
		}
	}
	return resp
}

func FromRequestModels(ms []models.AmbulanceRequest) []RequestResponse {
	out := make([]RequestResponse, 0, len(ms))
	for i := range ms {
		out = append(out, FromRequestModel(&ms[i]))
	}
	return out
}
