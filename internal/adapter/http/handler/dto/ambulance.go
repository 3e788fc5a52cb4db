package dto

import (
	"time"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/internal/service/fleet"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
	"github.com/cliniktrak/ambulance-dispatch/pkg/validator"
)

type RegisterAmbulanceReq struct {
	RegistrationNumber string  `json:"registration_number"`
	VehicleModel       *string `json:"vehicle_model"`
	VehicleType        string  `json:"vehicle_type"`
	DriverID           *string `json:"driver_id"`
	DriverName         *string `json:"driver_name"`
}

func (r *RegisterAmbulanceReq) Validate(v *validator.Validator) {
	v.Check(r.RegistrationNumber != "", "registration_number", "must be provided")
	v.Check(len(r.RegistrationNumber) <= 20, "registration_number", "must not be more than 20 characters long")

	v.Check(r.VehicleType != "", "vehicle_type", "must be provided")
	if r.VehicleType != "" {
		v.Check(validator.PermittedValue(r.VehicleType, "basic", "advanced", "air"), "vehicle_type", "must be one of basic, advanced, or air")
	}

	if r.VehicleModel != nil {
		v.Check(len(*r.VehicleModel) <= 100, "vehicle_model", "must not be more than 100 characters long")
	}
	if r.DriverID != nil {
		_, err := uuid.Parse(*r.DriverID)
		v.Check(err == nil, "driver_id", "must be a valid UUID")
	}
	if r.DriverName != nil {
		v.Check(len(*r.DriverName) <= 100, "driver_name", "must not be more than 100 characters long")
	}
}

func (r *RegisterAmbulanceReq) ToParams() fleet.RegisterParams {
	p := fleet.RegisterParams{
		RegistrationNumber: r.RegistrationNumber,
		VehicleModel:       r.VehicleModel,
		VehicleType:        types.VehicleType(r.VehicleType),
		DriverName:         r.DriverName,
	}
	if r.DriverID != nil {
		if id, err := uuid.Parse(*r.DriverID); err == nil {
			p.DriverID = &id
		}
	}
	return p
}

type UpdateAmbulanceReq struct {
	RegistrationNumber *string `json:"registration_number"`
	VehicleModel       *string `json:"vehicle_model"`
	VehicleType        *string `json:"vehicle_type"`
	DriverID           *string `json:"driver_id"`
	DriverName         *string `json:"driver_name"`
}

func (r *UpdateAmbulanceReq) Validate(v *validator.Validator) {
	if r.RegistrationNumber != nil {
		v.Check(*r.RegistrationNumber != "", "registration_number", "must not be empty")
		v.Check(len(*r.RegistrationNumber) <= 20, "registration_number", "must not be more than 20 characters long")
	}
	if r.VehicleModel != nil {
		v.Check(len(*r.VehicleModel) <= 100, "vehicle_model", "must not be more than 100 characters long")
	}
	if r.VehicleType != nil {
		v.Check(validator.PermittedValue(*r.VehicleType, "basic", "advanced", "air"), "vehicle_type", "must be one of basic, advanced, or air")
	}
	if r.DriverID != nil {
		_, err := uuid.Parse(*r.DriverID)
		v.Check(err == nil, "driver_id", "must be a valid UUID")
	}
	if r.DriverName != nil {
		v.Check(len(*r.DriverName) <= 100, "driver_name", "must not be more than 100 characters long")
	}
}

func (r *UpdateAmbulanceReq) ToParams() fleet.UpdateParams {
	p := fleet.UpdateParams{
		RegistrationNumber: r.RegistrationNumber,
		VehicleModel:       r.VehicleModel,
		DriverName:         r.DriverName,
	}
	if r.VehicleType != nil {
		vt := types.VehicleType(*r.VehicleType)
		p.VehicleType = &vt
	}
	if r.DriverID != nil {
		if id, err := uuid.Parse(*r.DriverID); err == nil {
			p.DriverID = &id
		}
	}
	return p
}

type LocationUpdateReq struct {
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	Timestamp *time.Time `json:"timestamp"`
}

func (r *LocationUpdateReq) Validate(v *validator.Validator) {
	if r.Latitude != nil && r.Longitude != nil {
		v.Check(*r.Latitude >= -90 && *r.Latitude <= 90, "latitude", "must be between -90 and 90")
		v.Check(*r.Longitude >= -180 && *r.Longitude <= 180, "longitude", "must be between -180 and 180")
	} else {
		v.Check(r.Latitude != nil, "latitude", "must be provided")
		v.Check(r.Longitude != nil, "longitude", "must be provided")
	}
}

type AmbulanceResponse struct {
	ID                 uuid.UUID  `json:"id"`
	RegistrationNumber string     `json:"registration_number"`
	VehicleModel       *string    `json:"vehicle_model,omitempty"`
	VehicleType        string     `json:"vehicle_type"`
	DriverID           *uuid.UUID `json:"driver_id,omitempty"`
	DriverName         *string    `json:"driver_name,omitempty"`
	Latitude           *float64   `json:"latitude,omitempty"`
	Longitude          *float64   `json:"longitude,omitempty"`
	LocationUpdatedAt  *time.Time `json:"location_updated_at,omitempty"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
}

func FromAmbulanceModel(m *models.Ambulance) AmbulanceResponse {
	resp := AmbulanceResponse{
		ID:                 m.ID,
		RegistrationNumber: m.RegistrationNumber,
		VehicleModel:       m.VehicleModel,
		VehicleType:        string(m.VehicleType),
		DriverID:           m.DriverID,
		DriverName:         m.DriverName,
		Status:             string(m.Status),
		CreatedAt:          m.CreatedAt,
	}
	if m.Position != nil {
		resp.Latitude = &m.Position.Latitude
		resp.Longitude = &m.Position.Longitude
		resp.LocationUpdatedAt = &m.Position.UpdatedAt
	}
	return resp
}

func FromAmbulanceModels(ms []models.Ambulance) []AmbulanceResponse {
	out := make([]AmbulanceResponse, 0, len(ms))
	for i := range ms {
		out = append(out, FromAmbulanceModel(&ms[i]))
	}
	return out
}
