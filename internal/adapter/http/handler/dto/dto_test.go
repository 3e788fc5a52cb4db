package dto

import (
	"testing"

	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
	"github.com/cliniktrak/ambulance-dispatch/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateRequestReq_Validate(t *testing.T) {
	valid := func() CreateRequestReq {
		return CreateRequestReq{
			PickupLatitude:  51.0911,
			PickupLongitude: 71.4164,
			PickupAddress:   "12 Turan Ave",
			Priority:        "emergency",
		}
	}

	tests := []struct {
		name     string
		mutate   func(*CreateRequestReq)
		badField string
	}{
		{"valid minimal", func(r *CreateRequestReq) {}, ""},
		{"valid with destination", func(r *CreateRequestReq) {
			r.DestinationLatitude = ptr(51.12)
			r.DestinationLongitude = ptr(71.43)
		}, ""},
		{"latitude out of range", func(r *CreateRequestReq) { r.PickupLatitude = 91 }, "pickup_latitude"},
		{"longitude out of range", func(r *CreateRequestReq) { r.PickupLongitude = -181 }, "pickup_longitude"},
		{"destination latitude alone", func(r *CreateRequestReq) { r.DestinationLatitude = ptr(51.12) }, "destination_longitude"},
		{"destination longitude alone", func(r *CreateRequestReq) { r.DestinationLongitude = ptr(71.43) }, "destination_latitude"},
		{"destination out of range", func(r *CreateRequestReq) {
			r.DestinationLatitude = ptr(95.0)
			r.DestinationLongitude = ptr(71.43)
		}, "destination_latitude"},
		{"missing priority", func(r *CreateRequestReq) { r.Priority = "" }, "priority"},
		{"unknown priority", func(r *CreateRequestReq) { r.Priority = "critical" }, "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)

			v := validator.New()
			req.Validate(v)

			if tt.badField == "" {
				assert.True(t, v.Valid(), "errors: %v", v.Errors)
				return
			}
			require.False(t, v.Valid())
			assert.Contains(t, v.Errors, tt.badField)
		})
	}
}

func TestCreateRequestReq_ToModel_OptionalDestination(t *testing.T) {
	req := CreateRequestReq{
		PickupLatitude:  10,
		PickupLongitude: 20,
		Priority:        "non_emergency",
	}

	m := req.ToModel(uuid.MustNew())
	assert.Nil(t, m.Destination)

	req.DestinationLatitude = ptr(11.0)
	req.DestinationLongitude = ptr(21.0)
	req.DestinationAddress = "City Hospital"

	m = req.ToModel(uuid.MustNew())
	require.NotNil(t, m.Destination)
	assert.Equal(t, 11.0, m.Destination.Latitude)
	assert.Equal(t, "City Hospital", m.Destination.Address)
}

func TestApproveRequestReq_Validate(t *testing.T) {
	ambulanceID := uuid.MustNew().String()

	tests := []struct {
		name     string
		req      ApproveRequestReq
		badField string
	}{
		{"valid", ApproveRequestReq{AmbulanceID: ambulanceID, CurrentLatitude: ptr(51.1), CurrentLongitude: ptr(71.4)}, ""},
		{"missing ambulance id", ApproveRequestReq{CurrentLatitude: ptr(51.1), CurrentLongitude: ptr(71.4)}, "ambulance_id"},
		{"malformed ambulance id", ApproveRequestReq{AmbulanceID: "nope", CurrentLatitude: ptr(51.1), CurrentLongitude: ptr(71.4)}, "ambulance_id"},
		{"missing latitude", ApproveRequestReq{AmbulanceID: ambulanceID, CurrentLongitude: ptr(71.4)}, "current_latitude"},
		{"missing longitude", ApproveRequestReq{AmbulanceID: ambulanceID, CurrentLatitude: ptr(51.1)}, "current_longitude"},
		{"latitude out of range", ApproveRequestReq{AmbulanceID: ambulanceID, CurrentLatitude: ptr(90.5), CurrentLongitude: ptr(71.4)}, "current_latitude"},
		{"longitude out of range", ApproveRequestReq{AmbulanceID: ambulanceID, CurrentLatitude: ptr(51.1), CurrentLongitude: ptr(-180.5)}, "current_longitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			tt.req.Validate(v)

			if tt.badField == "" {
				assert.True(t, v.Valid(), "errors: %v", v.Errors)
				return
			}
			require.False(t, v.Valid())
			assert.Contains(t, v.Errors, tt.badField)
		})
	}
}

func TestApproveRequestReq_Position(t *testing.T) {
	req := ApproveRequestReq{CurrentLatitude: ptr(51.1), CurrentLongitude: ptr(71.4)}
	pos := req.Position()
	assert.Equal(t, 51.1, pos.Latitude)
	assert.Equal(t, 71.4, pos.Longitude)
}

func TestStatusUpdateReq_Validate(t *testing.T) {
	tests := []struct {
		name     string
		req      StatusUpdateReq
		badField string
	}{
		{"valid without position", StatusUpdateReq{Status: "enroute"}, ""},
		{"valid with position", StatusUpdateReq{Status: "arrived", Latitude: ptr(51.1), Longitude: ptr(71.4)}, ""},
		{"missing status", StatusUpdateReq{}, "status"},
		{"pending not a target", StatusUpdateReq{Status: "pending"}, "status"},
		{"assigned not a target", StatusUpdateReq{Status: "assigned"}, "status"},
		{"latitude alone", StatusUpdateReq{Status: "enroute", Latitude: ptr(51.1)}, "longitude"},
		{"latitude out of range", StatusUpdateReq{Status: "enroute", Latitude: ptr(120.0), Longitude: ptr(71.4)}, "latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			tt.req.Validate(v)

			if tt.badField == "" {
				assert.True(t, v.Valid(), "errors: %v", v.Errors)
				return
			}
			require.False(t, v.Valid())
			assert.Contains(t, v.Errors, tt.badField)
		})
	}
}

func TestStatusUpdateReq_Position(t *testing.T) {
	req := StatusUpdateReq{Status: "enroute"}
	assert.Nil(t, req.Position())

	req.Latitude = ptr(51.1)
	assert.Nil(t, req.Position(), "half a pair is no position")

	req.Longitude = ptr(71.4)
	pos := req.Position()
	require.NotNil(t, pos)
	assert.Equal(t, 51.1, pos.Latitude)
	assert.Equal(t, 71.4, pos.Longitude)
}

func TestLocationUpdateReq_Validate(t *testing.T) {
	tests := []struct {
		name     string
		req      LocationUpdateReq
		badField string
	}{
		{"valid", LocationUpdateReq{Latitude: ptr(51.1), Longitude: ptr(71.4)}, ""},
		{"missing latitude", LocationUpdateReq{Longitude: ptr(71.4)}, "latitude"},
		{"missing longitude", LocationUpdateReq{Latitude: ptr(51.1)}, "longitude"},
		{"latitude out of range", LocationUpdateReq{Latitude: ptr(-91.0), Longitude: ptr(71.4)}, "latitude"},
		{"longitude out of range", LocationUpdateReq{Latitude: ptr(51.1), Longitude: ptr(181.0)}, "longitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			tt.req.Validate(v)

			if tt.badField == "" {
				assert.True(t, v.Valid(), "errors: %v", v.Errors)
				return
			}
			require.False(t, v.Valid())
			assert.Contains(t, v.Errors, tt.badField)
		})
	}
}

func TestRegisterAmbulanceReq_Validate(t *testing.T) {
	tests := []struct {
		name     string
		req      RegisterAmbulanceReq
		badField string
	}{
		{"valid", RegisterAmbulanceReq{RegistrationNumber: "KZ-101", VehicleType: "advanced"}, ""},
		{"missing registration", RegisterAmbulanceReq{VehicleType: "basic"}, "registration_number"},
		{"missing vehicle type", RegisterAmbulanceReq{RegistrationNumber: "KZ-101"}, "vehicle_type"},
		{"unknown vehicle type", RegisterAmbulanceReq{RegistrationNumber: "KZ-101", VehicleType: "boat"}, "vehicle_type"},
		{"malformed driver id", RegisterAmbulanceReq{RegistrationNumber: "KZ-101", VehicleType: "air", DriverID: ptr("not-a-uuid")}, "driver_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			tt.req.Validate(v)

			if tt.badField == "" {
				assert.True(t, v.Valid(), "errors: %v", v.Errors)
				return
			}
			require.False(t, v.Valid())
			assert.Contains(t, v.Errors, tt.badField)
		})
	}
}
