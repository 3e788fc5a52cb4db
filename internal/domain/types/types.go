package types

// VehicleType is the capability class of an ambulance.
type VehicleType string

const (
	VehicleBasic    VehicleType = "basic"
	VehicleAdvanced VehicleType = "advanced"
	VehicleAir      VehicleType = "air"
)

// AmbulanceStatus is the operational status of an ambulance.
// Maintenance exists in the schema but no operation sets it yet.
type AmbulanceStatus string

const (
	AmbulanceAvailable   AmbulanceStatus = "available"
	AmbulanceOnDuty      AmbulanceStatus = "on_duty"
	AmbulanceMaintenance AmbulanceStatus = "maintenance"
	AmbulanceOffline     AmbulanceStatus = "offline"
)

// Priority is the caller-declared urgency of an ambulance request. It
// drives the assumed travel speed and ETA buffer.
type Priority string

const (
	PriorityEmergency    Priority = "emergency"
	PriorityNonEmergency Priority = "non_emergency"
)

func (p Priority) Valid() bool {
	return p == PriorityEmergency || p == PriorityNonEmergency
}

// UserRole is the caller's role as established by the identity provider.
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RolePatient UserRole = "patient"
	RoleDriver  UserRole = "driver"
	RoleStaff   UserRole = "staff"
	RoleAdmin   UserRole = "admin"
)
