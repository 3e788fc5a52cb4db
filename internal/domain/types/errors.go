package types

import "errors"

var (
	ErrRequestNotFound   = errors.New("ambulance request not found")
	ErrAmbulanceNotFound = errors.New("ambulance not found")
	ErrNotFound          = errors.New("requested item not found")

	// Precondition failed under a race or with stale client state.
	// Retrying with fresh state may help.
	ErrAlreadyProcessed     = errors.New("request has already been processed")
	ErrAmbulanceUnavailable = errors.New("ambulance is not available")
	ErrAmbulanceOnDuty      = errors.New("cannot change status while on duty")
	ErrAmbulanceRegistered  = errors.New("driver already has a registered ambulance")

	ErrInvalidTransition = errors.New("invalid status transition")

	// Malformed input, rejected before any store access.
	ErrInvalidCoordinate = errors.New("coordinate out of range")
	ErrInvalidPriority   = errors.New("priority must be emergency or non_emergency")

	ErrNoAmbulance = errors.New("no ambulance registered for driver")

	ErrNotPermitted = errors.New("not permitted for this channel")
)
