package types

// RequestStatus is the state of an ambulance request. The lifecycle is
// strictly forward:
//
//	pending -> assigned -> enroute -> arrived -> transporting -> delivered -> completed
//	pending -> rejected
//
// Cancelled exists in the schema but no operation currently reaches it.
type RequestStatus string

const (
	StatusPending      RequestStatus = "pending"
	StatusAssigned     RequestStatus = "assigned"
	StatusEnroute      RequestStatus = "enroute"
	StatusArrived      RequestStatus = "arrived"
	StatusTransporting RequestStatus = "transporting"
	StatusDelivered    RequestStatus = "delivered"
	StatusCompleted    RequestStatus = "completed"
	StatusRejected     RequestStatus = "rejected"
	StatusCancelled    RequestStatus = "cancelled"
)

// next maps each status to its sole forward successor. Assignment
// (pending -> assigned) and rejection go through dedicated operations, so
// pending has no successor here.
var next = map[RequestStatus]RequestStatus{
	StatusAssigned:     StatusEnroute,
	StatusEnroute:      StatusArrived,
	StatusArrived:      StatusTransporting,
	StatusTransporting: StatusDelivered,
	StatusDelivered:    StatusCompleted,
}

// ActiveStatuses are the post-assignment, non-terminal statuses. An
// ambulance has at most one request in any of these at a time.
var ActiveStatuses = []RequestStatus{
	StatusAssigned,
	StatusEnroute,
	StatusArrived,
	StatusTransporting,
}

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusEnroute, StatusArrived,
		StatusTransporting, StatusDelivered, StatusCompleted,
		StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

// Active reports whether s is a post-assignment, non-terminal status.
func (s RequestStatus) Active() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// CanAdvanceTo reports whether target is the immediate successor of s.
func (s RequestStatus) CanAdvanceTo(target RequestStatus) bool {
	return next[s] == target && target != ""
}

// Next returns the immediate successor of s, or "" if s has none.
func (s RequestStatus) Next() RequestStatus {
	return next[s]
}
