package tracking

import (
	"context"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	wrap "github.com/cliniktrak/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

// AccessRepo answers the two questions channel authorization needs.
type AccessRepo interface {
	// AmbulanceDriver returns the driver currently bound to the
	// ambulance, or nil when it has none.
	AmbulanceDriver(ctx context.Context, ambulanceID uuid.UUID) (*uuid.UUID, error)
	// HasActiveRequest reports whether the patient has a request in a
	// post-assignment, non-terminal status on the ambulance.
	HasActiveRequest(ctx context.Context, patientID, ambulanceID uuid.UUID) (bool, error)
}

// Gateway decides who may subscribe to which tracking channel. The global
// channel is open to any authenticated caller. A per-ambulance channel is
// restricted to parties with an interest in that vehicle: staff and
// admins, the driver bound to it, and a patient it is currently serving.
type Gateway struct {
	access AccessRepo
}

func NewGateway(access AccessRepo) *Gateway {
	return &Gateway{access: access}
}

// Authorize returns nil when the caller may subscribe to the channel.
func (g *Gateway) Authorize(ctx context.Context, caller *models.User, channel types.Channel) error {
	ctx = wrap.WithAction(ctx, "authorize_channel")

	if caller == nil || caller.IsAnonymous() {
		return wrap.Error(ctx, types.ErrNotPermitted)
	}

	ambulanceID, ok := channel.AmbulanceID()
	if !ok {
		// Global channel.
		return nil
	}

	switch caller.Role {
	case types.RoleStaff, types.RoleAdmin:
		return nil
	case types.RoleDriver:
		driverID, err := g.access.AmbulanceDriver(ctx, ambulanceID)
		if err != nil {
			return wrap.Error(ctx, err)
		}
		if driverID != nil && *driverID == caller.ID {
			return nil
		}
		return wrap.Error(ctx, types.ErrNotPermitted)
	case types.RolePatient:
		active, err := g.access.HasActiveRequest(ctx, caller.ID, ambulanceID)
		if err != nil {
			return wrap.Error(ctx, err)
		}
		if active {
			return nil
		}
		return wrap.Error(ctx, types.ErrNotPermitted)
	default:
		return wrap.Error(ctx, types.ErrNotPermitted)
	}
}
