package tracking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

type fakeAccessRepo struct {
	drivers map[uuid.UUID]uuid.UUID // ambulance -> driver
	active  map[uuid.UUID]uuid.UUID // ambulance -> patient with active request
}

func (r *fakeAccessRepo) AmbulanceDriver(_ context.Context, ambulanceID uuid.UUID) (*uuid.UUID, error) {
	if id, ok := r.drivers[ambulanceID]; ok {
		return &id, nil
	}
	return nil, nil
}

func (r *fakeAccessRepo) HasActiveRequest(_ context.Context, patientID, ambulanceID uuid.UUID) (bool, error) {
	return r.active[ambulanceID] == patientID, nil
}

func TestAuthorize_GlobalChannel(t *testing.T) {
	g := NewGateway(&fakeAccessRepo{})

	for _, role := range []types.UserRole{types.RolePatient, types.RoleDriver, types.RoleStaff, types.RoleAdmin} {
		u := &models.User{ID: uuid.MustNew(), Role: role}
		assert.NoError(t, g.Authorize(context.Background(), u, types.ChannelAllAmbulances), "role %s", role)
	}
}

func TestAuthorize_AnonymousRefused(t *testing.T) {
	g := NewGateway(&fakeAccessRepo{})

	err := g.Authorize(context.Background(), nil, types.ChannelAllAmbulances)
	assert.ErrorIs(t, err, types.ErrNotPermitted)

	err = g.Authorize(context.Background(), models.AnonymousUser(), types.ChannelAllAmbulances)
	assert.ErrorIs(t, err, types.ErrNotPermitted)
}

func TestAuthorize_PerAmbulanceChannel(t *testing.T) {
	ambID := uuid.MustNew()
	driverID := uuid.MustNew()
	patientID := uuid.MustNew()

	g := NewGateway(&fakeAccessRepo{
		drivers: map[uuid.UUID]uuid.UUID{ambID: driverID},
		active:  map[uuid.UUID]uuid.UUID{ambID: patientID},
	})
	channel := types.AmbulanceChannel(ambID)
	ctx := context.Background()

	// Staff and admin always pass.
	require.NoError(t, g.Authorize(ctx, &models.User{ID: uuid.MustNew(), Role: types.RoleStaff}, channel))
	require.NoError(t, g.Authorize(ctx, &models.User{ID: uuid.MustNew(), Role: types.RoleAdmin}, channel))

	// The bound driver passes, any other driver does not.
	require.NoError(t, g.Authorize(ctx, &models.User{ID: driverID, Role: types.RoleDriver}, channel))
	err := g.Authorize(ctx, &models.User{ID: uuid.MustNew(), Role: types.RoleDriver}, channel)
	assert.ErrorIs(t, err, types.ErrNotPermitted)

	// The patient being served passes, any other patient does not.
	require.NoError(t, g.Authorize(ctx, &models.User{ID: patientID, Role: types.RolePatient}, channel))
	err = g.Authorize(ctx, &models.User{ID: uuid.MustNew(), Role: types.RolePatient}, channel)
	assert.ErrorIs(t, err, types.ErrNotPermitted)
}

func TestAuthorize_AmbulanceWithoutDriver(t *testing.T) {
	ambID := uuid.MustNew()
	g := NewGateway(&fakeAccessRepo{})

	err := g.Authorize(context.Background(), &models.User{ID: uuid.MustNew(), Role: types.RoleDriver}, types.AmbulanceChannel(ambID))
	assert.ErrorIs(t, err, types.ErrNotPermitted)
}
