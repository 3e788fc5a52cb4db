package fleet

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeAmbulanceRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Ambulance
}

func newFakeAmbulanceRepo() *fakeAmbulanceRepo {
	return &fakeAmbulanceRepo{byID: make(map[uuid.UUID]*models.Ambulance)}
}

func (r *fakeAmbulanceRepo) put(a *models.Ambulance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.byID[a.ID] = &cp
}

func (r *fakeAmbulanceRepo) Create(_ context.Context, a *models.Ambulance) (*models.Ambulance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.byID[a.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeAmbulanceRepo) Get(_ context.Context, id uuid.UUID) (*models.Ambulance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, types.ErrAmbulanceNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAmbulanceRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Ambulance, error) {
	return r.Get(ctx, id)
}

func (r *fakeAmbulanceRepo) Update(_ context.Context, a *models.Ambulance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[a.ID]; !ok {
		return types.ErrAmbulanceNotFound
	}
	cp := *a
	r.byID[a.ID] = &cp
	return nil
}

func (r *fakeAmbulanceRepo) ByDriver(_ context.Context, driverID uuid.UUID) (*models.Ambulance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.DriverID != nil && *a.DriverID == driverID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, types.ErrAmbulanceNotFound
}

func (r *fakeAmbulanceRepo) List(_ context.Context, onlyAvailable bool) ([]models.Ambulance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Ambulance
	for _, a := range r.byID {
		if onlyAvailable && a.Status != types.AmbulanceAvailable {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAmbulanceRepo) CountAvailable(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.byID {
		if a.Status == types.AmbulanceAvailable {
			n++
		}
	}
	return n, nil
}

func newFleetFixture() (*Service, *fakeAmbulanceRepo) {
	repo := newFakeAmbulanceRepo()
	svc := NewService(repo, &fakeTxManager{}, logger.NewDiscard())
	return svc, repo
}

func TestRegister_StartsOffline(t *testing.T) {
	svc, _ := newFleetFixture()
	driverID := uuid.MustNew()
	name := "Dana"

	a, err := svc.Register(context.Background(), RegisterParams{
		RegistrationNumber: "AMB-001",
		VehicleType:        types.VehicleBasic,
		DriverID:           &driverID,
		DriverName:         &name,
	})
	require.NoError(t, err)

	assert.Equal(t, types.AmbulanceOffline, a.Status)
	assert.False(t, a.ID.IsZero())
	assert.Nil(t, a.Position)
}

func TestRegister_OneVehiclePerDriver(t *testing.T) {
	svc, _ := newFleetFixture()
	driverID := uuid.MustNew()

	_, err := svc.Register(context.Background(), RegisterParams{
		RegistrationNumber: "AMB-001",
		VehicleType:        types.VehicleBasic,
		DriverID:           &driverID,
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterParams{
		RegistrationNumber: "AMB-002",
		VehicleType:        types.VehicleAdvanced,
		DriverID:           &driverID,
	})
	assert.ErrorIs(t, err, types.ErrAmbulanceRegistered)
}

func TestRegister_ConcurrentSameDriverSingleWinner(t *testing.T) {
	svc, _ := newFleetFixture()
	ctx := context.Background()
	driverID := uuid.MustNew()

	const racers = 16
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Register(ctx, RegisterParams{
				RegistrationNumber: fmt.Sprintf("AMB-%03d", n),
				VehicleType:        types.VehicleBasic,
				DriverID:           &driverID,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var wins, losses int
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		losses++
		assert.ErrorIs(t, err, types.ErrAmbulanceRegistered)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, losses)
}

func TestToggle_FlipsBetweenOfflineAndAvailable(t *testing.T) {
	svc, _ := newFleetFixture()
	driverID := uuid.MustNew()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{
		RegistrationNumber: "AMB-001",
		VehicleType:        types.VehicleBasic,
		DriverID:           &driverID,
	})
	require.NoError(t, err)

	a, err := svc.Toggle(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, types.AmbulanceAvailable, a.Status)

	a, err = svc.Toggle(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, types.AmbulanceOffline, a.Status)
}

func TestToggle_RefusedWhileOnDuty(t *testing.T) {
	svc, repo := newFleetFixture()
	driverID := uuid.MustNew()
	ctx := context.Background()

	a, err := svc.Register(ctx, RegisterParams{
		RegistrationNumber: "AMB-001",
		VehicleType:        types.VehicleBasic,
		DriverID:           &driverID,
	})
	require.NoError(t, err)

	a.Status = types.AmbulanceOnDuty
	require.NoError(t, repo.Update(ctx, a))

	_, err = svc.Toggle(ctx, driverID)
	assert.ErrorIs(t, err, types.ErrAmbulanceOnDuty)
}

func TestToggle_NoVehicle(t *testing.T) {
	svc, _ := newFleetFixture()

	_, err := svc.Toggle(context.Background(), uuid.MustNew())
	assert.ErrorIs(t, err, types.ErrNoAmbulance)
}

func TestUpdateDetails_PartialEdit(t *testing.T) {
	svc, _ := newFleetFixture()
	ctx := context.Background()

	model := "Sprinter 316"
	a, err := svc.Register(ctx, RegisterParams{
		RegistrationNumber: "AMB-001",
		VehicleModel:       &model,
		VehicleType:        types.VehicleBasic,
	})
	require.NoError(t, err)

	vt := types.VehicleAir
	updated, err := svc.UpdateDetails(ctx, a.ID, UpdateParams{VehicleType: &vt})
	require.NoError(t, err)

	assert.Equal(t, types.VehicleAir, updated.VehicleType)
	assert.Equal(t, "AMB-001", updated.RegistrationNumber)
	require.NotNil(t, updated.VehicleModel)
	assert.Equal(t, "Sprinter 316", *updated.VehicleModel)
}

func TestUpdateDetails_NotFound(t *testing.T) {
	svc, _ := newFleetFixture()

	_, err := svc.UpdateDetails(context.Background(), uuid.MustNew(), UpdateParams{})
	assert.ErrorIs(t, err, types.ErrAmbulanceNotFound)
}

func TestList_OnlyAvailable(t *testing.T) {
	svc, repo := newFleetFixture()
	ctx := context.Background()

	for _, status := range []types.AmbulanceStatus{
		types.AmbulanceAvailable,
		types.AmbulanceOnDuty,
		types.AmbulanceOffline,
	} {
		repo.put(&models.Ambulance{
			ID:                 uuid.MustNew(),
			RegistrationNumber: "AMB-" + string(status),
			VehicleType:        types.VehicleBasic,
			Status:             status,
			CreatedAt:          time.Now(),
		})
	}

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	available, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, types.AmbulanceAvailable, available[0].Status)
}

func TestByDriver(t *testing.T) {
	svc, _ := newFleetFixture()
	driverID := uuid.MustNew()
	ctx := context.Background()

	_, err := svc.ByDriver(ctx, driverID)
	assert.ErrorIs(t, err, types.ErrNoAmbulance)

	registered, err := svc.Register(ctx, RegisterParams{
		RegistrationNumber: "AMB-007",
		VehicleType:        types.VehicleAdvanced,
		DriverID:           &driverID,
	})
	require.NoError(t, err)

	got, err := svc.ByDriver(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, got.ID)
}
