package dispatch

import (
	"context"
	"errors"
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

// fakeTxManager serializes every Do call with a mutex, giving the same
// mutual exclusion the real manager gets from row locks.
type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeRequestRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.AmbulanceRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{byID: make(map[uuid.UUID]*models.AmbulanceRequest)}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *models.AmbulanceRequest) (*models.AmbulanceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.byID[req.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRequestRepo) Get(_ context.Context, id uuid.UUID) (*models.AmbulanceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, types.ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *fakeRequestRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.AmbulanceRequest, error) {
	return r.Get(ctx, id)
}

func (r *fakeRequestRepo) Update(_ context.Context, req *models.AmbulanceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[req.ID]; !ok {
		return types.ErrRequestNotFound
	}
	cp := *req
	r.byID[req.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) ListPending(_ context.Context) ([]models.AmbulanceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AmbulanceRequest
	for _, req := range r.byID {
		if req.Status == types.StatusPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]models.AmbulanceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AmbulanceRequest
	for _, req := range r.byID {
		if req.PatientID == patientID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ActiveByDriver(_ context.Context, driverID uuid.UUID) (*models.AmbulanceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.byID {
		if req.DriverID != nil && *req.DriverID == driverID && req.Status.Active() {
			cp := *req
			return &cp, nil
		}
	}
	return nil, types.ErrRequestNotFound
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

func (r *fakeAmbulanceRepo) GetForUpdate(_ context.Context, id uuid.UUID) (*models.Ambulance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, types.ErrAmbulanceNotFound
	}
	cp := *a
	return &cp, nil
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

func (r *fakeAmbulanceRepo) UpdatePosition(_ context.Context, id uuid.UUID, lat, lon float64, at time.Time) (*models.Ambulance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, types.ErrAmbulanceNotFound
	}
	a.Position = &models.Position{Latitude: lat, Longitude: lon, UpdatedAt: at}
	cp := *a
	return &cp, nil
}

type capturingPublisher struct {
	mu        sync.Mutex
	snapshots []*models.Ambulance
}

func (p *capturingPublisher) PublishSnapshot(_ context.Context, a *models.Ambulance) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, a)
}

type fixture struct {
	svc        *Service
	requests   *fakeRequestRepo
	ambulances *fakeAmbulanceRepo
	published  *capturingPublisher
}

func newFixture() *fixture {
	requests := newFakeRequestRepo()
	ambulances := newFakeAmbulanceRepo()
	published := &capturingPublisher{}
	svc := NewService(requests, ambulances, &fakeTxManager{}, published, logger.NewDiscard())
	return &fixture{svc: svc, requests: requests, ambulances: ambulances, published: published}
}

func seedAmbulance(f *fixture, status types.AmbulanceStatus) *models.Ambulance {
	a := &models.Ambulance{
		ID:                 uuid.MustNew(),
		RegistrationNumber: "AMB-001",
		VehicleType:        types.VehicleBasic,
		Status:             status,
		Position: &models.Position{
			Latitude:  0,
			Longitude: 0,
			UpdatedAt: time.Now(),
		},
	}
	f.ambulances.put(a)
	return a
}

func seedPendingRequest(t *testing.T, f *fixture, priority types.Priority) *models.AmbulanceRequest {
	t.Helper()
	req, err := f.svc.Create(context.Background(), &models.AmbulanceRequest{
		PatientID: uuid.MustNew(),
		Pickup:    models.Location{Latitude: 0, Longitude: 0.1},
		Priority:  priority,
	})
	require.NoError(t, err)
	return req
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &models.AmbulanceRequest{
		PatientID: uuid.MustNew(),
		Pickup:    models.Location{Latitude: 0, Longitude: 0},
		Priority:  "urgent",
	})
	assert.ErrorIs(t, err, types.ErrInvalidPriority)

	_, err = f.svc.Create(ctx, &models.AmbulanceRequest{
		PatientID: uuid.MustNew(),
		Pickup:    models.Location{Latitude: 91, Longitude: 0},
		Priority:  types.PriorityEmergency,
	})
	assert.ErrorIs(t, err, types.ErrInvalidCoordinate)

	dst := models.Location{Latitude: 0, Longitude: 181}
	_, err = f.svc.Create(ctx, &models.AmbulanceRequest{
		PatientID:   uuid.MustNew(),
		Pickup:      models.Location{Latitude: 0, Longitude: 0},
		Destination: &dst,
		Priority:    types.PriorityEmergency,
	})
	assert.ErrorIs(t, err, types.ErrInvalidCoordinate)
}

func TestCreate_StartsPending(t *testing.T) {
	f := newFixture()

	req := seedPendingRequest(t, f, types.PriorityEmergency)

	assert.Equal(t, types.StatusPending, req.Status)
	assert.False(t, req.ID.IsZero())
	assert.Nil(t, req.DistanceKm)
	assert.Nil(t, req.ETAMinutes)
}

func TestApprove_AssignsAndFreezesEstimate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	amb := seedAmbulance(f, types.AmbulanceAvailable)
	req := seedPendingRequest(t, f, types.PriorityEmergency)

	driverID := uuid.MustNew()
	approved, err := f.svc.Approve(ctx, req.ID, driverID, "Dana", amb.ID, models.Location{})
	require.NoError(t, err)

	assert.Equal(t, types.StatusAssigned, approved.Status)
	require.NotNil(t, approved.AmbulanceID)
	assert.Equal(t, amb.ID, *approved.AmbulanceID)
	require.NotNil(t, approved.DriverID)
	assert.Equal(t, driverID, *approved.DriverID)
	assert.NotNil(t, approved.AssignedAt)

	// Driver at (0,0), pickup at (0,0.1): 11.12 km, emergency ETA 17.
	require.NotNil(t, approved.DistanceKm)
	assert.InDelta(t, 11.12, *approved.DistanceKm, 0.001)
	require.NotNil(t, approved.ETAMinutes)
	assert.Equal(t, 17, *approved.ETAMinutes)

	got, err := f.ambulances.GetForUpdate(ctx, amb.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AmbulanceOnDuty, got.Status)
	require.NotNil(t, got.DriverID)
	assert.Equal(t, driverID, *got.DriverID)
}

func TestApprove_EstimateComputedWithoutStoredAmbulancePosition(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Freshly registered vehicles have no position on record; the
	// estimate must come from the driver's reported location anyway.
	amb := &models.Ambulance{
		ID:                 uuid.MustNew(),
		RegistrationNumber: "AMB-002",
		VehicleType:        types.VehicleBasic,
		Status:             types.AmbulanceAvailable,
	}
	f.ambulances.put(amb)

	req := seedPendingRequest(t, f, types.PriorityEmergency)

	approved, err := f.svc.Approve(ctx, req.ID, uuid.MustNew(), "Dana", amb.ID, models.Location{Latitude: 0, Longitude: 0})
	require.NoError(t, err)
	assert.Equal(t, types.StatusAssigned, approved.Status)

	require.NotNil(t, approved.DistanceKm)
	assert.InDelta(t, 11.12, *approved.DistanceKm, 0.001)
	require.NotNil(t, approved.ETAMinutes)
	assert.Equal(t, 17, *approved.ETAMinutes)

	// The reported position lands on the ambulance row in the same
	// transaction and goes out to subscribers after commit.
	got, err := f.ambulances.GetForUpdate(ctx, amb.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Position)
	assert.Equal(t, 0.0, got.Position.Latitude)
	assert.Equal(t, 0.0, got.Position.Longitude)
	assert.False(t, got.Position.UpdatedAt.IsZero())

	require.Len(t, f.published.snapshots, 1)
	assert.Equal(t, amb.ID, f.published.snapshots[0].ID)
}

func TestApprove_RejectsBadDriverCoordinate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	amb := seedAmbulance(f, types.AmbulanceAvailable)
	req := seedPendingRequest(t, f, types.PriorityEmergency)

	_, err := f.svc.Approve(ctx, req.ID, uuid.MustNew(), "Dana", amb.ID, models.Location{Latitude: 91, Longitude: 0})
	assert.ErrorIs(t, err, types.ErrInvalidCoordinate)

	got, err := f.svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, got.Status)
}

func TestApprove_NonPendingRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	amb := seedAmbulance(f, types.AmbulanceAvailable)
	req := seedPendingRequest(t, f, types.PriorityNonEmergency)

	_, err := f.svc.Reject(ctx, req.ID, "no coverage")
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, req.ID, uuid.MustNew(), "Dana", amb.ID, models.Location{})
	assert.ErrorIs(t, err, types.ErrAlreadyProcessed)
}

func TestApprove_AmbulanceConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	busy := seedAmbulance(f, types.AmbulanceOnDuty)
	offline := seedAmbulance(f, types.AmbulanceOffline)
	req := seedPendingRequest(t, f, types.PriorityEmergency)

	_, err := f.svc.Approve(ctx, req.ID, uuid.MustNew(), "Dana", busy.ID, models.Location{})
	assert.ErrorIs(t, err, types.ErrAmbulanceOnDuty)

	_, err = f.svc.Approve(ctx, req.ID, uuid.MustNew(), "Dana", offline.ID, models.Location{})
	assert.ErrorIs(t, err, types.ErrAmbulanceUnavailable)

	// Both losses leave the request approvable.
	got, err := f.svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, got.Status)
}

func TestApprove_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	amb := seedAmbulance(f, types.AmbulanceAvailable)
	req := seedPendingRequest(t, f, types.PriorityEmergency)

	const racers = 16
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Approve(ctx, req.ID, uuid.MustNew(), "racer", amb.ID, models.Location{})
			errs <- err
		}()
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
		assert.ErrorIs(t, err, types.ErrAlreadyProcessed)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, losses)
}

func TestReject_OnlyPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	amb := seedAmbulance(f, types.AmbulanceAvailable)
	req := seedPendingRequest(t, f, types.PriorityEmergency)

	_, err := f.svc.Approve(ctx, req.ID, uuid.MustNew(), "Dana", amb.ID, models.Location{})
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, req.ID, "too late")
	assert.ErrorIs(t, err, types.ErrAlreadyProcessed)
}

func TestReject_RecordsReason(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req := seedPendingRequest(t, f, types.PriorityNonEmergency)

	rejected, err := f.svc.Reject(ctx, req.ID, "out of area")
	require.NoError(t, err)

	assert.Equal(t, types.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "out of area", *rejected.RejectionReason)
	assert.NotNil(t, rejected.RejectedAt)
}

func TestAdvance_RefusesSkipsAndBackwards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	amb := seedAmbulance(f, types.AmbulanceAvailable)
	req := seedPendingRequest(t, f, types.PriorityEmergency)
	_, err := f.svc.Approve(ctx, req.ID, uuid.MustNew(), "Dana", amb.ID, models.Location{})
	require.NoError(t, err)

	// assigned -> arrived skips enroute
	_, err = f.svc.Advance(ctx, req.ID, types.StatusArrived, nil)
	assert.ErrorIs(t, err, types.ErrInvalidTransition)

	_, err = f.svc.Advance(ctx, req.ID, types.StatusEnroute, nil)
	require.NoError(t, err)

	// enroute -> assigned moves backwards
	_, err = f.svc.Advance(ctx, req.ID, types.StatusAssigned, nil)
	assert.ErrorIs(t, err, types.ErrInvalidTransition)

	// pending is never a transition target
	_, err = f.svc.Advance(ctx, req.ID, types.StatusPending, nil)
	assert.ErrorIs(t, err, types.ErrInvalidTransition)
}

func TestAdvance_PositionRidesInTransactionAndPublishes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	amb := seedAmbulance(f, types.AmbulanceAvailable)
	req := seedPendingRequest(t, f, types.PriorityEmergency)
	_, err := f.svc.Approve(ctx, req.ID, uuid.MustNew(), "Dana", amb.ID, models.Location{})
	require.NoError(t, err)

	f.published.snapshots = nil

	pos := &models.Location{Latitude: 51.5, Longitude: -0.12}
	advanced, err := f.svc.Advance(ctx, req.ID, types.StatusEnroute, pos)
	require.NoError(t, err)
	assert.Equal(t, types.StatusEnroute, advanced.Status)
	assert.NotNil(t, advanced.EnrouteAt)

	got, err := f.ambulances.GetForUpdate(ctx, amb.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Position)
	assert.Equal(t, 51.5, got.Position.Latitude)
	assert.Equal(t, -0.12, got.Position.Longitude)

	require.Len(t, f.published.snapshots, 1)
	assert.Equal(t, amb.ID, f.published.snapshots[0].ID)
}

func TestAdvance_NoPositionNoPublish(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	amb := seedAmbulance(f, types.AmbulanceAvailable)
	req := seedPendingRequest(t, f, types.PriorityEmergency)
	_, err := f.svc.Approve(ctx, req.ID, uuid.MustNew(), "Dana", amb.ID, models.Location{})
	require.NoError(t, err)

	f.published.snapshots = nil

	_, err = f.svc.Advance(ctx, req.ID, types.StatusEnroute, nil)
	require.NoError(t, err)

	assert.Empty(t, f.published.snapshots)
}

func TestAdvance_RejectsBadCoordinateBeforeAnyWrite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	amb := seedAmbulance(f, types.AmbulanceAvailable)
	req := seedPendingRequest(t, f, types.PriorityEmergency)
	_, err := f.svc.Approve(ctx, req.ID, uuid.MustNew(), "Dana", amb.ID, models.Location{})
	require.NoError(t, err)

	_, err = f.svc.Advance(ctx, req.ID, types.StatusEnroute, &models.Location{Latitude: -91, Longitude: 0})
	assert.ErrorIs(t, err, types.ErrInvalidCoordinate)

	got, err := f.svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusAssigned, got.Status)
}

func TestFullLifecycle_CompletionReleasesAmbulance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	amb := seedAmbulance(f, types.AmbulanceAvailable)
	req := seedPendingRequest(t, f, types.PriorityEmergency)
	driverID := uuid.MustNew()
	_, err := f.svc.Approve(ctx, req.ID, driverID, "Dana", amb.ID, models.Location{})
	require.NoError(t, err)

	ladder := []types.RequestStatus{
		types.StatusEnroute,
		types.StatusArrived,
		types.StatusTransporting,
		types.StatusDelivered,
		types.StatusCompleted,
	}
	for _, next := range ladder {
		got, err := f.svc.Advance(ctx, req.ID, next, nil)
		require.NoError(t, err, "advance to %s", next)
		assert.Equal(t, next, got.Status)
	}

	final, err := f.svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.NotNil(t, final.EnrouteAt)
	assert.NotNil(t, final.ArrivedAt)
	assert.NotNil(t, final.TransportingAt)
	assert.NotNil(t, final.DeliveredAt)
	assert.NotNil(t, final.CompletedAt)

	released, err := f.ambulances.GetForUpdate(ctx, amb.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AmbulanceAvailable, released.Status)

	// Completed request no longer counts as the driver's active one.
	active, err := f.svc.ActiveRequest(ctx, driverID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestActiveRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	driverID := uuid.MustNew()

	active, err := f.svc.ActiveRequest(ctx, driverID)
	require.NoError(t, err)
	assert.Nil(t, active)

	amb := seedAmbulance(f, types.AmbulanceAvailable)
	req := seedPendingRequest(t, f, types.PriorityEmergency)
	_, err = f.svc.Approve(ctx, req.ID, driverID, "Dana", amb.ID, models.Location{})
	require.NoError(t, err)

	active, err = f.svc.ActiveRequest(ctx, driverID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, req.ID, active.ID)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Get(context.Background(), uuid.MustNew())
	assert.True(t, errors.Is(err, types.ErrRequestNotFound))
}

func TestListPending_EmergenciesFirstThenOldest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := func(priority types.Priority, at time.Time) uuid.UUID {
		id := uuid.MustNew()
		_, err := f.requests.Create(ctx, &models.AmbulanceRequest{
			ID:        id,
			PatientID: uuid.MustNew(),
			Pickup:    models.Location{Latitude: 0, Longitude: 0.1},
			Priority:  priority,
			Status:    types.StatusPending,
			CreatedAt: at,
		})
		require.NoError(t, err)
		return id
	}

	oldRoutine := seed(types.PriorityNonEmergency, base)
	newEmergency := seed(types.PriorityEmergency, base.Add(3*time.Minute))
	oldEmergency := seed(types.PriorityEmergency, base.Add(1*time.Minute))
	newRoutine := seed(types.PriorityNonEmergency, base.Add(2*time.Minute))

	list, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)

	got := make([]uuid.UUID, 0, len(list))
	for _, r := range list {
		got = append(got, r.ID)
	}
	assert.Equal(t, []uuid.UUID{oldEmergency, newEmergency, oldRoutine, newRoutine}, got)
}
