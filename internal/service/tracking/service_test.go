package tracking

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
	"github.com/cliniktrak/ambulance-dispatch/pkg/eventbus"
	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

type fakePositionRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Ambulance
}

func newFakePositionRepo() *fakePositionRepo {
	return &fakePositionRepo{byID: make(map[uuid.UUID]*models.Ambulance)}
}

func (r *fakePositionRepo) put(a *models.Ambulance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.byID[a.ID] = &cp
}

func (r *fakePositionRepo) UpdatePosition(_ context.Context, id uuid.UUID, lat, lon float64, at time.Time) (*models.Ambulance, error) {
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

type fakeMirror struct {
	mu     sync.Mutex
	events []models.LocationEvent
	err    error
}

func (m *fakeMirror) MirrorLocation(_ context.Context, e models.LocationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func newTrackingFixture() (*Service, *fakePositionRepo, *fakeMirror, *eventbus.Bus[types.Channel, models.LocationEvent]) {
	repo := newFakePositionRepo()
	mirror := &fakeMirror{}
	bus := eventbus.New[types.Channel, models.LocationEvent]()
	svc := NewService(repo, bus, mirror, logger.NewDiscard())
	return svc, repo, mirror, bus
}

func seedTracked(repo *fakePositionRepo) *models.Ambulance {
	name := "Dana"
	a := &models.Ambulance{
		ID:                 uuid.MustNew(),
		RegistrationNumber: "AMB-042",
		VehicleType:        types.VehicleAdvanced,
		Status:             types.AmbulanceOnDuty,
		DriverName:         &name,
	}
	repo.put(a)
	return a
}

func TestUpdatePosition_PersistsAndBroadcasts(t *testing.T) {
	svc, repo, mirror, _ := newTrackingFixture()
	amb := seedTracked(repo)

	own := svc.Subscribe(types.AmbulanceChannel(amb.ID))
	global := svc.Subscribe(types.ChannelAllAmbulances)
	other := svc.Subscribe(types.AmbulanceChannel(uuid.MustNew()))

	got, err := svc.UpdatePosition(context.Background(), amb.ID, 51.5, -0.12, nil, "http")
	require.NoError(t, err)
	require.NotNil(t, got.Position)
	assert.Equal(t, 51.5, got.Position.Latitude)

	for _, sub := range []<-chan models.LocationEvent{own, global} {
		select {
		case e := <-sub:
			assert.Equal(t, amb.ID, e.AmbulanceID)
			assert.Equal(t, "AMB-042", e.RegistrationNumber)
			assert.Equal(t, 51.5, e.Latitude)
			assert.Equal(t, -0.12, e.Longitude)
			assert.Equal(t, types.AmbulanceOnDuty, e.Status)
			require.NotNil(t, e.DriverName)
			assert.Equal(t, "Dana", *e.DriverName)
		default:
			t.Fatal("expected an event on the subscriber channel")
		}
	}

	// A different vehicle's channel stays quiet.
	assert.Empty(t, other)

	require.Len(t, mirror.events, 1)
	assert.Equal(t, amb.ID, mirror.events[0].AmbulanceID)
}

func TestUpdatePosition_InvalidCoordinate(t *testing.T) {
	svc, repo, mirror, _ := newTrackingFixture()
	amb := seedTracked(repo)

	_, err := svc.UpdatePosition(context.Background(), amb.ID, 91, 0, nil, "http")
	assert.ErrorIs(t, err, types.ErrInvalidCoordinate)

	_, err = svc.UpdatePosition(context.Background(), amb.ID, 0, -181, nil, "http")
	assert.ErrorIs(t, err, types.ErrInvalidCoordinate)

	assert.Empty(t, mirror.events)
}

func TestUpdatePosition_UnknownAmbulance(t *testing.T) {
	svc, _, _, _ := newTrackingFixture()

	_, err := svc.UpdatePosition(context.Background(), uuid.MustNew(), 0, 0, nil, "http")
	assert.ErrorIs(t, err, types.ErrAmbulanceNotFound)
}

func TestUpdatePosition_ExplicitTimestamp(t *testing.T) {
	svc, repo, _, _ := newTrackingFixture()
	amb := seedTracked(repo)

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	got, err := svc.UpdatePosition(context.Background(), amb.ID, 1, 2, &at, "rabbitmq")
	require.NoError(t, err)
	require.NotNil(t, got.Position)
	assert.Equal(t, at, got.Position.UpdatedAt)
}

func TestUpdatePosition_MirrorFailureIsNotFatal(t *testing.T) {
	svc, repo, mirror, _ := newTrackingFixture()
	amb := seedTracked(repo)
	mirror.err = errors.New("broker down")

	got, err := svc.UpdatePosition(context.Background(), amb.ID, 10, 20, nil, "http")
	require.NoError(t, err)
	require.NotNil(t, got.Position)
}

func TestPublishSnapshot_SkipsAmbulanceWithoutPosition(t *testing.T) {
	svc, repo, mirror, _ := newTrackingFixture()
	amb := seedTracked(repo)

	sub := svc.Subscribe(types.ChannelAllAmbulances)
	svc.PublishSnapshot(context.Background(), amb)

	assert.Empty(t, sub)
	assert.Empty(t, mirror.events)
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	svc, _, _, _ := newTrackingFixture()

	sub := svc.Subscribe(types.ChannelAllAmbulances)
	svc.Unsubscribe(types.ChannelAllAmbulances, sub)

	_, open := <-sub
	assert.False(t, open)
}
