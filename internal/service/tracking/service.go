// Package tracking is the live-position pipeline: it persists ambulance
// position updates, fans the resulting snapshots out to in-process
// subscribers, and mirrors them to the message broker for external
// consumers.
package tracking

import (
	"context"
	"time"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/eventbus"
	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"
	wrap "github.com/cliniktrak/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/cliniktrak/ambulance-dispatch/pkg/metrics"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

const serviceName = "tracking"

// PositionRepo persists the single last-known position per ambulance.
type PositionRepo interface {
	// UpdatePosition overwrites the position and returns the fresh
	// ambulance snapshot.
	UpdatePosition(ctx context.Context, id uuid.UUID, lat, lon float64, at time.Time) (*models.Ambulance, error)
}

// Mirror forwards snapshots to the message broker. Mirroring is best
// effort: a broker outage must not fail the position update.
type Mirror interface {
	MirrorLocation(ctx context.Context, e models.LocationEvent) error
}

type Service struct {
	repo   PositionRepo
	bus    *eventbus.Bus[types.Channel, models.LocationEvent]
	mirror Mirror
	log    logger.Logger
}

func NewService(repo PositionRepo, bus *eventbus.Bus[types.Channel, models.LocationEvent], mirror Mirror, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		mirror: mirror,
		log:    log,
	}
}

// UpdatePosition validates and persists a position report, then broadcasts
// the resulting snapshot. The write is the source of truth: subscribers
// only ever see what the store returned, never the raw input. Source names
// the ingest path ("http", "rabbitmq") for metrics.
func (s *Service) UpdatePosition(ctx context.Context, ambulanceID uuid.UUID, lat, lon float64, at *time.Time, source string) (*models.Ambulance, error) {
	ctx = wrap.WithAction(ctx, "update_position")

	loc := models.Location{Latitude: lat, Longitude: lon}
	if !loc.InRange() {
		return nil, wrap.Error(ctx, types.ErrInvalidCoordinate)
	}

	when := time.Now()
	if at != nil {
		when = *at
	}

	amb, err := s.repo.UpdatePosition(ctx, ambulanceID, lat, lon, when)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	metrics.RecordLocationUpdate(serviceName, source)
	s.broadcast(ctx, amb)

	return amb, nil
}

// PublishSnapshot broadcasts an already-persisted snapshot. The dispatch
// coordinator uses it for positions that were written inside its own
// transaction.
func (s *Service) PublishSnapshot(ctx context.Context, a *models.Ambulance) {
	s.broadcast(ctx, a)
}

// Subscribe attaches a live subscriber to the channel.
func (s *Service) Subscribe(channel types.Channel) <-chan models.LocationEvent {
	return s.bus.Subscribe(channel)
}

// Unsubscribe detaches the subscriber and closes its channel.
func (s *Service) Unsubscribe(channel types.Channel, sub <-chan models.LocationEvent) {
	s.bus.Unsubscribe(channel, sub)
}

func (s *Service) broadcast(ctx context.Context, a *models.Ambulance) {
	if a.Position == nil {
		return
	}
	e := models.NewLocationEvent(a)

	// Per-ambulance channel first, then the global one. Subscribers on
	// both keys receive the event twice; the snapshot is idempotent.
	s.bus.Publish(types.AmbulanceChannel(a.ID), e)
	s.bus.Publish(types.ChannelAllAmbulances, e)

	if s.mirror != nil {
		if err := s.mirror.MirrorLocation(ctx, e); err != nil {
			s.log.Warn(ctx, "location mirror failed",
				"ambulance_id", a.ID.String(),
				"error", err.Error(),
			)
		}
	}
}
