// Package dispatch owns the ambulance request lifecycle: creation,
// approval into an assignment, the forward-only status ladder to
// completion, and staff rejection. Every mutation of a request or the
// ambulance bound to it runs under a single transaction with row locks
// held on both entities.
package dispatch

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/internal/service/geo"
	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"
	wrap "github.com/cliniktrak/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/cliniktrak/ambulance-dispatch/pkg/metrics"
	"github.com/cliniktrak/ambulance-dispatch/pkg/trm"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

const serviceName = "dispatch"

type Service struct {
	requests   RequestRepo
	ambulances AmbulanceRepo
	trManager  trm.TxManager
	publisher  LocationPublisher
	log        logger.Logger
}

func NewService(requests RequestRepo, ambulances AmbulanceRepo, trManager trm.TxManager, publisher LocationPublisher, log logger.Logger) *Service {
	return &Service{
		requests:   requests,
		ambulances: ambulances,
		trManager:  trManager,
		publisher:  publisher,
		log:        log,
	}
}

// Create registers a new pending request for the patient. The request
// carries no distance or ETA yet; those are fixed at approval time when
// the assigned ambulance's position is known.
func (s *Service) Create(ctx context.Context, req *models.AmbulanceRequest) (*models.AmbulanceRequest, error) {
	ctx = wrap.WithAction(ctx, "create_request")

	if !req.Priority.Valid() {
		return nil, wrap.Error(ctx, types.ErrInvalidPriority)
	}
	if !req.Pickup.InRange() {
		return nil, wrap.Error(ctx, types.ErrInvalidCoordinate)
	}
	if req.Destination != nil && !req.Destination.InRange() {
		return nil, wrap.Error(ctx, types.ErrInvalidCoordinate)
	}

	req.ID = uuid.MustNew()
	req.Status = types.StatusPending
	req.CreatedAt = time.Now()

	created, err := s.requests.Create(ctx, req)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	metrics.RecordDispatchRequest(serviceName, string(types.StatusPending))
	s.log.Info(ctx, "ambulance request created",
		"request_id", created.ID.String(),
		"priority", string(created.Priority),
	)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.AmbulanceRequest, error) {
	ctx = wrap.WithAction(ctx, "get_request")

	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return req, nil
}

// ListPending returns requests awaiting assignment, emergencies first and
// oldest first within each priority. The ordering is enforced here so it
// holds regardless of how the storage layer returns rows.
func (s *Service) ListPending(ctx context.Context) ([]models.AmbulanceRequest, error) {
	ctx = wrap.WithAction(ctx, "list_pending_requests")

	list, err := s.requests.ListPending(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Priority != list[j].Priority {
			return list[i].Priority == types.PriorityEmergency
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]models.AmbulanceRequest, error) {
	ctx = wrap.WithAction(ctx, "list_patient_requests")

	list, err := s.requests.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return list, nil
}

// ActiveRequest returns the driver's current assignment, or nil when the
// driver is free. A driver holds at most one non-terminal assignment.
func (s *Service) ActiveRequest(ctx context.Context, driverID uuid.UUID) (*models.AmbulanceRequest, error) {
	ctx = wrap.WithAction(ctx, "active_request")

	req, err := s.requests.ActiveByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, types.ErrRequestNotFound) {
			return nil, nil
		}
		return nil, wrap.Error(ctx, err)
	}
	return req, nil
}

// Approve atomically pairs a pending request with an available ambulance:
// the request and the ambulance rows are both locked, the request moves to
// assigned with distance and ETA computed from the driver's reported
// position, and the ambulance goes on_duty under the approving driver at
// that position. The estimate is frozen here; later movement never changes
// it. Two drivers racing to approve the same request, or two requests
// racing to claim the same ambulance, resolve to exactly one winner; the
// loser gets ErrAlreadyProcessed or ErrAmbulanceOnDuty.
func (s *Service) Approve(ctx context.Context, requestID, driverID uuid.UUID, driverName string, ambulanceID uuid.UUID, driverPos models.Location) (*models.AmbulanceRequest, error) {
	ctx = wrap.WithAction(ctx, "approve_request")
	ctx = wrap.WithDispatchID(ctx, requestID.String())

	if !driverPos.InRange() {
		return nil, wrap.Error(ctx, types.ErrInvalidCoordinate)
	}

	var (
		approved *models.AmbulanceRequest
		snapshot *models.Ambulance
	)

	err := s.trManager.Do(ctx, func(ctx context.Context) error {
		// Lock order is request then ambulance, everywhere.
		req, err := s.requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != types.StatusPending {
			return types.ErrAlreadyProcessed
		}

		amb, err := s.ambulances.GetForUpdate(ctx, ambulanceID)
		if err != nil {
			return err
		}
		switch amb.Status {
		case types.AmbulanceAvailable:
		case types.AmbulanceOnDuty:
			return types.ErrAmbulanceOnDuty
		default:
			return types.ErrAmbulanceUnavailable
		}

		now := time.Now()
		dist := geo.Distance(driverPos, req.Pickup)
		eta := geo.ETA(dist, req.Priority)
		req.DistanceKm = &dist
		req.ETAMinutes = &eta

		req.Status = types.StatusAssigned
		req.AmbulanceID = &ambulanceID
		req.DriverID = &driverID
		req.StampStatus(types.StatusAssigned, now)
		if err := s.requests.Update(ctx, req); err != nil {
			return err
		}

		amb.Status = types.AmbulanceOnDuty
		amb.DriverID = &driverID
		if driverName != "" {
			amb.DriverName = &driverName
		}
		amb.Position = &models.Position{
			Latitude:  driverPos.Latitude,
			Longitude: driverPos.Longitude,
			UpdatedAt: now,
		}
		if err := s.ambulances.Update(ctx, amb); err != nil {
			return err
		}

		approved = req
		cp := *amb
		snapshot = &cp
		return nil
	})
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	metrics.RecordDispatchRequest(serviceName, string(types.StatusAssigned))
	metrics.ActiveDispatchesGauge.WithLabelValues(serviceName).Inc()
	if snapshot != nil && s.publisher != nil {
		s.publisher.PublishSnapshot(ctx, snapshot)
	}
	s.log.Info(ctx, "request approved",
		"request_id", requestID.String(),
		"ambulance_id", ambulanceID.String(),
		"driver_id", driverID.String(),
	)
	return approved, nil
}

// Reject moves a pending request to rejected with a reason. Only pending
// requests can be rejected; anything later in the lifecycle has an
// ambulance committed to it and must run to completion.
func (s *Service) Reject(ctx context.Context, requestID uuid.UUID, reason string) (*models.AmbulanceRequest, error) {
	ctx = wrap.WithAction(ctx, "reject_request")
	ctx = wrap.WithDispatchID(ctx, requestID.String())

	var rejected *models.AmbulanceRequest

	err := s.trManager.Do(ctx, func(ctx context.Context) error {
		req, err := s.requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != types.StatusPending {
			return types.ErrAlreadyProcessed
		}

		req.Status = types.StatusRejected
		req.RejectionReason = &reason
		req.StampStatus(types.StatusRejected, time.Now())
		if err := s.requests.Update(ctx, req); err != nil {
			return err
		}

		rejected = req
		return nil
	})
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	metrics.RecordDispatchRequest(serviceName, string(types.StatusRejected))
	s.log.Info(ctx, "request rejected", "request_id", requestID.String(), "reason", reason)
	return rejected, nil
}

// Advance moves a request one step forward along
// assigned -> enroute -> arrived -> transporting -> delivered -> completed.
// Skipping steps or moving backwards is refused. The driver may attach the
// ambulance's current position; the update rides in the same transaction
// and the fresh snapshot is broadcast after commit. Reaching completed
// releases the ambulance back to available.
func (s *Service) Advance(ctx context.Context, requestID uuid.UUID, next types.RequestStatus, position *models.Location) (*models.AmbulanceRequest, error) {
	ctx = wrap.WithAction(ctx, "advance_request")
	ctx = wrap.WithDispatchID(ctx, requestID.String())

	if position != nil && !position.InRange() {
		return nil, wrap.Error(ctx, types.ErrInvalidCoordinate)
	}

	var (
		advanced *models.AmbulanceRequest
		snapshot *models.Ambulance
	)

	err := s.trManager.Do(ctx, func(ctx context.Context) error {
		req, err := s.requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !req.Status.CanAdvanceTo(next) {
			return types.ErrInvalidTransition
		}
		if req.AmbulanceID == nil {
			return types.ErrInvalidTransition
		}

		amb, err := s.ambulances.GetForUpdate(ctx, *req.AmbulanceID)
		if err != nil {
			return err
		}

		now := time.Now()
		req.Status = next
		req.StampStatus(next, now)
		if err := s.requests.Update(ctx, req); err != nil {
			return err
		}

		if position != nil {
			amb.Position = &models.Position{
				Latitude:  position.Latitude,
				Longitude: position.Longitude,
				UpdatedAt: now,
			}
		}
		if next == types.StatusCompleted {
			amb.Status = types.AmbulanceAvailable
		}
		if err := s.ambulances.Update(ctx, amb); err != nil {
			return err
		}

		advanced = req
		if position != nil {
			cp := *amb
			snapshot = &cp
		}
		return nil
	})
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	if next == types.StatusCompleted {
		metrics.RecordDispatchRequest(serviceName, string(types.StatusCompleted))
		metrics.ActiveDispatchesGauge.WithLabelValues(serviceName).Dec()
	}
	if snapshot != nil && s.publisher != nil {
		s.publisher.PublishSnapshot(ctx, snapshot)
	}

	s.log.Info(ctx, "request advanced",
		"request_id", requestID.String(),
		"status", string(next),
	)
	return advanced, nil
}
