// Package fleet manages the ambulance roster: registration, vehicle
// detail edits, and the driver-facing availability toggle.
package fleet

import (
	"context"
	"errors"
	"time"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"
	wrap "github.com/cliniktrak/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/cliniktrak/ambulance-dispatch/pkg/metrics"
	"github.com/cliniktrak/ambulance-dispatch/pkg/trm"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
)

const serviceName = "fleet"

type AmbulanceRepo interface {
	Create(ctx context.Context, a *models.Ambulance) (*models.Ambulance, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Ambulance, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Ambulance, error)
	Update(ctx context.Context, a *models.Ambulance) error
	ByDriver(ctx context.Context, driverID uuid.UUID) (*models.Ambulance, error)
	// List returns the roster, optionally narrowed to available vehicles.
	List(ctx context.Context, onlyAvailable bool) ([]models.Ambulance, error)
	CountAvailable(ctx context.Context) (int, error)
}

type Service struct {
	ambulances AmbulanceRepo
	trManager  trm.TxManager
	log        logger.Logger
}

func NewService(ambulances AmbulanceRepo, trManager trm.TxManager, log logger.Logger) *Service {
	return &Service{
		ambulances: ambulances,
		trManager:  trManager,
		log:        log,
	}
}

// RegisterParams carries the fields needed to add a vehicle to the roster.
type RegisterParams struct {
	RegistrationNumber string
	VehicleModel       *string
	VehicleType        types.VehicleType
	DriverID           *uuid.UUID
	DriverName         *string
}

// Register adds a new ambulance in offline status. A driver can be bound
// to at most one vehicle; a second registration for the same driver is
// refused.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*models.Ambulance, error) {
	ctx = wrap.WithAction(ctx, "register_ambulance")

	var created *models.Ambulance

	// The one-vehicle-per-driver check and the insert share a transaction
	// so two concurrent registrations resolve to a single winner. The
	// unique index on driver_id backs this up at the storage layer.
	err := s.trManager.Do(ctx, func(ctx context.Context) error {
		if p.DriverID != nil {
			existing, err := s.ambulances.ByDriver(ctx, *p.DriverID)
			if err != nil && !errors.Is(err, types.ErrAmbulanceNotFound) {
				return err
			}
			if existing != nil {
				return types.ErrAmbulanceRegistered
			}
		}

		a := &models.Ambulance{
			ID:                 uuid.MustNew(),
			RegistrationNumber: p.RegistrationNumber,
			VehicleModel:       p.VehicleModel,
			VehicleType:        p.VehicleType,
			DriverID:           p.DriverID,
			DriverName:         p.DriverName,
			Status:             types.AmbulanceOffline,
			CreatedAt:          time.Now(),
		}

		inserted, err := s.ambulances.Create(ctx, a)
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	s.log.Info(ctx, "ambulance registered",
		"ambulance_id", created.ID.String(),
		"registration_number", created.RegistrationNumber,
	)
	return created, nil
}

// UpdateParams carries the editable vehicle details. Nil fields are left
// untouched.
type UpdateParams struct {
	RegistrationNumber *string
	VehicleModel       *string
	VehicleType        *types.VehicleType
	DriverID           *uuid.UUID
	DriverName         *string
}

// UpdateDetails edits the vehicle record. Operational status and position
// are owned by dispatch and tracking and cannot be set here.
func (s *Service) UpdateDetails(ctx context.Context, id uuid.UUID, p UpdateParams) (*models.Ambulance, error) {
	ctx = wrap.WithAction(ctx, "update_ambulance")

	var updated *models.Ambulance

	err := s.trManager.Do(ctx, func(ctx context.Context) error {
		a, err := s.ambulances.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if p.RegistrationNumber != nil {
			a.RegistrationNumber = *p.RegistrationNumber
		}
		if p.VehicleModel != nil {
			a.VehicleModel = p.VehicleModel
		}
		if p.VehicleType != nil {
			a.VehicleType = *p.VehicleType
		}
		if p.DriverID != nil {
			a.DriverID = p.DriverID
		}
		if p.DriverName != nil {
			a.DriverName = p.DriverName
		}

		if err := s.ambulances.Update(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	s.log.Info(ctx, "ambulance updated", "ambulance_id", id.String())
	return updated, nil
}

// Toggle flips the driver's own ambulance between available and offline.
// A vehicle that is on duty cannot change availability until its current
// request completes.
func (s *Service) Toggle(ctx context.Context, driverID uuid.UUID) (*models.Ambulance, error) {
	ctx = wrap.WithAction(ctx, "toggle_ambulance_status")

	var toggled *models.Ambulance

	err := s.trManager.Do(ctx, func(ctx context.Context) error {
		a, err := s.ambulances.ByDriver(ctx, driverID)
		if err != nil {
			if errors.Is(err, types.ErrAmbulanceNotFound) {
				return types.ErrNoAmbulance
			}
			return err
		}

		a, err = s.ambulances.GetForUpdate(ctx, a.ID)
		if err != nil {
			return err
		}

		switch a.Status {
		case types.AmbulanceAvailable:
			a.Status = types.AmbulanceOffline
		case types.AmbulanceOffline:
			a.Status = types.AmbulanceAvailable
		default:
			return types.ErrAmbulanceOnDuty
		}

		if err := s.ambulances.Update(ctx, a); err != nil {
			return err
		}
		toggled = a
		return nil
	})
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	s.refreshAvailableGauge(ctx)
	s.log.Info(ctx, "ambulance status toggled",
		"ambulance_id", toggled.ID.String(),
		"status", string(toggled.Status),
	)
	return toggled, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Ambulance, error) {
	ctx = wrap.WithAction(ctx, "get_ambulance")

	a, err := s.ambulances.Get(ctx, id)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return a, nil
}

// ByDriver returns the driver's own vehicle.
func (s *Service) ByDriver(ctx context.Context, driverID uuid.UUID) (*models.Ambulance, error) {
	ctx = wrap.WithAction(ctx, "get_driver_ambulance")

	a, err := s.ambulances.ByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, types.ErrAmbulanceNotFound) {
			return nil, wrap.Error(ctx, types.ErrNoAmbulance)
		}
		return nil, wrap.Error(ctx, err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, onlyAvailable bool) ([]models.Ambulance, error) {
	ctx = wrap.WithAction(ctx, "list_ambulances")

	list, err := s.ambulances.List(ctx, onlyAvailable)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return list, nil
}

func (s *Service) refreshAvailableGauge(ctx context.Context) {
	n, err := s.ambulances.CountAvailable(ctx)
	if err != nil {
		return
	}
	metrics.AmbulancesAvailableGauge.WithLabelValues(serviceName).Set(float64(n))
}
