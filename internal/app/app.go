package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cliniktrak/ambulance-dispatch/config"
	httpserver "github.com/cliniktrak/ambulance-dispatch/internal/adapter/http/server"
	repo "github.com/cliniktrak/ambulance-dispatch/internal/adapter/postgres"
	broker "github.com/cliniktrak/ambulance-dispatch/internal/adapter/rabbit"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/internal/service/dispatch"
	"github.com/cliniktrak/ambulance-dispatch/internal/service/fleet"
	"github.com/cliniktrak/ambulance-dispatch/internal/service/identity"
	"github.com/cliniktrak/ambulance-dispatch/internal/service/tracking"
	"github.com/cliniktrak/ambulance-dispatch/pkg/eventbus"
	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"
	postgresclient "github.com/cliniktrak/ambulance-dispatch/pkg/postgres"
	rabbitclient "github.com/cliniktrak/ambulance-dispatch/pkg/rabbit"
	"github.com/cliniktrak/ambulance-dispatch/pkg/trm"
	"github.com/cliniktrak/ambulance-dispatch/pkg/wshub"
)

type App struct {
	postgresDB *postgresclient.PostgreDB
	rabbitMQ   *rabbitclient.RabbitMQ
	broker     *broker.TrackingBroker
	httpServer *httpserver.API

	trackingService *tracking.Service
	bus             *eventbus.Bus[types.Channel, models.LocationEvent]
	hub             *wshub.Hub

	cfg config.Config
	log logger.Logger
}

// NewApplication builds the whole dependency graph: storage, broker,
// services and the HTTP surface.
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	postgresDB, err := postgresclient.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "Failed to setup database", err)
		return nil, err
	}

	rabbitMQ, err := rabbitclient.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "Failed to setup rabbitmq", err)
		return nil, err
	}

	trackingBroker := broker.NewTrackingBroker(rabbitMQ, log)
	if err := trackingBroker.Setup(ctx); err != nil {
		log.Error(ctx, "Failed to declare rabbitmq topology", err)
		return nil, err
	}

	// repositories
	ambulanceRepo := repo.NewAmbulanceRepo(postgresDB.Pool)
	requestRepo := repo.NewRequestRepo(postgresDB.Pool)
	trManager := trm.New(postgresDB.Pool)

	// services
	bus := eventbus.New[types.Channel, models.LocationEvent]()
	trackingService := tracking.NewService(ambulanceRepo, bus, trackingBroker, log)
	dispatchService := dispatch.NewService(requestRepo, ambulanceRepo, trManager, trackingService, log)
	fleetService := fleet.NewService(ambulanceRepo, trManager, log)
	gateway := tracking.NewGateway(&accessRepo{ambulances: ambulanceRepo, requests: requestRepo})
	tokenService := identity.NewTokenService(cfg.Auth.JWTSecret)

	hub := wshub.NewHub(log)

	httpServer, err := httpserver.New(
		cfg,
		dispatchService,
		fleetService,
		trackingService,
		trackingService,
		gateway,
		hub,
		tokenService,
		log,
	)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		return nil, err
	}

	return &App{
		postgresDB:      postgresDB,
		rabbitMQ:        rabbitMQ,
		broker:          trackingBroker,
		httpServer:      httpServer,
		trackingService: trackingService,
		bus:             bus,
		hub:             hub,
		cfg:             cfg,
		log:             log,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	defer func() {
		a.close(ctx)
		a.log.Info(ctx, "dispatch service closed")
	}()

	errCh := make(chan error, 1)
	a.httpServer.Run(ctx, errCh)

	consumerCtx, cancelConsumer := context.WithCancel(ctx)
	defer cancelConsumer()

	if a.cfg.RabbitMQ.ConsumeLocationUpdates {
		go func() {
			if err := a.broker.ConsumeLocationUpdates(consumerCtx, a.handleLocationUpdate); err != nil {
				a.log.Error(consumerCtx, "location update consumer stopped", err)
			}
		}()
	}

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	a.log.Info(ctx, "dispatch service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	}
}

// handleLocationUpdate feeds queued position reports through the same
// pipeline as HTTP location updates.
func (a *App) handleLocationUpdate(ctx context.Context, msg models.LocationUpdateMessage) error {
	_, err := a.trackingService.UpdatePosition(ctx, msg.AmbulanceID, msg.Latitude, msg.Longitude, msg.Timestamp, "rabbitmq")
	return err
}

func (a *App) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if a.hub != nil {
		a.hub.Close()
	}
	if a.bus != nil {
		a.bus.Close()
	}

	if a.rabbitMQ != nil {
		if err := a.rabbitMQ.Close(ctx); err != nil {
			a.log.Warn(ctx, "Failed to gracefully close rabbitmq connection", "error", err.Error())
		}
	}

	if a.postgresDB != nil && a.postgresDB.Pool != nil {
		a.postgresDB.Pool.Close()
	}
}
