package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cliniktrak/ambulance-dispatch/config"
	"github.com/cliniktrak/ambulance-dispatch/internal/adapter/http/handler"
	"github.com/cliniktrak/ambulance-dispatch/internal/adapter/http/middleware"
	wshandler "github.com/cliniktrak/ambulance-dispatch/internal/adapter/http/ws"
	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"
	wrap "github.com/cliniktrak/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/cliniktrak/ambulance-dispatch/pkg/wshub"
)

const serviceName = "dispatch"

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	dispatch  *handler.Dispatch
	ambulance *handler.Ambulance
	health    *handler.Health
	tracking  *wshandler.TrackingWS
}

func New(
	cfg config.Config,
	dispatchService handler.DispatchService,
	fleetService handler.FleetService,
	trackingService handler.TrackingService,
	subscriber wshandler.Subscriber,
	gateway wshandler.Authorizer,
	hub *wshub.Hub,
	tokens middleware.TokenVerifier,
	logger logger.Logger,
) (*API, error) {
	if tokens == nil {
		return nil, errors.New("token verifier is required")
	}

	routes := &handlers{
		dispatch:  handler.NewDispatch(dispatchService, logger),
		ambulance: handler.NewAmbulance(fleetService, trackingService, logger),
		health:    handler.NewHealth(serviceName, logger),
		tracking:  wshandler.NewTrackingWS(subscriber, gateway, hub, logger),
	}

	api := &API{
		mux:    http.NewServeMux(),
		routes: routes,
		m:      middleware.NewMiddleware(tokens, logger),
		addr:   fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		cfg:    cfg,
		log:    logger,
	}

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: api.withMiddleware(),
	}

	api.setupRoutes()

	return api, nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Auth(a.m.Logging(a.m.Metrics(serviceName)(a.mux)))))
}
