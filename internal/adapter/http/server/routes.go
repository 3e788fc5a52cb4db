package server

import (
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	// System Health
	a.mux.HandleFunc("/health", a.routes.health.HealthCheck)

	a.setupDispatchRoutes()
	a.setupFleetRoutes()
	a.setupTrackingRoutes()

	// Swagger UI endpoint
	a.mux.HandleFunc("/swagger/", httpSwagger.Handler(httpSwagger.InstanceName(serviceName)))

	// Prometheus metrics endpoint
	a.mux.Handle("/metrics", promhttp.Handler())
}

// setupDispatchRoutes setups routes for the dispatch request lifecycle
func (a *API) setupDispatchRoutes() {
	a.mux.Handle("POST /requests", a.m.RequireRoles(a.routes.dispatch.CreateRequest, types.RolePatient))                                             // Create a new ambulance request
	a.mux.Handle("GET /requests/mine", a.m.RequireRoles(a.routes.dispatch.MyRequests, types.RolePatient))                                            // List the caller's own requests
	a.mux.Handle("GET /requests/pending", a.m.RequireRoles(a.routes.dispatch.PendingRequests, types.RoleDriver, types.RoleStaff, types.RoleAdmin))   // List requests awaiting assignment
	a.mux.Handle("POST /requests/{request_id}/approve", a.m.RequireRoles(a.routes.dispatch.Approve, types.RoleDriver))                               // Driver claims a pending request
	a.mux.Handle("POST /requests/{request_id}/reject", a.m.RequireRoles(a.routes.dispatch.Reject, types.RoleDriver, types.RoleStaff, types.RoleAdmin)) // Reject a pending request
	a.mux.Handle("POST /requests/{request_id}/status", a.m.RequireRoles(a.routes.dispatch.UpdateStatus, types.RoleDriver))                           // Advance an assigned request
	a.mux.Handle("GET /drivers/active-request", a.m.RequireRoles(a.routes.dispatch.ActiveRequest, types.RoleDriver))                                 // Driver's current assignment
}

// setupFleetRoutes setups routes for the ambulance fleet
func (a *API) setupFleetRoutes() {
	a.mux.Handle("POST /ambulances", a.m.RequireRoles(a.routes.ambulance.Register, types.RoleDriver, types.RoleStaff, types.RoleAdmin))                // Register a new ambulance
	a.mux.Handle("PATCH /ambulances/{ambulance_id}", a.m.RequireRoles(a.routes.ambulance.Update, types.RoleDriver, types.RoleStaff, types.RoleAdmin)) // Edit ambulance details
	a.mux.Handle("POST /ambulances/status/toggle", a.m.RequireRoles(a.routes.ambulance.ToggleStatus, types.RoleDriver))                 // Driver goes on/off shift
	a.mux.Handle("GET /ambulances", a.m.RequireRoles(a.routes.ambulance.List, types.RolePatient, types.RoleDriver, types.RoleStaff, types.RoleAdmin))               // List all ambulances
	a.mux.Handle("GET /ambulances/available", a.m.RequireRoles(a.routes.ambulance.ListAvailable, types.RolePatient, types.RoleDriver, types.RoleStaff, types.RoleAdmin)) // List ambulances free for dispatch
	a.mux.Handle("GET /ambulances/mine", a.m.RequireRoles(a.routes.ambulance.Mine, types.RoleDriver))                                   // Driver's own vehicle
	a.mux.Handle("POST /ambulances/{ambulance_id}/location", a.m.RequireRoles(a.routes.ambulance.UpdateLocation, types.RoleDriver))     // Report vehicle position
}

// setupTrackingRoutes setups WebSocket routes for live position feeds
func (a *API) setupTrackingRoutes() {
	a.mux.HandleFunc("GET /ws/ambulances", a.routes.tracking.HandleAll)                     // Fleet-wide position stream (staff and admin)
	a.mux.HandleFunc("GET /ws/ambulances/{ambulance_id}", a.routes.tracking.HandleOne)      // Single-vehicle position stream
}
