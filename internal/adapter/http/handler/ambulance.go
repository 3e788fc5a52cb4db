package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cliniktrak/ambulance-dispatch/internal/adapter/http/handler/dto"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/internal/service/fleet"
	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"
	wrap "github.com/cliniktrak/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
	"github.com/cliniktrak/ambulance-dispatch/pkg/validator"
)

type Ambulance struct {
	fleet    FleetService
	tracking TrackingService
	l        logger.Logger
}

type FleetService interface {
	Register(ctx context.Context, p fleet.RegisterParams) (*models.Ambulance, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, p fleet.UpdateParams) (*models.Ambulance, error)
	Toggle(ctx context.Context, driverID uuid.UUID) (*models.Ambulance, error)
	ByDriver(ctx context.Context, driverID uuid.UUID) (*models.Ambulance, error)
	List(ctx context.Context, onlyAvailable bool) ([]models.Ambulance, error)
}

type TrackingService interface {
	UpdatePosition(ctx context.Context, ambulanceID uuid.UUID, lat, lon float64, at *time.Time, source string) (*models.Ambulance, error)
}

func NewAmbulance(fleet FleetService, tracking TrackingService, l logger.Logger) *Ambulance {
	return &Ambulance{
		fleet:    fleet,
		tracking: tracking,
		l:        l,
	}
}

// Register godoc
// @Summary      Register ambulance
// @Description  Adds a new ambulance to the roster in offline status
// @Tags         Ambulances
// @Accept       json
// @Produce      json
// @Param        request  body      dto.RegisterAmbulanceReq  true  "Vehicle details"
// @Success      201      {object}  dto.AmbulanceResponse
// @Failure      403      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Failure      422      {object}  map[string]string
// @Router       /ambulances [post]
func (h *Ambulance) Register(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "register_ambulance")

	var registerReq dto.RegisterAmbulanceReq
	if err := readJSON(w, r, &registerReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	registerReq.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	params := registerReq.ToParams()

	// A driver registers a vehicle for themselves; the binding comes from the
	// access token, not the request body. Staff and admins may register on
	// behalf of any driver.
	user := models.UserFromContext(ctx)
	if user.Role == types.RoleDriver {
		if params.DriverID != nil && *params.DriverID != user.ID {
			h.l.Warn(ctx, "driver tried to register a vehicle for another driver", "user_id", user.ID)
			errorResponse(w, http.StatusForbidden, "drivers may only register a vehicle for themselves")
			return
		}
		params.DriverID = &user.ID
		if params.DriverName == nil {
			params.DriverName = &user.Name
		}
	}

	created, err := h.fleet.Register(ctx, params)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register ambulance", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"ambulance": dto.FromAmbulanceModel(created)}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "ambulance registered", "ambulance_id", created.ID)
}

// Update godoc
// @Summary      Update ambulance details
// @Description  Edits vehicle details; operational status and position cannot be set here
// @Tags         Ambulances
// @Accept       json
// @Produce      json
// @Param        ambulance_id  path      string                  true  "Ambulance ID"
// @Param        request       body      dto.UpdateAmbulanceReq  true  "Fields to change"
// @Success      200           {object}  dto.AmbulanceResponse
// @Failure      404           {object}  map[string]string
// @Router       /ambulances/{ambulance_id} [patch]
func (h *Ambulance) Update(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "update_ambulance")

	ambulanceID, err := uuid.Parse(r.PathValue("ambulance_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid ambulance uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid ambulance uuid format")
		return
	}

	var updateReq dto.UpdateAmbulanceReq
	if err := readJSON(w, r, &updateReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	updateReq.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	updated, err := h.fleet.UpdateDetails(ctx, ambulanceID, updateReq.ToParams())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to update ambulance", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"ambulance": dto.FromAmbulanceModel(updated)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "ambulance updated", "ambulance_id", ambulanceID)
}

// ToggleStatus godoc
// @Summary      Toggle availability
// @Description  Flips the calling driver's ambulance between available and offline
// @Tags         Ambulances
// @Produce      json
// @Success      200  {object}  dto.AmbulanceResponse
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /ambulances/status/toggle [post]
func (h *Ambulance) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "toggle_ambulance_status")

	user := models.UserFromContext(ctx)

	toggled, err := h.fleet.Toggle(ctx, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to toggle ambulance status", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"ambulance": dto.FromAmbulanceModel(toggled),
		"message":   "Ambulance is now " + string(toggled.Status),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "ambulance status toggled", "ambulance_id", toggled.ID, "status", toggled.Status)
}

// List godoc
// @Summary      List ambulances
// @Description  Returns the full roster with last known positions
// @Tags         Ambulances
// @Produce      json
// @Success      200  {object}  map[string][]dto.AmbulanceResponse
// @Router       /ambulances [get]
func (h *Ambulance) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_ambulances")
	h.list(ctx, w, false)
}

// ListAvailable godoc
// @Summary      List available ambulances
// @Description  Returns ambulances currently in available status
// @Tags         Ambulances
// @Produce      json
// @Success      200  {object}  map[string][]dto.AmbulanceResponse
// @Router       /ambulances/available [get]
func (h *Ambulance) ListAvailable(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_available_ambulances")
	h.list(ctx, w, true)
}

func (h *Ambulance) list(ctx context.Context, w http.ResponseWriter, onlyAvailable bool) {
	list, err := h.fleet.List(ctx, onlyAvailable)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list ambulances", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"ambulances": dto.FromAmbulanceModels(list)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Mine godoc
// @Summary      Driver's own ambulance
// @Description  Returns the vehicle bound to the calling driver
// @Tags         Ambulances
// @Produce      json
// @Success      200  {object}  dto.AmbulanceResponse
// @Failure      404  {object}  map[string]string
// @Router       /ambulances/mine [get]
func (h *Ambulance) Mine(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_my_ambulance")

	user := models.UserFromContext(ctx)

	a, err := h.fleet.ByDriver(ctx, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get driver ambulance", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"ambulance": dto.FromAmbulanceModel(a)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// UpdateLocation godoc
// @Summary      Report position
// @Description  Overwrites the ambulance's last known position and broadcasts the snapshot to subscribers
// @Tags         Ambulances
// @Accept       json
// @Produce      json
// @Param        ambulance_id  path      string                 true  "Ambulance ID"
// @Param        request       body      dto.LocationUpdateReq  true  "Coordinates"
// @Success      200           {object}  dto.AmbulanceResponse
// @Failure      403           {object}  map[string]string
// @Failure      404           {object}  map[string]string
// @Failure      422           {object}  map[string]string
// @Router       /ambulances/{ambulance_id}/location [post]
func (h *Ambulance) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "update_ambulance_location")

	ambulanceID, err := uuid.Parse(r.PathValue("ambulance_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid ambulance uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid ambulance uuid format")
		return
	}

	var locReq dto.LocationUpdateReq
	if err := readJSON(w, r, &locReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	locReq.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	// Only the driver bound to the vehicle may report its position.
	user := models.UserFromContext(ctx)
	mine, err := h.fleet.ByDriver(ctx, user.ID)
	if err != nil || mine.ID != ambulanceID {
		h.l.Warn(ctx, "position report for a vehicle not bound to the caller", "user_id", user.ID, "ambulance_id", ambulanceID)
		errorResponse(w, http.StatusForbidden, "vehicle is not bound to the calling driver")
		return
	}

	updated, err := h.tracking.UpdatePosition(ctx, ambulanceID, *locReq.Latitude, *locReq.Longitude, locReq.Timestamp, "http")
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to update ambulance location", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"ambulance": dto.FromAmbulanceModel(updated)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "ambulance location updated", "ambulance_id", ambulanceID)
}
