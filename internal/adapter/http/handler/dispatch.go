package handler

import (
	"context"
	"net/http"

	"github.com/cliniktrak/ambulance-dispatch/internal/adapter/http/handler/dto"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"
	wrap "github.com/cliniktrak/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
	"github.com/cliniktrak/ambulance-dispatch/pkg/validator"
)

type Dispatch struct {
	service DispatchService
	l       logger.Logger
}

type DispatchService interface {
	Create(ctx context.Context, req *models.AmbulanceRequest) (*models.AmbulanceRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AmbulanceRequest, error)
	ListPending(ctx context.Context) ([]models.AmbulanceRequest, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]models.AmbulanceRequest, error)
	ActiveRequest(ctx context.Context, driverID uuid.UUID) (*models.AmbulanceRequest, error)
	Approve(ctx context.Context, requestID, driverID uuid.UUID, driverName string, ambulanceID uuid.UUID, driverPos models.Location) (*models.AmbulanceRequest, error)
	Reject(ctx context.Context, requestID uuid.UUID, reason string) (*models.AmbulanceRequest, error)
	Advance(ctx context.Context, requestID uuid.UUID, next types.RequestStatus, position *models.Location) (*models.AmbulanceRequest, error)
}

func NewDispatch(service DispatchService, l logger.Logger) *Dispatch {
	return &Dispatch{
		service: service,
		l:       l,
	}
}

// CreateRequest godoc
// @Summary      Create ambulance request
// @Description  Creates a new pending ambulance request for the calling patient
// @Tags         Requests
// @Accept       json
// @Produce      json
// @Param        request  body      dto.CreateRequestReq  true  "Request details"
// @Success      201      {object}  dto.RequestResponse
// @Failure      401      {object}  map[string]string
// @Failure      422      {object}  map[string]string
// @Router       /requests [post]
func (h *Dispatch) CreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "create_request")

	var createReq dto.CreateRequestReq
	if err := readJSON(w, r, &createReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	createReq.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	user := models.UserFromContext(ctx)

	created, err := h.service.Create(ctx, createReq.ToModel(user.ID))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create ambulance request", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"request": dto.FromRequestModel(created)}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "ambulance request created", "request_id", created.ID)
}

// MyRequests godoc
// @Summary      List own requests
// @Description  Returns the calling patient's requests, newest first
// @Tags         Requests
// @Produce      json
// @Success      200  {object}  map[string][]dto.RequestResponse
// @Failure      401  {object}  map[string]string
// @Router       /requests/mine [get]
func (h *Dispatch) MyRequests(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_my_requests")

	user := models.UserFromContext(ctx)

	list, err := h.service.ListByPatient(ctx, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list patient requests", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"requests": dto.FromRequestModels(list)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// PendingRequests godoc
// @Summary      List pending requests
// @Description  Returns the dispatch queue, emergencies first
// @Tags         Requests
// @Produce      json
// @Success      200  {object}  map[string][]dto.RequestResponse
// @Failure      403  {object}  map[string]string
// @Router       /requests/pending [get]
func (h *Dispatch) PendingRequests(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_pending_requests")

	list, err := h.service.ListPending(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list pending requests", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"requests": dto.FromRequestModels(list)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Approve godoc
// @Summary      Approve request
// @Description  Assigns an available ambulance to a pending request
// @Tags         Requests
// @Accept       json
// @Produce      json
// @Param        request_id  path      string                 true  "Request ID"
// @Param        request     body      dto.ApproveRequestReq  true  "Ambulance to assign"
// @Success      200         {object}  dto.RequestResponse
// @Failure      404         {object}  map[string]string
// @Failure      409         {object}  map[string]string
// @Router       /requests/{request_id}/approve [post]
func (h *Dispatch) Approve(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "approve_request")

	requestID, err := uuid.Parse(r.PathValue("request_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid request uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid request uuid format")
		return
	}

	var approveReq dto.ApproveRequestReq
	if err := readJSON(w, r, &approveReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	approveReq.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	ambulanceID, _ := uuid.Parse(approveReq.AmbulanceID)
	user := models.UserFromContext(ctx)

	approved, err := h.service.Approve(ctx, requestID, user.ID, user.Name, ambulanceID, approveReq.Position())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to approve request", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"request": dto.FromRequestModel(approved),
		"message": "Request approved, ambulance assigned",
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "request approved", "request_id", requestID, "ambulance_id", ambulanceID)
}

// Reject godoc
// @Summary      Reject request
// @Description  Rejects a pending request with a reason
// @Tags         Requests
// @Accept       json
// @Produce      json
// @Param        request_id  path      string                true  "Request ID"
// @Param        request     body      dto.RejectRequestReq  true  "Rejection reason"
// @Success      200         {object}  dto.RequestResponse
// @Failure      404         {object}  map[string]string
// @Failure      409         {object}  map[string]string
// @Router       /requests/{request_id}/reject [post]
func (h *Dispatch) Reject(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "reject_request")

	requestID, err := uuid.Parse(r.PathValue("request_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid request uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid request uuid format")
		return
	}

	var rejectReq dto.RejectRequestReq
	if err := readJSON(w, r, &rejectReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	rejectReq.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	rejected, err := h.service.Reject(ctx, requestID, rejectReq.Reason)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to reject request", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"request": dto.FromRequestModel(rejected)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "request rejected", "request_id", requestID)
}

// UpdateStatus godoc
// @Summary      Advance request status
// @Description  Moves a request one step forward along its lifecycle, optionally reporting the ambulance position
// @Tags         Requests
// @Accept       json
// @Produce      json
// @Param        request_id  path      string               true  "Request ID"
// @Param        request     body      dto.StatusUpdateReq  true  "Target status and optional position"
// @Success      200         {object}  dto.RequestResponse
// @Failure      404         {object}  map[string]string
// @Failure      409         {object}  map[string]string
// @Router       /requests/{request_id}/status [post]
func (h *Dispatch) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "update_request_status")

	requestID, err := uuid.Parse(r.PathValue("request_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid request uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid request uuid format")
		return
	}

	var statusReq dto.StatusUpdateReq
	if err := readJSON(w, r, &statusReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	statusReq.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	advanced, err := h.service.Advance(ctx, requestID, types.RequestStatus(statusReq.Status), statusReq.Position())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to advance request", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"request": dto.FromRequestModel(advanced)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "request status updated", "request_id", requestID, "status", statusReq.Status)
}

// ActiveRequest godoc
// @Summary      Driver's active request
// @Description  Returns the calling driver's current assignment, if any
// @Tags         Requests
// @Produce      json
// @Success      200  {object}  dto.RequestResponse
// @Failure      401  {object}  map[string]string
// @Router       /drivers/active-request [get]
func (h *Dispatch) ActiveRequest(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "driver_active_request")

	user := models.UserFromContext(ctx)

	active, err := h.service.ActiveRequest(ctx, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get active request", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{}
	if active != nil {
		response["request"] = dto.FromRequestModel(active)
	} else {
		response["request"] = nil
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
