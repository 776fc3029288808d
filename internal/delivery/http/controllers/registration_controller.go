package controllers

import (
	"log/slog"
	"net/http"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// RegisterRequest is the request body for POST /registrations
type RegisterRequest struct {
	EventID string `json:"event_id"`
}

// RegistrationStatusResponse is the response body for GET /registrations.
type RegistrationStatusResponse struct {
	EventID    string `json:"event_id"`
	Registered bool   `json:"registered"`
}

// MyRegistrationResponse is one entry of GET /registrations/mine.
type MyRegistrationResponse struct {
	Registration *domain.Registration `json:"registration"`
	Event        EventResponse        `json:"event"`
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// CheckStatus godoc
// @Summary Check registration status
// @Description Reports whether the caller is registered for the event. Anonymous callers are never registered.
// @Tags registrations
// @Produce json
// @Param event_id query string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains event_id and registered"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations [get]
func (c *RegistrationController) CheckStatus(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("event_id")
	registered, err := c.Service.CheckStatus(r.Context(), middleware.CallerFromContext(r.Context()), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RegistrationStatusResponse{EventID: eventID, Registered: registered})
}

// Register godoc
// @Summary Register for an event
// @Description Registers the authenticated caller. A second registration for the same event is a conflict.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RegisterRequest true "Event to register for"
// @Success 201 {object} helpers.APIResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Service.Register(r.Context(), middleware.CallerFromContext(r.Context()), req.EventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// ListMyRegistrations godoc
// @Summary List my registrations
// @Description The caller's registrations with their events, newest first.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains registrations with events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/mine [get]
func (c *RegistrationController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := c.Service.ListMyRegistrations(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	out := make([]MyRegistrationResponse, 0, len(regs))
	for _, reg := range regs {
		out = append(out, MyRegistrationResponse{Registration: reg.Registration, Event: newEventResponse(reg.Event)})
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}

// ListRegistrants godoc
// @Summary List event registrants
// @Description The owning organizer or an admin lists the event's participants, oldest registration first.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 200 {object} helpers.APIResponse "data contains event_id, event_title and participants"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug}/registrations [get]
func (c *RegistrationController) ListRegistrants(w http.ResponseWriter, r *http.Request) {
	list, err := c.Service.ListRegistrants(r.Context(), middleware.CallerFromContext(r.Context()), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}
