package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// EventResponse is the client-facing form of an event. Date is a calendar day (YYYY-MM-DD).
// swagger:model EventResponse
type EventResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	Location    string              `json:"location"`
	Price       string              `json:"price"`
	ImageURL    string              `json:"image_url"`
	Slug        string              `json:"slug"`
	OrganizerID string              `json:"organizer_id"`
	Status      domain.EventStatus  `json:"status"`
	Benefits    []string            `json:"benefits"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Organizer   *domain.UserSummary `json:"organizer,omitempty"`
}

func newEventResponse(e *domain.Event) EventResponse {
	benefits := e.Benefits
	if benefits == nil {
		benefits = []string{}
	}
	return EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date.Format(time.DateOnly),
		Time:        e.Time,
		Location:    e.Location,
		Price:       e.Price,
		ImageURL:    e.ImageURL,
		Slug:        e.Slug,
		OrganizerID: e.OrganizerID,
		Status:      e.Status,
		Benefits:    benefits,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Organizer:   e.Organizer,
	}
}

func newEventResponses(events []*domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResponse(e))
	}
	return out
}

// ListEventsResponse is the response body for GET /events.
type ListEventsResponse struct {
	Items      []EventResponse        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// EventSuccessResponse is the success envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  EventResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteEventResponse is the response body for DELETE /events/{slug}.
type DeleteEventResponse struct {
	Status string `json:"status"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// listFilter builds the public listing filter. A missing status means UPCOMING; an unknown one is ignored.
func (c *EventController) listFilter(r *http.Request) domain.EventFilter {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Status:     domain.EventStatusUpcoming,
		OrderBy:    domain.ParseEventOrder(q.Get("order_by")),
		Pagination: helpers.ParsePagination(r),
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, ok := domain.ParseEventStatus(raw)
		if !ok {
			c.Logger.WarnContext(r.Context(), "ignoring unknown event status", "status", raw)
			status = ""
		}
		filter.Status = status
	}
	return filter
}

// ListEvents godoc
// @Summary List events
// @Description Public, paginated event listing. status defaults to UPCOMING; unknown values list every status. order_by is created_at_desc (default) or date_asc.
// @Tags events
// @Produce json
// @Param status query string false "UPCOMING, COMPLETED or CANCELLED"
// @Param order_by query string false "created_at_desc or date_asc"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100); alias: limit"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := c.listFilter(r)
	events, total, err := c.Service.ListEvents(r.Context(), filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Items:      newEventResponses(events),
		Pagination: helpers.NewPaginationMeta(filter.Pagination.Page, filter.Pagination.PageSize, total),
	})
}

// GetEvent godoc
// @Summary Get an event by slug
// @Description Public. Returns the event with its organizer summary.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetEventBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponse(event))
}

// ListMyEvents godoc
// @Summary List managed events
// @Description Organizers get their own events, admins get every event, newest first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/mine [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListManagedEvents(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponses(events))
}

// readEventForm parses the multipart event form and its optional poster.
func (c *EventController) readEventForm(w http.ResponseWriter, r *http.Request) (domain.EventInput, *domain.Image, bool) {
	var in domain.EventInput
	if !helpers.ParseMultipartForm(w, r, &in) {
		return in, nil, false
	}
	poster, err := helpers.FormImage(r, "poster")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return in, nil, false
	}
	return in, poster, true
}

// CreateEvent godoc
// @Summary Create an event
// @Description Organizers and admins only. Multipart form; benefits are separated by commas or newlines. The slug is derived from the title.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param date formData string true "YYYY-MM-DD or RFC 3339"
// @Param time formData string true "Time of day"
// @Param location formData string true "Location"
// @Param price formData string true "Price"
// @Param benefits formData string false "Comma or newline separated benefits"
// @Param poster formData file true "Poster image"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	in, poster, ok := c.readEventForm(w, r)
	if !ok {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), middleware.CallerFromContext(r.Context()), in, poster)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, newEventResponse(event))
}

// UpdateEvent godoc
// @Summary Update an event
// @Description The owning organizer or an admin replaces the event's fields. Omitting the poster keeps the current image. A changed title yields a new slug.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param date formData string true "YYYY-MM-DD or RFC 3339"
// @Param time formData string true "Time of day"
// @Param location formData string true "Location"
// @Param price formData string true "Price"
// @Param benefits formData string false "Comma or newline separated benefits"
// @Param poster formData file false "Poster image"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	in, poster, ok := c.readEventForm(w, r)
	if !ok {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), middleware.CallerFromContext(r.Context()), r.PathValue("slug"), in, poster)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponse(event))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description The owning organizer or an admin deletes the event and its registrations.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteEvent(r.Context(), middleware.CallerFromContext(r.Context()), r.PathValue("slug")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}
