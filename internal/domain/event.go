package domain

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "UPCOMING"
	EventStatusCompleted EventStatus = "COMPLETED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

// ParseEventStatus parses s case-insensitively. ok is false when s names no known status.
func ParseEventStatus(s string) (status EventStatus, ok bool) {
	switch st := EventStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case EventStatusUpcoming, EventStatusCompleted, EventStatusCancelled:
		return st, true
	}
	return "", false
}

// Event represents a campus event
// swagger:model Event
type Event struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        time.Time    `json:"date"`
	Time        string       `json:"time"`
	Location    string       `json:"location"`
	Price       string       `json:"price"`
	ImageURL    string       `json:"image_url"`
	Slug        string       `json:"slug"`
	OrganizerID string       `json:"organizer_id"`
	Status      EventStatus  `json:"status"`
	Benefits    []string     `json:"benefits"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Organizer   *UserSummary `json:"organizer,omitempty"`
}

// EventInput is the raw, textual form of an event as submitted by a client.
// Date and Benefits are parsed by the service.
type EventInput struct {
	Title       string `schema:"title"`
	Description string `schema:"description"`
	Date        string `schema:"date"`
	Time        string `schema:"time"`
	Location    string `schema:"location"`
	Price       string `schema:"price"`
	Benefits    string `schema:"benefits"`
}

// Validate returns one problem per missing required field.
func (in EventInput) Validate() []string {
	var errs []string
	required := []struct{ name, value string }{
		{"title", in.Title},
		{"description", in.Description},
		{"date", in.Date},
		{"time", in.Time},
		{"location", in.Location},
		{"price", in.Price},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, f.name+" is required")
		}
	}
	return errs
}

// EventOrder selects the sort order of an event listing.
type EventOrder string

const (
	EventOrderCreatedDesc EventOrder = "created_at_desc"
	EventOrderDateAsc     EventOrder = "date_asc"
)

// ParseEventOrder accepts the order names used by clients. Unknown values fall back to newest first.
func ParseEventOrder(s string) EventOrder {
	switch strings.TrimSpace(s) {
	case "date_asc":
		return EventOrderDateAsc
	default:
		return EventOrderCreatedDesc
	}
}

// EventFilter narrows an event listing. Empty fields do not filter.
type EventFilter struct {
	Status      EventStatus
	OrganizerID string
	OrderBy     EventOrder
	Pagination  PaginationParams
}

var benefitSeparator = regexp.MustCompile(`[,\n]`)

// ParseBenefits splits a comma or newline separated list, trimming entries and dropping empties.
// The result is never nil.
func ParseBenefits(raw string) []string {
	out := []string{}
	for _, part := range benefitSeparator.Split(raw, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseEventDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
// The result is the calendar day at midnight UTC.
func ParseEventDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, NewValidationError("invalid date format")
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	// Create inserts the event and sets its ID. Returns ErrDuplicateSlug when the slug is taken.
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetBySlug returns the event with its organizer summary populated.
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	// SlugExists reports whether slug is used by an event other than excludeID.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	Count(ctx context.Context, filter EventFilter) (int, error)
	// Update persists every mutable field of event. Returns ErrDuplicateSlug when the slug is taken.
	Update(ctx context.Context, event *Event) error
	// Delete removes the event and, through the foreign key, its registrations.
	Delete(ctx context.Context, id string) error
}

// EventService defines event listing and management operations.
type EventService interface {
	ListEvents(ctx context.Context, filter EventFilter) ([]*Event, int, error)
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	ListManagedEvents(ctx context.Context, caller Caller) ([]*Event, error)
	CreateEvent(ctx context.Context, caller Caller, in EventInput, poster *Image) (*Event, error)
	// UpdateEvent replaces the event's fields. A nil poster keeps the current image.
	UpdateEvent(ctx context.Context, caller Caller, slug string, in EventInput, poster *Image) (*Event, error)
	DeleteEvent(ctx context.Context, caller Caller, slug string) error
}
