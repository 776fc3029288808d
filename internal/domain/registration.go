package domain

import (
	"context"
	"time"
)

// Registration records that a user signed up for an event. A user holds at most one
// registration per event; the storage layer enforces it.
// swagger:model Registration
type Registration struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewRegistration creates a new Registration. ID is typically set by the repository on create.
func NewRegistration(userID, eventID string, registeredAt time.Time) *Registration {
	return &Registration{
		UserID:       userID,
		EventID:      eventID,
		RegisteredAt: registeredAt,
	}
}

// Registrant is one participant row of an event's registrant list.
// swagger:model Registrant
type Registrant struct {
	RegistrationID string      `json:"registration_id"`
	RegisteredAt   time.Time   `json:"registered_at"`
	User           UserSummary `json:"user"`
}

// EventRegistrants is the registrant list of one event, oldest registration first.
// swagger:model EventRegistrants
type EventRegistrants struct {
	EventID      string        `json:"event_id"`
	EventTitle   string        `json:"event_title"`
	Participants []*Registrant `json:"participants"`
}

// RegistrationWithEvent bundles a registration with its related event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// Create inserts the registration. Returns ErrAlreadyRegistered on a duplicate (user, event)
	// pair and ErrNotFound when the user or event does not exist.
	Create(ctx context.Context, reg *Registration) error
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	// ListByEventID returns the event's registrants, oldest first.
	ListByEventID(ctx context.Context, eventID string) ([]*Registrant, error)
	// ListByUserID returns the user's registrations with their events, newest registration first.
	ListByUserID(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
}

// RegistrationService defines attendee-facing registration operations.
type RegistrationService interface {
	// CheckStatus reports whether the caller is registered. Anonymous callers are never registered.
	CheckStatus(ctx context.Context, caller Caller, eventID string) (bool, error)
	Register(ctx context.Context, caller Caller, eventID string) (*Registration, error)
	ListRegistrants(ctx context.Context, caller Caller, slug string) (*EventRegistrants, error)
	ListMyRegistrations(ctx context.Context, caller Caller) ([]*RegistrationWithEvent, error)
}
