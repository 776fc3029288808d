package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusevents/internal/domain"
)

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	userRepo         domain.UserRepository
	emailService     domain.EmailService
	logger           *slog.Logger
}

// NewRegistrationService creates a RegistrationService. emailService may be nil.
func NewRegistrationService(
	registrationRepo domain.RegistrationRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		emailService:     emailService,
		logger:           logger,
	}
}

// parseEventID returns the trimmed event id, or a validation error when it is blank or not a UUID.
func parseEventID(eventID string) (string, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return "", domain.NewValidationError("event_id is required")
	}
	if _, err := uuid.Parse(eventID); err != nil {
		return "", domain.NewValidationError("event_id must be a valid UUID")
	}
	return eventID, nil
}

func (s *registrationService) CheckStatus(ctx context.Context, caller domain.Caller, eventID string) (bool, error) {
	if !caller.Authenticated() {
		return false, nil
	}
	eventID, err := parseEventID(eventID)
	if err != nil {
		return false, err
	}
	ok, err := s.registrationRepo.Exists(ctx, caller.ID, eventID)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return ok, nil
}

func (s *registrationService) Register(ctx context.Context, caller domain.Caller, eventID string) (*domain.Registration, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	eventID, err := parseEventID(eventID)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	reg := domain.NewRegistration(caller.ID, event.ID, time.Now())
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	s.sendConfirmation(ctx, caller.ID, event)
	return reg, nil
}

// sendConfirmation emails the attendee. Failures are logged only.
func (s *registrationService) sendConfirmation(ctx context.Context, userID string, event *domain.Event) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "registration email skipped", "user_id", userID, "err", err)
		return
	}
	data := &domain.RegistrationConfirmationEmailData{
		Email:      user.Email,
		Name:       user.Name,
		EventTitle: event.Title,
		EventDate:  event.Date.Format(time.DateOnly),
		EventTime:  event.Time,
		Location:   event.Location,
		EventSlug:  event.Slug,
	}
	if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "registration email failed", "user_id", userID, "event_id", event.ID, "err", err)
	}
}

func (s *registrationService) ListRegistrants(ctx context.Context, caller domain.Caller, slug string) (*domain.EventRegistrants, error) {
	event, err := s.eventRepo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := domain.Authorize(caller.Role, caller.ID, event.OrganizerID).Err(); err != nil {
		return nil, err
	}
	participants, err := s.registrationRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	return &domain.EventRegistrants{
		EventID:      event.ID,
		EventTitle:   event.Title,
		Participants: participants,
	}, nil
}

func (s *registrationService) ListMyRegistrations(ctx context.Context, caller domain.Caller) ([]*domain.RegistrationWithEvent, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	regs, err := s.registrationRepo.ListByUserID(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}
