package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"campusevents/internal/domain"
)

// maxCreateAttempts bounds how often CreateEvent re-probes the slug after losing an insert race.
const maxCreateAttempts = 3

type eventService struct {
	eventRepo domain.EventRepository
	media     domain.MediaStore
	logger    *slog.Logger
}

func NewEventService(eventRepo domain.EventRepository, media domain.MediaStore, logger *slog.Logger) domain.EventService {
	return &eventService{
		eventRepo: eventRepo,
		media:     media,
		logger:    logger,
	}
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	var (
		events []*domain.Event
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.eventRepo.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.eventRepo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	event, err := s.eventRepo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListManagedEvents(ctx context.Context, caller domain.Caller) ([]*domain.Event, error) {
	if err := domain.AuthorizeCreate(caller.Role, caller.ID).Err(); err != nil {
		return nil, err
	}
	filter := domain.EventFilter{OrderBy: domain.EventOrderCreatedDesc}
	if caller.Role != domain.RoleAdmin {
		filter.OrganizerID = caller.ID
	}
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list managed events: %w", err)
	}
	return events, nil
}

// validatedInput is an EventInput after parsing.
type validatedInput struct {
	title       string
	description string
	date        time.Time
	time        string
	location    string
	price       string
	benefits    []string
	baseSlug    string
}

// validateInput reports every problem with in and poster at once.
func validateInput(in domain.EventInput, poster *domain.Image, posterRequired bool) (*validatedInput, error) {
	problems := in.Validate()
	v := &validatedInput{
		title:       strings.TrimSpace(in.Title),
		description: strings.TrimSpace(in.Description),
		time:        strings.TrimSpace(in.Time),
		location:    strings.TrimSpace(in.Location),
		price:       strings.TrimSpace(in.Price),
		benefits:    domain.ParseBenefits(in.Benefits),
	}
	if strings.TrimSpace(in.Date) != "" {
		date, err := domain.ParseEventDate(in.Date)
		if err != nil {
			problems = append(problems, "invalid date format")
		}
		v.date = date
	}
	if v.title != "" {
		v.baseSlug = domain.Slugify(v.title)
		if v.baseSlug == "" {
			problems = append(problems, "title must contain at least one letter or digit")
		}
	}
	switch {
	case poster == nil && posterRequired:
		problems = append(problems, "poster is required")
	case poster != nil:
		var verr *domain.ValidationError
		if err := poster.Validate("poster"); errors.As(err, &verr) {
			problems = append(problems, verr.Problems...)
		}
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}
	return v, nil
}

// resolveSlug returns the first free candidate among base, base-1, ... base-MaxSlugSuffix.
// excludeID lets an event keep a slug it already owns.
func (s *eventService) resolveSlug(ctx context.Context, base, excludeID string) (string, error) {
	for n := 0; n <= domain.MaxSlugSuffix; n++ {
		candidate := domain.SlugCandidate(base, n)
		if domain.IsReservedSlug(candidate) {
			continue
		}
		exists, err := s.eventRepo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", domain.ErrDuplicateSlug
}

func (s *eventService) uploadPoster(ctx context.Context, name string, poster *domain.Image) (string, error) {
	url, err := s.media.Upload(ctx, domain.FolderEventPosters, name, poster)
	if err != nil {
		return "", fmt.Errorf("upload poster: %w", err)
	}
	return url, nil
}

func (s *eventService) CreateEvent(ctx context.Context, caller domain.Caller, in domain.EventInput, poster *domain.Image) (*domain.Event, error) {
	if err := domain.AuthorizeCreate(caller.Role, caller.ID).Err(); err != nil {
		return nil, err
	}
	v, err := validateInput(in, poster, true)
	if err != nil {
		return nil, err
	}
	slug, err := s.resolveSlug(ctx, v.baseSlug, "")
	if err != nil {
		return nil, err
	}
	imageURL, err := s.uploadPoster(ctx, v.baseSlug, poster)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	event := &domain.Event{
		Title:       v.title,
		Description: v.description,
		Date:        v.date,
		Time:        v.time,
		Location:    v.location,
		Price:       v.price,
		ImageURL:    imageURL,
		OrganizerID: caller.ID,
		Status:      domain.EventStatusUpcoming,
		Benefits:    v.benefits,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.insertEvent(ctx, event, v.baseSlug, slug); err != nil {
		s.logger.WarnContext(ctx, "event not created, uploaded poster is orphaned", "image_url", imageURL, "err", err)
		return nil, err
	}
	return s.reload(ctx, event), nil
}

// insertEvent stores event under slug, re-probing from base when a concurrent insert takes it first.
func (s *eventService) insertEvent(ctx context.Context, event *domain.Event, base, slug string) error {
	for attempt := 1; ; attempt++ {
		event.Slug = slug
		err := s.eventRepo.Create(ctx, event)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateSlug) {
			return fmt.Errorf("create event: %w", err)
		}
		if attempt == maxCreateAttempts {
			return err
		}
		s.logger.InfoContext(ctx, "slug taken concurrently, retrying", "slug", slug, "attempt", attempt)
		if slug, err = s.resolveSlug(ctx, base, ""); err != nil {
			return err
		}
	}
}

// reload re-reads event to pick up the organizer summary. On failure the written event is returned as is.
func (s *eventService) reload(ctx context.Context, event *domain.Event) *domain.Event {
	fresh, err := s.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "reload after write failed", "event_id", event.ID, "err", err)
		return event
	}
	return fresh
}

func (s *eventService) UpdateEvent(ctx context.Context, caller domain.Caller, slug string, in domain.EventInput, poster *domain.Image) (*domain.Event, error) {
	event, err := s.GetEventBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(caller.Role, caller.ID, event.OrganizerID).Err(); err != nil {
		return nil, err
	}
	v, err := validateInput(in, poster, false)
	if err != nil {
		return nil, err
	}

	if v.title != event.Title {
		newSlug, err := s.resolveSlug(ctx, v.baseSlug, event.ID)
		if err != nil {
			return nil, err
		}
		event.Slug = newSlug
	}
	if poster != nil {
		url, err := s.uploadPoster(ctx, event.Slug, poster)
		if err != nil {
			return nil, err
		}
		event.ImageURL = url
	}

	event.Title = v.title
	event.Description = v.description
	event.Date = v.date
	event.Time = v.time
	event.Location = v.location
	event.Price = v.price
	event.Benefits = v.benefits
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if poster != nil {
			s.logger.WarnContext(ctx, "event not updated, uploaded poster is orphaned", "image_url", event.ImageURL, "err", err)
		}
		if errors.Is(err, domain.ErrDuplicateSlug) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.reload(ctx, event), nil
}

func (s *eventService) DeleteEvent(ctx context.Context, caller domain.Caller, slug string) error {
	event, err := s.GetEventBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := domain.Authorize(caller.Role, caller.ID, event.OrganizerID).Err(); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, event.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
