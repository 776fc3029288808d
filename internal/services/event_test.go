package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"campusevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminCaller     = domain.Caller{ID: "admin-1", Role: domain.RoleAdmin}
	ownerCaller     = domain.Caller{ID: "org-1", Role: domain.RoleOrganizer}
	otherOrgCaller  = domain.Caller{ID: "org-2", Role: domain.RoleOrganizer}
	attendeeCaller  = domain.Caller{ID: "user-9", Role: domain.RoleUser}
	anonymousCaller = domain.Caller{}
)

func newTestEventService() (domain.EventService, *fakeEventRepo, *fakeMediaStore) {
	repo := newFakeEventRepo()
	media := &fakeMediaStore{}
	return NewEventService(repo, media, discardLogger()), repo, media
}

func seedEvent(repo *fakeEventRepo, title, slug, organizerID string) *domain.Event {
	now := time.Now()
	return repo.add(&domain.Event{
		Title:       title,
		Slug:        slug,
		OrganizerID: organizerID,
		Date:        time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		Time:        "10:00",
		Location:    "Lab 3",
		Price:       "Free",
		ImageURL:    "https://media.test/event_posters/original",
		Benefits:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, repo, media := newTestEventService()
		ev, err := svc.CreateEvent(ctx, ownerCaller, validEventInput("Go Meetup!"), pngImage())
		require.NoError(t, err)
		require.NotEmpty(t, ev.ID)
		assert.Equal(t, "go-meetup", ev.Slug)
		assert.Equal(t, domain.EventStatusUpcoming, ev.Status)
		assert.Equal(t, ownerCaller.ID, ev.OrganizerID)
		assert.Equal(t, []string{"Snacks", "Certificate", "Networking"}, ev.Benefits)
		assert.Equal(t, time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC), ev.Date)
		assert.Equal(t, "https://media.test/event_posters/go-meetup", ev.ImageURL)
		assert.False(t, ev.CreatedAt.IsZero())
		assert.Equal(t, []string{"event_posters/go-meetup"}, media.uploads)
		assert.Len(t, repo.byID, 1)
	})

	t.Run("reserved slug is skipped", func(t *testing.T) {
		svc, _, _ := newTestEventService()
		ev, err := svc.CreateEvent(ctx, ownerCaller, validEventInput("Mine"), pngImage())
		require.NoError(t, err)
		assert.Equal(t, "mine-1", ev.Slug)
	})

	t.Run("duplicate titles get numbered slugs", func(t *testing.T) {
		svc, _, _ := newTestEventService()
		var slugs []string
		for i := 0; i < 3; i++ {
			ev, err := svc.CreateEvent(ctx, adminCaller, validEventInput("Tech Talk"), pngImage())
			require.NoError(t, err)
			slugs = append(slugs, ev.Slug)
		}
		assert.Equal(t, []string{"tech-talk", "tech-talk-1", "tech-talk-2"}, slugs)
	})

	t.Run("retries after losing an insert race", func(t *testing.T) {
		svc, repo, _ := newTestEventService()
		repo.raceSlugs = 2
		ev, err := svc.CreateEvent(ctx, ownerCaller, validEventInput("Hackathon"), pngImage())
		require.NoError(t, err)
		assert.Equal(t, "hackathon", ev.Slug)
	})

	t.Run("gives up after repeated races", func(t *testing.T) {
		svc, repo, _ := newTestEventService()
		repo.raceSlugs = maxCreateAttempts
		_, err := svc.CreateEvent(ctx, ownerCaller, validEventInput("Hackathon"), pngImage())
		require.ErrorIs(t, err, domain.ErrDuplicateSlug)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("exhausted slugs upload nothing", func(t *testing.T) {
		svc, repo, media := newTestEventService()
		repo.slugsExhausted = true
		_, err := svc.CreateEvent(ctx, ownerCaller, validEventInput("Hackathon"), pngImage())
		require.ErrorIs(t, err, domain.ErrDuplicateSlug)
		assert.Empty(t, media.uploads)
		assert.Empty(t, repo.byID)
	})

	t.Run("failed insert logs the orphaned poster", func(t *testing.T) {
		var logs bytes.Buffer
		repo, media := newFakeEventRepo(), &fakeMediaStore{}
		repo.createErr = errors.New("db down")
		svc := NewEventService(repo, media, slog.New(slog.NewTextHandler(&logs, nil)))

		_, err := svc.CreateEvent(ctx, ownerCaller, validEventInput("Hackathon"), pngImage())
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, []string{"event_posters/hackathon"}, media.uploads)
		assert.Contains(t, logs.String(), "uploaded poster is orphaned")
		assert.Contains(t, logs.String(), "https://media.test/event_posters/hackathon")
	})

	t.Run("failed reload returns the written event and logs", func(t *testing.T) {
		var logs bytes.Buffer
		repo := newFakeEventRepo()
		repo.getByIDErr = errors.New("replica lag")
		svc := NewEventService(repo, &fakeMediaStore{}, slog.New(slog.NewTextHandler(&logs, nil)))

		ev, err := svc.CreateEvent(ctx, ownerCaller, validEventInput("Hackathon"), pngImage())
		require.NoError(t, err)
		assert.NotEmpty(t, ev.ID)
		assert.Equal(t, "hackathon", ev.Slug)
		assert.Contains(t, logs.String(), "reload after write failed")
	})

	t.Run("forbidden and unauthenticated", func(t *testing.T) {
		svc, repo, media := newTestEventService()
		_, err := svc.CreateEvent(ctx, attendeeCaller, validEventInput("Party"), pngImage())
		assert.ErrorIs(t, err, domain.ErrForbidden)
		_, err = svc.CreateEvent(ctx, anonymousCaller, validEventInput("Party"), pngImage())
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		assert.Empty(t, repo.byID)
		assert.Empty(t, media.uploads)
	})

	t.Run("reports every validation problem", func(t *testing.T) {
		svc, _, media := newTestEventService()
		in := validEventInput("")
		in.Location = " "
		in.Date = "next friday"
		_, err := svc.CreateEvent(ctx, ownerCaller, in, nil)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.ElementsMatch(t, []string{
			"title is required",
			"location is required",
			"invalid date format",
			"poster is required",
		}, verr.Problems)
		assert.Empty(t, media.uploads)
	})

	t.Run("title without letters or digits", func(t *testing.T) {
		svc, _, _ := newTestEventService()
		_, err := svc.CreateEvent(ctx, ownerCaller, validEventInput("!!!"), pngImage())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects non-image poster", func(t *testing.T) {
		svc, _, _ := newTestEventService()
		poster := pngImage()
		poster.ContentType = "application/pdf"
		_, err := svc.CreateEvent(ctx, ownerCaller, validEventInput("Talk"), poster)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("media failure is upstream", func(t *testing.T) {
		svc, repo, media := newTestEventService()
		media.err = fmt.Errorf("%w: bucket unreachable", domain.ErrUpstream)
		_, err := svc.CreateEvent(ctx, ownerCaller, validEventInput("Talk"), pngImage())
		assert.ErrorIs(t, err, domain.ErrUpstream)
		assert.Empty(t, repo.byID)
	})
}

// ownershipCases is the shared authorization table for mutations on an existing event
// owned by ownerCaller.
var ownershipCases = []struct {
	name    string
	caller  domain.Caller
	wantErr error
}{
	{"admin", adminCaller, nil},
	{"owner", ownerCaller, nil},
	{"other organizer", otherOrgCaller, domain.ErrForbidden},
	{"attendee", attendeeCaller, domain.ErrForbidden},
	{"anonymous", anonymousCaller, domain.ErrUnauthenticated},
}

func TestEventService_UpdateEvent_Authorization(t *testing.T) {
	ctx := context.Background()
	for _, tt := range ownershipCases {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestEventService()
			seedEvent(repo, "Robotics Day", "robotics-day", ownerCaller.ID)

			ev, err := svc.UpdateEvent(ctx, tt.caller, "robotics-day", validEventInput("Robotics Day"), nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "An evening of talks", ev.Description)
			assert.Equal(t, ownerCaller.ID, ev.OrganizerID)
		})
	}
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("same title keeps slug and poster", func(t *testing.T) {
		svc, repo, media := newTestEventService()
		orig := seedEvent(repo, "Robotics Day", "robotics-day", ownerCaller.ID)
		orig.Status = domain.EventStatusCancelled

		ev, err := svc.UpdateEvent(ctx, ownerCaller, "robotics-day", validEventInput("Robotics Day"), nil)
		require.NoError(t, err)
		assert.Equal(t, "robotics-day", ev.Slug)
		assert.Equal(t, orig.ImageURL, ev.ImageURL)
		assert.Equal(t, domain.EventStatusCancelled, ev.Status)
		assert.Equal(t, orig.CreatedAt, ev.CreatedAt)
		assert.Empty(t, media.uploads)
	})

	t.Run("renamed title gets a free slug", func(t *testing.T) {
		svc, repo, _ := newTestEventService()
		seedEvent(repo, "AI Night", "ai-night", otherOrgCaller.ID)
		seedEvent(repo, "Robotics Day", "robotics-day", ownerCaller.ID)

		ev, err := svc.UpdateEvent(ctx, ownerCaller, "robotics-day", validEventInput("AI Night"), nil)
		require.NoError(t, err)
		assert.Equal(t, "ai-night-1", ev.Slug)

		_, err = svc.GetEventBySlug(ctx, "robotics-day")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("new poster replaces image", func(t *testing.T) {
		svc, repo, media := newTestEventService()
		seedEvent(repo, "Robotics Day", "robotics-day", ownerCaller.ID)

		ev, err := svc.UpdateEvent(ctx, ownerCaller, "robotics-day", validEventInput("Robotics Day"), pngImage())
		require.NoError(t, err)
		assert.Equal(t, "https://media.test/event_posters/robotics-day", ev.ImageURL)
		assert.Len(t, media.uploads, 1)
	})

	t.Run("not found", func(t *testing.T) {
		svc, _, _ := newTestEventService()
		_, err := svc.UpdateEvent(ctx, adminCaller, "missing", validEventInput("X"), nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		svc, repo, _ := newTestEventService()
		seedEvent(repo, "Robotics Day", "robotics-day", ownerCaller.ID)
		in := validEventInput("Robotics Day")
		in.Price = ""
		_, err := svc.UpdateEvent(ctx, ownerCaller, "robotics-day", in, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()
	for _, tt := range ownershipCases {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestEventService()
			seedEvent(repo, "Robotics Day", "robotics-day", ownerCaller.ID)

			err := svc.DeleteEvent(ctx, tt.caller, "robotics-day")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Len(t, repo.byID, 1)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, repo.byID)
		})
	}

	t.Run("not found", func(t *testing.T) {
		svc, _, _ := newTestEventService()
		assert.ErrorIs(t, svc.DeleteEvent(ctx, adminCaller, "missing"), domain.ErrNotFound)
	})
}

func TestEventService_ListEvents(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestEventService()
	base := time.Now()
	for i := 0; i < 5; i++ {
		e := seedEvent(repo, fmt.Sprintf("Event %d", i), fmt.Sprintf("event-%d", i), ownerCaller.ID)
		e.CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}
	cancelled := seedEvent(repo, "Cancelled", "cancelled", ownerCaller.ID)
	cancelled.Status = domain.EventStatusCancelled

	events, total, err := svc.ListEvents(ctx, domain.EventFilter{
		Status:     domain.EventStatusUpcoming,
		OrderBy:    domain.EventOrderCreatedDesc,
		Pagination: domain.PaginationParams{Page: 1, PageSize: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, events, 2)
	assert.Equal(t, "event-4", events[0].Slug)
	assert.Equal(t, "event-3", events[1].Slug)

	events, total, err = svc.ListEvents(ctx, domain.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	assert.Len(t, events, 6)

	repo.listErr = fmt.Errorf("db down")
	_, _, err = svc.ListEvents(ctx, domain.EventFilter{})
	assert.Error(t, err)
}

func TestEventService_ListManagedEvents(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestEventService()
	seedEvent(repo, "Mine", "mine", ownerCaller.ID)
	seedEvent(repo, "Theirs", "theirs", otherOrgCaller.ID)

	events, err := svc.ListManagedEvents(ctx, ownerCaller)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "mine", events[0].Slug)

	events, err = svc.ListManagedEvents(ctx, adminCaller)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	_, err = svc.ListManagedEvents(ctx, attendeeCaller)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.ListManagedEvents(ctx, anonymousCaller)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestEventService_GetEventBySlug(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestEventService()
	seedEvent(repo, "Open Day", "open-day", ownerCaller.ID)

	ev, err := svc.GetEventBySlug(ctx, " open-day ")
	require.NoError(t, err)
	assert.Equal(t, "Open Day", ev.Title)

	_, err = svc.GetEventBySlug(ctx, "closed-day")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
