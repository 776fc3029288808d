package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"campusevents/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	nextID    int
	getErr    error
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) add(id, name, email string, role domain.Role) *domain.User {
	u := &domain.User{ID: id, Name: name, Email: email, Role: role, PasswordHash: "hash-secret1"}
	f.byID[id] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateImage(ctx context.Context, id, imageURL string, updatedAt time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ImageURL = imageURL
	u.UpdatedAt = updatedAt
	return nil
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Event
	createErr error
	listErr   error
	// raceSlugs makes Create report a duplicate slug this many times before succeeding.
	raceSlugs int
	// slugsExhausted makes SlugExists report every candidate as taken.
	slugsExhausted bool
	getByIDErr     error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event)}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = domain.EventStatusUpcoming
	}
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) slugTaken(slug, excludeID string) bool {
	for _, e := range f.byID {
		if e.Slug == slug && e.ID != excludeID {
			return true
		}
	}
	return false
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.raceSlugs > 0 {
		f.raceSlugs--
		return domain.ErrDuplicateSlug
	}
	if f.slugTaken(e.Slug, "") {
		return domain.ErrDuplicateSlug
	}
	e.ID = uuid.NewString()
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.byID {
		if e.Slug == slug {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slugsExhausted || f.slugTaken(slug, excludeID), nil
}

func (f *fakeEventRepo) filtered(filter domain.EventFilter) []*domain.Event {
	var out []*domain.Event
	for _, e := range f.byID {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.OrganizerID != "" && e.OrganizerID != filter.OrganizerID {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.OrderBy == domain.EventOrderDateAsc {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := f.filtered(filter)
	if p := filter.Pagination; p.PageSize > 0 {
		start := p.Offset()
		if start >= len(out) {
			return []*domain.Event{}, nil
		}
		end := start + p.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (f *fakeEventRepo) Count(ctx context.Context, filter domain.EventFilter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filtered(filter)), nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	if f.slugTaken(e.Slug, e.ID) {
		return domain.ErrDuplicateSlug
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeRegistrationRepo implements domain.RegistrationRepository for tests.
type fakeRegistrationRepo struct {
	regs      []*domain.Registration
	users     *fakeUserRepo
	events    *fakeEventRepo
	createErr error
}

func newFakeRegistrationRepo(users *fakeUserRepo, events *fakeEventRepo) *fakeRegistrationRepo {
	return &fakeRegistrationRepo{users: users, events: events}
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, r := range f.regs {
		if r.UserID == reg.UserID && r.EventID == reg.EventID {
			return domain.ErrAlreadyRegistered
		}
	}
	reg.ID = fmt.Sprintf("reg-%d", len(f.regs)+1)
	f.regs = append(f.regs, reg)
	return nil
}

func (f *fakeRegistrationRepo) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	for _, r := range f.regs {
		if r.UserID == userID && r.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegistrationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registrant, error) {
	out := []*domain.Registrant{}
	for _, r := range f.regs {
		if r.EventID != eventID {
			continue
		}
		u := f.users.byID[r.UserID]
		out = append(out, &domain.Registrant{
			RegistrationID: r.ID,
			RegisteredAt:   r.RegisteredAt,
			User:           domain.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email},
		})
	}
	return out, nil
}

func (f *fakeRegistrationRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	out := []*domain.RegistrationWithEvent{}
	for i := len(f.regs) - 1; i >= 0; i-- {
		r := f.regs[i]
		if r.UserID != userID {
			continue
		}
		ev, err := f.events.GetByID(ctx, r.EventID)
		if err != nil {
			return nil, err
		}
		out = append(out, &domain.RegistrationWithEvent{Registration: r, Event: ev})
	}
	return out, nil
}

// fakeMediaStore records uploads and returns deterministic URLs.
type fakeMediaStore struct {
	uploads []string
	err     error
}

func (f *fakeMediaStore) Upload(ctx context.Context, folder, name string, img *domain.Image) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key := folder + "/" + name
	f.uploads = append(f.uploads, key)
	return "https://media.test/" + key, nil
}

// fakeEmailService records sent emails.
type fakeEmailService struct {
	welcomes      []*domain.WelcomeMessageEmailData
	confirmations []*domain.RegistrationConfirmationEmailData
	err           error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.welcomes = append(f.welcomes, data)
	return f.err
}

func (f *fakeEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	f.confirmations = append(f.confirmations, data)
	return f.err
}

// fakePasswordHasher prefixes passwords with "hash-".
type fakePasswordHasher struct {
	err error
}

func (f *fakePasswordHasher) Hash(password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hash-" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, email string, role domain.Role, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID + "-" + strings.ToLower(string(role)), nil
}

func pngImage() *domain.Image {
	data := []byte("\x89PNG\r\n\x1a\nfake")
	return &domain.Image{Filename: "poster.png", ContentType: "image/png", Size: int64(len(data)), Data: data}
}

func validEventInput(title string) domain.EventInput {
	return domain.EventInput{
		Title:       title,
		Description: "An evening of talks",
		Date:        "2026-11-20",
		Time:        "18:00",
		Location:    "Main Hall",
		Price:       "Free",
		Benefits:    "Snacks, Certificate\nNetworking",
	}
}
