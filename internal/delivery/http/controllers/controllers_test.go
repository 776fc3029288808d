package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	organizer = domain.Caller{ID: "org-1", Role: domain.RoleOrganizer}
	student   = domain.Caller{ID: "user-1", Role: domain.RoleUser}
)

// withCaller attaches caller to the request the way middleware.Authenticate does.
func withCaller(r *http.Request, caller domain.Caller) *http.Request {
	return r.WithContext(middleware.SetCaller(r.Context(), caller))
}

// decodeEnvelope decodes the response envelope, unmarshalling data into dest when non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	if dest != nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env.Error
}

type formFile struct {
	field, filename, contentType string
	data                         []byte
}

// multipartRequest builds a multipart/form-data request from fields and optional files.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		hdr.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngFile(field string) formFile {
	return formFile{field: field, filename: "img.png", contentType: "image/png", data: []byte("\x89PNG\r\n\x1a\nfake")}
}

// fakeAuthService implements domain.AuthService.
type fakeAuthService struct {
	signUpErr  error
	loginErr   error
	lastName   string
	lastEmail  string
	lastPasswd string
}

func (f *fakeAuthService) SignUp(ctx context.Context, name, email, password string) (*domain.User, error) {
	f.lastName, f.lastEmail, f.lastPasswd = name, email, password
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &domain.User{ID: "user-new", Name: name, Email: email, Role: domain.RoleUser, PasswordHash: "secret-hash"}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return "jwt-token", &domain.User{ID: "user-1", Email: email, Role: domain.RoleUser}, nil
}

// fakeUserService implements domain.UserService.
type fakeUserService struct {
	lastCaller domain.Caller
	lastImage  *domain.Image
}

func (f *fakeUserService) Me(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	f.lastCaller = caller
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return &domain.User{ID: caller.ID, Name: "Sam", Role: caller.Role}, nil
}

func (f *fakeUserService) UpdateAvatar(ctx context.Context, caller domain.Caller, img *domain.Image) (*domain.User, error) {
	f.lastCaller, f.lastImage = caller, img
	return &domain.User{ID: caller.ID, ImageURL: "https://media.test/avatars/" + caller.ID}, nil
}

// fakeEventService implements domain.EventService.
type fakeEventService struct {
	err        error
	events     []*domain.Event
	total      int
	lastFilter domain.EventFilter
	lastCaller domain.Caller
	lastSlug   string
	lastInput  domain.EventInput
	lastPoster *domain.Image
}

func (f *fakeEventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	f.lastFilter = filter
	return f.events, f.total, f.err
}

func (f *fakeEventService) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	f.lastSlug = slug
	if f.err != nil {
		return nil, f.err
	}
	return f.events[0], nil
}

func (f *fakeEventService) ListManagedEvents(ctx context.Context, caller domain.Caller) ([]*domain.Event, error) {
	f.lastCaller = caller
	return f.events, f.err
}

func (f *fakeEventService) CreateEvent(ctx context.Context, caller domain.Caller, in domain.EventInput, poster *domain.Image) (*domain.Event, error) {
	f.lastCaller, f.lastInput, f.lastPoster = caller, in, poster
	if f.err != nil {
		return nil, f.err
	}
	return f.events[0], nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, caller domain.Caller, slug string, in domain.EventInput, poster *domain.Image) (*domain.Event, error) {
	f.lastCaller, f.lastSlug, f.lastInput, f.lastPoster = caller, slug, in, poster
	if f.err != nil {
		return nil, f.err
	}
	return f.events[0], nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, caller domain.Caller, slug string) error {
	f.lastCaller, f.lastSlug = caller, slug
	return f.err
}

// fakeRegistrationService implements domain.RegistrationService with an owner check on org-1.
type fakeRegistrationService struct {
	registered map[string]bool
	err        error
	lastEvent  string
}

func (f *fakeRegistrationService) CheckStatus(ctx context.Context, caller domain.Caller, eventID string) (bool, error) {
	f.lastEvent = eventID
	if !caller.Authenticated() {
		return false, nil
	}
	if eventID == "" {
		return false, domain.NewValidationError("event_id is required")
	}
	return f.registered[caller.ID+"/"+eventID], nil
}

func (f *fakeRegistrationService) Register(ctx context.Context, caller domain.Caller, eventID string) (*domain.Registration, error) {
	f.lastEvent = eventID
	if f.err != nil {
		return nil, f.err
	}
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	key := caller.ID + "/" + eventID
	if f.registered[key] {
		return nil, domain.ErrAlreadyRegistered
	}
	f.registered[key] = true
	return &domain.Registration{ID: "reg-1", UserID: caller.ID, EventID: eventID}, nil
}

func (f *fakeRegistrationService) ListRegistrants(ctx context.Context, caller domain.Caller, slug string) (*domain.EventRegistrants, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := domain.Authorize(caller.Role, caller.ID, organizer.ID).Err(); err != nil {
		return nil, err
	}
	return &domain.EventRegistrants{
		EventID:    "ev-1",
		EventTitle: "Career Fair",
		Participants: []*domain.Registrant{
			{RegistrationID: "reg-1", User: domain.UserSummary{ID: student.ID, Name: "Sam", Email: "sam@campus.edu"}},
		},
	}, nil
}

func (f *fakeRegistrationService) ListMyRegistrations(ctx context.Context, caller domain.Caller) ([]*domain.RegistrationWithEvent, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return []*domain.RegistrationWithEvent{{
		Registration: &domain.Registration{ID: "reg-1", UserID: caller.ID, EventID: "ev-1"},
		Event:        sampleEvent(),
	}}, f.err
}
