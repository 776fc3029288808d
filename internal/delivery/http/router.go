package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// Controllers groups the handlers the router mounts.
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Event        *controllers.EventController
	Registration *controllers.RegistrationController
}

// RouterOptions configures optional routes.
type RouterOptions struct {
	// MediaDir, when set, is served read-only under MediaPrefix.
	MediaDir    string
	MediaPrefix string
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger, opts RouterOptions) *http.ServeMux {
	mux := http.NewServeMux()
	optional := middleware.Authenticate(verifier, logger)
	required := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Users
	mux.HandleFunc("GET /users/me", required(c.User.GetMe))
	mux.HandleFunc("POST /users/me/avatar", required(c.User.UpdateAvatar))

	// Events
	mux.HandleFunc("GET /events", optional(c.Event.ListEvents))
	mux.HandleFunc("POST /events", optional(c.Event.CreateEvent))
	mux.HandleFunc("GET /events/mine", optional(c.Event.ListMyEvents))
	mux.HandleFunc("GET /events/{slug}", optional(c.Event.GetEvent))
	mux.HandleFunc("PUT /events/{slug}", optional(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /events/{slug}", optional(c.Event.DeleteEvent))
	mux.HandleFunc("GET /events/{slug}/registrations", optional(c.Registration.ListRegistrants))

	// Registrations
	mux.HandleFunc("GET /registrations", optional(c.Registration.CheckStatus))
	mux.HandleFunc("POST /registrations", optional(c.Registration.Register))
	mux.HandleFunc("GET /registrations/mine", optional(c.Registration.ListMyRegistrations))

	// Locally stored uploads
	if opts.MediaDir != "" && opts.MediaPrefix != "" {
		prefix := opts.MediaPrefix + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(opts.MediaDir))))
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
