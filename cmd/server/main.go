package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"campusevents/config"
	_ "campusevents/docs"
	"campusevents/internal/adapters/auth"
	"campusevents/internal/adapters/email"
	"campusevents/internal/adapters/media"
	httpdelivery "campusevents/internal/delivery/http"
	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
	"campusevents/internal/repository/postgres"
	"campusevents/internal/repository/sqlite"
	"campusevents/internal/services"
)

// @title						Campus Events API
// @version					1.0
// @description				Campus event publishing and registration.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// repositories groups the store implementations for the configured driver.
type repositories struct {
	users         domain.UserRepository
	events        domain.EventRepository
	registrations domain.RegistrationRepository
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, repositories, error) {
	switch cfg.DBDriver {
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, repositories{}, err
		}
		if cfg.DBAutoMigrate {
			if err := sqlite.EnsureSchema(ctx, db); err != nil {
				db.Close()
				return nil, repositories{}, err
			}
		}
		return db, repositories{
			users:         sqlite.NewUserRepository(db),
			events:        sqlite.NewEventRepository(db),
			registrations: sqlite.NewRegistrationRepository(db),
		}, nil
	default:
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			return nil, repositories{}, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, repositories{}, fmt.Errorf("failed to ping database: %w", err)
		}
		if cfg.DBAutoMigrate {
			if err := postgres.EnsureSchema(ctx, db); err != nil {
				db.Close()
				return nil, repositories{}, err
			}
		}
		return db, repositories{
			users:         postgres.NewUserRepository(db),
			events:        postgres.NewEventRepository(db),
			registrations: postgres.NewRegistrationRepository(db),
		}, nil
	}
}

// mediaPrefix is the URL path local uploads are served under.
func mediaPrefix(publicBaseURL string) string {
	p := publicBaseURL
	if u, err := url.Parse(publicBaseURL); err == nil {
		p = u.Path
	}
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return "/media"
	}
	return p
}

func run(cfg *config.Config, logger *slog.Logger) error {
	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, repos, err := openDatabase(initCtx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close db", "error", err)
		}
	}()
	logger.Info("database ready", "driver", cfg.DBDriver, "auto_migrate", cfg.DBAutoMigrate)

	store, err := media.NewMediaStore(media.Config{
		Provider:      cfg.Media.Provider,
		LocalDir:      cfg.Media.LocalDir,
		PublicBaseURL: cfg.Media.PublicBaseURL,
		S3: media.S3Config{
			Bucket:          cfg.Media.S3Bucket,
			Region:          cfg.Media.S3Region,
			Endpoint:        cfg.Media.S3Endpoint,
			AccessKeyID:     cfg.Media.AWSAccessKeyID,
			SecretAccessKey: cfg.Media.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return err
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Media.AWSAccessKeyID,
			SecretAccessKey:    cfg.Media.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}
	emailService := services.NewEmailService(mailer, renderer, logger)

	jwt := auth.NewJWT(cfg.JWTSecret)
	roles := domain.RoleRules{
		AdminEmails:      cfg.AdminEmails,
		OrganizerEmails:  cfg.OrganizerEmails,
		OrganizerDomains: cfg.OrganizerEmailDomains,
	}

	authService := services.NewAuthService(repos.users, auth.NewBcryptHasher(auth.DefaultBcryptCost), jwt, cfg.JWTExpiry, roles, emailService, logger)
	userService := services.NewUserService(repos.users, store)
	eventService := services.NewEventService(repos.events, store, logger)
	registrationService := services.NewRegistrationService(repos.registrations, repos.events, repos.users, emailService, logger)

	var opts httpdelivery.RouterOptions
	if local, ok := store.(*media.LocalStore); ok {
		opts.MediaDir = local.Dir()
		opts.MediaPrefix = mediaPrefix(cfg.Media.PublicBaseURL)
	}
	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:         controllers.NewAuthController(logger, authService),
		User:         controllers.NewUserController(logger, userService),
		Event:        controllers.NewEventController(logger, eventService),
		Registration: controllers.NewRegistrationController(logger, registrationService),
	}, jwt, logger, opts)

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.Recovery(logger, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited cleanly")
	return nil
}
