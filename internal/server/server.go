package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dongwook32/web-hub/config"
	"github.com/dongwook32/web-hub/internal/db"
	"github.com/dongwook32/web-hub/internal/events"
	"github.com/dongwook32/web-hub/internal/handlers"
	"github.com/dongwook32/web-hub/internal/notify"
	"github.com/dongwook32/web-hub/internal/services"
	"github.com/dongwook32/web-hub/internal/storage"
	"github.com/dongwook32/web-hub/internal/store"
)

// Server wraps the HTTP server, router and shared resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	bus        *events.Publisher
}

// New constructs a Server with all services wired from config.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	notifier, err := buildNotifier(cfg, log)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	backend, err := buildEventsBackend(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	var bus *events.Publisher
	if backend != nil {
		bus = events.NewPublisher(backend, log)
	}

	objects, err := buildObjectStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		_ = bus.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	verificationRepo := store.NewVerificationRepository(dbConn)
	boardRepo := store.NewBoardRepository(dbConn)
	postRepo := store.NewPostRepository(dbConn)

	signupService := services.NewSignupService(verificationRepo, userRepo, notifier, bus, cfg.EmailDomain, cfg.AppURL)
	sessionService := services.NewSessionService(userRepo, cfg.SessionSecret)
	userService := services.NewUserService(userRepo)
	boardService := services.NewBoardService(postRepo, boardRepo, objects, bus)

	authHandler := handlers.NewAuthHandler(sessionService)
	signupHandler := handlers.NewSignupHandler(signupService, cfg.ShellPath)
	boardHandler := handlers.NewBoardHandler(boardService)
	adminHandler := handlers.NewAdminHandler(userService, cfg.ShellPath)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)

	router.Route("/api", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)
		r.Get("/verify/{token}", signupHandler.Check)
		r.Post("/signup", signupHandler.Complete)
		r.Get("/boards", boardHandler.ListBoards)
		r.Route("/posts", func(r chi.Router) {
			handlers.BoardRouter(r, boardService, authHandler.RequireSession)
		})
		r.With(authHandler.RequireSession, authHandler.RequireAdmin).
			Get("/admin/users", adminHandler.ListUsers)
		// unknown API paths answer JSON, never the app shell
		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			handlers.NotFoundJSON(w, req)
		})
	})

	router.Get("/healthz", handlers.Healthz(dbConn))
	router.Post("/send-verification", signupHandler.SendVerification)
	router.Get("/verify/{token}", signupHandler.VerifyPage)
	router.With(authHandler.RequireAdminPage).Get("/admin", adminHandler.Page)
	router.With(authHandler.RequireSession, authHandler.RequireAdmin).
		Post("/admin/toggle_admin/{userID}", adminHandler.ToggleAdmin)
	router.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, cfg.ShellPath)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		bus:        bus,
	}, nil
}

func buildNotifier(cfg config.Config, log *slog.Logger) (notify.Notifier, error) {
	switch cfg.Mail.Provider {
	case "smtp":
		return notify.NewSMTPNotifier(cfg.Mail)
	case "brevo":
		return notify.NewBrevoNotifier(cfg.Mail)
	case "log":
		return notify.NewLogNotifier(log), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}
}

func buildEventsBackend(ctx context.Context, cfg config.Config) (events.Backend, error) {
	switch cfg.Events.Backend {
	case "none", "":
		return nil, nil
	case "rabbitmq":
		return events.NewRabbitMQBackend(cfg.Events)
	case "pubsub":
		return events.NewPubSubBackend(ctx, cfg.Events)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}
}

func buildObjectStorage(ctx context.Context, cfg config.Config) (storage.ObjectStorage, error) {
	var (
		objects storage.ObjectStorage
		err     error
	)
	switch cfg.Storage.Backend {
	case "none", "":
		return nil, nil
	case "minio":
		objects, err = storage.NewMinioStorage(cfg.Storage)
	case "gcs":
		objects, err = storage.NewGCSStorage(ctx, cfg.Storage)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return objects, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.bus != nil {
		_ = s.bus.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
