package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hongminglow/messagely/internal/access"
	"github.com/hongminglow/messagely/internal/auth"
	"github.com/hongminglow/messagely/internal/config"
	"github.com/hongminglow/messagely/internal/http/handlers"
	"github.com/hongminglow/messagely/internal/http/respond"
	"github.com/hongminglow/messagely/internal/middleware"
	"github.com/hongminglow/messagely/internal/service"
	"github.com/hongminglow/messagely/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner   *http.Server
	limiter *middleware.RateLimiter
}

// New wires up services, middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, logger zerolog.Logger) *Server {
	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.JWTIssuer, cfg.JWTTTL)
	mediator := access.NewMediator(tokens)
	credentials := service.NewCredentials(store, tokens, cfg.BcryptCost)
	messages := service.NewMessages(store, store)
	directory := service.NewDirectory(credentials, messages)

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst, 2*time.Minute)
	limitAuth := func(h http.Handler) http.Handler {
		return limiter.Wrap(h, func(w http.ResponseWriter, r *http.Request) {
			respond.Error(w, r, http.StatusTooManyRequests, "too many requests")
		})
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), store).Register(mux)
	handlers.NewAuthHandler(credentials, limitAuth).Register(mux)
	handlers.NewUserHandler(directory, mediator).Register(mux)
	handlers.NewMessageHandler(messages, mediator).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("/", handlers.NotFound)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, middleware.Metrics(mux)))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer, limiter: limiter}
}

// Handler exposes the fully wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.inner.Shutdown(ctx)
}
