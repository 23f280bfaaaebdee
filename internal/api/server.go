// Package api provides the HTTP API server and handlers for the TRINE label
// backend.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/trinestudio/trine-server/internal/catalog"
	"github.com/trinestudio/trine-server/internal/config"
	"github.com/trinestudio/trine-server/internal/domain"
	"github.com/trinestudio/trine-server/internal/form"
	"github.com/trinestudio/trine-server/internal/ratelimit"
	"github.com/trinestudio/trine-server/internal/search"
	"github.com/trinestudio/trine-server/internal/store"
)

// FeatureSource lists homepage features. Only the content-store backend
// has them.
type FeatureSource interface {
	ListFeatures(ctx context.Context) ([]domain.Feature, error)
}

// Services groups the business services used by the API server.
type Services struct {
	Catalog  *catalog.Service
	Forms    *form.Manager
	Search   *search.SearchIndex // optional
	Features FeatureSource       // optional
	Drafts   *store.Store        // optional; nil when drafts are disabled
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services      *Services
	router        *chi.Mux
	api           huma.API
	submitLimiter *ratelimit.KeyedRateLimiter
	corsOrigins   []string
	startedAt     time.Time
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, services *Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ratePerMinute := cfg.Submission.RatePerMinute
	if ratePerMinute <= 0 {
		ratePerMinute = 5
	}

	router := chi.NewRouter()
	s := &Server{
		services:      services,
		router:        router,
		submitLimiter: ratelimit.PerMinute(ratePerMinute),
		corsOrigins:   cfg.Server.CORSOrigins,
		startedAt:     time.Now(),
		logger:        logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("TRINE API", "1.0.0")
	humaConfig.Info.Description = "Catalog and artist submission API for the TRINE label."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.submitLimiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes registers every operation.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerSchemaRoutes()
	s.registerArtistRoutes()
	s.registerReleaseRoutes()
	s.registerFeatureRoutes()
	s.registerSearchRoutes()
	s.registerSubmissionRoutes()
}
