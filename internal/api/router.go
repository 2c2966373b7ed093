// Package api exposes the portfolio catalogue and its recommendations over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"TechPortfolio/internal/config"
	"TechPortfolio/internal/domain"
	"TechPortfolio/internal/usecase"
)

// Catalogue serves published portfolio items.
type Catalogue interface {
	ListPublished(ctx context.Context) ([]domain.PortfolioItem, error)
	GetPublished(ctx context.Context, id string) (domain.PortfolioItem, error)
}

// Recommender selects items related to a published item.
type Recommender interface {
	ForItemID(ctx context.Context, id string, limit int) (usecase.Selection, error)
}

// HomeFeed exposes the general recommendation state shown on the landing page.
type HomeFeed interface {
	State() usecase.State
}

// Deps wires use cases and settings into the HTTP layer.
type Deps struct {
	Catalogue   Catalogue
	Recommender Recommender
	Homepage    HomeFeed
	Server      config.ServerConfig
	Recommend   config.RecommendConfig
	Logger      *slog.Logger
}

// Handler holds request handlers.
type Handler struct {
	catalogue   Catalogue
	recommender Recommender
	homepage    HomeFeed
	limits      config.RecommendConfig
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewRouter builds the chi router with the full middleware stack.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	h := &Handler{
		catalogue:   deps.Catalogue,
		recommender: deps.Recommender,
		homepage:    deps.Homepage,
		limits:      deps.Recommend,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if deps.Server.RateLimit.Requests > 0 {
			r.Use(httprate.LimitByIP(deps.Server.RateLimit.Requests, deps.Server.RateLimit.Window))
		}

		r.Get("/health", h.Health)
		r.Get("/recommendations", h.HomepageRecommendations)
		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", h.ListPortfolio)
			r.Get("/{id}", h.GetPortfolioItem)
			r.Get("/{id}/recommendations", h.ItemRecommendations)
		})
	})

	return r
}
