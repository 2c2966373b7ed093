package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"TechPortfolio/internal/domain"
	"TechPortfolio/internal/ports"
	"TechPortfolio/internal/usecase"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type recommendationResponse struct {
	Items    []domain.PortfolioItem `json:"items"`
	Loading  bool                   `json:"loading"`
	Error    string                 `json:"error,omitempty"`
	Fallback bool                   `json:"fallback"`
	Scores   []int                  `json:"scores,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		h.logger.Error("encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// limitParam reads ?limit, applying the configured default and bounds.
func (h *Handler) limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return h.limits.DefaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit must be an integer")
	}
	if err := h.validate.Var(limit, fmt.Sprintf("min=1,max=%d", h.limits.MaxLimit)); err != nil {
		return 0, fmt.Errorf("limit must be between 1 and %d", h.limits.MaxLimit)
	}
	return limit, nil
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListPortfolio returns every published item.
func (h *Handler) ListPortfolio(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalogue.ListPublished(r.Context())
	if err != nil {
		h.logger.Error("list portfolio", "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "failed to load portfolio")
		return
	}
	if items == nil {
		items = []domain.PortfolioItem{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetPortfolioItem returns one published item.
func (h *Handler) GetPortfolioItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.catalogue.GetPublished(r.Context(), id)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", "portfolio item not found")
	case err != nil:
		h.logger.Error("get portfolio item", "id", id, "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "failed to load portfolio item")
	default:
		h.writeJSON(w, http.StatusOK, item)
	}
}

// ItemRecommendations returns items related to the item in the path.
func (h *Handler) ItemRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, err := h.limitParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	sel, err := h.recommender.ForItemID(r.Context(), id, limit)
	switch {
	case errors.Is(err, usecase.ErrItemNotFound):
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", "portfolio item not found")
		return
	case err != nil:
		h.writeJSON(w, http.StatusServiceUnavailable, recommendationResponse{
			Items: []domain.PortfolioItem{},
			Error: usecase.LoadFailedMessage,
		})
		return
	}

	items := sel.Items
	if items == nil {
		items = []domain.PortfolioItem{}
	}
	h.writeJSON(w, http.StatusOK, recommendationResponse{
		Items:    items,
		Fallback: sel.Fallback,
		Scores:   sel.Scores,
	})
}

// HomepageRecommendations returns the current general feed, truncated to limit.
func (h *Handler) HomepageRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, err := h.limitParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if h.homepage == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, usecase.State{
			Items: []domain.PortfolioItem{},
			Error: usecase.LoadFailedMessage,
		})
		return
	}

	state := h.homepage.State()
	if len(state.Items) > limit {
		state.Items = state.Items[:limit]
	}

	status := http.StatusOK
	if state.Error != "" {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, state)
}
