package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"TechPortfolio/internal/domain"
	"TechPortfolio/internal/metrics"
	"TechPortfolio/internal/ports"
	"TechPortfolio/internal/recommend"
)

// ErrItemNotFound is returned when a reference id is not in the published pool.
var ErrItemNotFound = ports.ErrNotFound

var errNoSelector = errors.New("recommendation selector is not configured")

const (
	modeItem    = "item"
	modeGeneral = "general"
)

// RecommenderDeps wires the driven adapters into the recommender.
type RecommenderDeps struct {
	Source ports.PortfolioSource
	Rand   *rand.Rand
	Logger *slog.Logger
}

// Selection is the outcome of one recommendation request.
type Selection struct {
	Reference *domain.PortfolioItem  `json:"reference,omitempty"`
	Items     []domain.PortfolioItem `json:"items"`
	Scores    []int                  `json:"scores,omitempty"`
	Fallback  bool                   `json:"fallback"`
}

// Recommender fetches the published pool and selects related items from it.
type Recommender struct {
	source ports.PortfolioSource
	logger *slog.Logger

	// rng is not safe for concurrent use; rngMu guards it.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewRecommender constructs the recommendation use case.
func NewRecommender(deps RecommenderDeps) *Recommender {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recommender{
		source: deps.Source,
		rng:    deps.Rand,
		logger: logger,
	}
}

// ForItem returns items related to reference, or a random selection when nothing relates.
func (r *Recommender) ForItem(ctx context.Context, reference domain.PortfolioItem, limit int) (Selection, error) {
	pool, err := r.fetchPool(ctx)
	if err != nil {
		metrics.RecordRecommendation(modeItem, metrics.OutcomeError)
		return Selection{}, err
	}

	return r.selectFrom(reference, pool, limit, modeItem), nil
}

// ForItemID resolves the reference inside the published pool, then behaves like ForItem.
func (r *Recommender) ForItemID(ctx context.Context, id string, limit int) (Selection, error) {
	pool, err := r.fetchPool(ctx)
	if err != nil {
		metrics.RecordRecommendation(modeItem, metrics.OutcomeError)
		return Selection{}, err
	}

	for _, item := range pool {
		if item.ID == id {
			return r.selectFrom(item, pool, limit, modeItem), nil
		}
	}
	return Selection{}, fmt.Errorf("item %s: %w", id, ErrItemNotFound)
}

// General picks a random published item as a synthetic reference and recommends around it.
func (r *Recommender) General(ctx context.Context, limit int) (Selection, error) {
	pool, err := r.fetchPool(ctx)
	if err != nil {
		metrics.RecordRecommendation(modeGeneral, metrics.OutcomeError)
		return Selection{}, err
	}

	r.rngMu.Lock()
	reference, ok := recommend.PickOne(pool, r.rng)
	r.rngMu.Unlock()
	if !ok {
		metrics.RecordRecommendation(modeGeneral, metrics.OutcomeEmpty)
		return Selection{Items: []domain.PortfolioItem{}}, nil
	}

	return r.selectFrom(reference, pool, limit, modeGeneral), nil
}

func (r *Recommender) selectFrom(reference domain.PortfolioItem, pool []domain.PortfolioItem, limit int, mode string) Selection {
	ref := reference
	ranked := recommend.Rank(reference, pool, limit)
	if len(ranked) > 0 {
		sel := Selection{
			Reference: &ref,
			Items:     make([]domain.PortfolioItem, len(ranked)),
			Scores:    make([]int, len(ranked)),
		}
		for i, s := range ranked {
			sel.Items[i] = s.Item
			sel.Scores[i] = s.Score
		}
		metrics.RecordRecommendation(mode, metrics.OutcomeRanked)
		return sel
	}

	r.rngMu.Lock()
	picked := recommend.RandomPick(reference, pool, limit, r.rng)
	r.rngMu.Unlock()
	r.logger.Debug("no related items, using random selection", "reference", reference.ID, "pool", len(pool), "picked", len(picked))

	outcome := metrics.OutcomeFallback
	if len(picked) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecordRecommendation(mode, outcome)

	return Selection{Reference: &ref, Items: picked, Fallback: true}
}

func (r *Recommender) fetchPool(ctx context.Context) ([]domain.PortfolioItem, error) {
	if r.source == nil {
		return nil, fmt.Errorf("portfolio source is not configured")
	}

	started := time.Now()
	pool, err := r.source.ListPublished(ctx)
	metrics.RecordPoolFetch(started, len(pool), err)
	if err != nil {
		r.logger.Error("fetch published pool", "error", err)
		return nil, fmt.Errorf("fetch published pool: %w", err)
	}
	return pool, nil
}
