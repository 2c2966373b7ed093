package usecase

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"TechPortfolio/internal/domain"
)

// LoadFailedMessage is the caller-facing error for any failed pool read.
const LoadFailedMessage = "failed to load recommendations"

// Selector is the part of Recommender a Feed drives.
type Selector interface {
	ForItem(ctx context.Context, reference domain.PortfolioItem, limit int) (Selection, error)
	General(ctx context.Context, limit int) (Selection, error)
}

var _ Selector = (*Recommender)(nil)

// Query identifies what a Feed shows. A nil Reference selects general recommendations.
type Query struct {
	Reference *domain.PortfolioItem
	Limit     int
}

func (q Query) same(other Query) bool {
	if q.Limit != other.Limit {
		return false
	}
	if q.Reference == nil || other.Reference == nil {
		return q.Reference == nil && other.Reference == nil
	}
	return q.Reference.ID == other.Reference.ID
}

// State is what a Feed exposes to its reader.
type State struct {
	Items   []domain.PortfolioItem `json:"items"`
	Loading bool                   `json:"loading"`
	Error   string                 `json:"error,omitempty"`
}

// Feed keeps the latest recommendations for a query and reloads them when the query changes.
// Only the most recently started load may publish its result.
type Feed struct {
	selector Selector
	logger   *slog.Logger

	mu         sync.Mutex
	query      Query
	started    bool
	generation uint64
	state      State
}

// NewFeed builds an idle feed; call Set or Refresh to load it.
func NewFeed(selector Selector, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Feed{
		selector: selector,
		logger:   logger,
		state:    State{Items: []domain.PortfolioItem{}},
	}
}

// Set switches the feed to q and loads it, unless q matches the current query.
// It reports whether a load ran.
func (f *Feed) Set(ctx context.Context, q Query) bool {
	f.mu.Lock()
	if f.started && f.query.same(q) {
		f.mu.Unlock()
		return false
	}
	f.query = q
	f.started = true
	f.mu.Unlock()

	f.load(ctx, q)
	return true
}

// Refresh reloads the current query.
func (f *Feed) Refresh(ctx context.Context) {
	f.mu.Lock()
	q := f.query
	f.started = true
	f.mu.Unlock()

	f.load(ctx, q)
}

// Poll refreshes the feed every interval until ctx is done.
func (f *Feed) Poll(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Refresh(ctx)
		}
	}
}

// State returns a snapshot of the feed.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := f.state
	snapshot.Items = slices.Clone(f.state.Items)
	if snapshot.Items == nil {
		snapshot.Items = []domain.PortfolioItem{}
	}
	return snapshot
}

func (f *Feed) load(ctx context.Context, q Query) {
	f.mu.Lock()
	f.generation++
	generation := f.generation
	f.state.Loading = true
	f.state.Error = ""
	f.mu.Unlock()

	var (
		sel Selection
		err error
	)
	if f.selector == nil {
		err = errNoSelector
	} else if q.Reference == nil {
		sel, err = f.selector.General(ctx, q.Limit)
	} else {
		sel, err = f.selector.ForItem(ctx, *q.Reference, q.Limit)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if generation != f.generation {
		f.logger.Debug("discarding superseded load", "generation", generation, "latest", f.generation)
		return
	}

	if err != nil {
		f.logger.Error("load recommendations", "error", err)
		f.state = State{Items: []domain.PortfolioItem{}, Error: LoadFailedMessage}
		return
	}

	f.state = State{Items: sel.Items}
}
