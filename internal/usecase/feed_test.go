package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TechPortfolio/internal/domain"
)

// gatedSelector blocks ForItem calls for gated reference ids until released.
type gatedSelector struct {
	mu      sync.Mutex
	results map[string][]domain.PortfolioItem
	gates   map[string]chan struct{}
	entered chan string
	err     error
	general int
}

func newGatedSelector() *gatedSelector {
	return &gatedSelector{
		results: map[string][]domain.PortfolioItem{},
		gates:   map[string]chan struct{}{},
		entered: make(chan string, 8),
	}
}

func (g *gatedSelector) ForItem(ctx context.Context, reference domain.PortfolioItem, limit int) (Selection, error) {
	g.mu.Lock()
	gate := g.gates[reference.ID]
	items := g.results[reference.ID]
	err := g.err
	g.mu.Unlock()

	g.entered <- reference.ID
	if gate != nil {
		<-gate
	}
	if err != nil {
		return Selection{}, err
	}
	return Selection{Items: items}, nil
}

func (g *gatedSelector) General(ctx context.Context, limit int) (Selection, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.general++
	if g.err != nil {
		return Selection{}, g.err
	}
	return Selection{Items: []domain.PortfolioItem{{ID: "featured"}}}, nil
}

func (g *gatedSelector) setErr(err error) {
	g.mu.Lock()
	g.err = err
	g.mu.Unlock()
}

func TestFeedLoadsOnQueryChangeOnly(t *testing.T) {
	t.Parallel()

	sel := newGatedSelector()
	sel.results["A"] = []domain.PortfolioItem{{ID: "B"}}
	feed := NewFeed(sel, nil)

	a := domain.PortfolioItem{ID: "A"}
	require.True(t, feed.Set(context.Background(), Query{Reference: &a, Limit: 3}))
	<-sel.entered
	assert.Equal(t, State{Items: []domain.PortfolioItem{{ID: "B"}}}, feed.State())

	same := domain.PortfolioItem{ID: "A", Title: "edited snapshot"}
	assert.False(t, feed.Set(context.Background(), Query{Reference: &same, Limit: 3}))

	assert.True(t, feed.Set(context.Background(), Query{Reference: &a, Limit: 5}))
	<-sel.entered
}

func TestFeedGeneralQuery(t *testing.T) {
	t.Parallel()

	sel := newGatedSelector()
	feed := NewFeed(sel, nil)

	assert.Equal(t, State{Items: []domain.PortfolioItem{}}, feed.State())

	feed.Set(context.Background(), Query{Limit: 3})
	assert.Equal(t, []string{"featured"}, domain.IDs(feed.State().Items))

	feed.Refresh(context.Background())
	assert.Equal(t, 2, sel.general)
}

func TestFeedFailureClearsItems(t *testing.T) {
	t.Parallel()

	sel := newGatedSelector()
	feed := NewFeed(sel, nil)

	feed.Set(context.Background(), Query{Limit: 3})
	require.Len(t, feed.State().Items, 1)

	sel.setErr(errors.New("database is down"))
	feed.Refresh(context.Background())

	state := feed.State()
	assert.Empty(t, state.Items)
	assert.NotNil(t, state.Items)
	assert.False(t, state.Loading)
	assert.Equal(t, LoadFailedMessage, state.Error)

	sel.setErr(nil)
	feed.Refresh(context.Background())
	assert.Empty(t, feed.State().Error)
}

func TestFeedShowsLoadingAndDropsStaleResults(t *testing.T) {
	t.Parallel()

	sel := newGatedSelector()
	sel.results["slow"] = []domain.PortfolioItem{{ID: "stale"}}
	sel.results["fast"] = []domain.PortfolioItem{{ID: "fresh"}}
	release := make(chan struct{})
	sel.gates["slow"] = release
	feed := NewFeed(sel, nil)

	slow := domain.PortfolioItem{ID: "slow"}
	fast := domain.PortfolioItem{ID: "fast"}

	done := make(chan struct{})
	go func() {
		defer close(done)
		feed.Set(context.Background(), Query{Reference: &slow, Limit: 3})
	}()

	require.Equal(t, "slow", <-sel.entered)
	assert.True(t, feed.State().Loading)

	feed.Set(context.Background(), Query{Reference: &fast, Limit: 3})
	require.Equal(t, "fast", <-sel.entered)
	assert.Equal(t, []string{"fresh"}, domain.IDs(feed.State().Items))

	close(release)
	<-done

	state := feed.State()
	assert.False(t, state.Loading)
	assert.Equal(t, []string{"fresh"}, domain.IDs(state.Items))
}

func TestFeedPollStopsWithContext(t *testing.T) {
	t.Parallel()

	sel := newGatedSelector()
	feed := NewFeed(sel, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		feed.Poll(ctx, 5*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		sel.mu.Lock()
		defer sel.mu.Unlock()
		return sel.general >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestFeedWithRecommender(t *testing.T) {
	t.Parallel()

	src := &fakeSource{items: catalogue()}
	feed := NewFeed(newTestRecommender(src), nil)

	ref := catalogue()[0]
	feed.Set(context.Background(), Query{Reference: &ref, Limit: 3})
	assert.Equal(t, []string{"B", "D"}, domain.IDs(feed.State().Items))

	src.mu.Lock()
	src.err = errors.New("timeout")
	src.mu.Unlock()

	feed.Refresh(context.Background())
	assert.Equal(t, LoadFailedMessage, feed.State().Error)
}
