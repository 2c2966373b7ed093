package recommend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TechPortfolio/internal/domain"
)

func TestRecommendOrdersByScore(t *testing.T) {
	t.Parallel()

	pool := samplePool()
	ref := pool[0]

	// p4=50, p1=35, p6=35, p2=20, p3=0, p5=0
	got := domain.IDs(Recommend(ref, pool, 10))
	want := []string{"p4", "p1", "p6", "p2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestRankKeepsPoolOrderOnTies(t *testing.T) {
	t.Parallel()

	ref := domain.PortfolioItem{ID: "ref", Category: "Energy", Tags: []string{"x"}}
	pool := []domain.PortfolioItem{
		{ID: "c", Category: "Energy"},
		{ID: "a", Category: "Energy"},
		{ID: "b", Category: "Energy"},
		{ID: "top", Category: "Energy", Tags: []string{"x"}},
	}

	ranked := Rank(ref, pool, 4)
	require.Len(t, ranked, 4)
	assert.Equal(t, "top", ranked[0].Item.ID)
	assert.Equal(t, []string{"c", "a", "b"}, []string{ranked[1].Item.ID, ranked[2].Item.ID, ranked[3].Item.ID})
	for _, r := range ranked {
		assert.Equal(t, r.Signals.Total(), r.Score)
	}
}

func TestRecommendTruncatesAndDefaults(t *testing.T) {
	t.Parallel()

	pool := samplePool()
	ref := pool[0]

	assert.Len(t, Recommend(ref, pool, 2), 2)
	assert.Len(t, Recommend(ref, pool, 0), DefaultLimit)
	assert.Len(t, Recommend(ref, pool, -1), DefaultLimit)
}

func TestRecommendNeverIncludesReferenceOrZeroScores(t *testing.T) {
	t.Parallel()

	pool := samplePool()
	for _, ref := range pool {
		ranked := Rank(ref, pool, len(pool))
		positive := 0
		for _, candidate := range pool {
			if Score(ref, candidate) > 0 {
				positive++
			}
		}
		require.LessOrEqual(t, len(ranked), positive)

		for i, r := range ranked {
			require.NotEqual(t, ref.ID, r.Item.ID)
			require.Positive(t, r.Score)
			if i > 0 {
				require.LessOrEqual(t, r.Score, ranked[i-1].Score)
			}
		}
	}
}

func TestRecommendEmptyWhenNothingScores(t *testing.T) {
	t.Parallel()

	ref := domain.PortfolioItem{ID: "ref", Category: "Energy"}
	pool := []domain.PortfolioItem{
		ref,
		{ID: "a", Category: "Medicine"},
		{ID: "b"},
	}

	got := Recommend(ref, pool, 3)
	require.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, Recommend(ref, nil, 3))
	assert.Empty(t, Recommend(ref, []domain.PortfolioItem{ref}, 3))
}
