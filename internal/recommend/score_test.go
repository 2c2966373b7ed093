package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TechPortfolio/internal/domain"
)

func TestScoreExampleScenario(t *testing.T) {
	t.Parallel()

	ref := domain.PortfolioItem{ID: "A", Field: "Agriculture", Tags: []string{"IoT", "Farming"}, Status: "Granted", Year: "2024"}
	cand := domain.PortfolioItem{ID: "B", Field: "Agriculture", Tags: []string{"IoT", "Water"}, Status: "Granted", Year: "2023"}

	assert.Equal(t, 45, Score(ref, cand))
}

func TestScoreIsAdditive(t *testing.T) {
	t.Parallel()

	ref := domain.PortfolioItem{ID: "A", Category: "Energy", Tags: []string{"solar", "storage", "grid"}, Status: "Pending", Year: "2020"}
	cand := domain.PortfolioItem{ID: "B", Category: "Energy", Tags: []string{"grid", "solar"}, Status: "Pending", Year: "2021"}

	signals := Explain(ref, cand)
	assert.Equal(t, Signals{Field: 30, Tags: 10, Status: 5, Year: 5}, signals)
	assert.Equal(t, 50, Score(ref, cand))
	assert.Equal(t, signals.Total(), Score(ref, cand))
}

func TestScoreSelfIsZero(t *testing.T) {
	t.Parallel()

	item := domain.PortfolioItem{ID: "A", Field: "Medicine", Tags: []string{"drug"}, Status: "Granted", Year: "2022"}
	assert.Equal(t, 0, Score(item, item))
	assert.True(t, Explain(item, item).Self)

	// identity is by id, not by content
	other := item
	other.Field = "Physics"
	assert.Equal(t, 0, Score(item, other))
}

func TestScoreFieldResolution(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		ref  domain.PortfolioItem
		cand domain.PortfolioItem
		want int
	}{
		{
			name: "field overrides category on both sides",
			ref:  domain.PortfolioItem{ID: "A", Category: "Engineering", Field: "Robotics"},
			cand: domain.PortfolioItem{ID: "B", Category: "Software", Field: "Robotics"},
			want: 30,
		},
		{
			name: "field against category",
			ref:  domain.PortfolioItem{ID: "A", Field: "Robotics"},
			cand: domain.PortfolioItem{ID: "B", Category: "Robotics"},
			want: 30,
		},
		{
			name: "case sensitive",
			ref:  domain.PortfolioItem{ID: "A", Category: "robotics"},
			cand: domain.PortfolioItem{ID: "B", Category: "Robotics"},
			want: 0,
		},
		{
			name: "both absent is not a match",
			ref:  domain.PortfolioItem{ID: "A"},
			cand: domain.PortfolioItem{ID: "B"},
			want: 0,
		},
		{
			name: "override hides matching category",
			ref:  domain.PortfolioItem{ID: "A", Category: "Energy", Field: "Batteries"},
			cand: domain.PortfolioItem{ID: "B", Category: "Energy"},
			want: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.ref, tc.cand))
		})
	}
}

func TestScoreTags(t *testing.T) {
	t.Parallel()

	ref := domain.PortfolioItem{ID: "A", Tags: []string{"a", "b", "c", "d"}}
	cand := domain.PortfolioItem{ID: "B", Tags: []string{"d", "c", "b", "a", "z"}}
	assert.Equal(t, 20, Score(ref, cand), "no cap on tag matches")

	assert.Equal(t, 0, Score(domain.PortfolioItem{ID: "A"}, cand), "missing reference tags")
	assert.Equal(t, 0, Score(ref, domain.PortfolioItem{ID: "B"}), "missing candidate tags")
	assert.Equal(t, 0, Score(ref, domain.PortfolioItem{ID: "B", Tags: []string{"A"}}), "exact match only")

	dupRef := domain.PortfolioItem{ID: "A", Tags: []string{"x", "x"}}
	dupCand := domain.PortfolioItem{ID: "B", Tags: []string{"x", "x", "x"}}
	assert.Equal(t, 10, Score(dupRef, dupCand), "each reference tag counts once per occurrence")
}

func TestScoreStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, Score(domain.PortfolioItem{ID: "A", Status: "Granted"}, domain.PortfolioItem{ID: "B", Status: "Granted"}))
	assert.Equal(t, 0, Score(domain.PortfolioItem{ID: "A", Status: "Granted"}, domain.PortfolioItem{ID: "B", Status: "granted"}))
	assert.Equal(t, 0, Score(domain.PortfolioItem{ID: "A"}, domain.PortfolioItem{ID: "B"}))
}

func TestScoreYearProximity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		refYear  string
		candYear string
		want     int
	}{
		{"2024", "2024", 5},
		{"2024", "2022", 5},
		{"2020", "2022", 5},
		{"2024", "2021", 2},
		{"2024", "2019", 2},
		{"2024", "2018", 0},
		{"2024", "", 0},
		{"", "2024", 0},
		{"2024", "twenty", 0},
		{"soon", "2024", 0},
	}

	for _, tc := range cases {
		ref := domain.PortfolioItem{ID: "A", Year: tc.refYear}
		cand := domain.PortfolioItem{ID: "B", Year: tc.candYear}
		assert.Equalf(t, tc.want, Score(ref, cand), "years %q vs %q", tc.refYear, tc.candYear)
	}
}

func TestScoreNonNegativeAndDeterministic(t *testing.T) {
	t.Parallel()

	items := samplePool()
	for _, a := range items {
		for _, b := range items {
			first := Score(a, b)
			require.GreaterOrEqual(t, first, 0)
			require.Equal(t, first, Score(a, b))
		}
	}
}

func samplePool() []domain.PortfolioItem {
	return []domain.PortfolioItem{
		{ID: "ref", Field: "Agriculture", Tags: []string{"IoT", "Farming"}, Status: "Granted", Year: "2024"},
		{ID: "p1", Category: "Agriculture", Tags: []string{"IoT"}, Status: "Pending", Year: "2018"},
		{ID: "p2", Category: "Medicine", Tags: []string{"Farming", "IoT"}, Status: "Granted", Year: "2023"},
		{ID: "p3", Category: "Physics"},
		{ID: "p4", Category: "Agriculture", Field: "Agriculture", Tags: []string{"IoT", "Farming"}, Status: "Granted", Year: "2025"},
		{ID: "p5", Category: "Medicine", Year: "n/a"},
		{ID: "p6", Category: "Agriculture", Tags: []string{"IoT"}, Status: "Pending", Year: "2017"},
	}
}
