package recommend

import (
	"slices"

	"TechPortfolio/internal/domain"
)

// DefaultLimit is used when a caller passes a non-positive limit.
const DefaultLimit = 3

// Scored pairs a pool item with its similarity to the reference.
type Scored struct {
	Item    domain.PortfolioItem `json:"item"`
	Score   int                  `json:"score"`
	Signals Signals              `json:"signals"`
}

// Rank scores the pool against reference, keeps items scoring above zero and returns
// at most limit of them ordered by score. Equal scores keep their pool order.
func Rank(reference domain.PortfolioItem, pool []domain.PortfolioItem, limit int) []Scored {
	limit = normalizeLimit(limit)

	ranked := make([]Scored, 0, len(pool))
	for _, candidate := range pool {
		signals := Explain(reference, candidate)
		score := signals.Total()
		if score <= 0 {
			continue
		}
		ranked = append(ranked, Scored{Item: candidate, Score: score, Signals: signals})
	}

	slices.SortStableFunc(ranked, func(a, b Scored) int {
		return b.Score - a.Score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Recommend returns the items most related to reference. The result is empty when no
// candidate scores above zero; callers decide whether to fall back to RandomPick.
func Recommend(reference domain.PortfolioItem, pool []domain.PortfolioItem, limit int) []domain.PortfolioItem {
	ranked := Rank(reference, pool, limit)

	items := make([]domain.PortfolioItem, len(ranked))
	for i, r := range ranked {
		items[i] = r.Item
	}
	return items
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
