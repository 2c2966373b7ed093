package recommend

import (
	"math/rand/v2"

	"TechPortfolio/internal/domain"
)

// RandomPick returns up to limit pool items other than reference in uniformly random order.
// A nil rng draws from the global source.
func RandomPick(reference domain.PortfolioItem, pool []domain.PortfolioItem, limit int, rng *rand.Rand) []domain.PortfolioItem {
	limit = normalizeLimit(limit)

	remaining := make([]domain.PortfolioItem, 0, len(pool))
	for _, item := range pool {
		if item.ID == reference.ID {
			continue
		}
		remaining = append(remaining, item)
	}

	swap := func(i, j int) { remaining[i], remaining[j] = remaining[j], remaining[i] }
	if rng != nil {
		rng.Shuffle(len(remaining), swap)
	} else {
		rand.Shuffle(len(remaining), swap)
	}

	if len(remaining) > limit {
		remaining = remaining[:limit]
	}
	return remaining
}

// PickOne returns a uniformly random pool item. The second result is false for an empty pool.
func PickOne(pool []domain.PortfolioItem, rng *rand.Rand) (domain.PortfolioItem, bool) {
	if len(pool) == 0 {
		return domain.PortfolioItem{}, false
	}
	if rng != nil {
		return pool[rng.IntN(len(pool))], true
	}
	return pool[rand.IntN(len(pool))], true
}
