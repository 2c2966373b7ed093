package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gobreaker "github.com/sony/gobreaker/v2"

	"TechPortfolio/internal/config"
	"TechPortfolio/internal/domain"
	"TechPortfolio/internal/metrics"
	"TechPortfolio/internal/ports"
)

// BreakerSource guards pool reads with a circuit breaker.
type BreakerSource struct {
	next   ports.PortfolioSource
	cb     *gobreaker.CircuitBreaker[[]domain.PortfolioItem]
	logger *slog.Logger
}

var _ ports.PortfolioSource = (*BreakerSource)(nil)

// NewBreakerSource wraps next using the configured thresholds.
func NewBreakerSource(next ports.PortfolioSource, cfg config.BreakerConfig, logger *slog.Logger) *BreakerSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	const name = "portfolio-pool"
	metrics.BreakerState.WithLabelValues(name).Set(stateValue(gobreaker.StateClosed))

	b := &BreakerSource{next: next, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker[[]domain.PortfolioItem](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return b
}

// ListPublished delegates to the wrapped source unless the breaker is open.
func (b *BreakerSource) ListPublished(ctx context.Context) ([]domain.PortfolioItem, error) {
	items, err := b.cb.Execute(func() ([]domain.PortfolioItem, error) {
		return b.next.ListPublished(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			b.logger.Debug("pool read rejected", "error", err)
		}
		return nil, fmt.Errorf("list published: %w", err)
	}
	return items, nil
}

// State reports the current breaker state.
func (b *BreakerSource) State() gobreaker.State {
	return b.cb.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
