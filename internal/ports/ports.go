package ports

import (
	"context"
	"errors"
	"time"

	"TechPortfolio/internal/domain"
)

// ErrNotFound reports that no published item has the requested id.
var ErrNotFound = errors.New("portfolio item not found")

// PortfolioSource returns every portfolio item currently in the published state.
type PortfolioSource interface {
	ListPublished(ctx context.Context) ([]domain.PortfolioItem, error)
}

// PortfolioRepository persists catalogue records imported from listing pages.
type PortfolioRepository interface {
	AlreadyStored(ctx context.Context, ids []string) (map[string]bool, error)
	SaveItem(ctx context.Context, item domain.PortfolioItem) error
	GetPublished(ctx context.Context, id string) (domain.PortfolioItem, error)
}

// ListingSource pulls technology listings from the office's public pages.
type ListingSource interface {
	FetchListings(ctx context.Context) ([]domain.PortfolioItem, error)
}

// Notifier streams announcements to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
