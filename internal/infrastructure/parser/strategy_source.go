package parser

import (
	"context"
	"fmt"
	"log/slog"

	"TechPortfolio/internal/config"
	"TechPortfolio/internal/domain"
	"TechPortfolio/internal/ports"
	"TechPortfolio/internal/scanner"
)

// StrategySource implements ListingSource by dispatching each configured site to its scanner.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ListingSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// FetchListings scans every site and merges the results, keeping the first item seen per ID.
func (s *StrategySource) FetchListings(ctx context.Context) ([]domain.PortfolioItem, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch listings", "sites", len(s.sites))

	var aggregated []domain.PortfolioItem
	seen := map[string]struct{}{}
	for _, site := range s.sites {
		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "pages", len(site.Pages))
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		results, err := strategy.Scan(ctx, scanner.Request{
			SiteName: site.Name,
			Options:  site.Options,
			Pages:    toScannerPages(site.Pages),
		})
		if err != nil {
			return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
		}

		for _, item := range results {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			aggregated = append(aggregated, item)
		}
		s.debug("site produced listings", "site", site.Name, "count", len(results))
	}

	s.debug("strategy source done", "total_items", len(aggregated))
	return aggregated, nil
}

func toScannerPages(cfg []config.PageConfig) []scanner.Page {
	pages := make([]scanner.Page, 0, len(cfg))
	for _, p := range cfg {
		pages = append(pages, scanner.Page{Name: p.Name, URL: p.URL})
	}
	return pages
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
