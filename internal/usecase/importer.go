package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"TechPortfolio/internal/domain"
	"TechPortfolio/internal/metrics"
	"TechPortfolio/internal/ports"
)

// ImporterDeps wires all driven adapters into the listing importer.
type ImporterDeps struct {
	Source     ports.ListingSource
	Repository ports.PortfolioRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger
	// Publish marks imported items as published so the recommender sees them.
	Publish bool
}

// ImportReport summarises one importer run.
type ImportReport struct {
	RunID   string
	Fetched int
	Skipped int
	Saved   []domain.PortfolioItem
}

// Importer copies new technology listings into the portfolio store.
type Importer struct {
	source     ports.ListingSource
	repository ports.PortfolioRepository
	notifier   ports.Notifier
	logger     *slog.Logger
	publish    bool
}

// NewImporter constructs the import workflow.
func NewImporter(deps ImporterDeps) *Importer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{
		source:     deps.Source,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		logger:     logger,
		publish:    deps.Publish,
	}
}

// ImportOnce fetches listings, stores the unseen ones and announces them.
func (i *Importer) ImportOnce(ctx context.Context, now time.Time) (ImportReport, error) {
	report := ImportReport{RunID: uuid.NewString()}
	if i.source == nil {
		return report, nil
	}

	log := i.logger.With("run_id", report.RunID)
	log.Info("import started", "at", now.Format(time.RFC3339))

	report, err := i.run(ctx, now, report)
	if err != nil {
		metrics.ImportRunsTotal.WithLabelValues("error").Inc()
		log.Error("import failed", "error", err)
		return report, err
	}

	metrics.ImportRunsTotal.WithLabelValues("ok").Inc()
	log.Info("import finished", "fetched", report.Fetched, "skipped", report.Skipped, "saved", len(report.Saved))
	return report, nil
}

func (i *Importer) run(ctx context.Context, now time.Time, report ImportReport) (ImportReport, error) {
	listings, err := i.source.FetchListings(ctx)
	if err != nil {
		return report, fmt.Errorf("fetch listings: %w", err)
	}
	report.Fetched = len(listings)

	stored := map[string]bool{}
	if i.repository != nil && len(listings) > 0 {
		stored, err = i.repository.AlreadyStored(ctx, domain.IDs(listings))
		if err != nil {
			return report, fmt.Errorf("load stored ids: %w", err)
		}
	}

	for _, item := range listings {
		if stored[item.ID] {
			report.Skipped++
			metrics.ImportedItemsTotal.WithLabelValues("skipped").Inc()
			continue
		}

		item.Published = i.publish
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.UpdatedAt = now

		if i.repository != nil {
			if err := i.repository.SaveItem(ctx, item); err != nil {
				return report, fmt.Errorf("persist item %s: %w", item.ID, err)
			}
		}
		report.Saved = append(report.Saved, item)
		metrics.ImportedItemsTotal.WithLabelValues("saved").Inc()
	}

	if len(report.Saved) == 0 || i.notifier == nil {
		return report, nil
	}

	if err := i.notifier.PublishDigest(ctx, buildDigestMessage(report.Saved)); err != nil {
		return report, fmt.Errorf("publish digest: %w", err)
	}
	return report, nil
}

func buildDigestMessage(items []domain.PortfolioItem) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%d new technologies available for licensing*\n\n", len(items))
	for _, item := range items {
		fmt.Fprintf(&b, "- %s", item.Title)
		if field := item.EffectiveField(); field != "" {
			fmt.Fprintf(&b, " (%s)", field)
		}
		b.WriteString("\n")
		if item.Status != "" {
			fmt.Fprintf(&b, "Status: %s\n", item.Status)
		}
		if item.URL != "" {
			b.WriteString(item.URL)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
