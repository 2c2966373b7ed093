package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"TechPortfolio/internal/domain"
	"TechPortfolio/internal/ports"
)

// ErrNotFound is returned when no published item matches the requested id.
var ErrNotFound = ports.ErrNotFound

const itemsTable = "portfolio_items"

var itemColumns = []string{
	"id", "title", "category", "field", "tags", "status", "year",
	"description", "abstract", "licensing_info", "patent_number", "inventors",
	"url", "published", "created_at", "updated_at",
}

// dialect isolates the few places where Postgres and SQLite disagree.
type dialect struct {
	name        string
	placeholder sq.PlaceholderFormat
	encodeList  func([]string) (any, error)
	decodeList  func(*[]string) sql.Scanner
	schema      []string
}

// Repository stores the portfolio catalogue in a SQL database.
type Repository struct {
	db  *sql.DB
	d   dialect
	now func() time.Time
}

var (
	_ ports.PortfolioSource     = (*Repository)(nil)
	_ ports.PortfolioRepository = (*Repository)(nil)
)

func newRepository(db *sql.DB, d dialect) *Repository {
	return &Repository{db: db, d: d, now: time.Now}
}

// DB exposes the underlying handle for lifecycle management.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate creates the catalogue schema when it is missing.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range r.d.schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s schema: %w", r.d.name, err)
		}
	}
	return nil
}

func (r *Repository) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(r.d.placeholder)
}

func (r *Repository) selectItems() sq.SelectBuilder {
	return r.builder().Select(itemColumns...).From(itemsTable)
}

// ListPublished returns every published item ordered by creation time, then id.
func (r *Repository) ListPublished(ctx context.Context) ([]domain.PortfolioItem, error) {
	query, args, err := r.selectItems().
		Where(sq.Eq{"published": true}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query published: %w", err)
	}

	items := make([]domain.PortfolioItem, 0)
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return items, nil
}

// GetPublished loads a single published item.
func (r *Repository) GetPublished(ctx context.Context, id string) (domain.PortfolioItem, error) {
	query, args, err := r.selectItems().
		Where(sq.Eq{"id": id, "published": true}).
		ToSql()
	if err != nil {
		return domain.PortfolioItem{}, fmt.Errorf("build get query: %w", err)
	}

	item, err := r.scanItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PortfolioItem{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return item, err
}

// AlreadyStored returns a map with IDs that already exist in storage.
func (r *Repository) AlreadyStored(ctx context.Context, ids []string) (map[string]bool, error) {
	if r.db == nil || len(ids) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := r.builder().Select("id").From(itemsTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lookup query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stored: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan id: %w", err)
		}
		result[id] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// SaveItem upserts the item; created_at is kept from the first insert.
func (r *Repository) SaveItem(ctx context.Context, item domain.PortfolioItem) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.upsert(item)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert item %s: %w", item.ID, err)
	}

	return nil
}

func (r *Repository) upsert(item domain.PortfolioItem) (string, []any, error) {
	tags, err := r.d.encodeList(item.Tags)
	if err != nil {
		return "", nil, fmt.Errorf("encode tags: %w", err)
	}
	inventors, err := r.d.encodeList(item.Inventors)
	if err != nil {
		return "", nil, fmt.Errorf("encode inventors: %w", err)
	}

	now := r.now().UTC()
	created, updated := item.CreatedAt, item.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}

	query, args, err := r.builder().
		Insert(itemsTable).
		Columns(itemColumns...).
		Values(
			item.ID, item.Title, item.Category, item.Field, tags, item.Status, item.Year,
			item.Description, item.Abstract, item.LicensingInfo, item.PatentNumber, inventors,
			item.URL, item.Published, created.UTC(), updated.UTC(),
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			field = EXCLUDED.field,
			tags = EXCLUDED.tags,
			status = EXCLUDED.status,
			year = EXCLUDED.year,
			description = EXCLUDED.description,
			abstract = EXCLUDED.abstract,
			licensing_info = EXCLUDED.licensing_info,
			patent_number = EXCLUDED.patent_number,
			inventors = EXCLUDED.inventors,
			url = EXCLUDED.url,
			published = EXCLUDED.published,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert: %w", err)
	}
	return query, args, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanItem(row rowScanner) (domain.PortfolioItem, error) {
	var item domain.PortfolioItem
	err := row.Scan(
		&item.ID, &item.Title, &item.Category, &item.Field, r.d.decodeList(&item.Tags),
		&item.Status, &item.Year, &item.Description, &item.Abstract, &item.LicensingInfo,
		&item.PatentNumber, r.d.decodeList(&item.Inventors), &item.URL, &item.Published,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PortfolioItem{}, err
	}
	if err != nil {
		return domain.PortfolioItem{}, fmt.Errorf("scan item: %w", err)
	}
	return item, nil
}
