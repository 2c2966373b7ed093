package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: sq.Dollar,
	encodeList: func(values []string) (any, error) {
		return pq.StringArray(values), nil
	},
	decodeList: func(dst *[]string) sql.Scanner {
		return (*pq.StringArray)(dst)
	},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS portfolio_items (
			id             TEXT PRIMARY KEY,
			title          TEXT NOT NULL,
			category       TEXT NOT NULL DEFAULT '',
			field          TEXT NOT NULL DEFAULT '',
			tags           TEXT[],
			status         TEXT NOT NULL DEFAULT '',
			year           TEXT NOT NULL DEFAULT '',
			description    TEXT NOT NULL DEFAULT '',
			abstract       TEXT NOT NULL DEFAULT '',
			licensing_info TEXT NOT NULL DEFAULT '',
			patent_number  TEXT NOT NULL DEFAULT '',
			inventors      TEXT[],
			url            TEXT NOT NULL DEFAULT '',
			published      BOOLEAN NOT NULL DEFAULT FALSE,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_portfolio_items_published
			ON portfolio_items (published, created_at, id)`,
	},
}

// NewPostgresRepository wires a sql.DB opened with the lib/pq driver.
func NewPostgresRepository(db *sql.DB) *Repository {
	return newRepository(db, postgresDialect)
}

// OpenPostgres connects to Postgres and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return NewPostgresRepository(db), nil
}
