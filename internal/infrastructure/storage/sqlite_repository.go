package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
)

var sqliteDialect = dialect{
	name:        "sqlite3",
	placeholder: sq.Question,
	encodeList: func(values []string) (any, error) {
		if values == nil {
			return nil, nil
		}
		raw, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	},
	decodeList: func(dst *[]string) sql.Scanner {
		return jsonList{dst: dst}
	},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS portfolio_items (
			id             TEXT PRIMARY KEY,
			title          TEXT NOT NULL,
			category       TEXT NOT NULL DEFAULT '',
			field          TEXT NOT NULL DEFAULT '',
			tags           TEXT,
			status         TEXT NOT NULL DEFAULT '',
			year           TEXT NOT NULL DEFAULT '',
			description    TEXT NOT NULL DEFAULT '',
			abstract       TEXT NOT NULL DEFAULT '',
			licensing_info TEXT NOT NULL DEFAULT '',
			patent_number  TEXT NOT NULL DEFAULT '',
			inventors      TEXT,
			url            TEXT NOT NULL DEFAULT '',
			published      BOOLEAN NOT NULL DEFAULT 0,
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_portfolio_items_published
			ON portfolio_items (published, created_at, id)`,
	},
}

// jsonList scans a JSON array column into a string slice; NULL leaves it nil.
type jsonList struct {
	dst *[]string
}

func (j jsonList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*j.dst = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported list column type %T", src)
	}
	if len(raw) == 0 {
		*j.dst = nil
		return nil
	}
	return json.Unmarshal(raw, j.dst)
}

// NewSQLiteRepository wires a sql.DB opened with the sqlite3 driver.
func NewSQLiteRepository(db *sql.DB) *Repository {
	return newRepository(db, sqliteDialect)
}

// OpenSQLite opens (creating if needed) a SQLite database and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	repo := NewSQLiteRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}
