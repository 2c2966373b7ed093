package storage

import (
	"strings"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresListQuery(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil)
	query, args, err := repo.selectItems().
		Where(sq.Eq{"published": true}).
		OrderBy("created_at", "id").
		ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "SELECT id, title, category, field, tags,"), query)
	assert.Contains(t, query, "FROM portfolio_items WHERE published = $1 ORDER BY created_at, id")
	assert.Equal(t, []any{true}, args)
}

func TestPostgresUpsertQuery(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil)
	fixed := time.Date(2026, 3, 3, 3, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	item := seedItem("T-7", time.Time{}, true)
	query, args, err := repo.upsert(item)
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO portfolio_items (id,title,category,field,tags,")
	assert.Contains(t, query, "VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)")
	assert.Contains(t, query, "ON CONFLICT (id) DO UPDATE SET")
	assert.NotContains(t, query, "created_at = EXCLUDED.created_at")

	require.Len(t, args, len(itemColumns))
	assert.Equal(t, pq.StringArray{"autonomy", "lidar"}, args[4])
	assert.Equal(t, fixed, args[14])
}

func TestPostgresLookupQueryExpandsIDs(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil)
	query, args, err := repo.builder().Select("id").From(itemsTable).Where(sq.Eq{"id": []string{"a", "b"}}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM portfolio_items WHERE id IN ($1,$2)", query)
	assert.Equal(t, []any{"a", "b"}, args)
}

func TestNilDatabaseIsNoop(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil)
	stored, err := repo.AlreadyStored(t.Context(), []string{"a"})
	require.NoError(t, err)
	assert.Empty(t, stored)
	require.NoError(t, repo.SaveItem(t.Context(), seedItem("a", time.Now(), true)))
	require.NoError(t, repo.Close())
}
