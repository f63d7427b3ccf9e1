package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crehm/artflow/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "artflow_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func seedContent(t *testing.T, cr ContentRepository, id string) {
	t.Helper()
	require.NoError(t, cr.Create(context.Background(), &models.ContentItem{
		ID:        id,
		Title:     "Painting " + id,
		AssetRef:  "r2://" + id + ".jpg",
		CreatedAt: time.Now(),
	}))
}

func TestContentRoundTrip(t *testing.T) {
	db := newTestDB(t)
	cr := NewContentRepository(db)
	ctx := context.Background()

	seedContent(t, cr, "c1")

	item, err := cr.GetByID(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Painting c1", item.Title)
	assert.Empty(t, item.Records)

	missing, err := cr.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIncrementRecord(t *testing.T) {
	db := newTestDB(t)
	cr := NewContentRepository(db)
	ctx := context.Background()

	seedContent(t, cr, "c1")

	require.NoError(t, cr.IncrementRecord(ctx, nil, "c1", "mastodon", "https://m.test/1", time.Now()))
	require.NoError(t, cr.IncrementRecord(ctx, nil, "c1", "mastodon", "https://m.test/2", time.Now()))

	item, err := cr.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, item.PublishCountFor("mastodon"))
	assert.Equal(t, "https://m.test/2", item.Records["mastodon"].PublishedURL)
	assert.True(t, item.Records["mastodon"].LastPublishedAt.Valid)
}

func TestAdvanceRecordToRoundIsMonotone(t *testing.T) {
	db := newTestDB(t)
	cr := NewContentRepository(db)
	ctx := context.Background()

	seedContent(t, cr, "c1")

	require.NoError(t, cr.AdvanceRecordToRound(ctx, "c1", "flickr", 3, "https://f.test/3", time.Now()))

	// A lower round never pulls the count back down.
	require.NoError(t, cr.AdvanceRecordToRound(ctx, "c1", "flickr", 2, "", time.Now()))

	item, err := cr.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, item.PublishCountFor("flickr"))
	assert.Equal(t, "https://f.test/3", item.Records["flickr"].PublishedURL,
		"failed attempt must not erase the last good URL")
}

func TestListStitchesRecords(t *testing.T) {
	db := newTestDB(t)
	cr := NewContentRepository(db)
	ctx := context.Background()

	seedContent(t, cr, "c1")
	seedContent(t, cr, "c2")
	require.NoError(t, cr.IncrementRecord(ctx, nil, "c2", "pixelfed", "https://p.test/1", time.Now()))

	items, err := cr.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := make(map[string]*models.ContentItem)
	for _, item := range items {
		byID[item.ID] = item
	}
	assert.Equal(t, 0, byID["c1"].PublishCountFor("pixelfed"))
	assert.Equal(t, 1, byID["c2"].PublishCountFor("pixelfed"))
}

func TestIncrementRecordInTransaction(t *testing.T) {
	db := newTestDB(t)
	cr := NewContentRepository(db)
	ctx := context.Background()

	seedContent(t, cr, "c1")

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, cr.IncrementRecord(ctx, tx, "c1", "mastodon", "https://m.test/1", time.Now()))
	require.NoError(t, tx.Rollback())

	item, err := cr.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, item.PublishCountFor("mastodon"), "rolled back increment must not stick")
}
