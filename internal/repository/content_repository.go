package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/crehm/artflow/internal/models"
)

type ContentRepository interface {
	Create(ctx context.Context, item *models.ContentItem) error
	GetByID(ctx context.Context, id string) (*models.ContentItem, error)
	List(ctx context.Context) ([]*models.ContentItem, error)
	IncrementRecord(ctx context.Context, tx *sql.Tx, contentID, destination, publishedURL string, at time.Time) error
	AdvanceRecordToRound(ctx context.Context, contentID, destination string, round int, publishedURL string, at time.Time) error
}

type contentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	query := `
		INSERT INTO content_items (id, title, description, subject, asset_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.Title, item.Description, item.Subject, item.AssetRef, item.CreatedAt.UTC())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentRepository) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	query := `SELECT id, title, description, subject, asset_ref, created_at FROM content_items WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var item models.ContentItem
	err := row.Scan(&item.ID, &item.Title, &item.Description, &item.Subject, &item.AssetRef, &item.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	item.Records = make(map[string]*models.PublishRecord)
	records, err := r.listRecords(ctx, `SELECT content_id, destination, publish_count, last_published_at, published_url FROM publish_records WHERE content_id = ?`, id)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		item.Records[rec.Destination] = rec
	}
	return &item, nil
}

// List returns the whole library with publish records attached.
func (r *contentRepository) List(ctx context.Context) ([]*models.ContentItem, error) {
	query := `SELECT id, title, description, subject, asset_ref, created_at FROM content_items ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*models.ContentItem)
	var items []*models.ContentItem
	for rows.Next() {
		var item models.ContentItem
		err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Subject, &item.AssetRef, &item.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		item.Records = make(map[string]*models.PublishRecord)
		byID[item.ID] = &item
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	records, err := r.listRecords(ctx, `SELECT content_id, destination, publish_count, last_published_at, published_url FROM publish_records`)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if item, ok := byID[rec.ContentID]; ok {
			item.Records[rec.Destination] = rec
		}
	}
	return items, nil
}

// IncrementRecord bumps publish_count by one after a successful scheduled
// post. Runs inside tx so the count moves together with the scheduled post's
// status.
func (r *contentRepository) IncrementRecord(ctx context.Context, tx *sql.Tx, contentID, destination, publishedURL string, at time.Time) error {
	query := `
		INSERT INTO publish_records (content_id, destination, publish_count, last_published_at, published_url)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (content_id, destination) DO UPDATE SET
			publish_count = publish_count + 1,
			last_published_at = excluded.last_published_at,
			published_url = excluded.published_url
	`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, contentID, destination, at.UTC(), publishedURL)
	} else {
		_, err = r.db.ExecContext(ctx, query, contentID, destination, at.UTC(), publishedURL)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// AdvanceRecordToRound sets publish_count to the given round after a rotation
// attempt. MAX keeps the count monotone when scheduled posts have already
// pushed it past the current round.
func (r *contentRepository) AdvanceRecordToRound(ctx context.Context, contentID, destination string, round int, publishedURL string, at time.Time) error {
	query := `
		INSERT INTO publish_records (content_id, destination, publish_count, last_published_at, published_url)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (content_id, destination) DO UPDATE SET
			publish_count = MAX(publish_count, excluded.publish_count),
			last_published_at = excluded.last_published_at,
			published_url = CASE WHEN excluded.published_url != '' THEN excluded.published_url ELSE published_url END
	`
	_, err := r.db.ExecContext(ctx, query, contentID, destination, round, at.UTC(), publishedURL)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentRepository) listRecords(ctx context.Context, query string, args ...any) ([]*models.PublishRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var records []*models.PublishRecord
	for rows.Next() {
		var rec models.PublishRecord
		err := rows.Scan(&rec.ContentID, &rec.Destination, &rec.PublishCount, &rec.LastPublishedAt, &rec.PublishedURL)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
