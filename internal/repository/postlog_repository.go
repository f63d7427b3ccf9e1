package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/crehm/artflow/internal/models"
)

type PostLogRepository interface {
	Create(ctx context.Context, entry *models.PostLogEntry) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]*models.PostLogEntry, error)
}

type postLogRepository struct {
	db *sql.DB
}

func NewPostLogRepository(db *sql.DB) PostLogRepository {
	return &postLogRepository{db: db}
}

func (r *postLogRepository) Create(ctx context.Context, entry *models.PostLogEntry) (int64, error) {
	query := `
		INSERT INTO post_log (outcome, destination, content_id, title, asset_ref, result_url, error_message, screenshots, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		entry.Outcome, entry.Destination, entry.ContentID, entry.Title,
		entry.AssetRef, entry.ResultURL, entry.ErrorMessage, entry.Screenshots, entry.CreatedAt.UTC())
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.LastInsertId()
}

func (r *postLogRepository) ListRecent(ctx context.Context, limit int) ([]*models.PostLogEntry, error) {
	query := `
		SELECT id, outcome, destination, content_id, title, asset_ref, result_url, error_message, screenshots, created_at
		FROM post_log ORDER BY id DESC LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PostLogEntry
	for rows.Next() {
		var entry models.PostLogEntry
		err := rows.Scan(&entry.ID, &entry.Outcome, &entry.Destination, &entry.ContentID,
			&entry.Title, &entry.AssetRef, &entry.ResultURL, &entry.ErrorMessage,
			&entry.Screenshots, &entry.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
