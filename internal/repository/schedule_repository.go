package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/crehm/artflow/internal/models"
)

type ScheduleRepository interface {
	Create(ctx context.Context, post *models.ScheduledPost) error
	GetByID(ctx context.Context, id string) (*models.ScheduledPost, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error)
	ListHistory(ctx context.Context, limit int) ([]*models.ScheduledPost, error)
	Cancel(ctx context.Context, id string) (bool, error)
	SetOutcome(ctx context.Context, tx *sql.Tx, id, status, resultURL, errorMessage string) error
}

type scheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

const scheduledPostColumns = `id, content_id, content_ref, destination, scheduled_time, status, result_url, error_message, created_at, updated_at`

// Create persists the post. Timestamps are normalized to UTC: the driver
// stores time as text, so mixed zones would break both the ordered
// scheduled_time comparisons and read-back scanning.
func (r *scheduleRepository) Create(ctx context.Context, post *models.ScheduledPost) error {
	query := `
		INSERT INTO scheduled_posts (id, content_id, content_ref, destination, scheduled_time, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.ContentID, post.ContentRef, post.Destination,
		post.ScheduledTime.UTC(), post.Status, post.CreatedAt.UTC(), post.CreatedAt.UTC())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id string) (*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	post, err := scanScheduledPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

// ListDue returns pending posts whose scheduled time has passed, in
// insertion order.
func (r *scheduleRepository) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts
		WHERE status = ? AND scheduled_time <= ? ORDER BY rowid`
	return r.list(ctx, query, models.PostStatusPending, now.UTC())
}

func (r *scheduleRepository) ListUpcoming(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts
		WHERE status = ? AND scheduled_time > ? ORDER BY scheduled_time`
	return r.list(ctx, query, models.PostStatusPending, now.UTC())
}

func (r *scheduleRepository) ListHistory(ctx context.Context, limit int) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts
		WHERE status IN (?, ?) ORDER BY scheduled_time DESC LIMIT ?`
	return r.list(ctx, query, models.PostStatusPosted, models.PostStatusFailed, limit)
}

func (r *scheduleRepository) list(ctx context.Context, query string, args ...any) ([]*models.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := scanScheduledPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// Cancel flips a pending post to cancelled. Returns false when the post does
// not exist or is already terminal.
func (r *scheduleRepository) Cancel(ctx context.Context, id string) (bool, error) {
	query := `UPDATE scheduled_posts SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query, models.PostStatusCancelled, time.Now().UTC(), id, models.PostStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SetOutcome writes a terminal status. Last write wins; callers are expected
// to invoke it once per post. Runs inside tx when one is supplied so the
// publish record update lands atomically with the status change.
func (r *scheduleRepository) SetOutcome(ctx context.Context, tx *sql.Tx, id, status, resultURL, errorMessage string) error {
	query := `UPDATE scheduled_posts SET status = ?, result_url = ?, error_message = ?, updated_at = ? WHERE id = ?`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, status, resultURL, errorMessage, time.Now().UTC(), id)
	} else {
		_, err = r.db.ExecContext(ctx, query, status, resultURL, errorMessage, time.Now().UTC(), id)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheduledPost(row rowScanner) (*models.ScheduledPost, error) {
	var post models.ScheduledPost
	err := row.Scan(&post.ID, &post.ContentID, &post.ContentRef, &post.Destination,
		&post.ScheduledTime, &post.Status, &post.ResultURL, &post.ErrorMessage,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
