package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/crehm/artflow/internal/models"
)

type SessionRepository interface {
	Get(ctx context.Context, destination string) (*models.LoginSession, error)
	Upsert(ctx context.Context, session *models.LoginSession) error
	List(ctx context.Context) ([]*models.LoginSession, error)
}

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Get(ctx context.Context, destination string) (*models.LoginSession, error) {
	query := `SELECT destination, last_login, max_days FROM login_sessions WHERE destination = ?`
	row := r.db.QueryRowContext(ctx, query, destination)

	var session models.LoginSession
	err := row.Scan(&session.Destination, &session.LastLogin, &session.MaxDays)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Upsert(ctx context.Context, session *models.LoginSession) error {
	query := `
		INSERT INTO login_sessions (destination, last_login, max_days)
		VALUES (?, ?, ?)
		ON CONFLICT (destination) DO UPDATE SET
			last_login = excluded.last_login,
			max_days = excluded.max_days
	`
	lastLogin := session.LastLogin
	if lastLogin != nil {
		utc := lastLogin.UTC()
		lastLogin = &utc
	}
	_, err := r.db.ExecContext(ctx, query, session.Destination, lastLogin, session.MaxDays)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *sessionRepository) List(ctx context.Context) ([]*models.LoginSession, error) {
	query := `SELECT destination, last_login, max_days FROM login_sessions ORDER BY destination`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.LoginSession
	for rows.Next() {
		var session models.LoginSession
		err := rows.Scan(&session.Destination, &session.LastLogin, &session.MaxDays)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}
