package repository

import (
	"context"
	"database/sql"
	"log/slog"
)

type RoundRepository interface {
	Current(ctx context.Context) (int, error)
	Increment(ctx context.Context) (int, error)
}

type roundRepository struct {
	db *sql.DB
}

func NewRoundRepository(db *sql.DB) RoundRepository {
	return &roundRepository{db: db}
}

// Current returns the rotation round, creating the counter at 1 on first use.
func (r *roundRepository) Current(ctx context.Context) (int, error) {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO rounds (id, current_round) VALUES (1, 1)`)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	var round int
	err = r.db.QueryRowContext(ctx, `SELECT current_round FROM rounds WHERE id = 1`).Scan(&round)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return round, nil
}

func (r *roundRepository) Increment(ctx context.Context) (int, error) {
	current, err := r.Current(ctx)
	if err != nil {
		return 0, err
	}

	_, err = r.db.ExecContext(ctx, `UPDATE rounds SET current_round = ? WHERE id = 1`, current+1)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return current + 1, nil
}
