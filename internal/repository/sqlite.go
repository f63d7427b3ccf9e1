package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens the embedded sqlite database. WAL plus a busy timeout keeps the
// single-writer discipline safe when the cron trigger and the admin API race.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS content_items (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	subject     TEXT NOT NULL DEFAULT '',
	asset_ref   TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS publish_records (
	content_id        TEXT NOT NULL REFERENCES content_items(id),
	destination       TEXT NOT NULL,
	publish_count     INTEGER NOT NULL DEFAULT 0,
	last_published_at TIMESTAMP,
	published_url     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (content_id, destination)
);

CREATE TABLE IF NOT EXISTS scheduled_posts (
	id             TEXT PRIMARY KEY,
	content_id     TEXT NOT NULL,
	content_ref    TEXT NOT NULL DEFAULT '',
	destination    TEXT NOT NULL,
	scheduled_time TIMESTAMP NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	result_url     TEXT NOT NULL DEFAULT '',
	error_message  TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS rounds (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	current_round INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS login_sessions (
	destination TEXT PRIMARY KEY,
	last_login  TIMESTAMP,
	max_days    INTEGER NOT NULL DEFAULT 30
);

CREATE TABLE IF NOT EXISTS post_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	outcome       TEXT NOT NULL,
	destination   TEXT NOT NULL,
	content_id    TEXT NOT NULL DEFAULT '',
	title         TEXT NOT NULL DEFAULT '',
	asset_ref     TEXT NOT NULL DEFAULT '',
	result_url    TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	screenshots   TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
