package models

import "time"

type ScheduledPost struct {
	ID            string    `db:"id" json:"id"`
	ContentID     string    `db:"content_id" json:"content_id"`
	ContentRef    string    `db:"content_ref" json:"content_ref"`
	Destination   string    `db:"destination" json:"destination"`
	ScheduledTime time.Time `db:"scheduled_time" json:"scheduled_time"`
	Status        string    `db:"status" json:"status"`
	ResultURL     string    `db:"result_url" json:"result_url"`
	ErrorMessage  string    `db:"error_message" json:"error_message"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Status transitions are one-way: pending -> posted | failed | cancelled.
// Terminal entries are kept forever for audit.
const (
	PostStatusPending   = "pending"
	PostStatusPosted    = "posted"
	PostStatusFailed    = "failed"
	PostStatusCancelled = "cancelled"
)
