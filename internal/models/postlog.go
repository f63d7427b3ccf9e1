package models

import "time"

type PostLogEntry struct {
	ID           int64     `db:"id" json:"id"`
	Outcome      string    `db:"outcome" json:"outcome"`
	Destination  string    `db:"destination" json:"destination"`
	ContentID    string    `db:"content_id" json:"content_id"`
	Title        string    `db:"title" json:"title"`
	AssetRef     string    `db:"asset_ref" json:"asset_ref"`
	ResultURL    string    `db:"result_url" json:"result_url"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	Screenshots  string    `db:"screenshots" json:"screenshots"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	LogOutcomeSuccess           = "success"
	LogOutcomeFailure           = "failure"
	LogOutcomeCredentialFailure = "credential_failure"
)
