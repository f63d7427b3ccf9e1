package models

import "time"

// LoginSession is the persisted record for a destination whose automation
// depends on a manually captured browser session.
type LoginSession struct {
	Destination string     `db:"destination" json:"destination"`
	LastLogin   *time.Time `db:"last_login" json:"last_login"`
	MaxDays     int        `db:"max_days" json:"max_days"`
}

// SessionStatus is the computed expiry view of a LoginSession.
type SessionStatus struct {
	Destination   string     `json:"destination"`
	LastLogin     *time.Time `json:"last_login"`
	DaysSince     int        `json:"days_since"`
	MaxDays       int        `json:"max_days"`
	DaysRemaining int        `json:"days_remaining"`
	Status        string     `json:"status"`
}

const (
	SessionStatusNever   = "never"
	SessionStatusOK      = "ok"
	SessionStatusWarn    = "warn"
	SessionStatusExpired = "expired"
)
