package service

import (
	"context"
	"time"

	"github.com/crehm/artflow/internal/models"
	"github.com/crehm/artflow/internal/repository"
)

const (
	// DefaultMaxSessionDays is how long a manually captured browser session
	// is trusted before it must be renewed.
	DefaultMaxSessionDays = 30

	// WarnDaysRemaining is the window before expiry in which the status
	// flips to warn.
	WarnDaysRemaining = 7
)

// BrowserLoginDestinations require a periodic human login; only these show up
// in session alerts even before any login was recorded.
var BrowserLoginDestinations = []string{"cara"}

// SessionTracker tracks manual-login recency for browser-session
// destinations and computes their expiry status.
type SessionTracker interface {
	RecordLogin(ctx context.Context, destination string) error
	GetStatus(ctx context.Context, destination string) (*models.SessionStatus, error)
	GetAlerts(ctx context.Context) ([]*models.SessionStatus, error)
}

type sessionTracker struct {
	repo repository.SessionRepository
}

func NewSessionTracker(repo repository.SessionRepository) SessionTracker {
	return &sessionTracker{repo: repo}
}

func (t *sessionTracker) RecordLogin(ctx context.Context, destination string) error {
	now := time.Now()
	session := &models.LoginSession{
		Destination: destination,
		LastLogin:   &now,
		MaxDays:     DefaultMaxSessionDays,
	}
	if existing, err := t.repo.Get(ctx, destination); err != nil {
		return err
	} else if existing != nil {
		session.MaxDays = existing.MaxDays
	}
	return t.repo.Upsert(ctx, session)
}

func (t *sessionTracker) GetStatus(ctx context.Context, destination string) (*models.SessionStatus, error) {
	session, err := t.repo.Get(ctx, destination)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = &models.LoginSession{Destination: destination, MaxDays: DefaultMaxSessionDays}
	}
	return computeStatus(session, time.Now()), nil
}

// GetAlerts returns every tracked destination whose session needs attention:
// never logged in, close to expiry, or expired.
func (t *sessionTracker) GetAlerts(ctx context.Context) ([]*models.SessionStatus, error) {
	seen := make(map[string]bool)
	var destinations []string
	for _, d := range BrowserLoginDestinations {
		destinations = append(destinations, d)
		seen[d] = true
	}

	stored, err := t.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, session := range stored {
		if !seen[session.Destination] {
			destinations = append(destinations, session.Destination)
			seen[session.Destination] = true
		}
	}

	var alerts []*models.SessionStatus
	for _, destination := range destinations {
		status, err := t.GetStatus(ctx, destination)
		if err != nil {
			return nil, err
		}
		if status.Status != models.SessionStatusOK {
			alerts = append(alerts, status)
		}
	}
	return alerts, nil
}

func computeStatus(session *models.LoginSession, now time.Time) *models.SessionStatus {
	status := &models.SessionStatus{
		Destination: session.Destination,
		LastLogin:   session.LastLogin,
		MaxDays:     session.MaxDays,
	}

	if session.LastLogin == nil {
		status.Status = models.SessionStatusNever
		return status
	}

	status.DaysSince = int(now.Sub(*session.LastLogin).Hours() / 24)
	status.DaysRemaining = session.MaxDays - status.DaysSince

	switch {
	case status.DaysRemaining <= 0:
		status.Status = models.SessionStatusExpired
	case status.DaysRemaining <= WarnDaysRemaining:
		status.Status = models.SessionStatusWarn
	default:
		status.Status = models.SessionStatusOK
	}
	return status
}
