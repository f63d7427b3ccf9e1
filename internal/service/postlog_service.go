package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/crehm/artflow/internal/models"
	"github.com/crehm/artflow/internal/repository"
)

// browserAutomatedDestinations post through a replayed browser session; their
// failure entries point at the login helper's diagnostic screenshots.
var browserAutomatedDestinations = map[string]bool{
	"cara": true,
}

// maxScreenshotRefs bounds how many recent screenshots a failure entry lists:
// the step-by-step numbered shots plus the error shot.
const maxScreenshotRefs = 4

// PostLogger is the append-only audit trail of publish attempts. It records
// every outcome and never retries anything itself; a logging failure is
// reported but never propagated into the publish path.
type PostLogger struct {
	repo           repository.PostLogRepository
	screenshotsDir string
	logger         *slog.Logger
}

func NewPostLogger(repo repository.PostLogRepository, screenshotsDir string, logger *slog.Logger) *PostLogger {
	return &PostLogger{repo: repo, screenshotsDir: screenshotsDir, logger: logger}
}

func (l *PostLogger) LogSuccess(ctx context.Context, destination, contentID, title, assetRef, resultURL string) {
	l.logger.Info("post succeeded",
		"destination", destination, "title", title, "url", resultURL)

	l.append(ctx, &models.PostLogEntry{
		Outcome:     models.LogOutcomeSuccess,
		Destination: destination,
		ContentID:   contentID,
		Title:       title,
		AssetRef:    assetRef,
		ResultURL:   resultURL,
	})
}

func (l *PostLogger) LogFailure(ctx context.Context, destination, contentID, title, assetRef, errorMessage string) {
	l.logger.Error("post failed",
		"destination", destination, "title", title, "error", errorMessage)

	l.append(ctx, &models.PostLogEntry{
		Outcome:      models.LogOutcomeFailure,
		Destination:  destination,
		ContentID:    contentID,
		Title:        title,
		AssetRef:     assetRef,
		ErrorMessage: errorMessage,
		Screenshots:  l.recentScreenshots(destination),
	})
}

// LogCredentialFailure records a verify-credentials rejection at post time,
// distinct from an ordinary post failure.
func (l *PostLogger) LogCredentialFailure(ctx context.Context, destination, contentID, title string) {
	l.logger.Warn("credentials invalid or missing", "destination", destination)

	l.append(ctx, &models.PostLogEntry{
		Outcome:      models.LogOutcomeCredentialFailure,
		Destination:  destination,
		ContentID:    contentID,
		Title:        title,
		ErrorMessage: "credentials invalid or missing",
		Screenshots:  l.recentScreenshots(destination),
	})
}

func (l *PostLogger) Recent(ctx context.Context, limit int) ([]*models.PostLogEntry, error) {
	return l.repo.ListRecent(ctx, limit)
}

func (l *PostLogger) append(ctx context.Context, entry *models.PostLogEntry) {
	entry.CreatedAt = time.Now()
	if _, err := l.repo.Create(ctx, entry); err != nil {
		l.logger.Error("failed to write post log entry", "error", err)
	}
}

// recentScreenshots lists the newest diagnostic screenshots for a
// browser-automated destination, comma separated. Empty for API destinations.
func (l *PostLogger) recentScreenshots(destination string) string {
	if !browserAutomatedDestinations[destination] {
		return ""
	}

	matches, err := filepath.Glob(filepath.Join(l.screenshotsDir, destination+"_*.png"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	if len(matches) > maxScreenshotRefs {
		matches = matches[len(matches)-maxScreenshotRefs:]
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m)
	}
	return strings.Join(names, ", ")
}
