package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/crehm/artflow/internal/models"
	"github.com/crehm/artflow/internal/platform"
	"github.com/crehm/artflow/internal/repository"
)

// ExecuteReport summarises one execute-due batch.
type ExecuteReport struct {
	Posted int `json:"posted"`
	Failed int `json:"failed"`
}

// SchedulerService is the persisted queue of time-anchored posts and its
// execution state machine. Scheduled times are accepted as given: past times
// simply make the post due immediately, validation belongs to the caller.
type SchedulerService interface {
	AddPost(ctx context.Context, contentID, contentRef, destination string, scheduledTime time.Time) (string, error)
	GetPending(ctx context.Context) ([]*models.ScheduledPost, error)
	GetUpcoming(ctx context.Context) ([]*models.ScheduledPost, error)
	GetHistory(ctx context.Context, limit int) ([]*models.ScheduledPost, error)
	Cancel(ctx context.Context, id string) (bool, error)
	MarkPosted(ctx context.Context, id, resultURL string) error
	MarkFailed(ctx context.Context, id, errorMessage string) error
	ExecuteDue(ctx context.Context) (*ExecuteReport, error)
}

type schedulerService struct {
	db       *sql.DB
	sr       repository.ScheduleRepository
	cr       repository.ContentRepository
	registry *platform.Registry
	assets   AssetResolver
	plog     *PostLogger
	maxWords int
	logger   *slog.Logger
}

func NewSchedulerService(
	db *sql.DB,
	sr repository.ScheduleRepository,
	cr repository.ContentRepository,
	registry *platform.Registry,
	assets AssetResolver,
	plog *PostLogger,
	maxWords int,
	logger *slog.Logger) SchedulerService {
	return &schedulerService{
		db:       db,
		sr:       sr,
		cr:       cr,
		registry: registry,
		assets:   assets,
		plog:     plog,
		maxWords: maxWords,
		logger:   logger,
	}
}

func (s *schedulerService) AddPost(ctx context.Context, contentID, contentRef, destination string, scheduledTime time.Time) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}

	post := &models.ScheduledPost{
		ID:            id,
		ContentID:     contentID,
		ContentRef:    contentRef,
		Destination:   destination,
		ScheduledTime: scheduledTime,
		Status:        models.PostStatusPending,
		CreatedAt:     time.Now(),
	}
	if err := s.sr.Create(ctx, post); err != nil {
		return "", fmt.Errorf("error creating scheduled post: %w", err)
	}
	return id, nil
}

func (s *schedulerService) GetPending(ctx context.Context) ([]*models.ScheduledPost, error) {
	return s.sr.ListDue(ctx, time.Now())
}

func (s *schedulerService) GetUpcoming(ctx context.Context) ([]*models.ScheduledPost, error) {
	return s.sr.ListUpcoming(ctx, time.Now())
}

func (s *schedulerService) GetHistory(ctx context.Context, limit int) ([]*models.ScheduledPost, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.sr.ListHistory(ctx, limit)
}

func (s *schedulerService) Cancel(ctx context.Context, id string) (bool, error) {
	return s.sr.Cancel(ctx, id)
}

func (s *schedulerService) MarkPosted(ctx context.Context, id, resultURL string) error {
	return s.sr.SetOutcome(ctx, nil, id, models.PostStatusPosted, resultURL, "")
}

func (s *schedulerService) MarkFailed(ctx context.Context, id, errorMessage string) error {
	return s.sr.SetOutcome(ctx, nil, id, models.PostStatusFailed, "", errorMessage)
}

// ExecuteDue publishes every due post in insertion order. A failing post is
// marked failed and the batch continues; nothing aborts the run.
func (s *schedulerService) ExecuteDue(ctx context.Context) (*ExecuteReport, error) {
	due, err := s.sr.ListDue(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("error listing due posts: %w", err)
	}

	report := &ExecuteReport{}
	for _, post := range due {
		s.executeOne(ctx, post, report)
	}

	if report.Posted > 0 || report.Failed > 0 {
		s.logger.Info("executed due posts", "posted", report.Posted, "failed", report.Failed)
	}
	return report, nil
}

func (s *schedulerService) executeOne(ctx context.Context, post *models.ScheduledPost, report *ExecuteReport) {
	item, err := s.cr.GetByID(ctx, post.ContentID)
	if err != nil {
		s.fail(ctx, post, nil, fmt.Sprintf("content lookup failed: %v", err), report)
		return
	}
	if item == nil {
		s.fail(ctx, post, nil, fmt.Sprintf("content not found: %s", post.ContentID), report)
		return
	}

	adapter, err := s.registry.Resolve(post.Destination)
	if err != nil {
		s.fail(ctx, post, item, err.Error(), report)
		return
	}
	if !adapter.IsConfigured() {
		s.fail(ctx, post, item, fmt.Sprintf("%s not configured", adapter.DisplayName()), report)
		return
	}

	ref := post.ContentRef
	if ref == "" {
		ref = item.AssetRef
	}
	assetPath, kind, err := s.assets.Resolve(ctx, ref)
	if err != nil {
		s.fail(ctx, post, item, err.Error(), report)
		return
	}

	text := FormatPostText(item, s.maxWords)
	result := publish(ctx, adapter, kind, assetPath, text, item.Description)
	if !result.Success {
		s.fail(ctx, post, item, result.Error, report)
		return
	}

	if err := s.recordSuccess(ctx, post, result.URL); err != nil {
		// The post went out but bookkeeping failed; surface loudly instead
		// of double-posting on the next run.
		s.logger.Error("post published but status update failed", "id", post.ID, "error", err)
		report.Failed++
		return
	}
	s.plog.LogSuccess(ctx, post.Destination, item.ID, item.Title, ref, result.URL)
	report.Posted++
}

// recordSuccess writes the terminal status and the publish record in one
// transaction so the two never diverge.
func (s *schedulerService) recordSuccess(ctx context.Context, post *models.ScheduledPost, resultURL string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = s.sr.SetOutcome(ctx, tx, post.ID, models.PostStatusPosted, resultURL, ""); err != nil {
		return err
	}
	if err = s.cr.IncrementRecord(ctx, tx, post.ContentID, post.Destination, resultURL, time.Now()); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *schedulerService) fail(ctx context.Context, post *models.ScheduledPost, item *models.ContentItem, reason string, report *ExecuteReport) {
	if err := s.MarkFailed(ctx, post.ID, reason); err != nil {
		s.logger.Error("failed to mark post failed", "id", post.ID, "error", err)
	}

	contentID, title := post.ContentID, ""
	if item != nil {
		title = item.Title
	}
	s.plog.LogFailure(ctx, post.Destination, contentID, title, post.ContentRef, reason)
	report.Failed++
}

// publish dispatches on the sniffed asset kind and converts adapter panics
// into ordinary failures so one destination can never take down a batch.
func publish(ctx context.Context, adapter platform.Platform, kind, assetPath, text, altText string) (result platform.PublishResult) {
	defer func() {
		if r := recover(); r != nil {
			result = platform.PublishResult{Success: false, Error: fmt.Sprintf("adapter panic: %v", r)}
		}
	}()

	if kind == AssetKindVideo {
		return adapter.PostVideo(ctx, assetPath, text)
	}
	return adapter.PostImage(ctx, assetPath, text, altText)
}
