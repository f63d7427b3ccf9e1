package job

import (
	"context"
	"errors"
	"log/slog"

	"github.com/crehm/artflow/internal/service"
)

// PublishJob adapts the two trigger entry points to the cron runner. Both are
// safe to fire with nothing due or eligible; only a broken library is worth
// waking anyone up for.
type PublishJob struct {
	scheduler service.SchedulerService
	rotation  service.RotationService
	logger    *slog.Logger
}

func NewPublishJob(scheduler service.SchedulerService, rotation service.RotationService, logger *slog.Logger) *PublishJob {
	return &PublishJob{scheduler: scheduler, rotation: rotation, logger: logger}
}

// RunDue executes all due scheduled posts.
func (j *PublishJob) RunDue() {
	ctx := context.Background()

	report, err := j.scheduler.ExecuteDue(ctx)
	if err != nil {
		j.logger.Error("scheduled post run failed", "error", err)
		return
	}
	if report.Posted > 0 || report.Failed > 0 {
		j.logger.Info("scheduled post run complete", "posted", report.Posted, "failed", report.Failed)
	}
}

// RunRotation runs one fairness-rotation cycle.
func (j *PublishJob) RunRotation() {
	ctx := context.Background()

	report, err := j.rotation.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNoEligibleContent) {
			j.logger.Error("rotation aborted: content library empty or destinations misconfigured")
			return
		}
		j.logger.Error("rotation run failed", "error", err)
		return
	}
	j.logger.Info("rotation run complete",
		"round", report.Round, "content", report.ContentID,
		"succeeded", len(report.Succeeded), "failed", len(report.Failed))
}
