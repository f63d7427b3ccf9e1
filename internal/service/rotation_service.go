package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/crehm/artflow/internal/models"
	"github.com/crehm/artflow/internal/platform"
	"github.com/crehm/artflow/internal/repository"
)

// ErrNoEligibleContent means the library is empty or the destination set is
// globally broken: even a fresh round produced nothing to post.
var ErrNoEligibleContent = errors.New("no eligible content even after round rollover")

// RotationReport summarises one fairness-rotation run.
type RotationReport struct {
	Round     int      `json:"round"`
	ContentID string   `json:"content_id"`
	Title     string   `json:"title"`
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// RotationService picks one item per run, uniformly at random from the items
// the current round has not yet covered, and publishes it to every configured
// destination. Every item is visited once before any repeats within a round.
type RotationService interface {
	RunOnce(ctx context.Context) (*RotationReport, error)
	CurrentRound(ctx context.Context) (int, error)
}

type rotationService struct {
	cr           repository.ContentRepository
	rr           repository.RoundRepository
	registry     *platform.Registry
	assets       AssetResolver
	plog         *PostLogger
	destinations []string
	maxWords     int
	logger       *slog.Logger
}

func NewRotationService(
	cr repository.ContentRepository,
	rr repository.RoundRepository,
	registry *platform.Registry,
	assets AssetResolver,
	plog *PostLogger,
	destinations []string,
	maxWords int,
	logger *slog.Logger) RotationService {
	return &rotationService{
		cr:           cr,
		rr:           rr,
		registry:     registry,
		assets:       assets,
		plog:         plog,
		destinations: destinations,
		maxWords:     maxWords,
		logger:       logger,
	}
}

func (s *rotationService) CurrentRound(ctx context.Context) (int, error) {
	return s.rr.Current(ctx)
}

func (s *rotationService) RunOnce(ctx context.Context) (*RotationReport, error) {
	items, err := s.cr.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading content library: %w", err)
	}

	round, err := s.rr.Current(ctx)
	if err != nil {
		return nil, err
	}

	eligible := eligibleItems(items, round, s.destinations)
	if len(eligible) == 0 {
		round, err = s.rr.Increment(ctx)
		if err != nil {
			return nil, err
		}
		s.logger.Info("round complete, rolled over", "round", round)
		eligible = eligibleItems(items, round, s.destinations)
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleContent
	}

	item := eligible[rand.Intn(len(eligible))]
	s.logger.Info("selected content for rotation",
		"id", item.ID, "title", item.Title, "round", round, "eligible", len(eligible))

	report := &RotationReport{Round: round, ContentID: item.ID, Title: item.Title}
	text := FormatPostText(item, s.maxWords)

	for _, destination := range s.destinations {
		url, err := s.publishTo(ctx, destination, item, text)
		if err != nil {
			report.Failed = append(report.Failed, destination)
		} else {
			report.Succeeded = append(report.Succeeded, destination)
		}

		// Advance the record whether or not the attempt worked: an
		// unreachable destination is handled for this round and comes back
		// next round, instead of being retried on every run.
		if err := s.cr.AdvanceRecordToRound(ctx, item.ID, destination, round, url, time.Now()); err != nil {
			s.logger.Error("failed to advance publish record",
				"content", item.ID, "destination", destination, "error", err)
		}
	}
	return report, nil
}

// publishTo attempts one destination. The returned URL is empty on failure;
// the error is already logged through the post logger.
func (s *rotationService) publishTo(ctx context.Context, destination string, item *models.ContentItem, text string) (string, error) {
	adapter, err := s.registry.Resolve(destination)
	if err != nil {
		s.plog.LogFailure(ctx, destination, item.ID, item.Title, item.AssetRef, err.Error())
		return "", err
	}

	if !adapter.IsConfigured() {
		err := fmt.Errorf("%s not configured", adapter.DisplayName())
		s.plog.LogFailure(ctx, destination, item.ID, item.Title, item.AssetRef, err.Error())
		return "", err
	}

	ok, err := adapter.VerifyCredentials(ctx)
	if err != nil || !ok {
		s.plog.LogCredentialFailure(ctx, destination, item.ID, item.Title)
		if err == nil {
			err = fmt.Errorf("%s credentials invalid", adapter.DisplayName())
		}
		return "", err
	}

	assetPath, kind, err := s.assets.Resolve(ctx, item.AssetRef)
	if err != nil {
		s.plog.LogFailure(ctx, destination, item.ID, item.Title, item.AssetRef, err.Error())
		return "", err
	}

	result := publish(ctx, adapter, kind, assetPath, text, item.Description)
	if !result.Success {
		s.plog.LogFailure(ctx, destination, item.ID, item.Title, item.AssetRef, result.Error)
		return "", errors.New(result.Error)
	}

	s.plog.LogSuccess(ctx, destination, item.ID, item.Title, item.AssetRef, result.URL)
	return result.URL, nil
}

// eligibleItems filters the library to items with at least one destination
// whose publish count is behind the round.
func eligibleItems(items []*models.ContentItem, round int, destinations []string) []*models.ContentItem {
	var eligible []*models.ContentItem
	for _, item := range items {
		for _, destination := range destinations {
			if item.PublishCountFor(destination) < round {
				eligible = append(eligible, item)
				break
			}
		}
	}
	return eligible
}
