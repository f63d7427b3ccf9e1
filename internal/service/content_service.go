package service

import (
	"context"
	"errors"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/crehm/artflow/internal/models"
	"github.com/crehm/artflow/internal/repository"
)

var ErrContentNotFound = errors.New("content item not found")

type ContentService interface {
	Create(ctx context.Context, title, description, subject, assetRef string) (*models.ContentItem, error)
	Get(ctx context.Context, id string) (*models.ContentItem, error)
	List(ctx context.Context) ([]*models.ContentItem, error)
}

type contentService struct {
	cr repository.ContentRepository
}

func NewContentService(cr repository.ContentRepository) ContentService {
	return &contentService{cr: cr}
}

func (s *contentService) Create(ctx context.Context, title, description, subject, assetRef string) (*models.ContentItem, error) {
	if assetRef == "" {
		return nil, errors.New("asset_ref is required")
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	item := &models.ContentItem{
		ID:          id,
		Title:       title,
		Description: description,
		Subject:     subject,
		AssetRef:    assetRef,
		CreatedAt:   time.Now().UTC(),
		Records:     make(map[string]*models.PublishRecord),
	}

	if err := s.cr.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *contentService) Get(ctx context.Context, id string) (*models.ContentItem, error) {
	item, err := s.cr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrContentNotFound
	}
	return item, nil
}

func (s *contentService) List(ctx context.Context) ([]*models.ContentItem, error) {
	return s.cr.List(ctx)
}
