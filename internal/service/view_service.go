package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nextgenbank/onboarding-api/internal/model"
	"github.com/nextgenbank/onboarding-api/internal/repository"
)

// ViewService maintains the deduplicated ledger of who looked at what.
type ViewService interface {
	RecordProfileView(ctx context.Context, profileID uuid.UUID, viewerID *uuid.UUID, viewerIP string) error
	ProfileViewCount(ctx context.Context, profileID uuid.UUID) (int64, error)
}

type viewService struct {
	repo repository.ContentViewRepository
	now  func() time.Time
}

func NewViewService(repo repository.ContentViewRepository) ViewService {
	return &viewService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *viewService) RecordProfileView(ctx context.Context, profileID uuid.UUID, viewerID *uuid.UUID, viewerIP string) error {
	view := &model.ContentView{
		ContentType: model.ContentTypeProfile,
		ObjectID:    profileID,
		UserID:      viewerID,
		LastViewed:  s.now(),
	}
	if viewerIP != "" {
		view.ViewerIP = &viewerIP
	}

	return s.repo.RecordView(ctx, view)
}

func (s *viewService) ProfileViewCount(ctx context.Context, profileID uuid.UUID) (int64, error) {
	return s.repo.CountViews(ctx, model.ContentTypeProfile, profileID)
}
