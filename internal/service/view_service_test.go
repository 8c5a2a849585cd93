package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/nextgenbank/onboarding-api/internal/model"
)

func TestRecordProfileView(t *testing.T) {
	frozen := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("authenticated viewer with an address", func(t *testing.T) {
		repo := new(mockViewRepo)
		svc := NewViewService(repo).(*viewService)
		svc.now = func() time.Time { return frozen }

		profileID := uuid.New()
		viewerID := uuid.New()

		repo.On("RecordView", mock.Anything, mock.MatchedBy(func(v *model.ContentView) bool {
			return v.ContentType == model.ContentTypeProfile &&
				v.ObjectID == profileID &&
				v.UserID != nil && *v.UserID == viewerID &&
				v.ViewerIP != nil && *v.ViewerIP == "203.0.113.9" &&
				v.LastViewed.Equal(frozen)
		})).Return(nil)

		err := svc.RecordProfileView(context.Background(), profileID, &viewerID, "203.0.113.9")

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("anonymous viewer leaves user and address unset", func(t *testing.T) {
		repo := new(mockViewRepo)
		svc := NewViewService(repo).(*viewService)
		svc.now = func() time.Time { return frozen }

		profileID := uuid.New()

		repo.On("RecordView", mock.Anything, mock.MatchedBy(func(v *model.ContentView) bool {
			return v.UserID == nil && v.ViewerIP == nil
		})).Return(nil)

		err := svc.RecordProfileView(context.Background(), profileID, nil, "")

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestProfileViewCount(t *testing.T) {
	repo := new(mockViewRepo)
	svc := NewViewService(repo)
	profileID := uuid.New()

	repo.On("CountViews", mock.Anything, model.ContentTypeProfile, profileID).
		Return(int64(42), nil)

	count, err := svc.ProfileViewCount(context.Background(), profileID)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), count)
}
