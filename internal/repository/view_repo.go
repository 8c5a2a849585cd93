package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nextgenbank/onboarding-api/internal/model"
)

type ContentViewRepository interface {
	// RecordView upserts the ledger row for the view's identity, bumping
	// last_viewed when the row already exists. Losing a concurrent
	// first-view race is treated as success.
	RecordView(ctx context.Context, view *model.ContentView) error
	CountViews(ctx context.Context, contentType string, objectID uuid.UUID) (int64, error)
}

type contentViewRepository struct {
	db *gorm.DB
}

func NewContentViewRepository(db *gorm.DB) ContentViewRepository {
	return &contentViewRepository{db: db}
}

func (r *contentViewRepository) RecordView(ctx context.Context, view *model.ContentView) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "content_type"},
				{Name: "object_id"},
				{Name: "user_id"},
				{Name: "viewer_ip"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_viewed": view.LastViewed,
			}),
		}).
		Create(view).Error

	// Two first-views racing can still both reach the insert; the loser's
	// duplicate key is a harmless lost update, not a failure.
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (r *contentViewRepository) CountViews(ctx context.Context, contentType string, objectID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.ContentView{}).
		Where("content_type = ? AND object_id = ?", contentType, objectID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
