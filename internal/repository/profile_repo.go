package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nextgenbank/onboarding-api/internal/model"
)

// ProfileFilter narrows and pages the branch-manager roster query.
type ProfileFilter struct {
	Search   string
	Page     int
	PageSize int
	// IDs restricts the result to the given profile ids (search-engine hits).
	IDs []uuid.UUID
}

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	// Update persists profile and, when non-nil, user in one transaction.
	Update(ctx context.Context, profile *model.Profile, user *model.User) error
	// SetPhoto writes the public id and resolved URL columns for one photo
	// field. field must be one of photo, id_photo, signature_photo.
	SetPhoto(ctx context.Context, profileID uuid.UUID, field, publicID, url string) error
	// ListCustomers pages through customer profiles, never staff.
	ListCustomers(ctx context.Context, filter ProfileFilter) ([]model.Profile, int64, error)

	CreateNextOfKin(ctx context.Context, kin *model.NextOfKin) error
	FindNextOfKin(ctx context.Context, profileID, kinID uuid.UUID) (*model.NextOfKin, error)
	ListNextOfKin(ctx context.Context, profileID uuid.UUID, page, pageSize int) ([]model.NextOfKin, int64, error)
	SaveNextOfKin(ctx context.Context, kin *model.NextOfKin) error
	DeleteNextOfKin(ctx context.Context, profileID, kinID uuid.UUID) error
	// HasPrimaryNextOfKin reports whether another kin on the profile already
	// carries the primary flag.
	HasPrimaryNextOfKin(ctx context.Context, profileID uuid.UUID, excludeKinID uuid.UUID) (bool, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("NextOfKin").
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *model.Profile, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "NextOfKin").Save(profile).Error; err != nil {
			return err
		}

		if user != nil {
			if err := tx.Omit("Profile").Save(user).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

var photoColumns = map[string][2]string{
	"photo":           {"photo", "photo_url"},
	"id_photo":        {"id_photo", "id_photo_url"},
	"signature_photo": {"signature_photo", "signature_photo_url"},
}

func (r *profileRepository) SetPhoto(ctx context.Context, profileID uuid.UUID, field, publicID, url string) error {
	columns, ok := photoColumns[field]
	if !ok {
		return fmt.Errorf("unknown photo field: %s", field)
	}

	return r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", profileID).
		Updates(map[string]interface{}{
			columns[0]: publicID,
			columns[1]: url,
		}).Error
}

func (r *profileRepository) ListCustomers(ctx context.Context, filter ProfileFilter) ([]model.Profile, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("users.role = ?", model.RoleCustomer)

	if len(filter.IDs) > 0 {
		query = query.Where("profiles.id IN ?", filter.IDs)
	} else if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"users.first_name ILIKE ? OR users.last_name ILIKE ? OR CAST(users.id_no AS TEXT) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []model.Profile
	if err := query.
		Preload("User").
		Preload("NextOfKin").
		Order("profiles.created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&profiles).Error; err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *profileRepository) CreateNextOfKin(ctx context.Context, kin *model.NextOfKin) error {
	return r.db.WithContext(ctx).Create(kin).Error
}

func (r *profileRepository) FindNextOfKin(ctx context.Context, profileID, kinID uuid.UUID) (*model.NextOfKin, error) {
	var kin model.NextOfKin
	if err := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", kinID, profileID).
		First(&kin).Error; err != nil {
		return nil, err
	}

	return &kin, nil
}

func (r *profileRepository) ListNextOfKin(ctx context.Context, profileID uuid.UUID, page, pageSize int) ([]model.NextOfKin, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.NextOfKin{}).
		Where("profile_id = ?", profileID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var kin []model.NextOfKin
	if err := query.
		Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&kin).Error; err != nil {
		return nil, 0, err
	}

	return kin, total, nil
}

func (r *profileRepository) SaveNextOfKin(ctx context.Context, kin *model.NextOfKin) error {
	return r.db.WithContext(ctx).Save(kin).Error
}

func (r *profileRepository) DeleteNextOfKin(ctx context.Context, profileID, kinID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", kinID, profileID).
		Delete(&model.NextOfKin{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *profileRepository) HasPrimaryNextOfKin(ctx context.Context, profileID uuid.UUID, excludeKinID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&model.NextOfKin{}).
		Where("profile_id = ? AND is_primary = ?", profileID, true)

	if excludeKinID != uuid.Nil {
		query = query.Where("id <> ?", excludeKinID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
