package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nextgenbank/onboarding-api/internal/model"
	"github.com/nextgenbank/onboarding-api/internal/queue"
	"github.com/nextgenbank/onboarding-api/internal/repository"
	"github.com/nextgenbank/onboarding-api/internal/search"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User, profile *model.Profile) error {
	args := m.Called(ctx, user, profile)
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByOTP(ctx context.Context, otp string, now time.Time) (*model.User, error) {
	args := m.Called(ctx, otp, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) Save(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *mockProfileRepo) Update(ctx context.Context, profile *model.Profile, user *model.User) error {
	args := m.Called(ctx, profile, user)
	return args.Error(0)
}

func (m *mockProfileRepo) SetPhoto(ctx context.Context, profileID uuid.UUID, field, publicID, url string) error {
	args := m.Called(ctx, profileID, field, publicID, url)
	return args.Error(0)
}

func (m *mockProfileRepo) ListCustomers(ctx context.Context, filter repository.ProfileFilter) ([]model.Profile, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *mockProfileRepo) CreateNextOfKin(ctx context.Context, kin *model.NextOfKin) error {
	args := m.Called(ctx, kin)
	return args.Error(0)
}

func (m *mockProfileRepo) FindNextOfKin(ctx context.Context, profileID, kinID uuid.UUID) (*model.NextOfKin, error) {
	args := m.Called(ctx, profileID, kinID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NextOfKin), args.Error(1)
}

func (m *mockProfileRepo) ListNextOfKin(ctx context.Context, profileID uuid.UUID, page, pageSize int) ([]model.NextOfKin, int64, error) {
	args := m.Called(ctx, profileID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.NextOfKin), args.Get(1).(int64), args.Error(2)
}

func (m *mockProfileRepo) SaveNextOfKin(ctx context.Context, kin *model.NextOfKin) error {
	args := m.Called(ctx, kin)
	return args.Error(0)
}

func (m *mockProfileRepo) DeleteNextOfKin(ctx context.Context, profileID, kinID uuid.UUID) error {
	args := m.Called(ctx, profileID, kinID)
	return args.Error(0)
}

func (m *mockProfileRepo) HasPrimaryNextOfKin(ctx context.Context, profileID uuid.UUID, excludeKinID uuid.UUID) (bool, error) {
	args := m.Called(ctx, profileID, excludeKinID)
	return args.Bool(0), args.Error(1)
}

type mockViewRepo struct {
	mock.Mock
}

func (m *mockViewRepo) RecordView(ctx context.Context, view *model.ContentView) error {
	args := m.Called(ctx, view)
	return args.Error(0)
}

func (m *mockViewRepo) CountViews(ctx context.Context, contentType string, objectID uuid.UUID) (int64, error) {
	args := m.Called(ctx, contentType, objectID)
	return args.Get(0).(int64), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendOTP(ctx context.Context, email, otp string, lifetime time.Duration) error {
	args := m.Called(ctx, email, otp, lifetime)
	return args.Error(0)
}

func (m *mockMailer) SendAccountLocked(ctx context.Context, email, fullName string, lockout time.Duration) error {
	args := m.Called(ctx, email, fullName, lockout)
	return args.Error(0)
}

type mockTaskQueue struct {
	mock.Mock
}

func (m *mockTaskQueue) Enqueue(ctx context.Context, job queue.PhotoUploadJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *mockTaskQueue) Dequeue(ctx context.Context) (*queue.PhotoUploadJob, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.PhotoUploadJob), args.Error(1)
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) IndexProfile(doc search.ProfileDocument) error {
	args := m.Called(doc)
	return args.Error(0)
}

func (m *mockSearcher) DeleteProfile(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *mockSearcher) Search(query string, limit int) ([]uuid.UUID, error) {
	args := m.Called(query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}
