package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nextgenbank/onboarding-api/internal/config"
	"github.com/nextgenbank/onboarding-api/internal/dto"
	"github.com/nextgenbank/onboarding-api/internal/model"
	"github.com/nextgenbank/onboarding-api/internal/queue"
	"github.com/nextgenbank/onboarding-api/internal/repository"
	"github.com/nextgenbank/onboarding-api/internal/search"
	"github.com/nextgenbank/onboarding-api/pkg/apperror"
	"github.com/nextgenbank/onboarding-api/pkg/response"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type ProfileService interface {
	GetMyProfile(ctx context.Context, userID uuid.UUID, viewerIP string) (*dto.ProfileResponse, error)
	UpdateMyProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput, photos []dto.PhotoFile) (*dto.ProfileResponse, error)
	ListProfiles(ctx context.Context, filter dto.ProfileListFilter) ([]dto.ProfileListItem, response.PaginationMeta, error)

	ListNextOfKin(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.NextOfKin, response.PaginationMeta, error)
	CreateNextOfKin(ctx context.Context, userID uuid.UUID, input dto.NextOfKinInput) (*model.NextOfKin, error)
	GetNextOfKin(ctx context.Context, userID, kinID uuid.UUID) (*model.NextOfKin, error)
	UpdateNextOfKin(ctx context.Context, userID, kinID uuid.UUID, input dto.NextOfKinInput) (*model.NextOfKin, error)
	DeleteNextOfKin(ctx context.Context, userID, kinID uuid.UUID) error
}

type profileService struct {
	repo     repository.ProfileRepository
	views    ViewService
	tasks    queue.TaskQueue
	searcher search.ProfileSearcher

	maxInlineSize int64
	stagingDir    string
}

func NewProfileService(
	repo repository.ProfileRepository,
	views ViewService,
	tasks queue.TaskQueue,
	searcher search.ProfileSearcher,
	cfg *config.Config,
) ProfileService {
	return &profileService{
		repo:          repo,
		views:         views,
		tasks:         tasks,
		searcher:      searcher,
		maxInlineSize: cfg.MaxInlineUploadSize,
		stagingDir:    cfg.PhotoStagingDir,
	}
}

func (s *profileService) GetMyProfile(ctx context.Context, userID uuid.UUID, viewerIP string) (*dto.ProfileResponse, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "profile does not exist", apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := s.views.RecordProfileView(ctx, profile.ID, &userID, viewerIP); err != nil {
		log.Printf("failed to record profile view for %s: %v", profile.ID, err)
	}

	return s.buildProfileResponse(ctx, profile)
}

func (s *profileService) UpdateMyProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput, photos []dto.PhotoFile) (*dto.ProfileResponse, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "profile does not exist", apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := s.applyProfileInput(profile, input); err != nil {
		return nil, err
	}

	var user *model.User
	if input.FirstName != nil || input.MiddleName != nil || input.LastName != nil {
		user = profile.User
		if user == nil {
			return nil, apperror.ErrInternal
		}
		// Email and username stay as they are, whatever the payload says.
		if input.FirstName != nil {
			user.FirstName = *input.FirstName
		}
		if input.MiddleName != nil {
			user.MiddleName = normalizeOptional(input.MiddleName)
		}
		if input.LastName != nil {
			user.LastName = *input.LastName
		}
	}

	staged, err := s.stagePhotos(profile.ID, photos)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, profile, user); err != nil {
		cleanupStagedFiles(staged)
		return nil, err
	}

	if len(staged) > 0 {
		job := queue.PhotoUploadJob{ProfileID: profile.ID, Photos: staged}
		if profile.User != nil {
			job.Email = profile.User.Email
		}
		// Fire and forget: the response never waits for the upload. The queue
		// is an optional collaborator; without it the photos are dropped.
		if s.tasks == nil {
			cleanupStagedFiles(staged)
			log.Printf("photo upload queue unavailable, dropping photos for profile %s", profile.ID)
		} else if err := s.tasks.Enqueue(ctx, job); err != nil {
			cleanupStagedFiles(staged)
			log.Printf("failed to enqueue photo upload for profile %s: %v", profile.ID, err)
		}
	}

	s.indexProfile(profile)

	return s.buildProfileResponse(ctx, profile)
}

func (s *profileService) ListProfiles(ctx context.Context, filter dto.ProfileListFilter) ([]dto.ProfileListItem, response.PaginationMeta, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	repoFilter := repository.ProfileFilter{
		Search:   filter.Search,
		Page:     page,
		PageSize: pageSize,
	}

	if filter.Search != "" && s.searcher != nil {
		ids, err := s.searcher.Search(filter.Search, maxPageSize)
		if err != nil {
			log.Printf("profile search fell back to SQL: %v", err)
		} else {
			if len(ids) == 0 {
				return []dto.ProfileListItem{}, response.PaginationMeta{
					CurrentPage: page,
					TotalPages:  0,
					TotalItems:  0,
					PageSize:    pageSize,
				}, nil
			}
			repoFilter.IDs = ids
		}
	}

	profiles, total, err := s.repo.ListCustomers(ctx, repoFilter)
	if err != nil {
		return nil, response.PaginationMeta{}, err
	}

	items := make([]dto.ProfileListItem, 0, len(profiles))
	for _, profile := range profiles {
		item := dto.ProfileListItem{
			Gender:         string(profile.Gender),
			Nationality:    profile.Nationality,
			CountryOfBirth: profile.CountryOfBirth,
			PhoneNumber:    profile.PhoneNumber,
			PhotoURL:       profile.PhotoURL,
		}
		if profile.User != nil {
			item.FullName = profile.User.FullName()
			item.Username = profile.User.Username
			item.Email = profile.User.Email
		}
		items = append(items, item)
	}

	return items, paginationMeta(page, pageSize, total), nil
}

func (s *profileService) ListNextOfKin(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.NextOfKin, response.PaginationMeta, error) {
	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		return nil, response.PaginationMeta{}, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	kin, total, err := s.repo.ListNextOfKin(ctx, profile.ID, page, pageSize)
	if err != nil {
		return nil, response.PaginationMeta{}, err
	}

	return kin, paginationMeta(page, pageSize, total), nil
}

func (s *profileService) CreateNextOfKin(ctx context.Context, userID uuid.UUID, input dto.NextOfKinInput) (*model.NextOfKin, error) {
	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	required := map[string]*string{
		"first_name":    input.FirstName,
		"last_name":     input.LastName,
		"date_of_birth": input.DateOfBirth,
		"relationship":  input.Relationship,
		"email_address": input.EmailAddress,
		"phone_number":  input.PhoneNumber,
		"address":       input.Address,
		"city":          input.City,
		"country":       input.Country,
	}
	for field, value := range required {
		if value == nil || *value == "" {
			return nil, apperror.NewValidationError(field, "this field is required")
		}
	}

	dob, err := parseDate("date_of_birth", *input.DateOfBirth)
	if err != nil {
		return nil, err
	}

	kin := &model.NextOfKin{
		ProfileID:    profile.ID,
		Title:        model.SalutationMr,
		FirstName:    *input.FirstName,
		LastName:     *input.LastName,
		OtherNames:   normalizeOptional(input.OtherNames),
		DateOfBirth:  dob,
		Gender:       model.GenderMale,
		Relationship: *input.Relationship,
		EmailAddress: *input.EmailAddress,
		PhoneNumber:  *input.PhoneNumber,
		Address:      *input.Address,
		City:         *input.City,
		Country:      *input.Country,
	}
	if input.Title != nil {
		kin.Title = model.Salutation(*input.Title)
	}
	if input.Gender != nil {
		kin.Gender = model.Gender(*input.Gender)
	}
	if input.IsPrimary != nil {
		kin.IsPrimary = *input.IsPrimary
	}

	if kin.IsPrimary {
		if err := s.ensureSinglePrimary(ctx, profile.ID, uuid.Nil); err != nil {
			return nil, err
		}
	}

	if err := s.repo.CreateNextOfKin(ctx, kin); err != nil {
		return nil, err
	}

	return kin, nil
}

func (s *profileService) GetNextOfKin(ctx context.Context, userID, kinID uuid.UUID) (*model.NextOfKin, error) {
	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	kin, err := s.repo.FindNextOfKin(ctx, profile.ID, kinID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "next of kin not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	return kin, nil
}

func (s *profileService) UpdateNextOfKin(ctx context.Context, userID, kinID uuid.UUID, input dto.NextOfKinInput) (*model.NextOfKin, error) {
	kin, err := s.GetNextOfKin(ctx, userID, kinID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		kin.Title = model.Salutation(*input.Title)
	}
	if input.FirstName != nil {
		kin.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		kin.LastName = *input.LastName
	}
	if input.OtherNames != nil {
		kin.OtherNames = normalizeOptional(input.OtherNames)
	}
	if input.DateOfBirth != nil {
		dob, err := parseDate("date_of_birth", *input.DateOfBirth)
		if err != nil {
			return nil, err
		}
		kin.DateOfBirth = dob
	}
	if input.Gender != nil {
		kin.Gender = model.Gender(*input.Gender)
	}
	if input.Relationship != nil {
		kin.Relationship = *input.Relationship
	}
	if input.EmailAddress != nil {
		kin.EmailAddress = *input.EmailAddress
	}
	if input.PhoneNumber != nil {
		kin.PhoneNumber = *input.PhoneNumber
	}
	if input.Address != nil {
		kin.Address = *input.Address
	}
	if input.City != nil {
		kin.City = *input.City
	}
	if input.Country != nil {
		kin.Country = *input.Country
	}
	if input.IsPrimary != nil {
		kin.IsPrimary = *input.IsPrimary
	}

	if kin.IsPrimary {
		if err := s.ensureSinglePrimary(ctx, kin.ProfileID, kin.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SaveNextOfKin(ctx, kin); err != nil {
		return nil, err
	}

	return kin, nil
}

func (s *profileService) DeleteNextOfKin(ctx context.Context, userID, kinID uuid.UUID) error {
	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteNextOfKin(ctx, profile.ID, kinID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(http.StatusNotFound, "next of kin not found", apperror.ErrNotFound)
		}
		return err
	}

	return nil
}

func (s *profileService) findProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "profile does not exist", apperror.ErrNotFound)
		}
		return nil, err
	}
	return profile, nil
}

func (s *profileService) ensureSinglePrimary(ctx context.Context, profileID, excludeKinID uuid.UUID) error {
	hasPrimary, err := s.repo.HasPrimaryNextOfKin(ctx, profileID, excludeKinID)
	if err != nil {
		return err
	}
	if hasPrimary {
		return apperror.NewValidationError("is_primary", "there can only be one primary next of kin")
	}
	return nil
}

// applyProfileInput copies non-nil fields onto the profile and enforces the
// id_expiry_date > id_issue_date invariant against the effective dates.
func (s *profileService) applyProfileInput(profile *model.Profile, input dto.UpdateProfileInput) error {
	issueDate := profile.IDIssueDate
	expiryDate := profile.IDExpiryDate

	if input.IDIssueDate != nil {
		parsed, err := parseDate("id_issue_date", *input.IDIssueDate)
		if err != nil {
			return err
		}
		issueDate = parsed
	}
	if input.IDExpiryDate != nil {
		parsed, err := parseDate("id_expiry_date", *input.IDExpiryDate)
		if err != nil {
			return err
		}
		expiryDate = parsed
	}
	if !expiryDate.After(issueDate) {
		return apperror.NewValidationError("id_expiry_date", "the ID expiry date must be after the issue date")
	}
	profile.IDIssueDate = issueDate
	profile.IDExpiryDate = expiryDate

	if input.DateOfBirth != nil {
		parsed, err := parseDate("date_of_birth", *input.DateOfBirth)
		if err != nil {
			return err
		}
		profile.DateOfBirth = parsed
	}
	if input.DateOfEmployment != nil {
		parsed, err := parseDate("date_of_employment", *input.DateOfEmployment)
		if err != nil {
			return err
		}
		profile.DateOfEmployment = &parsed
	}

	if input.Title != nil {
		profile.Title = model.Salutation(*input.Title)
	}
	if input.Gender != nil {
		profile.Gender = model.Gender(*input.Gender)
	}
	if input.CountryOfBirth != nil {
		profile.CountryOfBirth = *input.CountryOfBirth
	}
	if input.PlaceOfBirth != nil {
		profile.PlaceOfBirth = *input.PlaceOfBirth
	}
	if input.MaritalStatus != nil {
		profile.MaritalStatus = model.MaritalStatus(*input.MaritalStatus)
	}
	if input.MeansOfIdentification != nil {
		profile.MeansOfIdentification = model.IdentificationMeans(*input.MeansOfIdentification)
	}
	if input.PassportNumber != nil {
		profile.PassportNumber = normalizeOptional(input.PassportNumber)
	}
	if input.Nationality != nil {
		profile.Nationality = *input.Nationality
	}
	if input.PhoneNumber != nil {
		profile.PhoneNumber = *input.PhoneNumber
	}
	if input.Address != nil {
		profile.Address = *input.Address
	}
	if input.City != nil {
		profile.City = *input.City
	}
	if input.Country != nil {
		profile.Country = *input.Country
	}
	if input.EmploymentStatus != nil {
		profile.EmploymentStatus = model.EmploymentStatus(*input.EmploymentStatus)
	}
	if input.EmployerName != nil {
		profile.EmployerName = normalizeOptional(input.EmployerName)
	}
	if input.AnnualIncome != nil {
		profile.AnnualIncome = *input.AnnualIncome
	}
	if input.EmployerAddress != nil {
		profile.EmployerAddress = normalizeOptional(input.EmployerAddress)
	}
	if input.EmployerCity != nil {
		profile.EmployerCity = normalizeOptional(input.EmployerCity)
	}
	if input.EmployerState != nil {
		profile.EmployerState = normalizeOptional(input.EmployerState)
	}

	return nil
}

// stagePhotos prepares incoming photos for the upload worker. Files at or
// above the inline threshold are written to transient local storage and
// referenced by path; smaller ones travel base64-encoded inside the job.
func (s *profileService) stagePhotos(profileID uuid.UUID, photos []dto.PhotoFile) (map[string]queue.StagedPhoto, error) {
	if len(photos) == 0 {
		return nil, nil
	}

	staged := make(map[string]queue.StagedPhoto, len(photos))
	for _, photo := range photos {
		if photo.Size >= s.maxInlineSize {
			path, err := s.stageToFile(profileID, photo)
			if err != nil {
				cleanupStagedFiles(staged)
				return nil, err
			}
			staged[photo.Field] = queue.StagedPhoto{Type: queue.PayloadFile, Data: path}
			continue
		}

		content, err := io.ReadAll(photo.Reader)
		if err != nil {
			cleanupStagedFiles(staged)
			return nil, fmt.Errorf("failed to read %s: %w", photo.Field, err)
		}
		staged[photo.Field] = queue.StagedPhoto{
			Type: queue.PayloadBase64,
			Data: base64.StdEncoding.EncodeToString(content),
		}
	}

	return staged, nil
}

func (s *profileService) stageToFile(profileID uuid.UUID, photo dto.PhotoFile) (string, error) {
	tmp, err := os.CreateTemp(s.stagingDir, fmt.Sprintf("photo_%s_%s_*", profileID, photo.Field))
	if err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", photo.Field, err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, photo.Reader); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to stage %s: %w", photo.Field, err)
	}

	return tmp.Name(), nil
}

func cleanupStagedFiles(staged map[string]queue.StagedPhoto) {
	for _, photo := range staged {
		if photo.Type == queue.PayloadFile {
			os.Remove(photo.Data)
		}
	}
}

func (s *profileService) indexProfile(profile *model.Profile) {
	if s.searcher == nil || profile.User == nil || profile.User.Role != model.RoleCustomer {
		return
	}

	doc := search.ProfileDocument{
		ID:        profile.ID.String(),
		FirstName: profile.User.FirstName,
		LastName:  profile.User.LastName,
		Username:  profile.User.Username,
		IDNo:      profile.User.IDNo,
	}
	if err := s.searcher.IndexProfile(doc); err != nil {
		log.Printf("failed to index profile %s: %v", profile.ID, err)
	}
}

func (s *profileService) buildProfileResponse(ctx context.Context, profile *model.Profile) (*dto.ProfileResponse, error) {
	viewCount, err := s.views.ProfileViewCount(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProfileResponse{
		Profile:    *profile,
		IsComplete: profile.IsComplete(),
		ViewCount:  viewCount,
	}
	if profile.User != nil {
		resp.FirstName = profile.User.FirstName
		resp.MiddleName = profile.User.MiddleName
		resp.LastName = profile.User.LastName
		resp.FullName = profile.User.FullName()
		resp.Username = profile.User.Username
		resp.Email = profile.User.Email
		resp.IDNo = profile.User.IDNo
		resp.DateJoined = profile.User.CreatedAt
	}
	resp.Profile.User = nil

	return resp, nil
}

func paginationMeta(page, pageSize int, total int64) response.PaginationMeta {
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}
	return response.PaginationMeta{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		PageSize:    pageSize,
	}
}

func parseDate(field, value string) (time.Time, error) {
	parsed, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return time.Time{}, apperror.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return parsed, nil
}

func normalizeOptional(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	result := *value
	return &result
}
