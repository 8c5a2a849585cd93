package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/nextgenbank/onboarding-api/internal/dto"
	"github.com/nextgenbank/onboarding-api/internal/model"
	"github.com/nextgenbank/onboarding-api/pkg/apperror"
	"github.com/nextgenbank/onboarding-api/pkg/response"
)

type mockProfileService struct {
	mock.Mock
}

func (m *mockProfileService) GetMyProfile(ctx context.Context, userID uuid.UUID, viewerIP string) (*dto.ProfileResponse, error) {
	args := m.Called(ctx, userID, viewerIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProfileResponse), args.Error(1)
}

func (m *mockProfileService) UpdateMyProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput, photos []dto.PhotoFile) (*dto.ProfileResponse, error) {
	args := m.Called(ctx, userID, input, photos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProfileResponse), args.Error(1)
}

func (m *mockProfileService) ListProfiles(ctx context.Context, filter dto.ProfileListFilter) ([]dto.ProfileListItem, response.PaginationMeta, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, response.PaginationMeta{}, args.Error(2)
	}
	return args.Get(0).([]dto.ProfileListItem), args.Get(1).(response.PaginationMeta), args.Error(2)
}

func (m *mockProfileService) ListNextOfKin(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.NextOfKin, response.PaginationMeta, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, response.PaginationMeta{}, args.Error(2)
	}
	return args.Get(0).([]model.NextOfKin), args.Get(1).(response.PaginationMeta), args.Error(2)
}

func (m *mockProfileService) CreateNextOfKin(ctx context.Context, userID uuid.UUID, input dto.NextOfKinInput) (*model.NextOfKin, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NextOfKin), args.Error(1)
}

func (m *mockProfileService) GetNextOfKin(ctx context.Context, userID, kinID uuid.UUID) (*model.NextOfKin, error) {
	args := m.Called(ctx, userID, kinID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NextOfKin), args.Error(1)
}

func (m *mockProfileService) UpdateNextOfKin(ctx context.Context, userID, kinID uuid.UUID, input dto.NextOfKinInput) (*model.NextOfKin, error) {
	args := m.Called(ctx, userID, kinID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NextOfKin), args.Error(1)
}

func (m *mockProfileService) DeleteNextOfKin(ctx context.Context, userID, kinID uuid.UUID) error {
	args := m.Called(ctx, userID, kinID)
	return args.Error(0)
}

func newProfileRouter(svc *mockProfileService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewProfileHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
	})

	router.GET("/api/v1/profiles/all", h.ListProfiles)
	me := router.Group("/api/v1/profiles/my-profile")
	{
		me.GET("", h.GetMyProfile)
		me.PATCH("", h.UpdateMyProfile)
		me.POST("/next-of-kin", h.CreateNextOfKin)
		me.GET("/next-of-kin/:id", h.GetNextOfKin)
		me.DELETE("/next-of-kin/:id", h.DeleteNextOfKin)
	}
	return router
}

func TestGetMyProfileHandler(t *testing.T) {
	t.Run("wraps the payload under profile", func(t *testing.T) {
		svc := new(mockProfileService)
		userID := uuid.New()
		router := newProfileRouter(svc, userID)

		svc.On("GetMyProfile", mock.Anything, userID, "192.0.2.1").
			Return(&dto.ProfileResponse{Email: "jane@example.com"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/my-profile", nil)
		req.RemoteAddr = "192.0.2.1:54321"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"profile"`)
		assert.Contains(t, rec.Body.String(), "jane@example.com")
	})

	t.Run("forwarded address wins over the socket address", func(t *testing.T) {
		svc := new(mockProfileService)
		userID := uuid.New()
		router := newProfileRouter(svc, userID)

		svc.On("GetMyProfile", mock.Anything, userID, "203.0.113.7").
			Return(&dto.ProfileResponse{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/my-profile", nil)
		req.RemoteAddr = "10.0.0.5:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.5")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing profile is a 404", func(t *testing.T) {
		svc := new(mockProfileService)
		userID := uuid.New()
		router := newProfileRouter(svc, userID)

		svc.On("GetMyProfile", mock.Anything, userID, mock.Anything).
			Return(nil, apperror.New(http.StatusNotFound, "profile does not exist", apperror.ErrNotFound))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/my-profile", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpdateMyProfileHandler(t *testing.T) {
	t.Run("JSON body carries no photos", func(t *testing.T) {
		svc := new(mockProfileService)
		userID := uuid.New()
		router := newProfileRouter(svc, userID)

		svc.On("UpdateMyProfile", mock.Anything, userID, mock.MatchedBy(func(input dto.UpdateProfileInput) bool {
			return input.City != nil && *input.City == "Vancouver"
		}), mock.Anything).
			Run(func(args mock.Arguments) {
				assert.Empty(t, args.Get(3))
			}).
			Return(&dto.ProfileResponse{}, nil)

		req := httptest.NewRequest(http.MethodPatch, "/api/v1/profiles/my-profile", strings.NewReader(`{"city":"Vancouver"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("multipart body hands the photos to the service", func(t *testing.T) {
		svc := new(mockProfileService)
		userID := uuid.New()
		router := newProfileRouter(svc, userID)

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		assert.NoError(t, writer.WriteField("city", "Vancouver"))
		part, err := writer.CreateFormFile("photo", "me.jpg")
		assert.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		assert.NoError(t, err)
		assert.NoError(t, writer.Close())

		svc.On("UpdateMyProfile", mock.Anything, userID, mock.Anything, mock.MatchedBy(func(photos []dto.PhotoFile) bool {
			return len(photos) == 1 && photos[0].Field == "photo" && photos[0].FileName == "me.jpg"
		})).Return(&dto.ProfileResponse{}, nil)

		req := httptest.NewRequest(http.MethodPatch, "/api/v1/profiles/my-profile", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("validation failure surfaces the field map", func(t *testing.T) {
		svc := new(mockProfileService)
		userID := uuid.New()
		router := newProfileRouter(svc, userID)

		svc.On("UpdateMyProfile", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(nil, apperror.NewValidationError("id_expiry_date", "the ID expiry date must be after the issue date"))

		req := httptest.NewRequest(http.MethodPatch, "/api/v1/profiles/my-profile", strings.NewReader(`{"id_expiry_date":"2020-01-01"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "id_expiry_date")
	})

	t.Run("unexpected failures become a 400 with the error text", func(t *testing.T) {
		svc := new(mockProfileService)
		userID := uuid.New()
		router := newProfileRouter(svc, userID)

		svc.On("UpdateMyProfile", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(nil, errors.New("update exploded"))

		req := httptest.NewRequest(http.MethodPatch, "/api/v1/profiles/my-profile", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "update exploded")
	})
}

type closeRecorder struct {
	*strings.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestClosePhotos(t *testing.T) {
	rec := &closeRecorder{Reader: strings.NewReader("image-bytes")}

	closePhotos([]dto.PhotoFile{
		{Field: "photo", Reader: rec},
		// Plain readers without a Close are tolerated.
		{Field: "id_photo", Reader: strings.NewReader("more-bytes")},
	})

	assert.True(t, rec.closed)
}

func TestUpdateMyProfileClosesPhotoReaders(t *testing.T) {
	svc := new(mockProfileService)
	userID := uuid.New()
	router := newProfileRouter(svc, userID)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", "me.jpg")
	assert.NoError(t, err)
	_, err = part.Write([]byte("image-bytes"))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	rec := &closeRecorder{Reader: strings.NewReader("image-bytes")}
	svc.On("UpdateMyProfile", mock.Anything, userID, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			// Swap in an observable reader; the deferred cleanup closes
			// whatever the service was handed.
			photos := args.Get(3).([]dto.PhotoFile)
			photos[0].Reader = rec
		}).
		Return(&dto.ProfileResponse{}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/profiles/my-profile", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, rec.closed)
}

func TestListProfilesHandler(t *testing.T) {
	svc := new(mockProfileService)
	router := newProfileRouter(svc, uuid.New())

	svc.On("ListProfiles", mock.Anything, dto.ProfileListFilter{Search: "jane", Page: 2, PageSize: 10}).
		Return([]dto.ProfileListItem{{FullName: "Jane Doe"}}, response.PaginationMeta{
			CurrentPage: 2,
			TotalPages:  3,
			TotalItems:  25,
			PageSize:    10,
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/all?search=jane&page=2&page_size=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"profiles"`)
	assert.Contains(t, rec.Body.String(), `"total_items":25`)
}

func TestNextOfKinHandlers(t *testing.T) {
	t.Run("create replies 201 with the kin", func(t *testing.T) {
		svc := new(mockProfileService)
		userID := uuid.New()
		router := newProfileRouter(svc, userID)

		svc.On("CreateNextOfKin", mock.Anything, userID, mock.Anything).
			Return(&model.NextOfKin{FirstName: "John"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/profiles/my-profile/next-of-kin", strings.NewReader(`{"first_name":"John"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"next_of_kin"`)
	})

	t.Run("malformed kin id is a 400", func(t *testing.T) {
		svc := new(mockProfileService)
		router := newProfileRouter(svc, uuid.New())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/my-profile/next-of-kin/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "GetNextOfKin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delete replies 204", func(t *testing.T) {
		svc := new(mockProfileService)
		userID := uuid.New()
		kinID := uuid.New()
		router := newProfileRouter(svc, userID)

		svc.On("DeleteNextOfKin", mock.Anything, userID, kinID).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/profiles/my-profile/next-of-kin/"+kinID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
