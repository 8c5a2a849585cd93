package handler

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nextgenbank/onboarding-api/internal/dto"
	"github.com/nextgenbank/onboarding-api/internal/service"
	"github.com/nextgenbank/onboarding-api/pkg/apperror"
	"github.com/nextgenbank/onboarding-api/pkg/response"
	"github.com/nextgenbank/onboarding-api/pkg/validator"
)

var photoFields = []string{"photo", "id_photo", "signature_photo"}

type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.profileService.GetMyProfile(c.Request.Context(), userID, clientIP(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Wrapped(c, http.StatusOK, "profile", profile)
}

func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.UpdateProfileInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	photos, err := collectPhotos(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closePhotos(photos)

	profile, err := h.profileService.UpdateMyProfile(c.Request.Context(), userID, input, photos)
	if err != nil {
		// Update failures never surface as a 500: anything unexpected is
		// reported as a 400 with the error text.
		var validationErr *apperror.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": validationErr.Fields})
			return
		}
		if code := apperror.MapErrorToStatus(err); code != http.StatusInternalServerError {
			c.JSON(code, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response.Wrapped(c, http.StatusOK, "profile", profile)
}

func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	var filter dto.ProfileListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	profiles, meta, err := h.profileService.ListProfiles(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, "profiles", profiles, meta)
}

func (h *ProfileHandler) ListNextOfKin(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var paging dto.ProfileListFilter
	if err := c.ShouldBindQuery(&paging); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	kin, meta, err := h.profileService.ListNextOfKin(c.Request.Context(), userID, paging.Page, paging.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, "next_of_kin", kin, meta)
}

func (h *ProfileHandler) CreateNextOfKin(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.NextOfKinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	kin, err := h.profileService.CreateNextOfKin(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Wrapped(c, http.StatusCreated, "next_of_kin", kin)
}

func (h *ProfileHandler) GetNextOfKin(c *gin.Context) {
	userID, kinID, ok := h.kinRequest(c)
	if !ok {
		return
	}

	kin, err := h.profileService.GetNextOfKin(c.Request.Context(), userID, kinID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Wrapped(c, http.StatusOK, "next_of_kin", kin)
}

func (h *ProfileHandler) UpdateNextOfKin(c *gin.Context) {
	userID, kinID, ok := h.kinRequest(c)
	if !ok {
		return
	}

	var input dto.NextOfKinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	kin, err := h.profileService.UpdateNextOfKin(c.Request.Context(), userID, kinID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Wrapped(c, http.StatusOK, "next_of_kin", kin)
}

func (h *ProfileHandler) DeleteNextOfKin(c *gin.Context) {
	userID, kinID, ok := h.kinRequest(c)
	if !ok {
		return
	}

	if err := h.profileService.DeleteNextOfKin(c.Request.Context(), userID, kinID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProfileHandler) kinRequest(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, uuid.Nil, false
	}

	kinID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid next of kin id"})
		return uuid.Nil, uuid.Nil, false
	}

	return userID, kinID, true
}

// collectPhotos pulls the three optional image files out of a multipart
// payload; JSON payloads simply yield no photos.
func collectPhotos(c *gin.Context) ([]dto.PhotoFile, error) {
	if c.ContentType() != "multipart/form-data" {
		return nil, nil
	}

	var photos []dto.PhotoFile
	for _, field := range photoFields {
		fileHeader, err := c.FormFile(field)
		if err != nil || fileHeader == nil {
			continue
		}

		file, err := fileHeader.Open()
		if err != nil {
			closePhotos(photos)
			return nil, errors.New("failed to read " + field)
		}

		photos = append(photos, dto.PhotoFile{
			Field:    field,
			FileName: fileHeader.Filename,
			Size:     fileHeader.Size,
			Reader:   file,
		})
	}

	return photos, nil
}

// closePhotos releases the multipart file handles once staging has consumed
// their contents.
func closePhotos(photos []dto.PhotoFile) {
	for _, photo := range photos {
		if closer, ok := photo.Reader.(io.Closer); ok {
			closer.Close()
		}
	}
}

// clientIP resolves the viewer address: first X-Forwarded-For entry when the
// request came through a proxy, the direct connection address otherwise.
func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
