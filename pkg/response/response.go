package response

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nextgenbank/onboarding-api/pkg/apperror"
)

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// Wrapped replies with the payload nested under a named top-level key,
// e.g. {"profile": {...}} or {"next_of_kin": [...]}.
func Wrapped(c *gin.Context, status int, key string, payload any) {
	c.JSON(status, gin.H{key: payload})
}

// Error standardized error response. Validation errors reply with a
// field-level error map; everything else replies with a single message.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	var validationErr *apperror.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(code, gin.H{"errors": validationErr.Fields})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	PageSize    int   `json:"page_size"`
}

// Paginated replies with a wrapped list plus pagination meta.
func Paginated(c *gin.Context, key string, payload any, meta PaginationMeta) {
	c.JSON(http.StatusOK, gin.H{key: payload, "meta": meta})
}
