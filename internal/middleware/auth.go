package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nextgenbank/onboarding-api/internal/model"
	"github.com/nextgenbank/onboarding-api/internal/repository"
	"github.com/nextgenbank/onboarding-api/internal/service"
	"github.com/nextgenbank/onboarding-api/pkg/response"
)

const accessCookieName = "access"

type AuthMiddleware struct {
	tokens   *service.TokenManager
	userRepo repository.UserRepository
}

func NewAuthMiddleware(tokens *service.TokenManager, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		userRepo: userRepo,
	}
}

// RequireAuth authenticates the request from the access cookie, falling back
// to an Authorization bearer header.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(accessCookieName)
		if err != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		userID, err := m.tokens.VerifyAccess(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", userID.String())
		c.Next()
	}
}

// RequireRole allows only users holding the given role past this point.
func (m *AuthMiddleware) RequireRole(required model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		if !user.Role.Can(required) {
			c.JSON(http.StatusForbidden, gin.H{"error": string(required) + " access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
