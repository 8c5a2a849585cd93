package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextgenbank/onboarding-api/internal/config"
	"github.com/nextgenbank/onboarding-api/internal/dto"
	"github.com/nextgenbank/onboarding-api/internal/service"
	"github.com/nextgenbank/onboarding-api/pkg/response"
	"github.com/nextgenbank/onboarding-api/pkg/validator"
)

const (
	accessCookieName   = "access"
	refreshCookieName  = "refresh"
	loggedInCookieName = "logged_in"
	cookiePath         = "/"
)

type AuthHandler struct {
	authService service.AuthService

	accessMaxAge  int
	refreshMaxAge int
	cookieSecure  bool
}

func NewAuthHandler(authService service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		accessMaxAge:  int(cfg.AccessTokenTTL.Seconds()),
		refreshMaxAge: int(cfg.RefreshTokenTTL.Seconds()),
		cookieSecure:  cfg.CookieSecure,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Wrapped(c, http.StatusCreated, "user", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var input dto.VerifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP is required"})
		return
	}

	pair, err := h.authService.VerifyOTP(c.Request.Context(), input.OTP)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setAuthCookies(c, pair, true)

	c.JSON(http.StatusOK, gin.H{
		"success": "Login successful. Now add your profile information, so that we can create an account for you.",
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token not found in request cookies"})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Raw tokens travel only via cookies; the body never carries them.
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "access or refresh token not found in refresh response data",
		})
		return
	}

	h.setAuthCookies(c, pair, true)

	c.JSON(http.StatusOK, gin.H{"message": "access tokens refreshed successfully"})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookieName, "", -1, cookiePath, "", h.cookieSecure, true)
	c.SetCookie(refreshCookieName, "", -1, cookiePath, "", h.cookieSecure, true)
	c.SetCookie(loggedInCookieName, "", -1, cookiePath, "", h.cookieSecure, false)

	c.Status(http.StatusNoContent)
}

// setAuthCookies writes the session cookies. The refresh cookie is only set
// on initial login and refresh, not on every response; logged_in mirrors the
// access lifetime and stays readable by the front end.
func (h *AuthHandler) setAuthCookies(c *gin.Context, pair *dto.TokenPair, withRefresh bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookieName, pair.AccessToken, h.accessMaxAge, cookiePath, "", h.cookieSecure, true)

	if withRefresh {
		c.SetCookie(refreshCookieName, pair.RefreshToken, h.refreshMaxAge, cookiePath, "", h.cookieSecure, true)
	}

	c.SetCookie(loggedInCookieName, "true", h.accessMaxAge, cookiePath, "", h.cookieSecure, false)
}
