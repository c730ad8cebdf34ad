package handlers

import (
	"net/http"

	"praytogether-backend/i18n"
	"praytogether-backend/logger"
	"praytogether-backend/requestctx"
	"praytogether-backend/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles sign-up, sign-in and session lookups
type AuthHandler struct {
	authService *service.AuthService
	log         *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With("handler", "auth"),
	}
}

func bindCredentials(c *gin.Context) (service.Credentials, bool) {
	var creds service.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		respondInvalidRequest(c)
		return creds, false
	}
	if creds.Redirect == "" {
		creds.Redirect = c.Query("redirect")
	}
	return creds, true
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	creds, ok := bindCredentials(c)
	if !ok {
		return
	}

	session, err := h.authService.Register(c.Request.Context(), creds)
	if err != nil {
		respondServiceError(c, h.log, err, i18n.SignupFailed)
		return
	}

	respondData(c, http.StatusCreated, session)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	creds, ok := bindCredentials(c)
	if !ok {
		return
	}

	session, err := h.authService.Login(c.Request.Context(), creds)
	if err != nil {
		respondServiceError(c, h.log, err, i18n.LoginFailed)
		return
	}

	respondData(c, http.StatusOK, session)
}

// GoogleLogin handles GET /api/auth/google/login
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	authURL, err := h.authService.BeginOAuth(c.Query("redirect"))
	if err != nil {
		respondServiceError(c, h.log, err, i18n.OAuthFailed)
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback handles GET /api/auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		h.log.Warn("google sign-in declined", "error", errParam)
		respondError(c, http.StatusUnauthorized, "OAUTH_FAILED", i18n.OAuthFailed)
		return
	}

	session, err := h.authService.CompleteOAuth(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		respondServiceError(c, h.log, err, i18n.OAuthFailed)
		return
	}

	respondData(c, http.StatusOK, session)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	uid := requestctx.UserID(c.Request.Context())

	user, isNew, err := h.authService.Me(c.Request.Context(), uid)
	if err != nil {
		respondServiceError(c, h.log, err, i18n.InternalError)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"user":      user,
		"isNewUser": isNew,
	})
}
