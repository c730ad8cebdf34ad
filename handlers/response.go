package handlers

import (
	"context"
	"errors"
	"net/http"

	"praytogether-backend/i18n"
	"praytogether-backend/logger"
	"praytogether-backend/models"
	"praytogether-backend/requestctx"
	"praytogether-backend/service"

	"github.com/gin-gonic/gin"
)

// statusClientClosedRequest is used when the caller went away mid-request
const statusClientClosedRequest = 499

func locale(c *gin.Context) models.Locale {
	return requestctx.Locale(c.Request.Context())
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondDataMessage(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
		"message": message,
	})
}

func respondError(c *gin.Context, status int, code string, key i18n.Key) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": i18n.T(locale(c), key),
		},
	})
}

// respondServiceError maps a service error to a status and error code.
// persistKey is the message used for storage failures in this operation.
func respondServiceError(c *gin.Context, log *logger.Logger, err error, persistKey i18n.Key) {
	var verr *service.ValidationError
	var gerr *service.GenerationError

	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": i18n.T(locale(c), i18n.ValidationFailed),
				"details": verr.Violations,
			},
		})
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(statusClientClosedRequest)
	case errors.As(err, &gerr):
		key := i18n.GenerationFailed
		if gerr.Empty {
			key = i18n.NoPlanGenerated
		}
		respondError(c, http.StatusBadGateway, "GENERATION_FAILED", key)
	case errors.Is(err, service.ErrStorageUnavailable):
		log.Error("persistence failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusServiceUnavailable, "PERSISTENCE_FAILED", persistKey)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "LOGIN_FAILED", i18n.LoginFailed)
	case errors.Is(err, service.ErrInvalidOAuthState):
		respondError(c, http.StatusBadRequest, "OAUTH_FAILED", i18n.OAuthFailed)
	case errors.Is(err, service.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", i18n.Unauthorized)
	case errors.Is(err, service.ErrEmailTaken):
		respondError(c, http.StatusConflict, "EMAIL_TAKEN", i18n.EmailTaken)
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", i18n.NotFound)
	case errors.Is(err, service.ErrOAuthDisabled):
		respondError(c, http.StatusServiceUnavailable, "OAUTH_UNAVAILABLE", i18n.OAuthUnavailable)
	case errors.Is(err, service.ErrInvalidFileType):
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", i18n.InvalidFileType)
	case errors.Is(err, service.ErrFileTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", i18n.FileTooLarge)
	default:
		log.Error("request failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", i18n.InternalError)
	}
}

func respondInvalidRequest(c *gin.Context) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", i18n.InvalidRequest)
}
