package handlers

import (
	"net/http"
	"strings"
	"time"

	"praytogether-backend/i18n"
	"praytogether-backend/logger"
	"praytogether-backend/models"
	"praytogether-backend/requestctx"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Authenticator resolves a bearer token to a user id
type Authenticator interface {
	Authenticate(token string) (uuid.UUID, error)
}

// LocaleMiddleware picks the response language for the request
func LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, rd := requestctx.Ensure(c.Request.Context())
		rd.Locale = ResolveLocale(c.Request)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ResolveLocale checks the lang query parameter, then X-Locale, then
// Accept-Language, and falls back to the default locale
func ResolveLocale(r *http.Request) models.Locale {
	if l, ok := models.ParseLocale(r.URL.Query().Get("lang")); ok {
		return l
	}
	if l, ok := models.ParseLocale(r.Header.Get("X-Locale")); ok {
		return l
	}
	for _, part := range strings.Split(r.Header.Get("Accept-Language"), ",") {
		tag := strings.SplitN(part, ";", 2)[0]
		if l, ok := models.ParseLocale(tag); ok {
			return l
		}
	}
	return models.DefaultLocale
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// authenticate attaches the user to the request. A missing token is only an
// error when required; a bad token always is.
func authenticate(auth Authenticator, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if required {
				respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", i18n.Unauthorized)
				return
			}
			c.Next()
			return
		}

		uid, err := auth.Authenticate(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", i18n.Unauthorized)
			return
		}

		ctx, rd := requestctx.Ensure(c.Request.Context())
		rd.TokenString = token
		rd.UserID = uid
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth rejects requests without a valid session token
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return authenticate(auth, true)
}

// OptionalAuth identifies the user when a token is sent
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return authenticate(auth, false)
}

// RequestLogger logs one line per request
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if uid := requestctx.UserID(c.Request.Context()); uid != uuid.Nil {
			fields = append(fields, "user_id", uid)
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// CORS allows the configured frontend origins
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept-Language", "X-Locale"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
