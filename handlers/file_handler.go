package handlers

import (
	"fmt"
	"net/http"

	"praytogether-backend/i18n"
	"praytogether-backend/logger"
	"praytogether-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileHandler serves stored profile photos
type FileHandler struct {
	profileService *service.ProfileService
	log            *logger.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(profileService *service.ProfileService, log *logger.Logger) *FileHandler {
	return &FileHandler{
		profileService: profileService,
		log:            log.With("handler", "files"),
	}
}

// GetFile handles GET /api/files/:id
func (h *FileHandler) GetFile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", i18n.InvalidRequest)
		return
	}

	file, reader, err := h.profileService.OpenPhoto(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err, i18n.StorageUnavailable)
		return
	}
	defer reader.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", file.Filename),
	})
}
