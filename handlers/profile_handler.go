package handlers

import (
	"errors"
	"net/http"

	"praytogether-backend/i18n"
	"praytogether-backend/logger"
	"praytogether-backend/models"
	"praytogether-backend/requestctx"
	"praytogether-backend/service"

	"github.com/gin-gonic/gin"
)

// maxPhotoRequestBytes caps the whole multipart body, leaving room for headers
// and boundaries around a maximum-size photo
const maxPhotoRequestBytes = service.MaxPhotoSize + 1<<20

// ProfileHandler handles the signed-in user's profile
type ProfileHandler struct {
	profileService *service.ProfileService
	log            *logger.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		log:            log.With("handler", "profile"),
	}
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	uid := requestctx.UserID(c.Request.Context())

	profile, err := h.profileService.Get(c.Request.Context(), uid)
	if err != nil {
		respondServiceError(c, h.log, err, i18n.StorageUnavailable)
		return
	}
	if profile == nil {
		respondError(c, http.StatusNotFound, "PROFILE_NOT_FOUND", i18n.ProfileNotFound)
		return
	}

	respondData(c, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondInvalidRequest(c)
		return
	}

	uid := requestctx.UserID(c.Request.Context())
	profile, err := h.profileService.Save(c.Request.Context(), uid, update)
	if err != nil {
		respondServiceError(c, h.log, err, i18n.SaveProfileFailed)
		return
	}

	respondData(c, http.StatusOK, profile)
}

// UploadPhoto handles POST /api/profile/photo
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	if c.Request.ContentLength > maxPhotoRequestBytes {
		respondServiceError(c, h.log, service.ErrFileTooLarge, i18n.SaveProfileFailed)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoRequestBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondServiceError(c, h.log, service.ErrFileTooLarge, i18n.SaveProfileFailed)
			return
		}
		respondInvalidRequest(c)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInvalidRequest(c)
		return
	}
	defer file.Close()

	uid := requestctx.UserID(c.Request.Context())
	result, err := h.profileService.SetPhoto(c.Request.Context(), uid, service.PhotoUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Data:     file,
	})
	if err != nil {
		respondServiceError(c, h.log, err, i18n.SaveProfileFailed)
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"id":       result.File.ID,
		"photoURL": result.PhotoURL,
		"profile":  result.Profile,
	})
}
