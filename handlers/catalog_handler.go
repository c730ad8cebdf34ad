package handlers

import (
	"net/http"

	"praytogether-backend/i18n"
	"praytogether-backend/models"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the static language, Bible version and religion lists
type CatalogHandler struct{}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Languages handles GET /api/catalog/languages
func (h *CatalogHandler) Languages(c *gin.Context) {
	respondData(c, http.StatusOK, models.Languages())
}

// BibleVersions handles GET /api/catalog/bible-versions
func (h *CatalogHandler) BibleVersions(c *gin.Context) {
	raw := c.Query("language")
	if raw == "" {
		respondData(c, http.StatusOK, models.BibleVersions())
		return
	}

	lang, ok := models.ParseLocale(raw)
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_LANGUAGE", i18n.LanguageRequired)
		return
	}
	respondData(c, http.StatusOK, models.BibleVersionsForLanguage(lang))
}

// Religions handles GET /api/catalog/religions
func (h *CatalogHandler) Religions(c *gin.Context) {
	respondData(c, http.StatusOK, models.Religions())
}
