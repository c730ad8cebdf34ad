package handlers

import (
	"net/http"

	"praytogether-backend/i18n"
	"praytogether-backend/logger"
	"praytogether-backend/models"
	"praytogether-backend/requestctx"
	"praytogether-backend/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler handles plan generation and the saved plan list
type PlanHandler struct {
	planService    *service.PlanService
	planStore      *service.PlanStore
	profileService *service.ProfileService
	log            *logger.Logger
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planService *service.PlanService, planStore *service.PlanStore, profileService *service.ProfileService, log *logger.Logger) *PlanHandler {
	return &PlanHandler{
		planService:    planService,
		planStore:      planStore,
		profileService: profileService,
		log:            log.With("handler", "plans"),
	}
}

// CreatePlan handles POST /api/plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req models.PrayerPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c)
		return
	}

	h.applyDefaults(c, &req)

	result, err := h.planService.CreatePrayerPlan(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.log, err, i18n.GenerationFailed)
		return
	}

	respondDataMessage(c, http.StatusOK, result,
		i18n.T(locale(c), i18n.PlanGenerated, "reason", result.ReasonContext))
}

// applyDefaults fills language and Bible version from the signed-in user's
// profile, or the request locale for anonymous callers
func (h *PlanHandler) applyDefaults(c *gin.Context, req *models.PrayerPlanRequest) {
	ctx := c.Request.Context()

	var profile *models.UserProfile
	if rd := requestctx.Get(ctx); rd.Authenticated() && h.profileService != nil {
		p, err := h.profileService.Get(ctx, rd.UserID)
		if err != nil {
			h.log.Warn("profile lookup for plan defaults failed", "user_id", rd.UserID, "error", err)
		}
		profile = p
	}

	if req.Language == "" {
		if profile != nil {
			req.Language = profile.PreferredLanguage
		} else {
			req.Language = locale(c)
		}
	}
	if req.BibleVersion == "" && profile != nil {
		lang := service.NormalizePlanRequest(*req).Language
		if models.BibleVersionMatchesLanguage(profile.PreferredBibleVersion, lang) {
			req.BibleVersion = profile.PreferredBibleVersion
		}
	}
}

// DailyContent handles POST /api/plans/daily-content
func (h *PlanHandler) DailyContent(c *gin.Context) {
	var req models.DailyContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c)
		return
	}
	if req.Language == "" {
		req.Language = locale(c)
	}

	content, err := h.planService.GenerateDailyContent(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.log, err, i18n.GenerationFailed)
		return
	}

	respondData(c, http.StatusOK, content)
}

// ListSaved handles GET /api/plans/saved
func (h *PlanHandler) ListSaved(c *gin.Context) {
	uid := requestctx.UserID(c.Request.Context())

	plans, err := h.planStore.List(c.Request.Context(), uid)
	if err != nil {
		respondServiceError(c, h.log, err, i18n.StorageUnavailable)
		return
	}

	respondData(c, http.StatusOK, plans)
}

// SavePlan handles POST /api/plans/saved
func (h *PlanHandler) SavePlan(c *gin.Context) {
	var plan models.PrayerPlanResult
	if err := c.ShouldBindJSON(&plan); err != nil {
		respondInvalidRequest(c)
		return
	}

	uid := requestctx.UserID(c.Request.Context())
	saved, err := h.planStore.Save(c.Request.Context(), uid, plan)
	if err != nil {
		respondServiceError(c, h.log, err, i18n.SavePlanFailed)
		return
	}

	respondDataMessage(c, http.StatusCreated, saved,
		i18n.T(locale(c), i18n.PlanSaved, "reason", saved.ReasonContext))
}

// DeleteSaved handles DELETE /api/plans/saved/:id
func (h *PlanHandler) DeleteSaved(c *gin.Context) {
	uid := requestctx.UserID(c.Request.Context())

	if err := h.planStore.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondServiceError(c, h.log, err, i18n.StorageUnavailable)
		return
	}

	c.Status(http.StatusNoContent)
}
