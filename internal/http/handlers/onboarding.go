package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/nsg-intelligence-backend/internal/http/response"
	"github.com/yungbote/nsg-intelligence-backend/internal/modules/calibration"
	"github.com/yungbote/nsg-intelligence-backend/internal/modules/gate"
	"github.com/yungbote/nsg-intelligence-backend/internal/observability"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/ctxutil"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
	"github.com/yungbote/nsg-intelligence-backend/internal/services"
)

type OnboardingHandler struct {
	log     *logger.Logger
	svc     services.OnboardingService
	metrics *observability.Metrics
}

func NewOnboardingHandler(log *logger.Logger, svc services.OnboardingService, metrics *observability.Metrics) *OnboardingHandler {
	return &OnboardingHandler{log: log.With("handler", "OnboardingHandler"), svc: svc, metrics: metrics}
}

// GET /api/onboarding-status
func (h *OnboardingHandler) GetStatus(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	st, err := h.svc.Status(c.Request.Context(), userID)
	if err != nil {
		h.log.Warn("onboarding status read failed", "user_id", userID, "error", err)
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	c.Header("Cache-Control", "no-store")
	response.RespondOK(c, st)
}

// GET /api/onboarding/gate
func (h *OnboardingHandler) GetGate(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	g := gate.New(h.svc.ReaderFor(userID))
	state := g.Refresh(c.Request.Context())
	h.metrics.IncGateDecision(string(state))
	c.Header("Cache-Control", "no-store")
	response.RespondOK(c, g.Decision())
}

// GET /api/preferences
func (h *OnboardingHandler) GetPreferences(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	prefs, err := h.svc.Preferences(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	if prefs == nil {
		response.RespondOK(c, gin.H{"preferences": nil})
		return
	}
	response.RespondOK(c, prefs)
}

type putPreferencesRequest struct {
	Preferences *calibration.Snapshot `json:"preferences"`
}

// PUT /api/preferences
func (h *OnboardingHandler) PutPreferences(c *gin.Context) {
	var req putPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, toAPIError(errors.Join(calibration.ErrInvalidValue, err)))
		return
	}
	if req.Preferences == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_preferences", errors.New("preferences required"))
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	stored, st, err := h.svc.SavePreferences(c.Request.Context(), userID, *req.Preferences)
	if err != nil {
		h.metrics.IncPreferencesCommit("api", "error")
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	h.metrics.IncPreferencesCommit("api", "ok")
	response.RespondOK(c, gin.H{
		"preferences": stored.Preferences,
		"version":     stored.Version,
		"updated_at":  stored.UpdatedAt,
		"status":      st,
	})
}
