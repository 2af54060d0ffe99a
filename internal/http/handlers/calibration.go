package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/nsg-intelligence-backend/internal/http/response"
	"github.com/yungbote/nsg-intelligence-backend/internal/modules/calibration"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/ctxutil"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
	"github.com/yungbote/nsg-intelligence-backend/internal/services"
)

type CalibrationHandler struct {
	log *logger.Logger
	svc services.CalibrationService
}

func NewCalibrationHandler(log *logger.Logger, svc services.CalibrationService) *CalibrationHandler {
	return &CalibrationHandler{log: log.With("handler", "CalibrationHandler"), svc: svc}
}

type startSessionRequest struct {
	Recalibrate bool `json:"recalibrate"`
}

// POST /api/calibration/session
func (h *CalibrationHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.svc.Start(c.Request.Context(), ctxutil.UserID(c.Request.Context()), req.Recalibrate)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, view)
}

// GET /api/calibration/session?since=N
func (h *CalibrationHandler) GetSession(c *gin.Context) {
	since := 0
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("since must be a non-negative integer"))
			return
		}
		since = n
	}
	view, err := h.svc.Get(c.Request.Context(), ctxutil.UserID(c.Request.Context()), since)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, view)
}

type submitAnswerRequest struct {
	OptionID string `json:"option_id"`
	Text     string `json:"text"`
	// Step, when set, must match the wizard's current step.
	Step *calibration.Step `json:"step,omitempty"`
}

// POST /api/calibration/session/answers
func (h *CalibrationHandler) SubmitAnswer(c *gin.Context) {
	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, toAPIError(errors.Join(calibration.ErrEmptyAnswer, err)))
		return
	}
	ans := calibration.Answer{
		OptionID: strings.TrimSpace(req.OptionID),
		Text:     req.Text,
		Step:     req.Step,
	}
	view, err := h.svc.Submit(c.Request.Context(), ctxutil.UserID(c.Request.Context()), ans)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, view)
}

// POST /api/calibration/session/restart
func (h *CalibrationHandler) Restart(c *gin.Context) {
	view, err := h.svc.Restart(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, view)
}

// POST /api/calibration/session/confirm
func (h *CalibrationHandler) Confirm(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	res, err := h.svc.Confirm(c.Request.Context(), userID)
	if err != nil {
		h.log.Warn("calibration confirm rejected", append(ctxutil.LogFields(c.Request.Context()), "error", err)...)
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, res)
}
