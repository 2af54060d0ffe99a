package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/nsg-intelligence-backend/internal/http/response"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
	"github.com/yungbote/nsg-intelligence-backend/internal/services"
)

type LibraryHandler struct {
	log *logger.Logger
	svc services.LibraryService
}

func NewLibraryHandler(log *logger.Logger, svc services.LibraryService) *LibraryHandler {
	return &LibraryHandler{log: log.With("handler", "LibraryHandler"), svc: svc}
}

// GET /api/library?kind=video&limit=20
func (h *LibraryHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.svc.List(c.Request.Context(), c.Query("kind"), limit)
	if err != nil {
		h.log.Error("library list failed", "error", err)
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}
