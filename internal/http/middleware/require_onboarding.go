package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/nsg-intelligence-backend/internal/http/response"
	"github.com/yungbote/nsg-intelligence-backend/internal/modules/gate"
	"github.com/yungbote/nsg-intelligence-backend/internal/observability"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/ctxutil"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

// GateReaders yields the completion-flag reader for one user.
type GateReaders interface {
	ReaderFor(userID uuid.UUID) gate.StatusReader
}

// RequireOnboarding evaluates a fresh gate on every request and only lets the
// request through when the backend reports onboarding as completed.
func RequireOnboarding(log *logger.Logger, readers GateReaders, metrics *observability.Metrics) gin.HandlerFunc {
	mwLog := log.With("middleware", "RequireOnboarding")
	return func(c *gin.Context) {
		userID := ctxutil.UserID(c.Request.Context())
		if userID == uuid.Nil {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", gate.ErrNotConfirmed)
			return
		}
		g := gate.New(readers.ReaderFor(userID))
		state := g.Refresh(c.Request.Context())
		metrics.IncGateDecision(string(state))
		if state != gate.StateUnlocked {
			if err := g.Err(); err != nil {
				mwLog.Warn("gate read failed; blocking", "user_id", userID, "error", err)
			}
			c.Header("Cache-Control", "no-store")
			response.AbortError(c, http.StatusForbidden, "onboarding_required", gate.ErrNotConfirmed)
			return
		}
		c.Next()
	}
}
