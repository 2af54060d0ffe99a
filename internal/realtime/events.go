package realtime

import "github.com/google/uuid"

type SSEEvent string

const (
	SSEEventStrategyPreferencesUpdated SSEEvent = "StrategyPreferencesUpdated"
	SSEEventOnboardingCompleted        SSEEvent = "OnboardingCompleted"
	SSEEventCalibrationProgress        SSEEvent = "CalibrationProgress"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the per-user channel every stream subscribes to.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}
