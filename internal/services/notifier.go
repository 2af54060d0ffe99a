package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nsg-intelligence-backend/internal/modules/calibration"
	"github.com/yungbote/nsg-intelligence-backend/internal/realtime"
)

// =========================
// Preferences notifier
// =========================

type PreferencesNotifier interface {
	PreferencesUpdated(ctx context.Context, userID uuid.UUID, prefs calibration.Snapshot, version int)
	OnboardingCompleted(ctx context.Context, userID uuid.UUID, completedAt *time.Time)
	CalibrationProgress(ctx context.Context, userID uuid.UUID, step calibration.Step, lastSeq int)
}

type preferencesNotifier struct {
	emit realtime.Emitter
}

func NewPreferencesNotifier(emit realtime.Emitter) PreferencesNotifier {
	return &preferencesNotifier{emit: emit}
}

// PreferencesUpdated sends a copy of the committed snapshot.
func (n *preferencesNotifier) PreferencesUpdated(ctx context.Context, userID uuid.UUID, prefs calibration.Snapshot, version int) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventStrategyPreferencesUpdated,
		Data: map[string]any{
			"preferences": prefs.Map(),
			"version":     version,
		},
	})
}

func (n *preferencesNotifier) OnboardingCompleted(ctx context.Context, userID uuid.UUID, completedAt *time.Time) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventOnboardingCompleted,
		Data: map[string]any{
			"onboarding_completed": true,
			"completed_at":         completedAt,
		},
	})
}

func (n *preferencesNotifier) CalibrationProgress(ctx context.Context, userID uuid.UUID, step calibration.Step, lastSeq int) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventCalibrationProgress,
		Data: map[string]any{
			"step":     step,
			"last_seq": lastSeq,
		},
	})
}
