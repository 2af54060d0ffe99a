package bus

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
	"github.com/yungbote/nsg-intelligence-backend/internal/realtime"
)

func TestNewRedisBusRequiresAddr(t *testing.T) {
	if _, err := NewRedisBus(Config{}, logger.Nop()); err == nil {
		t.Fatalf("expected error for missing addr")
	}
	if _, err := NewRedisBus(Config{Addr: "localhost:6379"}, nil); err == nil {
		t.Fatalf("expected error for missing logger")
	}
}

func TestDecodeMessage(t *testing.T) {
	msg, err := decodeMessage(`{"channel":"user:1","event":"StrategyPreferencesUpdated","data":{"version":2}}`)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	if msg.Event != realtime.SSEEventStrategyPreferencesUpdated || msg.Channel != "user:1" {
		t.Fatalf("decodeMessage: unexpected %+v", msg)
	}
	for _, bad := range []string{`not json`, `{"channel":"user:1"}`, `{"event":"X"}`} {
		if _, err := decodeMessage(bad); err == nil {
			t.Fatalf("decodeMessage(%q): expected error", bad)
		}
	}
}

func TestEncodeMessage(t *testing.T) {
	raw, err := encodeMessage(realtime.SSEMessage{
		Channel: realtime.UserChannel(uuid.New()),
		Event:   realtime.SSEEventOnboardingCompleted,
		Data:    map[string]any{"completed": true},
	})
	if err != nil {
		t.Fatalf("encodeMessage: %v", err)
	}
	if _, err := decodeMessage(string(raw)); err != nil {
		t.Fatalf("decodeMessage(encodeMessage): %v", err)
	}

	if _, err := encodeMessage(realtime.SSEMessage{Event: realtime.SSEEventOnboardingCompleted}); err == nil {
		t.Fatalf("expected error for missing channel")
	}
	big := realtime.SSEMessage{Channel: "user:x", Event: realtime.SSEEventCalibrationProgress, Data: strings.Repeat("x", maxPayload)}
	if _, err := encodeMessage(big); err == nil {
		t.Fatalf("expected error for oversized payload")
	}
}

func TestNilBusIsSafe(t *testing.T) {
	var b *RedisBus
	if err := b.Ping(context.Background()); err == nil {
		t.Fatalf("nil bus ping should fail")
	}
	if err := b.Publish(context.Background(), realtime.SSEMessage{}); err == nil {
		t.Fatalf("nil bus publish should fail")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("nil bus close: %v", err)
	}
}
