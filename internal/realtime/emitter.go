package realtime

import (
	"context"

	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

type Publisher interface {
	Publish(ctx context.Context, msg SSEMessage) error
}

type Emitter interface {
	Emit(ctx context.Context, msg SSEMessage)
}

type HubEmitter struct{ Hub *SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg SSEMessage) {
	e.Hub.Broadcast(msg)
}

// BusEmitter publishes to every API instance; forwarders rebroadcast locally.
type BusEmitter struct {
	Bus Publisher
	Log *logger.Logger
}

func (e *BusEmitter) Emit(ctx context.Context, msg SSEMessage) {
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("bus publish failed", "event", msg.Event, "channel", msg.Channel, "error", err)
	}
}

type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, SSEMessage) {}
