package bus

import (
	"context"

	"github.com/yungbote/nsg-intelligence-backend/internal/realtime"
)

// Bus carries realtime messages between API instances. Every instance runs a
// forwarder that rebroadcasts into its local hub, including the publisher.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}
