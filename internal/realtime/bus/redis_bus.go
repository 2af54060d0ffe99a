package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
	"github.com/yungbote/nsg-intelligence-backend/internal/realtime"
)

const (
	defaultChannel = "nsg:sse"
	// maxPayload bounds a single published message.
	maxPayload = 64 << 10
)

var errBusClosed = errors.New("redis bus not initialized")

type RedisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

var _ Bus = (*RedisBus)(nil)

func NewRedisBus(cfg Config, log *logger.Logger) (*RedisBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = defaultChannel
	}

	b := &RedisBus{
		log: log.With("service", "RedisBus", "channel", channel),
		rdb: goredis.NewClient(&goredis.Options{
			Addr:         addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
		channel: channel,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.Ping(ctx); err != nil {
		_ = b.rdb.Close()
		return nil, err
	}
	return b, nil
}

func (b *RedisBus) Ping(ctx context.Context) error {
	if b == nil || b.rdb == nil {
		return errBusClosed
	}
	if err := b.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (b *RedisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return errBusClosed
	}
	raw, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes synchronously so that a bad address fails fast,
// then delivers messages on a background goroutine until ctx ends.
func (b *RedisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.rdb == nil {
		return errBusClosed
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	go b.forward(ctx, sub, onMsg)
	return nil
}

func (b *RedisBus) forward(ctx context.Context, sub *goredis.PubSub, onMsg func(m realtime.SSEMessage)) {
	defer sub.Close()
	in := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				b.log.Warn("redis subscription closed")
				return
			}
			if m == nil {
				continue
			}
			msg, err := decodeMessage(m.Payload)
			if err != nil {
				b.log.Warn("dropping malformed bus payload", "error", err)
				continue
			}
			onMsg(msg)
		}
	}
}

func (b *RedisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

func validate(msg realtime.SSEMessage) error {
	if strings.TrimSpace(msg.Channel) == "" || strings.TrimSpace(string(msg.Event)) == "" {
		return fmt.Errorf("message missing channel or event")
	}
	return nil
}

func encodeMessage(msg realtime.SSEMessage) ([]byte, error) {
	if err := validate(msg); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	if len(raw) > maxPayload {
		return nil, fmt.Errorf("bus payload too large: %d bytes", len(raw))
	}
	return raw, nil
}

func decodeMessage(payload string) (realtime.SSEMessage, error) {
	var msg realtime.SSEMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return realtime.SSEMessage{}, err
	}
	if err := validate(msg); err != nil {
		return realtime.SSEMessage{}, err
	}
	return msg, nil
}
