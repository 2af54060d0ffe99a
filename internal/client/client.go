// Package client is a small HTTP SDK for the onboarding endpoints. Client
// satisfies gate.StatusReader so a remote gate can be evaluated from a CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/nsg-intelligence-backend/internal/modules/calibration"
	"github.com/yungbote/nsg-intelligence-backend/internal/modules/gate"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/ctxutil"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/httpx"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
}

type Client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

var _ gate.StatusReader = (*Client)(nil)

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		log:        log.With("client", "OnboardingClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
	header     http.Header
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Code != "" {
		return fmt.Sprintf("http %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type Preferences struct {
	Preferences calibration.Snapshot `json:"preferences"`
	Version     int                  `json:"version"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// OnboardingStatus reads the authoritative flag. The request is never cached.
func (c *Client) OnboardingStatus(ctx context.Context) (gate.Status, error) {
	var st gate.Status
	err := c.do(ctx, http.MethodGet, "/api/onboarding-status", nil, &st)
	return st, err
}

// Preferences returns nil when the user has not calibrated yet.
func (c *Client) Preferences(ctx context.Context) (*Preferences, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/preferences", nil, &raw); err != nil {
		return nil, err
	}
	var probe struct {
		Preferences json.RawMessage `json:"preferences"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if len(probe.Preferences) == 0 || string(probe.Preferences) == "null" {
		return nil, nil
	}
	var out Preferences
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SavePreferences(ctx context.Context, snap calibration.Snapshot) (*Preferences, error) {
	var out Preferences
	body := map[string]any{"preferences": snap}
	if err := c.do(ctx, http.MethodPut, "/api/preferences", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Gate asks the server to evaluate the gate for the token's user.
func (c *Client) Gate(ctx context.Context) (gate.Decision, error) {
	var d gate.Decision
	err := c.do(ctx, http.MethodGet, "/api/onboarding/gate", nil, &d)
	return d, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx = ctxutil.Default(ctx)
	backoff := 250 * time.Millisecond
	for attempt := 0; ; attempt++ {
		err := c.doOnce(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		if !httpx.Retryable(err) || attempt >= c.cfg.MaxRetries || ctx.Err() != nil {
			return err
		}
		var hdr http.Header
		var he *HTTPError
		if errors.As(err, &he) {
			hdr = he.header
		}
		wait := httpx.Jitter(httpx.RetryAfter(hdr, backoff, 5*time.Second))
		c.log.Warn("onboarding request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", wait.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, wait); err != nil {
			return err
		}
		backoff *= 2
	}
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw)), header: resp.Header}
		var env struct {
			Error struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
			he.Message = env.Error.Message
			he.Code = env.Error.Code
		}
		return he
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
