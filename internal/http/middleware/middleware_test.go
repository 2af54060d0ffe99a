package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/nsg-intelligence-backend/internal/modules/gate"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/ctxutil"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
	"github.com/yungbote/nsg-intelligence-backend/internal/services"
)

type readerMap map[uuid.UUID]gate.StatusReader

func (m readerMap) ReaderFor(userID uuid.UUID) gate.StatusReader {
	if r, ok := m[userID]; ok {
		return r
	}
	return gate.StatusReaderFunc(func(context.Context) (gate.Status, error) { return gate.Status{}, nil })
}

func newAuthedEngine(t *testing.T, secret string, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := NewAuthMiddleware(logger.Nop(), services.NewAuthService(logger.Nop(), secret, "", time.Hour))
	r := gin.New()
	r.Use(AttachTraceContext())
	handlers := append([]gin.HandlerFunc{auth.RequireAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": ctxutil.UserID(c.Request.Context()).String()})
	})
	r.GET("/api/library", handlers...)
	return r
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return env.Error.Code
}

func TestRequireAuth(t *testing.T) {
	r := newAuthedEngine(t, "secret")
	issuer := services.NewAuthService(logger.Nop(), "secret", "", time.Hour)
	userID := uuid.New()
	token, err := issuer.IssueAccessToken(userID, time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	cases := []struct {
		name   string
		setup  func(req *http.Request)
		status int
	}{
		{name: "missing", setup: func(*http.Request) {}, status: http.StatusUnauthorized},
		{name: "garbage", setup: func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, status: http.StatusUnauthorized},
		{name: "bearer", setup: func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }, status: http.StatusOK},
		{name: "query", setup: func(req *http.Request) { req.URL.RawQuery = "token=" + token }, status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/library", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status: got=%d want=%d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if tc.status != http.StatusOK && errorCode(t, rec) != "unauthorized" {
				t.Fatalf("unexpected error code: %s", rec.Body.String())
			}
			if rec.Header().Get(headerRequestID) == "" || rec.Header().Get(headerTraceID) == "" {
				t.Fatalf("trace headers missing")
			}
		})
	}
}

func TestRequireOnboarding(t *testing.T) {
	issuer := services.NewAuthService(logger.Nop(), "secret", "", time.Hour)
	done, pending, broken := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()
	readers := readerMap{
		done: gate.StatusReaderFunc(func(context.Context) (gate.Status, error) {
			return gate.Status{OnboardingCompleted: true, CompletedAt: &now}, nil
		}),
		broken: gate.StatusReaderFunc(func(context.Context) (gate.Status, error) {
			return gate.Status{}, errors.New("db unavailable")
		}),
	}
	r := newAuthedEngine(t, "secret", RequireOnboarding(logger.Nop(), readers, nil))

	cases := []struct {
		name   string
		userID uuid.UUID
		status int
	}{
		{name: "completed", userID: done, status: http.StatusOK},
		{name: "not_completed", userID: pending, status: http.StatusForbidden},
		{name: "read_failure_fails_closed", userID: broken, status: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, _ := issuer.IssueAccessToken(tc.userID, time.Hour)
			req := httptest.NewRequest(http.MethodGet, "/api/library", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status: got=%d want=%d", rec.Code, tc.status)
			}
			if tc.status == http.StatusForbidden && errorCode(t, rec) != "onboarding_required" {
				t.Fatalf("unexpected body: %s", rec.Body.String())
			}
		})
	}
}

func TestAttachTraceContextKeepsIncomingIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/healthcheck", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set(headerRequestID, "req-1")
	req.Header.Set(headerTraceID, "trace-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-1" || seen.TraceID != "trace-1" {
		t.Fatalf("trace data not propagated: %+v", seen)
	}
	if rec.Header().Get(headerRequestID) != "req-1" {
		t.Fatalf("request id not echoed")
	}
}

func TestAttachTraceContextReplacesJunkIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set(headerRequestID, "bad id\twith spaces")
	req.Header.Set(headerTraceID, strings.Repeat("a", maxCorrelationIDLen+1))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(headerRequestID); got == "" || strings.Contains(got, " ") {
		t.Fatalf("request id not replaced: %q", got)
	}
	if got := rec.Header().Get(headerTraceID); len(got) > maxCorrelationIDLen {
		t.Fatalf("trace id not replaced: %q", got)
	}
}
