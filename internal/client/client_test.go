package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/nsg-intelligence-backend/internal/modules/gate"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

func newClient(t *testing.T, url string, retries int) *Client {
	t.Helper()
	c, err := New(logger.Nop(), Config{BaseURL: url, Token: "tok", MaxRetries: retries, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestOnboardingStatusFeedsGate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/api/onboarding-status" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"onboarding_completed":true,"completed_at":"2026-01-02T03:04:05Z"}`))
	}))
	defer srv.Close()

	g := gate.New(newClient(t, srv.URL, 0))
	if state := g.Refresh(context.Background()); state != gate.StateUnlocked {
		t.Fatalf("gate state: %s err=%v", state, g.Err())
	}
}

func TestHTTPErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"message":"missing numerology","code":"incomplete_preferences"}}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL, 3).Gate(context.Background())
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("want HTTPError, got %v", err)
	}
	if he.StatusCode != http.StatusUnprocessableEntity || he.Code != "incomplete_preferences" {
		t.Fatalf("unexpected error: %+v", he)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"preferences":null}`))
	}))
	defer srv.Close()

	prefs, err := newClient(t, srv.URL, 2).Preferences(context.Background())
	if err != nil {
		t.Fatalf("Preferences: %v", err)
	}
	if prefs != nil {
		t.Fatalf("expected nil preferences, got %+v", prefs)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls=%d", calls.Load())
	}
}

func TestFailedStatusBlocksGate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := gate.New(newClient(t, srv.URL, 0))
	if state := g.Refresh(context.Background()); state != gate.StateBlocked {
		t.Fatalf("gate should fail closed, got %s", state)
	}
}
