package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/nsg-intelligence-backend/internal/data/repos"
	"github.com/yungbote/nsg-intelligence-backend/internal/data/repos/testutil"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/ctxutil"
	"github.com/yungbote/nsg-intelligence-backend/internal/realtime"
	"github.com/yungbote/nsg-intelligence-backend/internal/services"
)

type testEnv struct {
	engine *gin.Engine
	userID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)
	testutil.SeedLibraryItem(t, context.Background(), db, "Guía rápida", "guide", 1)
	testutil.SeedLibraryItem(t, context.Background(), db, "Video introductorio", "video", 2)

	notify := services.NewPreferencesNotifier(realtime.NopEmitter{})
	onboarding := services.NewOnboardingService(
		db, log,
		repos.NewOnboardingStatusRepo(db, log),
		repos.NewStrategyPreferencesRepo(db, log),
		notify, nil,
	)
	calib, err := services.NewCalibrationService(log, onboarding, notify, nil, services.CalibrationConfig{
		MaxSessions: 4,
		SessionTTL:  time.Hour,
	})
	if err != nil {
		t.Fatalf("NewCalibrationService: %v", err)
	}
	t.Cleanup(calib.Close)
	library := services.NewLibraryService(log, repos.NewLibraryItemRepo(db, log))

	env := &testEnv{engine: gin.New(), userID: uuid.New()}
	asUser := func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: env.userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}

	oh := NewOnboardingHandler(log, onboarding, nil)
	ch := NewCalibrationHandler(log, calib)
	lh := NewLibraryHandler(log, library)
	hh := NewHealthHandler(nil)

	env.engine.GET("/healthcheck", hh.HealthCheck)
	api := env.engine.Group("/api", asUser)
	api.GET("/onboarding-status", oh.GetStatus)
	api.GET("/onboarding/gate", oh.GetGate)
	api.GET("/preferences", oh.GetPreferences)
	api.PUT("/preferences", oh.PutPreferences)
	api.POST("/calibration/session", ch.StartSession)
	api.GET("/calibration/session", ch.GetSession)
	api.POST("/calibration/session/answers", ch.SubmitAnswer)
	api.POST("/calibration/session/restart", ch.Restart)
	api.POST("/calibration/session/confirm", ch.Confirm)
	api.GET("/library", lh.List)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func errorCode(body map[string]any) string {
	env, _ := body["error"].(map[string]any)
	code, _ := env["code"].(string)
	return code
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	rec, _ := env.do(t, http.MethodGet, "/healthcheck", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
}

func TestOnboardingStatusIsNotCached(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, http.MethodGet, "/api/onboarding-status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("missing no-store header")
	}
	if body["onboarding_completed"] != false {
		t.Fatalf("new user should be blocked: %v", body)
	}

	rec, body = env.do(t, http.MethodGet, "/api/onboarding/gate", nil)
	if rec.Code != http.StatusOK || body["state"] != "blocked" || body["content_visible"] != false {
		t.Fatalf("gate: %d %v", rec.Code, body)
	}
}

func TestPutPreferences(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPut, "/api/preferences", map[string]any{
		"preferences": map[string]any{"depth": "Experto"},
	})
	if rec.Code != http.StatusUnprocessableEntity || errorCode(body) != "incomplete_preferences" {
		t.Fatalf("partial: %d %v", rec.Code, body)
	}

	rec, body = env.do(t, http.MethodPut, "/api/preferences", map[string]any{
		"preferences": map[string]any{"favoriteColor": "azul"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: %d %v", rec.Code, body)
	}

	rec, body = env.do(t, http.MethodPut, "/api/preferences", map[string]any{
		"preferences": map[string]any{
			"entregable":    "A) Resumen ejecutivo",
			"learningStyle": "B) Casos prácticos",
			"depth":         "Experto",
			"context":       "Mi negocio propio",
			"strength":      "Visión",
			"friction":      "Tiempo",
			"numerology":    true,
			"birthDate":     "14/02/1990",
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: %d %s", rec.Code, rec.Body.String())
	}
	if body["version"] != float64(1) {
		t.Fatalf("version: %v", body["version"])
	}

	rec, body = env.do(t, http.MethodGet, "/api/preferences", nil)
	prefs, _ := body["preferences"].(map[string]any)
	if rec.Code != http.StatusOK || prefs["birthDate"] != "14/02/1990" || prefs["numerology"] != true {
		t.Fatalf("get: %d %v", rec.Code, body)
	}

	_, body = env.do(t, http.MethodGet, "/api/onboarding/gate", nil)
	if body["state"] != "unlocked" {
		t.Fatalf("gate after save: %v", body)
	}
}

func TestCalibrationEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/calibration/session", nil)
	if rec.Code != http.StatusNotFound || errorCode(body) != "no_session" {
		t.Fatalf("get before start: %d %v", rec.Code, body)
	}

	rec, _ = env.do(t, http.MethodPost, "/api/calibration/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: %d %s", rec.Code, rec.Body.String())
	}

	rec, body = env.do(t, http.MethodPost, "/api/calibration/session/confirm", nil)
	if rec.Code != http.StatusConflict || errorCode(body) != "not_at_final_step" {
		t.Fatalf("early confirm: %d %v", rec.Code, body)
	}

	rec, body = env.do(t, http.MethodPost, "/api/calibration/session/answers", map[string]any{"option_id": "zz"})
	if rec.Code != http.StatusBadRequest || errorCode(body) != "invalid_answer" {
		t.Fatalf("unknown option: %d %v", rec.Code, body)
	}

	rec, body = env.do(t, http.MethodPost, "/api/calibration/session/answers", map[string]any{"option_id": "a", "step": "3"})
	if rec.Code != http.StatusConflict || errorCode(body) != "stale_answer" {
		t.Fatalf("stale answer: %d %v", rec.Code, body)
	}

	for i := 0; i < 6; i++ {
		rec, _ = env.do(t, http.MethodPost, "/api/calibration/session/answers", map[string]any{"option_id": "a"})
		if rec.Code != http.StatusOK {
			t.Fatalf("answer %d: %d %s", i+1, rec.Code, rec.Body.String())
		}
	}
	rec, body = env.do(t, http.MethodPost, "/api/calibration/session/answers", map[string]any{"text": "No"})
	session, _ := body["session"].(map[string]any)
	if rec.Code != http.StatusOK || session["step"] != "8" {
		t.Fatalf("numerology: %d %v", rec.Code, body)
	}

	rec, body = env.do(t, http.MethodGet, "/api/calibration/session?since=-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad since: %d %v", rec.Code, body)
	}

	rec, body = env.do(t, http.MethodPost, "/api/calibration/session/confirm", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: %d %s", rec.Code, rec.Body.String())
	}
	gateView, _ := body["gate"].(map[string]any)
	if gateView["state"] != "unlocked" {
		t.Fatalf("confirm gate: %v", body)
	}
	prefs, _ := body["preferences"].(map[string]any)
	if len(prefs) != 7 {
		t.Fatalf("confirm prefs: %v", prefs)
	}
	if _, ok := prefs["birthDate"]; ok {
		t.Fatalf("birthDate must not be stored when numerology is declined")
	}

	rec, body = env.do(t, http.MethodPost, "/api/calibration/session/restart", nil)
	if rec.Code != http.StatusNotFound || errorCode(body) != "no_session" {
		t.Fatalf("restart after confirm: %d %v", rec.Code, body)
	}
}

func TestRecalibrationRequiresCompletedOnboarding(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, http.MethodPost, "/api/calibration/session", map[string]any{"recalibrate": true})
	if rec.Code != http.StatusConflict || errorCode(body) != "recalibration_unavailable" {
		t.Fatalf("recalibrate while blocked: %d %v", rec.Code, body)
	}
}

func TestLibraryList(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, http.MethodGet, "/api/library?kind=video", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("library: %d %s", rec.Code, rec.Body.String())
	}
	items, _ := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("library kind filter: %v", body)
	}
}
