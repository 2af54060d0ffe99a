package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/nsg-intelligence-backend/internal/modules/calibration"
	"github.com/yungbote/nsg-intelligence-backend/internal/modules/gate"
	"github.com/yungbote/nsg-intelligence-backend/internal/observability"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

type CalibrationConfig struct {
	MaxSessions   int
	SessionTTL    time.Duration
	SweepInterval time.Duration
	// TypingDelay is how long the assistant "types" before each reply.
	TypingDelay time.Duration
}

func (c CalibrationConfig) withDefaults() CalibrationConfig {
	if c.MaxSessions <= 0 {
		c.MaxSessions = 10000
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 2 * time.Hour
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = c.SessionTTL / 4
	}
	if c.TypingDelay < 0 {
		c.TypingDelay = 0
	}
	return c
}

type SessionView struct {
	Session       calibration.State `json:"session"`
	Gate          gate.Decision     `json:"gate"`
	Recalibrating bool              `json:"recalibrating"`
}

type ConfirmResult struct {
	Preferences calibration.Snapshot `json:"preferences"`
	Gate        gate.Decision        `json:"gate"`
}

// CalibrationService holds one in-memory wizard per user.
type CalibrationService interface {
	Start(ctx context.Context, userID uuid.UUID, recalibrate bool) (SessionView, error)
	Get(ctx context.Context, userID uuid.UUID, sinceSeq int) (SessionView, error)
	Submit(ctx context.Context, userID uuid.UUID, ans calibration.Answer) (SessionView, error)
	Restart(ctx context.Context, userID uuid.UUID) (SessionView, error)
	Confirm(ctx context.Context, userID uuid.UUID) (ConfirmResult, error)
	Close()
}

type session struct {
	wizard        *calibration.Wizard
	gate          *gate.Gate
	recalibrating bool
	lastSeen      atomic.Int64
}

func (s *session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

type calibrationService struct {
	log        *logger.Logger
	onboarding OnboardingService
	notify     PreferencesNotifier
	metrics    *observability.Metrics
	cfg        CalibrationConfig
	sessions   *lru.Cache[uuid.UUID, *session]
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewCalibrationService(
	baseLog *logger.Logger,
	onboarding OnboardingService,
	notify PreferencesNotifier,
	metrics *observability.Metrics,
	cfg CalibrationConfig,
) (CalibrationService, error) {
	cfg = cfg.withDefaults()
	s := &calibrationService{
		log:        baseLog.With("service", "CalibrationService"),
		onboarding: onboarding,
		notify:     notify,
		metrics:    metrics,
		cfg:        cfg,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	cache, err := lru.NewWithEvict[uuid.UUID, *session](cfg.MaxSessions, func(uuid.UUID, *session) {
		s.metrics.SetSessions(s.sessions.Len())
	})
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	s.sessions = cache

	s.wg.Add(1)
	go s.sweep()
	return s, nil
}

func (s *calibrationService) Start(ctx context.Context, userID uuid.UUID, recalibrate bool) (SessionView, error) {
	if userID == uuid.Nil {
		return SessionView{}, ErrUnauthenticated
	}
	if existing, ok := s.lookup(userID); ok && !existing.wizard.Confirmed() && existing.recalibrating == recalibrate {
		s.refreshGate(ctx, existing)
		return s.view(existing, 0), nil
	}

	g := gate.New(s.onboarding.ReaderFor(userID))
	state := g.Refresh(ctx)
	s.metrics.IncGateDecision(string(state))

	opts := []calibration.WizardOption{calibration.WithClock(s.now)}
	if s.cfg.TypingDelay > 0 {
		opts = append(opts, calibration.WithPacer(calibration.FixedDelay(s.cfg.TypingDelay)))
	}
	if recalibrate {
		if err := g.BeginRecalibration(); err != nil {
			return SessionView{}, err
		}
		// best effort: a failed read just means no prefill
		prev, err := s.onboarding.Preferences(ctx, userID)
		if err != nil {
			s.log.Warn("prefill preferences unavailable", "user_id", userID, "error", err)
		} else if prev != nil {
			opts = append(opts, calibration.WithPrefill(prev.Preferences))
		}
	}

	sess := &session{
		wizard:        calibration.NewWizard(opts...),
		gate:          g,
		recalibrating: recalibrate,
	}
	sess.touch(s.now())
	s.sessions.Add(userID, sess)
	s.metrics.SetSessions(s.sessions.Len())
	s.log.Info("calibration session started", "user_id", userID, "recalibrate", recalibrate, "gate", state)
	return s.view(sess, 0), nil
}

func (s *calibrationService) Get(ctx context.Context, userID uuid.UUID, sinceSeq int) (SessionView, error) {
	sess, ok := s.lookup(userID)
	if !ok {
		return SessionView{}, ErrNoSession
	}
	s.refreshGate(ctx, sess)
	return s.view(sess, sinceSeq), nil
}

// refreshGate re-reads completion so a resumed session reflects commits made
// outside it.
func (s *calibrationService) refreshGate(ctx context.Context, sess *session) {
	state := sess.gate.Refresh(ctx)
	s.metrics.IncGateDecision(string(state))
}

func (s *calibrationService) Submit(ctx context.Context, userID uuid.UUID, ans calibration.Answer) (SessionView, error) {
	sess, ok := s.lookup(userID)
	if !ok {
		return SessionView{}, ErrNoSession
	}
	res, err := sess.wizard.Submit(ctx, ans)
	if err != nil {
		return SessionView{}, err
	}
	kind := "answer"
	if res.Escaped {
		kind = "custom"
	}
	s.metrics.ObserveTransition(res.Transition.From.String(), res.Transition.Next.String(), kind)
	return s.afterAction(ctx, userID, sess, res), nil
}

func (s *calibrationService) Restart(ctx context.Context, userID uuid.UUID) (SessionView, error) {
	sess, ok := s.lookup(userID)
	if !ok {
		return SessionView{}, ErrNoSession
	}
	from := sess.wizard.Step()
	res, err := sess.wizard.Restart()
	if err != nil {
		return SessionView{}, err
	}
	s.metrics.ObserveTransition(from.String(), res.Transition.Next.String(), "restart")
	return s.afterAction(ctx, userID, sess, res), nil
}

// Confirm persists the answers, then re-reads the gate from the backend. The
// session is only dropped once the backend reports completion.
func (s *calibrationService) Confirm(ctx context.Context, userID uuid.UUID) (ConfirmResult, error) {
	ctx, span := observability.StartSpan(ctx, "calibration.confirm")
	defer span.End()

	sess, ok := s.lookup(userID)
	if !ok {
		return ConfirmResult{}, ErrNoSession
	}
	span.SetAttributes(attribute.Bool("calibration.recalibrating", sess.recalibrating))

	var snap calibration.Snapshot
	if sess.wizard.Confirmed() {
		// persisted earlier but verification failed; only re-verify
		snap = sess.wizard.Preferences()
	} else {
		committed, err := sess.wizard.Confirm(ctx, func(ctx context.Context, snap calibration.Snapshot) error {
			_, _, err := s.onboarding.SavePreferences(ctx, userID, snap)
			return err
		})
		if err != nil {
			if isWizardGuard(err) {
				return ConfirmResult{}, err
			}
			s.metrics.IncConfirm("persist_failed")
			s.metrics.IncPreferencesCommit("calibration", "error")
			span.RecordError(err)
			span.SetStatus(codes.Error, "persist failed")
			s.log.Warn("calibration confirm failed", "user_id", userID, "error", err)
			return ConfirmResult{}, fmt.Errorf("%w: %v", ErrPersistFailed, err)
		}
		s.metrics.IncPreferencesCommit("calibration", "ok")
		snap = committed
	}

	state, err := sess.gate.VerifyAfterConfirm(ctx)
	s.metrics.IncGateDecision(string(state))
	if err != nil {
		s.metrics.IncConfirm("unverified")
		span.SetStatus(codes.Error, "verification failed")
		return ConfirmResult{Gate: sess.gate.Decision()}, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	sess.gate.EndRecalibration()
	s.sessions.Remove(userID)
	s.metrics.IncConfirm("ok")
	s.log.Info("calibration confirmed", "user_id", userID, "fields", snap.Len())
	return ConfirmResult{Preferences: snap, Gate: sess.gate.Decision()}, nil
}

func (s *calibrationService) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *calibrationService) lookup(userID uuid.UUID) (*session, bool) {
	if userID == uuid.Nil {
		return nil, false
	}
	sess, ok := s.sessions.Get(userID)
	if !ok {
		return nil, false
	}
	now := s.now()
	if sess.idleSince(now) > s.cfg.SessionTTL {
		s.sessions.Remove(userID)
		return nil, false
	}
	sess.touch(now)
	return sess, true
}

func (s *calibrationService) afterAction(ctx context.Context, userID uuid.UUID, sess *session, res calibration.Result) SessionView {
	st := sess.wizard.State(0)
	st.Messages = res.Messages
	if s.notify != nil {
		s.notify.CalibrationProgress(ctx, userID, st.Step, st.LastSeq)
	}
	return SessionView{Session: st, Gate: sess.gate.Decision(), Recalibrating: sess.recalibrating}
}

func (s *calibrationService) view(sess *session, sinceSeq int) SessionView {
	return SessionView{
		Session:       sess.wizard.State(sinceSeq),
		Gate:          sess.gate.Decision(),
		Recalibrating: sess.recalibrating,
	}
}

func (s *calibrationService) sweep() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

func (s *calibrationService) evictIdle() int {
	now := s.now()
	evicted := 0
	for _, key := range s.sessions.Keys() {
		sess, ok := s.sessions.Peek(key)
		if !ok {
			continue
		}
		if sess.idleSince(now) > s.cfg.SessionTTL {
			s.sessions.Remove(key)
			evicted++
		}
	}
	if evicted > 0 {
		s.log.Debug("evicted idle calibration sessions", "count", evicted)
	}
	s.metrics.SetSessions(s.sessions.Len())
	return evicted
}

func isWizardGuard(err error) bool {
	return errors.Is(err, calibration.ErrNotAtTerminal) ||
		errors.Is(err, calibration.ErrBusy) ||
		errors.Is(err, calibration.ErrAlreadyConfirmed) ||
		errors.Is(err, calibration.ErrIncomplete)
}
