// Package gate decides whether protected education content is visible. The decision
// is always derived from a fresh read of the persisted onboarding flag; nothing is
// cached between reads, and any read failure denies access.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type State string

const (
	StateLoading  State = "loading"
	StateBlocked  State = "blocked"
	StateUnlocked State = "unlocked"
)

var (
	ErrNotConfirmed = errors.New("gate: onboarding not confirmed by backend")
	ErrNotUnlocked  = errors.New("gate: recalibration requires unlocked content")
)

// Status mirrors the backend's onboarding-status payload.
type Status struct {
	OnboardingCompleted bool       `json:"onboarding_completed"`
	CompletedAt         *time.Time `json:"completed_at"`
}

type StatusReader interface {
	OnboardingStatus(ctx context.Context) (Status, error)
}

// StatusReaderFunc adapts a function to StatusReader.
type StatusReaderFunc func(ctx context.Context) (Status, error)

func (f StatusReaderFunc) OnboardingStatus(ctx context.Context) (Status, error) { return f(ctx) }

// Decision is what the guarded surface should render.
type Decision struct {
	State             State      `json:"state"`
	WizardOpen        bool       `json:"wizard_open"`
	WizardDismissible bool       `json:"wizard_dismissible"`
	ContentVisible    bool       `json:"content_visible"`
	Recalibrating     bool       `json:"recalibrating"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	Error             string     `json:"error,omitempty"`
}

type Gate struct {
	reader StatusReader

	mu            sync.Mutex
	state         State
	gen           uint64
	recalibrating bool
	completedAt   *time.Time
	lastErr       error
}

func New(reader StatusReader) *Gate {
	return &Gate{reader: reader, state: StateLoading}
}

// Refresh re-reads the backend flag. Only the most recently started read may
// change the state; results of older in-flight reads are dropped.
func (g *Gate) Refresh(ctx context.Context) State {
	g.mu.Lock()
	g.gen++
	gen := g.gen
	if !g.recalibrating {
		g.state = StateLoading
	}
	g.mu.Unlock()

	st, err := g.read(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen {
		return g.state
	}
	g.apply(st, err)
	return g.state
}

// VerifyAfterConfirm re-checks the backend after the wizard reports success. The
// local confirmation is not trusted: the gate unlocks only if the fresh flag is true.
func (g *Gate) VerifyAfterConfirm(ctx context.Context) (State, error) {
	state := g.Refresh(ctx)
	if state == StateUnlocked {
		return state, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastErr != nil {
		return g.state, fmt.Errorf("%w: %v", ErrNotConfirmed, g.lastErr)
	}
	return g.state, ErrNotConfirmed
}

// BeginRecalibration opens the wizard as an overlay on already unlocked content.
func (g *Gate) BeginRecalibration() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateUnlocked {
		return ErrNotUnlocked
	}
	g.recalibrating = true
	return nil
}

func (g *Gate) EndRecalibration() {
	g.mu.Lock()
	g.recalibrating = false
	g.mu.Unlock()
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Err is the error from the latest read, if it failed.
func (g *Gate) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

func (g *Gate) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	d := Decision{State: g.state, Recalibrating: g.recalibrating, CompletedAt: g.completedAt}
	switch g.state {
	case StateUnlocked:
		d.ContentVisible = true
		d.WizardOpen = g.recalibrating
		d.WizardDismissible = true
	case StateBlocked:
		d.WizardOpen = true
	}
	if g.lastErr != nil {
		d.Error = "No pudimos verificar tu calibración. Intenta de nuevo."
	}
	return d
}

func (g *Gate) read(ctx context.Context) (st Status, err error) {
	if g.reader == nil {
		return Status{}, errors.New("gate: no status reader")
	}
	defer func() {
		if r := recover(); r != nil {
			st, err = Status{}, fmt.Errorf("gate: status read panicked: %v", r)
		}
	}()
	return g.reader.OnboardingStatus(ctx)
}

func (g *Gate) apply(st Status, err error) {
	g.lastErr = err
	if err != nil {
		// Recalibration overlays content that was already unlocked.
		if g.recalibrating {
			return
		}
		g.state = StateBlocked
		g.completedAt = nil
		return
	}
	if st.OnboardingCompleted {
		g.state = StateUnlocked
		g.completedAt = st.CompletedAt
		return
	}
	if g.recalibrating {
		return
	}
	g.state = StateBlocked
	g.completedAt = nil
}
