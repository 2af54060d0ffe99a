package calibration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseAwaitingResponse Phase = "awaiting_response"
)

// CommitFunc persists a committed snapshot. A nil error is what allows the
// completion gate to flip.
type CommitFunc func(ctx context.Context, snap Snapshot) error

// Pacer runs while the wizard is awaiting a response (the typing indicator window).
type Pacer func(ctx context.Context)

type WizardOption func(*Wizard)

func WithPacer(p Pacer) WizardOption {
	return func(w *Wizard) { w.pace = p }
}

func WithClock(now func() time.Time) WizardOption {
	return func(w *Wizard) {
		if now != nil {
			w.now = now
		}
	}
}

// WithPrefill seeds the store for a recalibration run.
func WithPrefill(snap Snapshot) WizardOption {
	return func(w *Wizard) { w.prefill = &snap }
}

// State is the projection clients render.
type State struct {
	Step         Step      `json:"step"`
	Phase        Phase     `json:"phase"`
	PendingField FieldKey  `json:"pending_field,omitempty"`
	Preferences  Snapshot  `json:"preferences"`
	Complete     bool      `json:"complete"`
	Confirmed    bool      `json:"confirmed"`
	LastSeq      int       `json:"last_seq"`
	Messages     []Message `json:"messages"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Result is what a single action produced.
type Result struct {
	Messages   []Message
	Transition Transition
	Escaped    bool
}

// Wizard runs one calibration conversation. Only one action is processed at a
// time; a second submission while one is awaiting its response gets ErrBusy.
type Wizard struct {
	mu         sync.Mutex
	phase      Phase
	step       Step
	confirmed  bool
	seq        *Sequencer
	store      *Store
	escape     EscapeHandler
	transcript *Transcript
	pace       Pacer
	now        func() time.Time
	prefill    *Snapshot
	updatedAt  time.Time
}

func NewWizard(opts ...WizardOption) *Wizard {
	w := &Wizard{
		phase: PhaseIdle,
		step:  StepEntregable,
		seq:   NewSequencer(),
		store: NewStore(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.transcript = NewTranscript(w.now)
	if w.prefill != nil {
		w.store.Prefill(*w.prefill)
	}
	w.transcript.AppendAll(w.seq.Intro())
	w.updatedAt = w.now()
	return w
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Preferences returns the live partial snapshot.
func (w *Wizard) Preferences() Snapshot { return w.store.Snapshot() }

func (w *Wizard) UpdatedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.updatedAt
}

// State projects the wizard; messages are limited to those after sinceSeq.
func (w *Wizard) State(sinceSeq int) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked(sinceSeq)
}

func (w *Wizard) stateLocked(sinceSeq int) State {
	pending, _ := w.escape.Pending()
	prefs := w.store.Snapshot()
	return State{
		Step:         w.step,
		Phase:        w.phase,
		PendingField: pending,
		Preferences:  prefs,
		Complete:     prefs.Complete(),
		Confirmed:    w.confirmed,
		LastSeq:      w.transcript.LastSeq(),
		Messages:     w.transcript.Since(sinceSeq),
		UpdatedAt:    w.updatedAt,
	}
}

// Submit processes one answer for the current step.
func (w *Wizard) Submit(ctx context.Context, ans Answer) (Result, error) {
	w.mu.Lock()
	if err := w.checkReadyLocked(); err != nil {
		w.mu.Unlock()
		return Result{}, err
	}
	if w.step.Terminal() {
		w.mu.Unlock()
		return Result{}, ErrAwaitingConfirmation
	}
	if ans.Step != nil && *ans.Step != w.step {
		w.mu.Unlock()
		return Result{}, fmt.Errorf("%w: got %s, current %s", ErrStaleAnswer, *ans.Step, w.step)
	}

	tr, escaped, err := w.escape.Intercept(w.seq, w.step, ans)
	if err == nil && !escaped {
		tr, err = w.seq.Advance(w.step, ans)
	}
	if err != nil {
		w.mu.Unlock()
		return Result{}, err
	}
	echo := w.transcript.Append(Draft{Role: RoleUser, Content: userText(ans, w.step, w.seq), Kind: KindText})
	w.phase = PhaseAwaitingResponse
	w.mu.Unlock()

	w.waitForResponse(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.phase = PhaseIdle
	if tr.Field != "" {
		if err := w.store.Set(tr.Field, tr.Value); err != nil {
			return Result{}, err
		}
	}
	for _, k := range tr.Clear {
		w.store.Delete(k)
	}
	w.step = tr.Next
	msgs := append([]Message{echo}, w.transcript.AppendAll(tr.Drafts)...)
	w.updatedAt = w.now()
	return Result{Messages: msgs, Transition: tr, Escaped: escaped && tr.Field == ""}, nil
}

// Restart discards every answer and re-enters step 1 with the original first prompt.
func (w *Wizard) Restart() (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkReadyLocked(); err != nil {
		return Result{}, err
	}
	w.store.Reset()
	w.escape.Reset()
	w.step = StepEntregable
	msgs := w.transcript.AppendAll(w.seq.RestartIntro())
	w.updatedAt = w.now()
	return Result{Messages: msgs, Transition: Transition{Next: StepEntregable}}, nil
}

// Confirm commits the answers at the terminal step and hands them to commit.
// On failure the wizard stays at the terminal step so the caller can retry.
func (w *Wizard) Confirm(ctx context.Context, commit CommitFunc) (Snapshot, error) {
	if commit == nil {
		return Snapshot{}, errors.New("calibration: nil commit func")
	}
	w.mu.Lock()
	if err := w.checkReadyLocked(); err != nil {
		w.mu.Unlock()
		return Snapshot{}, err
	}
	if !w.step.Terminal() {
		w.mu.Unlock()
		return Snapshot{}, ErrNotAtTerminal
	}
	snap := w.store.Commit()
	if err := snap.Validate(); err != nil {
		w.mu.Unlock()
		return Snapshot{}, err
	}
	w.phase = PhaseAwaitingResponse
	w.mu.Unlock()

	err := commit(ctx, snap)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.phase = PhaseIdle
	w.updatedAt = w.now()
	if err != nil {
		return Snapshot{}, err
	}
	w.confirmed = true
	return snap, nil
}

func (w *Wizard) Confirmed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.confirmed
}

func (w *Wizard) checkReadyLocked() error {
	if w.phase == PhaseAwaitingResponse {
		return ErrBusy
	}
	if w.confirmed {
		return ErrAlreadyConfirmed
	}
	return nil
}

func (w *Wizard) waitForResponse(ctx context.Context) {
	if w.pace == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	w.pace(ctx)
}

// userText is what the transcript shows for the user's turn: the chosen option's
// label, or the typed text.
func userText(ans Answer, step Step, seq *Sequencer) string {
	if ans.OptionID != "" {
		if opt, ok, _ := seq.Resolve(step, Answer{OptionID: ans.OptionID}); ok {
			return opt.Label
		}
	}
	return ans.Text
}

// FixedDelay is a Pacer that waits d or until ctx is done.
func FixedDelay(d time.Duration) Pacer {
	return func(ctx context.Context) {
		if d <= 0 {
			return
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
		}
	}
}
