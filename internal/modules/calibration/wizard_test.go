package calibration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submit(t *testing.T, w *Wizard, ans Answer) Result {
	t.Helper()
	res, err := w.Submit(context.Background(), ans)
	require.NoError(t, err)
	return res
}

func walkToNumerology(t *testing.T, w *Wizard) {
	t.Helper()
	for i := 0; i < 6; i++ {
		submit(t, w, Answer{OptionID: "a"})
	}
	require.Equal(t, StepNumerology, w.Step())
}

func TestWizardStartsWithIntro(t *testing.T) {
	w := NewWizard()
	st := w.State(0)
	assert.Equal(t, StepEntregable, st.Step)
	assert.Equal(t, PhaseIdle, st.Phase)
	require.Len(t, st.Messages, 2)
	assert.Equal(t, KindText, st.Messages[0].Kind)
	assert.Equal(t, KindOptions, st.Messages[1].Kind)
	assert.Contains(t, st.Messages[1].Content, "1/5")
	assert.Equal(t, 0, st.Preferences.Len())
}

func TestWizardNoNumerologyScenario(t *testing.T) {
	w := NewWizard()
	walkToNumerology(t, w)

	res := submit(t, w, Answer{Text: "No"})
	assert.Equal(t, StepDone, res.Transition.Next)
	last := res.Messages[len(res.Messages)-1]
	assert.Equal(t, KindConfirmation, last.Kind)

	var committed Snapshot
	snap, err := w.Confirm(context.Background(), func(_ context.Context, s Snapshot) error {
		committed = s
		return nil
	})
	require.NoError(t, err)
	assert.True(t, w.Confirmed())
	assert.Equal(t, snap.Map(), committed.Map())

	assert.False(t, snap.Has(FieldBirthDate))
	assert.Equal(t, 7, snap.Len(), "six substantive answers plus numerology=false")
	v, _ := snap.Get(FieldNumerology)
	yes, isBool := v.BoolValue()
	assert.True(t, isBool)
	assert.False(t, yes)
	assert.True(t, snap.Complete())
}

func TestWizardNumerologyYesCollectsBirthDate(t *testing.T) {
	w := NewWizard()
	walkToNumerology(t, w)

	submit(t, w, Answer{OptionID: "a"})
	require.Equal(t, StepBirthDate, w.Step())
	submit(t, w, Answer{Text: "14/02/1990"})
	require.Equal(t, StepDone, w.Step())

	snap := w.Preferences()
	assert.Equal(t, 8, snap.Len())
	v, _ := snap.Get(FieldBirthDate)
	assert.Equal(t, "14/02/1990", v.String())
}

func TestWizardCustomAnswerScenario(t *testing.T) {
	w := NewWizard()

	res := submit(t, w, Answer{OptionID: "e"})
	assert.True(t, res.Escaped)
	assert.Equal(t, StepEntregable, w.Step())
	st := w.State(0)
	assert.Equal(t, FieldEntregable, st.PendingField)
	require.Len(t, res.Messages, 2)
	assert.Equal(t, RoleUser, res.Messages[0].Role)
	assert.Equal(t, "E) Otro", res.Messages[0].Content)

	submit(t, w, Answer{Text: "Resumane visual con gráficos"})
	assert.Equal(t, StepLearningStyle, w.Step())
	v, ok := w.Preferences().Get(FieldEntregable)
	require.True(t, ok)
	assert.Equal(t, "Resumane visual con gráficos", v.String())
	assert.Empty(t, w.State(0).PendingField)
}

func TestWizardRestartResets(t *testing.T) {
	w := NewWizard()
	submit(t, w, Answer{OptionID: "b"})
	submit(t, w, Answer{OptionID: "e"})
	before := w.State(0)

	res, err := w.Restart()
	require.NoError(t, err)
	assert.Equal(t, StepEntregable, w.Step())
	assert.Equal(t, 0, w.Preferences().Len())
	assert.Empty(t, w.State(0).PendingField)

	intro := NewSequencer().Intro()
	require.Len(t, res.Messages, len(intro)+1)
	assert.Equal(t, intro[len(intro)-1].Content, res.Messages[len(res.Messages)-1].Content)

	after := w.State(0)
	assert.Greater(t, len(after.Messages), len(before.Messages), "transcript is append-only")
	for i := 1; i < len(after.Messages); i++ {
		assert.Equal(t, after.Messages[i-1].Seq+1, after.Messages[i].Seq)
	}
}

func TestWizardConfirmFailureAllowsRetry(t *testing.T) {
	w := NewWizard()
	walkToNumerology(t, w)
	submit(t, w, Answer{OptionID: "b"})

	boom := errors.New("backend down")
	_, err := w.Confirm(context.Background(), func(context.Context, Snapshot) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StepDone, w.Step())
	assert.False(t, w.Confirmed())

	calls := 0
	_, err = w.Confirm(context.Background(), func(context.Context, Snapshot) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = w.Submit(context.Background(), Answer{Text: "x"})
	require.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestWizardGuards(t *testing.T) {
	w := NewWizard()

	_, err := w.Confirm(context.Background(), func(context.Context, Snapshot) error { return nil })
	require.ErrorIs(t, err, ErrNotAtTerminal)

	stale := StepDepth
	_, err = w.Submit(context.Background(), Answer{OptionID: "a", Step: &stale})
	require.ErrorIs(t, err, ErrStaleAnswer)

	walkToNumerology(t, w)
	submit(t, w, Answer{OptionID: "b"})
	_, err = w.Submit(context.Background(), Answer{Text: "más"})
	require.ErrorIs(t, err, ErrAwaitingConfirmation)
}

func TestWizardRejectsSubmitWhileAwaitingResponse(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	w := NewWizard(WithPacer(func(ctx context.Context) {
		once.Do(func() { close(entered) })
		<-release
	}))

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background(), Answer{OptionID: "a"})
		done <- err
	}()
	<-entered

	assert.Equal(t, PhaseAwaitingResponse, w.State(0).Phase)
	_, err := w.Submit(context.Background(), Answer{OptionID: "b"})
	require.ErrorIs(t, err, ErrBusy)
	_, err = w.Restart()
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StepLearningStyle, w.Step())
	v, _ := w.Preferences().Get(FieldEntregable)
	assert.Equal(t, "A) Resumen ejecutivo", v.String())
}

func TestWizardPrefill(t *testing.T) {
	prev, err := NewSnapshot(map[string]any{"entregable": "Mapa", "numerology": false})
	require.NoError(t, err)
	w := NewWizard(WithPrefill(prev))
	assert.Equal(t, StepEntregable, w.Step())
	assert.Equal(t, 2, w.Preferences().Len())

	submit(t, w, Answer{OptionID: "c"})
	v, _ := w.Preferences().Get(FieldEntregable)
	assert.Equal(t, "C) Checklist práctico", v.String())
}

func TestWizardPrefillNoBranchClearsBirthDate(t *testing.T) {
	prev, err := NewSnapshot(map[string]any{
		"entregable":    "Mapa",
		"learningStyle": "Videos",
		"depth":         "Experto",
		"context":       "Mi equipo",
		"strength":      "Visión",
		"friction":      "Tiempo",
		"numerology":    true,
		"birthDate":     "01/01/1990",
	})
	require.NoError(t, err)
	w := NewWizard(WithPrefill(prev))
	walkToNumerology(t, w)

	res := submit(t, w, Answer{Text: "No"})
	assert.Equal(t, []FieldKey{FieldBirthDate}, res.Transition.Clear)
	require.Equal(t, StepDone, w.Step())

	snap, err := w.Confirm(context.Background(), func(context.Context, Snapshot) error { return nil })
	require.NoError(t, err)
	assert.False(t, snap.Has(FieldBirthDate))
	assert.Equal(t, 7, snap.Len())
}

func TestWizardStateSince(t *testing.T) {
	w := NewWizard()
	first := w.State(0)
	submit(t, w, Answer{OptionID: "a"})
	delta := w.State(first.LastSeq)
	require.Len(t, delta.Messages, 2)
	assert.Equal(t, first.LastSeq+1, delta.Messages[0].Seq)
}
