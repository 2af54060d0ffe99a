package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeCustomOptionAtEveryStep(t *testing.T) {
	seq := NewSequencer()
	for _, step := range Steps() {
		var custom *Option
		for _, o := range OptionsFor(step) {
			if o.Custom() {
				o := o
				custom = &o
			}
		}
		if custom == nil {
			continue
		}
		t.Run(step.String(), func(t *testing.T) {
			var h EscapeHandler
			tr, handled, err := h.Intercept(seq, step, Answer{OptionID: custom.ID})
			require.NoError(t, err)
			require.True(t, handled)
			assert.Equal(t, step, tr.Next, "custom option must not advance")
			assert.Empty(t, tr.Field)
			require.Len(t, tr.Drafts, 1)

			field, pending := h.Pending()
			require.True(t, pending)
			want, _ := FieldFor(step)
			assert.Equal(t, want, field)

			expected, err := seq.Advance(step, Answer{OptionID: "a"})
			require.NoError(t, err)

			tr, handled, err = h.Intercept(seq, step, Answer{Text: "A) algo muy mío"})
			require.NoError(t, err)
			require.True(t, handled)
			assert.Equal(t, want, tr.Field)
			assert.Equal(t, "A) algo muy mío", tr.Value.String(), "pending text is stored literally")
			assert.Equal(t, expected.Next, tr.Next)
			_, pending = h.Pending()
			assert.False(t, pending)
		})
	}
}

func TestEscapeTypedLabelArms(t *testing.T) {
	seq := NewSequencer()
	var h EscapeHandler
	_, handled, err := h.Intercept(seq, StepContext, Answer{Text: "otro"})
	require.NoError(t, err)
	assert.True(t, handled)
	field, ok := h.Pending()
	assert.True(t, ok)
	assert.Equal(t, FieldContext, field)
}

func TestEscapeIgnoresSubstringOtro(t *testing.T) {
	seq := NewSequencer()
	var h EscapeHandler
	_, handled, err := h.Intercept(seq, StepContext, Answer{Text: "prefiero otro horario"})
	require.NoError(t, err)
	assert.False(t, handled)
	_, ok := h.Pending()
	assert.False(t, ok)
}

func TestEscapePendingEmptyTextKeepsPending(t *testing.T) {
	seq := NewSequencer()
	var h EscapeHandler
	require.NoError(t, h.Arm(FieldDepth))
	_, handled, err := h.Intercept(seq, StepDepth, Answer{Text: "  "})
	require.ErrorIs(t, err, ErrEmptyAnswer)
	assert.True(t, handled)
	_, ok := h.Pending()
	assert.True(t, ok)
}

func TestEscapePendingFilledByOptionLabel(t *testing.T) {
	seq := NewSequencer()
	var h EscapeHandler
	require.NoError(t, h.Arm(FieldDepth))

	tr, handled, err := h.Intercept(seq, StepDepth, Answer{OptionID: "b"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, FieldDepth, tr.Field)
	assert.Equal(t, OptionsFor(StepDepth)[1].Label, tr.Value.String())
	assert.Equal(t, StepContext, tr.Next)
	_, ok := h.Pending()
	assert.False(t, ok)
}

func TestEscapeArmOnlyOnce(t *testing.T) {
	var h EscapeHandler
	require.NoError(t, h.Arm(FieldDepth))
	require.ErrorIs(t, h.Arm(FieldContext), ErrEscapePending)
	h.Reset()
	require.NoError(t, h.Arm(FieldContext))
}
