package calibration

import (
	"fmt"
	"strings"
)

// EscapeHandler tracks the single field waiting for a free-text answer after the
// user picked the custom option. While a field is pending, the step does not advance.
type EscapeHandler struct {
	pending FieldKey
}

func (h *EscapeHandler) Pending() (FieldKey, bool) {
	return h.pending, h.pending != ""
}

// Arm marks field as waiting for custom input.
func (h *EscapeHandler) Arm(field FieldKey) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if h.pending != "" {
		return fmt.Errorf("%w: %s", ErrEscapePending, h.pending)
	}
	h.pending = field
	return nil
}

// Intercept decides whether ans belongs to the escape path at step. It returns
// handled=false when the sequencer should process the answer normally. When
// handled, either a custom prompt was armed (tr.Next == step, no field filled)
// or the pending field was filled and tr advances exactly as an option would.
func (h *EscapeHandler) Intercept(seq *Sequencer, step Step, ans Answer) (tr Transition, handled bool, err error) {
	if field, ok := h.Pending(); ok {
		want, _ := FieldFor(step)
		if want != field {
			return Transition{}, true, fmt.Errorf("%w: pending %s at step %s", ErrUnknownStep, field, step)
		}
		text := ans.Text
		if strings.TrimSpace(text) == "" && ans.OptionID != "" {
			// a tapped option fills the pending field with its label
			if opt, ok, _ := seq.Resolve(step, Answer{OptionID: ans.OptionID}); ok {
				text = opt.Label
			}
		}
		tr, err := seq.Fill(step, text)
		if err != nil {
			return Transition{}, true, err
		}
		h.pending = ""
		return tr, true, nil
	}

	opt, matched, err := seq.Resolve(step, ans)
	if err != nil {
		return Transition{}, false, err
	}
	if !matched || !opt.Custom() {
		return Transition{}, false, nil
	}
	field, ok := FieldFor(step)
	if !ok {
		return Transition{}, true, fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}
	if err := h.Arm(field); err != nil {
		return Transition{}, true, err
	}
	return Transition{
		From:   step,
		Next:   step,
		Drafts: []Draft{seq.CustomPrompt(field)},
	}, true, nil
}

func (h *EscapeHandler) Reset() { h.pending = "" }
