package calibration

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Kind string

const (
	KindText         Kind = "text"
	KindOptions      Kind = "options"
	KindConfirmation Kind = "confirmation"
)

// Draft is a message before the transcript assigns it an id and sequence.
type Draft struct {
	Role    Role
	Content string
	Kind    Kind
	Options []Option
}

// Answer is one user submission. OptionID is preferred; Text covers typed or
// transcribed answers. Step, when set, must match the wizard's current step.
type Answer struct {
	OptionID string `json:"option_id,omitempty"`
	Text     string `json:"text,omitempty"`
	Step     *Step  `json:"step,omitempty"`
}

// Transition is the outcome of one answer. Clear lists fields the chosen branch
// makes obsolete, such as a birthDate left over from an earlier run.
type Transition struct {
	From   Step
	Next   Step
	Field  FieldKey
	Value  Value
	Clear  []FieldKey
	Drafts []Draft
}

// Sequencer maps (step, answer) to the next step over a fixed table. It holds no
// run state and every method is safe to call concurrently.
type Sequencer struct {
	table map[Step]stepSpec
}

func NewSequencer() *Sequencer {
	return &Sequencer{table: stepTable}
}

// Intro is the opening of a run: the welcome text followed by the first question.
func (s *Sequencer) Intro() []Draft {
	out := []Draft{{Role: RoleSystem, Content: welcomeMessage, Kind: KindText}}
	return append(out, s.promptDrafts(StepEntregable)...)
}

// RestartIntro is emitted on Restart before the original first question.
func (s *Sequencer) RestartIntro() []Draft {
	out := []Draft{{Role: RoleSystem, Content: restartMessage, Kind: KindText}}
	return append(out, s.Intro()...)
}

// CustomPrompt asks for a free-text answer for field.
func (s *Sequencer) CustomPrompt(field FieldKey) Draft {
	return Draft{Role: RoleSystem, Content: fmt.Sprintf(customPromptFmt, field.Label()), Kind: KindText}
}

// Resolve maps an answer to one of the step's options, by id first and then by
// exact label (with or without its letter marker).
func (s *Sequencer) Resolve(step Step, ans Answer) (Option, bool, error) {
	spec, ok := s.table[step]
	if !ok {
		return Option{}, false, fmt.Errorf("%w: %d", ErrUnknownStep, int(step))
	}
	if id := strings.TrimSpace(ans.OptionID); id != "" {
		for _, o := range spec.options {
			if strings.EqualFold(o.ID, id) {
				return o, true, nil
			}
		}
		return Option{}, false, fmt.Errorf("%w: %q at step %s", ErrUnknownOption, id, step)
	}
	text := normalize(ans.Text)
	if text == "" {
		return Option{}, false, nil
	}
	for _, o := range spec.options {
		label := normalize(o.Label)
		if text == label || text == stripMarker(label) || text == marker(label) {
			return o, true, nil
		}
	}
	return Option{}, false, nil
}

// Advance interprets ans at step and returns the transition. The custom option is
// rejected with ErrCustomSelected; the escape handler owns that path.
func (s *Sequencer) Advance(step Step, ans Answer) (Transition, error) {
	spec, ok := s.table[step]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %d", ErrUnknownStep, int(step))
	}
	if step.Terminal() {
		return Transition{}, ErrAwaitingConfirmation
	}
	opt, matched, err := s.Resolve(step, ans)
	if err != nil {
		return Transition{}, err
	}
	if matched && opt.Custom() {
		return Transition{}, ErrCustomSelected
	}

	var val Value
	switch {
	case spec.field.Boolean() && matched && opt.Payload == PayloadYes:
		val = Bool(true)
	case spec.field.Boolean() && matched && opt.Payload == PayloadNo:
		val = Bool(false)
	case matched:
		val = s.valueForText(spec.field, opt.Label)
	default:
		text := strings.TrimSpace(ans.Text)
		if text == "" {
			return Transition{}, ErrEmptyAnswer
		}
		val = s.valueForText(spec.field, text)
	}
	return s.advanceWith(spec, val), nil
}

// Fill stores text literally for step's field and advances as if an option had
// been chosen. Used to resolve a pending custom answer.
func (s *Sequencer) Fill(step Step, text string) (Transition, error) {
	spec, ok := s.table[step]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %d", ErrUnknownStep, int(step))
	}
	if step.Terminal() {
		return Transition{}, ErrAwaitingConfirmation
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Transition{}, ErrEmptyAnswer
	}
	return s.advanceWith(spec, s.valueForText(spec.field, text)), nil
}

func (s *Sequencer) valueForText(field FieldKey, text string) Value {
	if field.Boolean() {
		return Bool(LooksAffirmative(text))
	}
	return Text(text)
}

func (s *Sequencer) advanceWith(spec stepSpec, val Value) Transition {
	next := spec.next(val)
	tr := Transition{
		From:   spec.step,
		Next:   next,
		Field:  spec.field,
		Value:  val,
		Drafts: s.promptDrafts(next),
	}
	if spec.field == FieldNumerology {
		if yes, _ := val.BoolValue(); !yes {
			tr.Clear = []FieldKey{FieldBirthDate}
		}
	}
	return tr
}

func (s *Sequencer) promptDrafts(step Step) []Draft {
	spec, ok := s.table[step]
	if !ok {
		return nil
	}
	kind := KindText
	switch {
	case step.Terminal():
		kind = KindConfirmation
	case len(spec.options) > 0:
		kind = KindOptions
	}
	return []Draft{{
		Role:    RoleSystem,
		Content: spec.prompt,
		Kind:    kind,
		Options: cloneOptions(spec.options),
	}}
}

// LooksAffirmative is the free-text fallback for the numerology question: a "sí"/"si"
// substring or a leading "A)" marker counts as yes. Structured options bypass it.
func LooksAffirmative(text string) bool {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "a)") {
		return true
	}
	return strings.Contains(s, "sí") || strings.Contains(s, "si")
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// stripMarker turns "a) resumen ejecutivo" into "resumen ejecutivo".
func stripMarker(label string) string {
	if m := marker(label); m != "" {
		return strings.TrimSpace(strings.TrimPrefix(label, m))
	}
	return label
}

// marker returns the leading "x)" of a label, or "".
func marker(label string) string {
	if len(label) >= 2 && label[1] == ')' {
		return label[:2]
	}
	return ""
}
