package calibration

import (
	"fmt"
	"strconv"
)

type FieldKey string

const (
	FieldEntregable    FieldKey = "entregable"
	FieldLearningStyle FieldKey = "learningStyle"
	FieldDepth         FieldKey = "depth"
	FieldContext       FieldKey = "context"
	FieldStrength      FieldKey = "strength"
	FieldFriction      FieldKey = "friction"
	FieldNumerology    FieldKey = "numerology"
	FieldBirthDate     FieldKey = "birthDate"
)

// AllFields lists every recognized key in question order.
var AllFields = []FieldKey{
	FieldEntregable,
	FieldLearningStyle,
	FieldDepth,
	FieldContext,
	FieldStrength,
	FieldFriction,
	FieldNumerology,
	FieldBirthDate,
}

// requiredFields must be set for every completed run; birthDate is only
// required when numerology is true. numerology itself is always stored, as an
// explicit false on the "No" branch, so that run commits seven keys: the six
// substantive answers plus numerology, and never a birthDate.
var requiredFields = []FieldKey{
	FieldEntregable,
	FieldLearningStyle,
	FieldDepth,
	FieldContext,
	FieldStrength,
	FieldFriction,
	FieldNumerology,
}

var fieldLabels = map[FieldKey]string{
	FieldEntregable:    "el entregable",
	FieldLearningStyle: "tu estilo de aprendizaje",
	FieldDepth:         "la profundidad",
	FieldContext:       "el contexto",
	FieldStrength:      "tu fortaleza",
	FieldFriction:      "tu punto de fricción",
	FieldNumerology:    "la numerología",
	FieldBirthDate:     "tu fecha de nacimiento",
}

func (k FieldKey) Valid() bool {
	_, ok := fieldLabels[k]
	return ok
}

// Label is the human phrase used when asking for a custom answer.
func (k FieldKey) Label() string {
	if l, ok := fieldLabels[k]; ok {
		return l
	}
	return string(k)
}

// Boolean reports whether the field stores a boolean instead of text.
func (k FieldKey) Boolean() bool { return k == FieldNumerology }

type valueKind uint8

const (
	kindText valueKind = iota + 1
	kindBool
)

// Value is a preference answer: free text or, for numerology, a boolean.
// The zero Value is unset.
type Value struct {
	kind valueKind
	text string
	flag bool
}

func Text(s string) Value { return Value{kind: kindText, text: s} }

func Bool(b bool) Value { return Value{kind: kindBool, flag: b} }

func (v Value) IsZero() bool { return v.kind == 0 }

func (v Value) IsBool() bool { return v.kind == kindBool }

// BoolValue returns the flag and whether v holds a boolean.
func (v Value) BoolValue() (bool, bool) { return v.flag, v.kind == kindBool }

func (v Value) String() string {
	if v.kind == kindBool {
		return strconv.FormatBool(v.flag)
	}
	return v.text
}

// Interface returns the JSON-friendly form: string or bool.
func (v Value) Interface() any {
	switch v.kind {
	case kindBool:
		return v.flag
	case kindText:
		return v.text
	default:
		return nil
	}
}

func valueFromAny(key FieldKey, raw any) (Value, error) {
	switch t := raw.(type) {
	case bool:
		if !key.Boolean() {
			return Value{}, fmt.Errorf("%w: %s expects text", ErrInvalidValue, key)
		}
		return Bool(t), nil
	case string:
		if key.Boolean() {
			b, err := strconv.ParseBool(t)
			if err != nil {
				return Value{}, fmt.Errorf("%w: %s expects a boolean", ErrInvalidValue, key)
			}
			return Bool(b), nil
		}
		return Text(t), nil
	default:
		return Value{}, fmt.Errorf("%w: %s has unsupported type %T", ErrInvalidValue, key, raw)
	}
}
