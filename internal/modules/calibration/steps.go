package calibration

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Step identifies a position in the question progression 1,2,3,4,5,5.5,6,7,8.
type Step int

const (
	StepUnknown Step = iota
	StepEntregable
	StepLearningStyle
	StepDepth
	StepContext
	StepStrength
	StepFriction
	StepNumerology
	StepBirthDate
	StepDone
)

var stepLabels = map[Step]string{
	StepEntregable:    "1",
	StepLearningStyle: "2",
	StepDepth:         "3",
	StepContext:       "4",
	StepStrength:      "5",
	StepFriction:      "5.5",
	StepNumerology:    "6",
	StepBirthDate:     "7",
	StepDone:          "8",
}

func (s Step) String() string {
	if l, ok := stepLabels[s]; ok {
		return l
	}
	return "unknown"
}

func (s Step) Terminal() bool { return s == StepDone }

func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		var n json.Number
		if err2 := json.Unmarshal(data, &n); err2 != nil {
			return err
		}
		raw = n.String()
	}
	parsed, err := ParseStep(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStep accepts the public labels ("1".."8", "5.5").
func ParseStep(label string) (Step, error) {
	label = strings.TrimSpace(label)
	for s, l := range stepLabels {
		if l == label {
			return s, nil
		}
	}
	return StepUnknown, fmt.Errorf("%w: %q", ErrUnknownStep, label)
}

// Payload is the structured meaning attached to an option, so branching is a
// lookup instead of string matching.
type Payload uint8

const (
	PayloadNone Payload = iota
	PayloadCustom
	PayloadYes
	PayloadNo
)

var payloadNames = map[Payload]string{
	PayloadCustom: "custom",
	PayloadYes:    "yes",
	PayloadNo:     "no",
}

func (p Payload) String() string { return payloadNames[p] }

func parsePayload(name string) (Payload, error) {
	if name == "" {
		return PayloadNone, nil
	}
	for p, n := range payloadNames {
		if n == name {
			return p, nil
		}
	}
	return PayloadNone, fmt.Errorf("%w: payload %q", ErrUnknownOption, name)
}

type Option struct {
	ID      string
	Label   string
	Payload Payload
}

func (o Option) Custom() bool { return o.Payload == PayloadCustom }

func (o Option) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      string `json:"id"`
		Label   string `json:"label"`
		Custom  bool   `json:"custom,omitempty"`
		Payload string `json:"payload,omitempty"`
	}{ID: o.ID, Label: o.Label, Custom: o.Custom(), Payload: o.Payload.String()})
}

func (o *Option) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string `json:"id"`
		Label   string `json:"label"`
		Custom  bool   `json:"custom"`
		Payload string `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p, err := parsePayload(raw.Payload)
	if err != nil {
		return err
	}
	if p == PayloadNone && raw.Custom {
		p = PayloadCustom
	}
	o.ID, o.Label, o.Payload = raw.ID, raw.Label, p
	return nil
}

type stepSpec struct {
	step    Step
	field   FieldKey
	prompt  string
	options []Option
	next    func(Value) Step
}

func always(s Step) func(Value) Step {
	return func(Value) Step { return s }
}

func choices(labels ...string) []Option {
	out := make([]Option, 0, len(labels)+1)
	for i, l := range labels {
		id := string(rune('a' + i))
		out = append(out, Option{ID: id, Label: fmt.Sprintf("%s) %s", strings.ToUpper(id), l)})
	}
	id := string(rune('a' + len(labels)))
	out = append(out, Option{ID: id, Label: fmt.Sprintf("%s) Otro", strings.ToUpper(id)), Payload: PayloadCustom})
	return out
}

const (
	welcomeMessage = "Hola, soy tu estratega de NSG Intelligence. Antes de abrir la biblioteca vamos a calibrar " +
		"cómo quieres aprender. Son cinco preguntas rápidas; puedes elegir una opción o escribir tu propia respuesta."
	restartMessage  = "Empecemos de nuevo. Tus respuestas anteriores se descartaron."
	customPromptFmt = "Perfecto, cuéntame con tus palabras %s."
	doneMessage     = "¡Calibración completa! Revisa tu perfil estratégico y confirma para desbloquear la biblioteca, " +
		"o reinicia si quieres cambiar algo."
)

var stepTable = map[Step]stepSpec{
	StepEntregable: {
		step:   StepEntregable,
		field:  FieldEntregable,
		prompt: "1/5 — ¿Qué tipo de entregable te resulta más útil al terminar cada módulo?",
		options: choices(
			"Resumen ejecutivo",
			"Plan de acción paso a paso",
			"Checklist práctico",
			"Mapa mental",
		),
		next: always(StepLearningStyle),
	},
	StepLearningStyle: {
		step:   StepLearningStyle,
		field:  FieldLearningStyle,
		prompt: "2/5 — ¿Cómo aprendes mejor?",
		options: choices(
			"Visual: diagramas y videos",
			"Auditivo: audios y conversaciones",
			"Lectura y escritura",
			"Práctico: ejercicios y casos reales",
		),
		next: always(StepDepth),
	},
	StepDepth: {
		step:   StepDepth,
		field:  FieldDepth,
		prompt: "3/5 — ¿Qué nivel de profundidad prefieres?",
		options: choices(
			"Esencial: solo lo clave",
			"Intermedio: con ejemplos",
			"Avanzado: con fundamentos",
			"Experto: con referencias y matices",
		),
		next: always(StepContext),
	},
	StepContext: {
		step:   StepContext,
		field:  FieldContext,
		prompt: "4/5 — ¿En qué contexto vas a aplicar lo que aprendas?",
		options: choices(
			"Mi negocio propio",
			"Mi trabajo dentro de una empresa",
			"Mi desarrollo personal",
			"Mi equipo o mis clientes",
		),
		next: always(StepStrength),
	},
	StepStrength: {
		step:   StepStrength,
		field:  FieldStrength,
		prompt: "5/5 — Hablemos de ti. ¿Cuál consideras tu mayor fortaleza?",
		options: choices(
			"Estrategia y visión",
			"Ejecución y disciplina",
			"Comunicación y ventas",
			"Creatividad e innovación",
		),
		next: always(StepFriction),
	},
	StepFriction: {
		step:   StepFriction,
		field:  FieldFriction,
		prompt: "¿Y cuál es tu principal punto de fricción hoy?",
		options: choices(
			"Falta de tiempo",
			"Falta de claridad",
			"Procrastinación",
			"Exceso de información",
		),
		next: always(StepNumerology),
	},
	StepNumerology: {
		step:   StepNumerology,
		field:  FieldNumerology,
		prompt: "Última pregunta: ¿quieres que incluyamos una lectura de numerología en tu calibración?",
		options: []Option{
			{ID: "a", Label: "A) Sí, inclúyela", Payload: PayloadYes},
			{ID: "b", Label: "B) No, gracias", Payload: PayloadNo},
		},
		next: func(v Value) Step {
			if yes, _ := v.BoolValue(); yes {
				return StepBirthDate
			}
			return StepDone
		},
	},
	StepBirthDate: {
		step:   StepBirthDate,
		field:  FieldBirthDate,
		prompt: "Perfecto. Escribe tu fecha de nacimiento (DD/MM/AAAA).",
		next:   always(StepDone),
	},
	StepDone: {
		step:   StepDone,
		prompt: doneMessage,
		options: []Option{
			{ID: "confirm", Label: "Confirmar"},
			{ID: "restart", Label: "Reiniciar"},
		},
	},
}

// Steps returns every step in progression order.
func Steps() []Step {
	return []Step{
		StepEntregable,
		StepLearningStyle,
		StepDepth,
		StepContext,
		StepStrength,
		StepFriction,
		StepNumerology,
		StepBirthDate,
		StepDone,
	}
}

// FieldFor returns the field a step populates; the terminal step populates none.
func FieldFor(step Step) (FieldKey, bool) {
	spec, ok := stepTable[step]
	if !ok || spec.field == "" {
		return "", false
	}
	return spec.field, true
}

// OptionsFor returns a copy of the options offered at step.
func OptionsFor(step Step) []Option {
	spec, ok := stepTable[step]
	if !ok {
		return nil
	}
	return cloneOptions(spec.options)
}

func cloneOptions(in []Option) []Option {
	if len(in) == 0 {
		return nil
	}
	out := make([]Option, len(in))
	copy(out, in)
	return out
}
