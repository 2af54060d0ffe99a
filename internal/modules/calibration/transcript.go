package calibration

import (
	"time"

	"github.com/google/uuid"
)

// Message is an entry in the conversation transcript. Messages are never mutated
// after they are appended.
type Message struct {
	ID        string    `json:"id"`
	Seq       int       `json:"seq"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Kind      Kind      `json:"kind"`
	Options   []Option  `json:"options,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Transcript is the append-only conversation log, rendered in seq order.
type Transcript struct {
	msgs []Message
	seq  int
	now  func() time.Time
}

func NewTranscript(now func() time.Time) *Transcript {
	if now == nil {
		now = time.Now
	}
	return &Transcript{now: now}
}

func (t *Transcript) Append(d Draft) Message {
	t.seq++
	kind := d.Kind
	if kind == "" {
		kind = KindText
	}
	m := Message{
		ID:        uuid.NewString(),
		Seq:       t.seq,
		Role:      d.Role,
		Content:   d.Content,
		Kind:      kind,
		Options:   cloneOptions(d.Options),
		CreatedAt: t.now().UTC(),
	}
	t.msgs = append(t.msgs, m)
	return cloneMessage(m)
}

func (t *Transcript) AppendAll(drafts []Draft) []Message {
	out := make([]Message, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, t.Append(d))
	}
	return out
}

func (t *Transcript) Len() int { return len(t.msgs) }

// LastSeq is the seq of the newest message, 0 when empty.
func (t *Transcript) LastSeq() int { return t.seq }

func (t *Transcript) Messages() []Message { return t.Since(0) }

// Since returns copies of messages with Seq > seq.
func (t *Transcript) Since(seq int) []Message {
	out := make([]Message, 0, len(t.msgs))
	for _, m := range t.msgs {
		if m.Seq > seq {
			out = append(out, cloneMessage(m))
		}
	}
	return out
}

func cloneMessage(m Message) Message {
	m.Options = cloneOptions(m.Options)
	return m
}
