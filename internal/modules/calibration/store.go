package calibration

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Snapshot is an immutable view of StrategyPreferences. It never shares state with
// the Store that produced it, so it can be published to other readers as-is.
type Snapshot struct {
	values map[FieldKey]Value
}

// NewSnapshot validates raw key/value pairs (string or bool values) into a Snapshot.
func NewSnapshot(raw map[string]any) (Snapshot, error) {
	values := make(map[FieldKey]Value, len(raw))
	for k, v := range raw {
		key := FieldKey(k)
		if !key.Valid() {
			return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownField, k)
		}
		if v == nil {
			continue
		}
		val, err := valueFromAny(key, v)
		if err != nil {
			return Snapshot{}, err
		}
		values[key] = val
	}
	return Snapshot{values: values}, nil
}

func (s Snapshot) Get(key FieldKey) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s Snapshot) Has(key FieldKey) bool {
	_, ok := s.values[key]
	return ok
}

func (s Snapshot) Len() int { return len(s.values) }

// Keys returns the populated keys in question order.
func (s Snapshot) Keys() []FieldKey {
	out := make([]FieldKey, 0, len(s.values))
	for _, k := range AllFields {
		if _, ok := s.values[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Missing lists the keys still required before the snapshot counts as complete.
func (s Snapshot) Missing() []FieldKey {
	var out []FieldKey
	for _, k := range requiredFields {
		if !s.Has(k) {
			out = append(out, k)
		}
	}
	if v, ok := s.values[FieldNumerology]; ok {
		if yes, _ := v.BoolValue(); yes && !s.Has(FieldBirthDate) {
			out = append(out, FieldBirthDate)
		}
	}
	return out
}

func (s Snapshot) Complete() bool { return len(s.Missing()) == 0 }

// Validate reports missing keys and a birthDate left behind on the numerology-no branch.
func (s Snapshot) Validate() error {
	if missing := s.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrIncomplete, missing)
	}
	if v, ok := s.values[FieldNumerology]; ok {
		if yes, _ := v.BoolValue(); !yes && s.Has(FieldBirthDate) {
			return fmt.Errorf("%w: %s set while %s is false", ErrInvalidValue, FieldBirthDate, FieldNumerology)
		}
	}
	return nil
}

// Map returns a fresh JSON-friendly map.
func (s Snapshot) Map() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[string(k)] = v.Interface()
	}
	return out
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewSnapshot(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Store accumulates answers for one wizard run.
type Store struct {
	mu     sync.RWMutex
	values map[FieldKey]Value
}

func NewStore() *Store {
	return &Store{values: make(map[FieldKey]Value, len(AllFields))}
}

// Set overwrites any prior value for key. Free text is accepted for every
// text field; the offered options are suggestions only.
func (s *Store) Set(key FieldKey, v Value) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	if v.IsZero() {
		return fmt.Errorf("%w: %s", ErrInvalidValue, key)
	}
	if key.Boolean() != v.IsBool() {
		return fmt.Errorf("%w: %s", ErrInvalidValue, key)
	}
	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()
	return nil
}

func (s *Store) Get(key FieldKey) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Store) Delete(key FieldKey) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

func (s *Store) Reset() {
	s.mu.Lock()
	s.values = make(map[FieldKey]Value, len(AllFields))
	s.mu.Unlock()
}

// Prefill seeds the store from a previously committed snapshot.
func (s *Store) Prefill(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range snap.values {
		s.values[k] = v
	}
}

// Snapshot returns the current partial answers.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[FieldKey]Value, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return Snapshot{values: out}
}

// Commit freezes the current answers. Only the wizard's confirmation path calls it.
func (s *Store) Commit() Snapshot {
	return s.Snapshot()
}
