package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Breakdown is an insertion-ordered mapping of signal name to signed integer
// contribution, used as the risk_breakdown_json column on AISGapEvent. Keys prefixed
// with "_" are bookkeeping values (subtotals, multipliers, fallback notes) and are
// skipped by the confidence classifier's category aggregation.
type Breakdown struct {
	keys   []string
	values map[string]int
	// notes holds non-numeric bookkeeping entries (e.g. _voyage_window_fallback) kept
	// alongside the numeric breakdown for analyst-facing export.
	notes map[string]string
}

// NewBreakdown returns an empty, insertion-ordered breakdown.
func NewBreakdown() *Breakdown {
	return &Breakdown{values: make(map[string]int), notes: make(map[string]string)}
}

// Add appends a signal contribution. Adding the same key twice overwrites the value but
// keeps its original position, matching an ordered-dict update.
func (b *Breakdown) Add(key string, points int) {
	if _, exists := b.values[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.values[key] = points
}

// SetNote records a non-numeric bookkeeping string (e.g. a fallback marker).
func (b *Breakdown) SetNote(key, value string) {
	if _, exists := b.notes[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.notes[key] = value
}

// Get returns a signal's point value and whether it is present.
func (b *Breakdown) Get(key string) (int, bool) {
	v, ok := b.values[key]
	return v, ok
}

// GetNote returns a non-numeric bookkeeping value and whether it is present.
func (b *Breakdown) GetNote(key string) (string, bool) {
	v, ok := b.notes[key]
	return v, ok
}

// Keys returns breakdown keys in insertion order.
func (b *Breakdown) Keys() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Sum totals every positive and negative numeric contribution (bookkeeping and note
// keys are never numeric contributions and are excluded automatically since they only
// exist in b.notes or as keys prefixed "_").
func (b *Breakdown) Sum() int {
	total := 0
	for _, k := range b.keys {
		if v, ok := b.values[k]; ok && !IsBookkeeping(k) {
			total += v
		}
	}
	return total
}

// IsBookkeeping reports whether a key is a "_"-prefixed internal value rather than an
// evidence signal.
func IsBookkeeping(key string) bool {
	return len(key) > 0 && key[0] == '_'
}

// MarshalJSON renders the breakdown as an ordered JSON object (Go maps do not preserve
// key order, so this walks the recorded key slice directly).
func (b *Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range b.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		if v, ok := b.values[k]; ok {
			vb, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
			continue
		}
		if v, ok := b.notes[k]; ok {
			vb, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
			continue
		}
		return nil, fmt.Errorf("breakdown: key %q has no value", k)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a breakdown from its JSON form, preserving the order fields
// appear in the source document.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("breakdown: expected object")
	}
	b.keys = nil
	b.values = make(map[string]int)
	b.notes = make(map[string]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var n int
		if err := json.Unmarshal(raw, &n); err == nil {
			b.Add(key, n)
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			b.SetNote(key, s)
			continue
		}
		return fmt.Errorf("breakdown: key %q has unsupported value type", key)
	}
	return nil
}
