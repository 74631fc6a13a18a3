// Package ordered provides a string-keyed map that remembers insertion order, including
// across a JSON round trip.
package ordered

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Pair struct {
	Key   string
	Value any
}

// Map is an insertion-ordered mapping. The zero value is empty and ready to use.
type Map struct {
	om *orderedmap.OrderedMap[string, any]
}

func New(pairs ...Pair) *Map {
	m := &Map{}
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Set stores v under key. An existing key keeps its position.
func (m *Map) Set(key string, v any) {
	if m.om == nil {
		m.om = orderedmap.New[string, any]()
	}
	m.om.Set(key, v)
}

func (m *Map) Get(key string) (any, bool) {
	if m == nil || m.om == nil {
		return nil, false
	}
	return m.om.Get(key)
}

func (m *Map) Delete(key string) {
	if m == nil || m.om == nil {
		return
	}
	m.om.Delete(key)
}

func (m *Map) Len() int {
	if m == nil || m.om == nil {
		return 0
	}
	return m.om.Len()
}

func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, m.Len())
	for _, p := range m.Pairs() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Pairs returns a copy of the entries in order.
func (m *Map) Pairs() []Pair {
	if m == nil || m.om == nil {
		return nil
	}
	out := make([]Pair, 0, m.om.Len())
	for p := m.om.Oldest(); p != nil; p = p.Next() {
		out = append(out, Pair{Key: p.Key, Value: p.Value})
	}
	return out
}

func (m Map) MarshalJSON() ([]byte, error) {
	if m.om == nil {
		return []byte("{}"), nil
	}
	return m.om.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object keeping key order. Numbers decode as json.Number so
// their original text survives. A repeated key keeps its first position and last value.
func (m *Map) UnmarshalJSON(b []byte) error {
	*m = Map{}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	raw := orderedmap.New[string, json.RawMessage]()
	if err := raw.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("ordered: expected JSON object: %w", err)
	}
	for p := raw.Oldest(); p != nil; p = p.Next() {
		dec := json.NewDecoder(bytes.NewReader(p.Value))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("ordered: decode %q: %w", p.Key, err)
		}
		m.Set(p.Key, v)
	}
	return nil
}

// String renders a dynamically-typed scalar the way it reads in a message body.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case fmt.Stringer:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
