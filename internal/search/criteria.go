package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"
)

// Key names a filter in a Criteria.
type Key string

const (
	KeyQuery        Key = "query"
	KeySearch       Key = "search" // agent filter bar spelling of KeyQuery
	KeyPropertyType Key = "propertyType"
	KeyStatus       Key = "status"
	KeyPriceRange   Key = "priceRange"
	KeyPriceMin     Key = "priceMin"
	KeyPriceMax     Key = "priceMax"
	KeyBedrooms     Key = "bedrooms"
	KeyBathrooms    Key = "bathrooms"
	KeyLocation     Key = "location"
	KeyDateRange    Key = "dateRange"
	KeyInquiryLevel Key = "inquiryLevel"
)

// uiAnySentinel is what select boxes send for "no constraint".
const uiAnySentinel = "all"

type valueKind uint8

const (
	kindAny valueKind = iota
	kindText
	kindRange
)

// Value is a single filter value. The zero Value is Any.
type Value struct {
	kind valueKind
	text string
	min  float64
	max  float64
	open bool
}

// Any imposes no constraint.
var Any = Value{}

// Text is a literal string value. Text("all") is the literal category "all",
// not the inactive marker.
func Text(s string) Value {
	return Value{kind: kindText, text: s}
}

// Between is an explicit inclusive price pair.
func Between(min, max float64) Value {
	return Value{kind: kindRange, min: min, max: max}
}

// AtLeast is a price pair without an upper bound.
func AtLeast(min float64) Value {
	return Value{kind: kindRange, min: min, open: true}
}

// ParseValue converts raw UI input. The sentinel "all" and the empty string
// become Any; everything else is Text.
func ParseValue(raw string) Value {
	if raw == "" || raw == uiAnySentinel {
		return Any
	}
	return Text(raw)
}

func (v Value) IsAny() bool { return v.kind == kindAny }

// TextValue returns the literal string of a Text value.
func (v Value) TextValue() (string, bool) {
	return v.text, v.kind == kindText
}

// Bounds returns the pair of a Between/AtLeast value. hasMax is false for AtLeast.
func (v Value) Bounds() (min, max float64, hasMax, ok bool) {
	if v.kind != kindRange {
		return 0, 0, false, false
	}
	return v.min, v.max, !v.open, true
}

func (v Value) String() string {
	switch v.kind {
	case kindText:
		return v.text
	case kindRange:
		if v.open {
			return formatFloat(v.min) + "+"
		}
		return formatFloat(v.min) + "-" + formatFloat(v.max)
	default:
		return uiAnySentinel
	}
}

type rangeJSON struct {
	Min float64  `json:"min"`
	Max *float64 `json:"max,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindText:
		return json.Marshal(v.text)
	case kindRange:
		r := rangeJSON{Min: v.min}
		if !v.open {
			max := v.max
			r.Max = &max
		}
		return json.Marshal(r)
	default:
		return json.Marshal(uiAnySentinel)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = Any
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = ParseValue(s)
	case data[0] == '{':
		var r rangeJSON
		if err := json.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("invalid range: %w", err)
		}
		if r.Max == nil {
			*v = AtLeast(r.Min)
		} else {
			*v = Between(r.Min, *r.Max)
		}
	default:
		// numbers and booleans arrive from hand-written clients; keep their literal text
		*v = Text(string(data))
	}
	return nil
}

type entry struct {
	key   Key
	value Value
}

// Criteria is an immutable, ordered set of filters. Order is the insertion
// order and drives the order of active filter tags. The zero Criteria is empty.
type Criteria struct {
	entries []entry
}

// NewCriteria builds a Criteria from pairs, in order.
func NewCriteria(pairs ...Pair) Criteria {
	var c Criteria
	for _, p := range pairs {
		c = c.With(p.Key, p.Value)
	}
	return c
}

// Pair is one key/value of a Criteria.
type Pair struct {
	Key   Key
	Value Value
}

// P is shorthand for a Pair whose value is parsed from raw UI input.
func P(key Key, raw string) Pair {
	return Pair{Key: key, Value: ParseValue(raw)}
}

// With returns a copy of c with key set to v. An existing key keeps its
// position; a new key is appended.
func (c Criteria) With(key Key, v Value) Criteria {
	out := make([]entry, len(c.entries), len(c.entries)+1)
	copy(out, c.entries)
	for i := range out {
		if out[i].key == key {
			out[i].value = v
			return Criteria{entries: out}
		}
	}
	return Criteria{entries: append(out, entry{key: key, value: v})}
}

// Without returns a copy of c without key.
func (c Criteria) Without(key Key) Criteria {
	out := make([]entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.key != key {
			out = append(out, e)
		}
	}
	return Criteria{entries: out}
}

func (c Criteria) Get(key Key) (Value, bool) {
	for _, e := range c.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return Any, false
}

func (c Criteria) Len() int { return len(c.entries) }

// All iterates over the entries in insertion order.
func (c Criteria) All() iter.Seq2[Key, Value] {
	return func(yield func(Key, Value) bool) {
		for _, e := range c.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// ParseQueryString decodes a raw URL query into Criteria, keeping parameter
// order. Pairs that fail to unescape are dropped. Later duplicates replace
// earlier values in place.
func ParseQueryString(rawQuery string) Criteria {
	var c Criteria
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil || key == "" {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			continue
		}
		c = c.With(Key(key), ParseValue(value))
	}
	return c
}

func (c Criteria) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(string(e.key))
		if err != nil {
			return nil, err
		}
		v, err := e.value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping member order.
func (c *Criteria) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = Criteria{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("criteria must be a JSON object")
	}

	var out Criteria
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected criteria key %v", tok)
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("criteria %q: %w", key, err)
		}
		out = out.With(Key(key), v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
