package models

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

var (
	nonNumeric   = regexp.MustCompile(`[^0-9.-]+`)
	leadingFloat = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
)

// ParsePrice coerces a currency-formatted string such as "$450,000" into a number.
// Every character other than digits, '.' and '-' is stripped and the longest
// leading decimal literal of what remains is read, so "$1,200.50/mo" yields 1200.5.
// ok is false when nothing numeric is left.
func ParsePrice(s string) (value float64, ok bool) {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	literal := leadingFloat.FindString(cleaned)
	if literal == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Money is a whole-dollar amount. It decodes from plain numbers as well as
// currency strings.
type Money int64

func moneyFromFloat(v float64) Money {
	return Money(math.Round(v))
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*m = moneyFromFloat(v)
	case string:
		parsed, ok := ParsePrice(v)
		if !ok {
			return fmt.Errorf("invalid price %q", v)
		}
		*m = moneyFromFloat(parsed)
	case nil:
		*m = 0
	default:
		return fmt.Errorf("invalid price %s", string(data))
	}
	return nil
}

func (m *Money) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!str" {
		parsed, ok := ParsePrice(node.Value)
		if !ok {
			return fmt.Errorf("line %d: invalid price %q", node.Line, node.Value)
		}
		*m = moneyFromFloat(parsed)
		return nil
	}

	var v float64
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("line %d: invalid price: %w", node.Line, err)
	}
	*m = moneyFromFloat(v)
	return nil
}

// String formats the amount as US dollars, e.g. "$450,000".
func (m Money) String() string {
	return message.NewPrinter(language.English).Sprintf("$%d", int64(m))
}
