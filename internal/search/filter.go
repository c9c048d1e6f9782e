package search

import (
	"math"
	"strconv"
	"strings"
	"time"

	"real-estate-marketplace/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TextField names a property field covered by the free-text query.
type TextField string

const (
	FieldTitle    TextField = "title"
	FieldLocation TextField = "location"
	FieldAgent    TextField = "agent"
)

// DefaultSearchFields are matched by the free-text query unless configured otherwise.
var DefaultSearchFields = []TextField{FieldTitle, FieldLocation, FieldAgent}

// ParseTextField resolves a configured field name.
func ParseTextField(s string) (TextField, bool) {
	switch f := TextField(s); f {
	case FieldTitle, FieldLocation, FieldAgent:
		return f, true
	case "address":
		return FieldLocation, true
	}
	return "", false
}

func (f TextField) value(p *models.Property) string {
	switch f {
	case FieldTitle:
		return p.Title
	case FieldLocation:
		return p.Location
	case FieldAgent:
		return p.Agent
	}
	return ""
}

type dateBucket struct {
	label  string
	window time.Duration // zero means same calendar day
}

var dateBuckets = map[string]dateBucket{
	"today":   {label: "Today"},
	"week":    {label: "This Week", window: 7 * 24 * time.Hour},
	"month":   {label: "This Month", window: 30 * 24 * time.Hour},
	"quarter": {label: "This Quarter", window: 90 * 24 * time.Hour},
	"year":    {label: "This Year", window: 365 * 24 * time.Hour},
}

type inquiryBucket struct {
	label    string
	min, max int
}

var inquiryBuckets = map[string]inquiryBucket{
	"high":   {label: "High Activity (10+)", min: 10, max: math.MaxInt},
	"medium": {label: "Medium Activity (5-9)", min: 5, max: 9},
	"low":    {label: "Low Activity (1-4)", min: 1, max: 4},
	"none":   {label: "No Inquiries", min: 0, max: 0},
}

// constraint is one active filter compiled from a Criteria entry.
type constraint struct {
	key   Key
	label string
	match func(p *models.Property) bool
}

// compile turns every active, well-formed entry of c into a constraint.
// Inactive values, unknown keys and malformed input produce nothing.
func (e *Engine) compile(c Criteria) []constraint {
	now := e.now()
	caser := cases.Title(language.English)

	out := make([]constraint, 0, c.Len())
	for key, v := range c.All() {
		if v.IsAny() {
			continue
		}
		if k, ok := e.compileEntry(key, v, now, caser); ok {
			out = append(out, k)
		}
	}
	return out
}

func (e *Engine) compileEntry(key Key, v Value, now time.Time, caser cases.Caser) (constraint, bool) {
	if key == KeyPriceRange {
		return compilePriceRange(v)
	}

	text, ok := v.TextValue()
	if !ok {
		return constraint{}, false
	}

	switch key {
	case KeyQuery, KeySearch:
		if strings.TrimSpace(text) == "" {
			return constraint{}, false
		}
		needle := strings.ToLower(text)
		fields := e.fields
		return constraint{
			key:   key,
			label: "Search: " + text,
			match: func(p *models.Property) bool {
				for _, f := range fields {
					if strings.Contains(strings.ToLower(f.value(p)), needle) {
						return true
					}
				}
				return false
			},
		}, true

	case KeyPropertyType:
		return constraint{
			key:   key,
			label: "Type: " + caser.String(text),
			match: func(p *models.Property) bool { return string(p.PropertyType) == text },
		}, true

	case KeyStatus:
		want := canonicalStatus(text)
		return constraint{
			key:   key,
			label: "Status: " + caser.String(text),
			match: func(p *models.Property) bool { return canonicalStatus(string(p.Status)) == want },
		}, true

	case KeyPriceMin, KeyPriceMax:
		bound, ok := models.ParsePrice(text)
		if !ok {
			return constraint{}, false
		}
		if key == KeyPriceMin {
			return constraint{
				key:   key,
				label: "Min price: " + formatMoney(bound),
				match: func(p *models.Property) bool { return float64(p.Price) >= bound },
			}, true
		}
		return constraint{
			key:   key,
			label: "Max price: " + formatMoney(bound),
			match: func(p *models.Property) bool { return float64(p.Price) <= bound },
		}, true

	case KeyBedrooms, KeyBathrooms:
		min, ok := parseMinimum(text)
		if !ok {
			return constraint{}, false
		}
		if key == KeyBedrooms {
			return constraint{
				key:   key,
				label: "Beds: " + formatFloat(min) + "+",
				match: func(p *models.Property) bool { return float64(p.Bedrooms) >= min },
			}, true
		}
		return constraint{
			key:   key,
			label: "Baths: " + formatFloat(min) + "+",
			match: func(p *models.Property) bool { return p.Bathrooms >= min },
		}, true

	case KeyLocation:
		if strings.TrimSpace(text) == "" {
			return constraint{}, false
		}
		needle := strings.ToLower(text)
		return constraint{
			key:   key,
			label: "Location: " + text,
			match: func(p *models.Property) bool {
				return strings.Contains(strings.ToLower(p.Location), needle)
			},
		}, true

	case KeyDateRange:
		bucket, ok := dateBuckets[text]
		if !ok {
			return constraint{}, false
		}
		return constraint{
			key:   key,
			label: "Added: " + bucket.label,
			match: func(p *models.Property) bool { return bucket.contains(p.DateAdded, now) },
		}, true

	case KeyInquiryLevel:
		bucket, ok := inquiryBuckets[text]
		if !ok {
			return constraint{}, false
		}
		return constraint{
			key:   key,
			label: "Inquiries: " + bucket.label,
			match: func(p *models.Property) bool {
				return p.Inquiries >= bucket.min && p.Inquiries <= bucket.max
			},
		}, true
	}

	return constraint{}, false
}

// canonicalStatus folds aliases such as "available" onto their stored
// status. Unknown labels are returned unchanged and match literally.
func canonicalStatus(s string) string {
	if status, ok := models.ParsePropertyStatus(s); ok {
		return string(status)
	}
	return s
}

func (b dateBucket) contains(added, now time.Time) bool {
	if b.window == 0 {
		y1, m1, d1 := added.In(now.Location()).Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	}
	return !added.Before(now.Add(-b.window))
}

// compilePriceRange accepts an explicit pair or a bucket token such as
// "100000-250000" or "1000000+".
func compilePriceRange(v Value) (constraint, bool) {
	min, max, hasMax, ok := v.Bounds()
	if !ok {
		text, isText := v.TextValue()
		if !isText {
			return constraint{}, false
		}
		min, max, hasMax, ok = parsePriceBucket(text)
		if !ok {
			return constraint{}, false
		}
	}
	if invalidNumber(min) || (hasMax && (invalidNumber(max) || min > max)) {
		return constraint{}, false
	}

	if !hasMax {
		return constraint{
			key:   KeyPriceRange,
			label: "Price: " + formatMoney(min) + "+",
			match: func(p *models.Property) bool { return float64(p.Price) >= min },
		}, true
	}
	return constraint{
		key:   KeyPriceRange,
		label: "Price: " + formatMoney(min) + " - " + formatMoney(max),
		match: func(p *models.Property) bool {
			price := float64(p.Price)
			return price >= min && price <= max
		},
	}, true
}

// An unescaped "+" in a query string decodes to a space, so "1000000 " is
// read as "1000000+".
func parsePriceBucket(token string) (min, max float64, hasMax, ok bool) {
	trimmed := strings.TrimSpace(token)
	if trimmed != "" && !strings.Contains(trimmed, "-") && strings.HasSuffix(token, " ") {
		trimmed += "+"
	}
	token = trimmed
	if lower, found := strings.CutSuffix(token, "+"); found {
		min, err := strconv.ParseFloat(lower, 64)
		if err != nil {
			return 0, 0, false, false
		}
		return min, 0, false, true
	}

	lower, upper, found := strings.Cut(token, "-")
	if !found {
		return 0, 0, false, false
	}
	min, err := strconv.ParseFloat(lower, 64)
	if err != nil {
		return 0, 0, false, false
	}
	max, err = strconv.ParseFloat(upper, 64)
	if err != nil {
		return 0, 0, false, false
	}
	return min, max, true, true
}

// parseMinimum reads "N" or "N+".
func parseMinimum(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "+")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || invalidNumber(n) {
		return 0, false
	}
	return n, true
}

func invalidNumber(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

func formatMoney(f float64) string {
	return models.Money(math.Round(f)).String()
}

func matchAll(constraints []constraint, p *models.Property) bool {
	for i := range constraints {
		if !constraints[i].match(p) {
			return false
		}
	}
	return true
}
