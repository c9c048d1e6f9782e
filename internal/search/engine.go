package search

import (
	"iter"
	"slices"
	"time"

	"real-estate-marketplace/internal/models"
)

// Tag describes one active filter for display.
type Tag struct {
	Key   Key    `json:"key"`
	Label string `json:"label"`
}

// Engine filters and sorts property collections. It holds configuration
// only; every method is free of side effects and safe for concurrent use.
type Engine struct {
	fields []TextField
	now    func() time.Time
}

type Option func(*Engine)

// WithSearchFields sets the fields covered by the free-text query.
func WithSearchFields(fields ...TextField) Option {
	return func(e *Engine) {
		if len(fields) > 0 {
			e.fields = slices.Clone(fields)
		}
	}
}

// WithClock sets the reference time used by date range filters.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		fields: slices.Clone(DefaultSearchFields),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Matches reports whether p satisfies every active filter of c.
func (e *Engine) Matches(p *models.Property, c Criteria) bool {
	return matchAll(e.compile(c), p)
}

// Search returns the records matching c, ordered by sort. The input slice
// is never modified. An unknown sort key falls back to DefaultSort.
func (e *Engine) Search(records []models.Property, c Criteria, sort SortSpec) []models.Property {
	constraints := e.compile(c)

	out := make([]models.Property, 0, len(records))
	for i := range records {
		if matchAll(constraints, &records[i]) {
			out = append(out, records[i])
		}
	}

	cmp := newComparator(sort)
	slices.SortStableFunc(out, func(a, b models.Property) int {
		return cmp.compare(&a, &b)
	})
	return out
}

// ActiveFilterCount counts the filters of c that constrain results.
func (e *Engine) ActiveFilterCount(c Criteria) int {
	return len(e.compile(c))
}

// ActiveFilterTags yields a tag per active filter in criteria order. The
// sequence is evaluated on each iteration.
func (e *Engine) ActiveFilterTags(c Criteria) iter.Seq[Tag] {
	return func(yield func(Tag) bool) {
		for _, k := range e.compile(c) {
			if !yield(Tag{Key: k.key, Label: k.label}) {
				return
			}
		}
	}
}
