// Package savedsearch keeps named, replayable searches for the lifetime of
// the process.
package savedsearch

import (
	"slices"
	"strings"
	"sync"
	"time"

	"real-estate-marketplace/internal/apperrors"
	"real-estate-marketplace/internal/search"
)

// Frequency controls how often alerts for a saved search are evaluated.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// ParseFrequency accepts "daily" and "weekly" in any case.
func ParseFrequency(s string) (Frequency, bool) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case FrequencyDaily, FrequencyWeekly:
		return f, true
	}
	return "", false
}

type SavedSearch struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Query              string          `json:"query"`
	Filters            search.Criteria `json:"filters"`
	CreatedAt          time.Time       `json:"createdAt"`
	EmailAlertsEnabled bool            `json:"emailAlerts"`
	Frequency          Frequency       `json:"frequency"`
	LastNotifiedAt     *time.Time      `json:"lastNotifiedAt,omitempty"`
	NewMatches         int             `json:"newMatches"`
}

// Replay is what running a saved search hands back to the caller.
type Replay struct {
	Query   string          `json:"query"`
	Filters search.Criteria `json:"filters"`
}

// Criteria merges the query into the filters under search.KeyQuery.
func (r Replay) Criteria() search.Criteria {
	return r.Filters.With(search.KeyQuery, search.ParseValue(r.Query))
}

// Store is an in-memory registry of saved searches, safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	searches []SavedSearch
	now      func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{nextID: 1, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create saves a search. The query must not be blank; a blank name becomes
// "Search: <query>". Alerts start enabled with a daily frequency.
func (s *Store) Create(name, query string, filters search.Criteria) (SavedSearch, error) {
	if strings.TrimSpace(query) == "" {
		return SavedSearch{}, apperrors.NewValidation("query", "must not be empty")
	}
	if strings.TrimSpace(name) == "" {
		name = "Search: " + query
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := SavedSearch{
		ID:                 s.nextID,
		Name:               name,
		Query:              query,
		Filters:            filters,
		CreatedAt:          s.now(),
		EmailAlertsEnabled: true,
		Frequency:          FrequencyDaily,
	}
	s.nextID++
	s.searches = append(s.searches, saved)
	return saved, nil
}

// List returns every saved search in creation order.
func (s *Store) List() []SavedSearch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.searches)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.searches)
}

func (s *Store) Get(id int64) (SavedSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return SavedSearch{}, apperrors.NewNotFound("saved search", id)
	}
	return s.searches[i], nil
}

// Run returns the captured query and filters unchanged.
func (s *Store) Run(id int64) (Replay, error) {
	saved, err := s.Get(id)
	if err != nil {
		return Replay{}, err
	}
	return Replay{Query: saved.Query, Filters: saved.Filters}, nil
}

// Delete removes a saved search. Unknown ids are ignored.
func (s *Store) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.searches = slices.Delete(s.searches, i, i+1)
	}
}

// SetAlerts changes the alert settings of a saved search.
func (s *Store) SetAlerts(id int64, enabled bool, frequency string) (SavedSearch, error) {
	freq, ok := ParseFrequency(frequency)
	if !ok {
		return SavedSearch{}, apperrors.NewValidation("frequency", "unknown frequency %q", frequency)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return SavedSearch{}, apperrors.NewNotFound("saved search", id)
	}
	s.searches[i].EmailAlertsEnabled = enabled
	s.searches[i].Frequency = freq
	return s.searches[i], nil
}

// MarkNotified records an alert evaluation. Unknown ids are ignored because
// the search may have been deleted while the alert ran.
func (s *Store) MarkNotified(id int64, at time.Time, newMatches int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.searches[i].LastNotifiedAt = &at
		s.searches[i].NewMatches = newMatches
	}
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.searches, func(saved SavedSearch) bool {
		return saved.ID == id
	})
}
