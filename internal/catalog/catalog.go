package catalog

import (
	"slices"
	"sync"
	"time"

	"real-estate-marketplace/internal/apperrors"
	"real-estate-marketplace/internal/history"
	"real-estate-marketplace/internal/models"
)

// Catalog is the in-memory property collection the search endpoints read from.
type Catalog struct {
	mu      sync.RWMutex
	props   []models.Property
	history *history.Recorder
	version uint64
	now     func() time.Time
}

// New creates an empty catalog. rec may be nil when change history is not needed.
func New(rec *history.Recorder, now func() time.Time) *Catalog {
	if now == nil {
		now = time.Now
	}
	return &Catalog{history: rec, now: now}
}

// Load replaces the whole collection. Every record is validated and ids must be unique.
func (c *Catalog) Load(props []models.Property) error {
	loaded := make([]models.Property, 0, len(props))
	seen := make(map[int64]bool, len(props))
	for _, p := range props {
		if err := normalize(&p); err != nil {
			return err
		}
		if p.ID == 0 {
			return apperrors.NewValidation("id", "property %q has no id", p.Title)
		}
		if seen[p.ID] {
			return apperrors.NewValidation("id", "duplicate property id %d", p.ID)
		}
		seen[p.ID] = true
		loaded = append(loaded, p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.props = loaded
	c.version++
	return nil
}

// All returns a copy of every property in catalog order.
func (c *Catalog) All() []models.Property {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.props)
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.props)
}

// Version changes whenever the collection changes.
func (c *Catalog) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Get retrieves a property by ID
func (c *Catalog) Get(id int64) (models.Property, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return models.Property{}, apperrors.NewNotFound("property", id)
	}
	return c.props[i], nil
}

// Add inserts a new property. A zero ID is replaced by the next free id and a
// zero DateAdded by the current time.
func (c *Catalog) Add(p models.Property) (models.Property, error) {
	if err := normalize(&p); err != nil {
		return models.Property{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if p.ID == 0 {
		p.ID = c.maxID() + 1
	} else if c.indexOf(p.ID) >= 0 {
		return models.Property{}, apperrors.NewValidation("id", "duplicate property id %d", p.ID)
	}
	if p.DateAdded.IsZero() {
		p.DateAdded = c.now()
	}

	c.props = append(c.props, p)
	c.version++
	if c.history != nil {
		c.history.RecordNew(p)
	}
	return p, nil
}

// UpdateStatus changes the lifecycle label of a property.
func (c *Catalog) UpdateStatus(id int64, status string) (models.Property, error) {
	parsed, ok := models.ParsePropertyStatus(status)
	if !ok {
		return models.Property{}, apperrors.NewValidation("status", "unknown status %q", status)
	}
	return c.update(id, func(p *models.Property) { p.Status = parsed })
}

// UpdatePrice changes the asking price of a property.
func (c *Catalog) UpdatePrice(id int64, price models.Money) (models.Property, error) {
	if price < 0 {
		return models.Property{}, apperrors.NewValidation("price", "must not be negative")
	}
	return c.update(id, func(p *models.Property) { p.Price = price })
}

func (c *Catalog) update(id int64, mutate func(p *models.Property)) (models.Property, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return models.Property{}, apperrors.NewNotFound("property", id)
	}

	old := c.props[i]
	updated := old
	mutate(&updated)
	if updated == old {
		return updated, nil
	}

	c.props[i] = updated
	c.version++
	if c.history != nil {
		if _, err := c.history.Record(old, updated); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

func (c *Catalog) indexOf(id int64) int {
	return slices.IndexFunc(c.props, func(p models.Property) bool { return p.ID == id })
}

func (c *Catalog) maxID() int64 {
	var max int64
	for _, p := range c.props {
		if p.ID > max {
			max = p.ID
		}
	}
	return max
}

// normalize validates p and fills the default status.
func normalize(p *models.Property) error {
	if err := p.Validate(); err != nil {
		return apperrors.NewValidation("property", "%v", err)
	}
	if p.Status == "" {
		p.Status = models.PropertyStatusActive
	} else {
		p.Status, _ = models.ParsePropertyStatus(string(p.Status))
	}
	return nil
}
