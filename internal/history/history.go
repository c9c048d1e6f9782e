package history

import (
	"fmt"
	"sync"
	"time"

	"real-estate-marketplace/internal/models"
)

// Recorder detects and keeps property changes in memory
type Recorder struct {
	mu      sync.RWMutex
	nextID  int64
	changes []models.PropertyChange
	now     func() time.Time
}

// NewRecorder creates a new change recorder
func NewRecorder(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{nextID: 1, now: now}
}

// RecordNew records that a listing was added
func (r *Recorder) RecordNew(p models.Property) models.PropertyChange {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.append(models.PropertyChange{
		PropertyID: p.ID,
		ChangeType: models.ChangeTypeNew,
		NewValue:   p.Price.String(),
	})
}

// DetectChanges compares the previous and the current state of a property.
// Only price and status are tracked.
func DetectChanges(old, current models.Property) []models.PropertyChange {
	changes := []models.PropertyChange{}

	// Price change
	if old.Price != current.Price {
		magnitude := float64(current.Price - old.Price)
		changes = append(changes, models.PropertyChange{
			PropertyID:      current.ID,
			ChangeType:      models.ChangeTypePrice,
			OldValue:        old.Price.String(),
			NewValue:        current.Price.String(),
			ChangeMagnitude: &magnitude,
		})
	}

	// Status change
	if old.Status != current.Status {
		changes = append(changes, models.PropertyChange{
			PropertyID: current.ID,
			ChangeType: models.ChangeTypeStatus,
			OldValue:   string(old.Status),
			NewValue:   string(current.Status),
		})
	}

	return changes
}

// Record detects and stores the changes between old and current
func (r *Recorder) Record(old, current models.Property) ([]models.PropertyChange, error) {
	if old.ID != current.ID {
		return nil, fmt.Errorf("cannot compare property %d with property %d", old.ID, current.ID)
	}

	detected := DetectChanges(old, current)
	if len(detected) == 0 {
		return detected, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range detected {
		detected[i] = r.append(detected[i])
	}
	return detected, nil
}

// append must be called with the lock held
func (r *Recorder) append(c models.PropertyChange) models.PropertyChange {
	c.ID = r.nextID
	r.nextID++
	if c.DetectedAt.IsZero() {
		c.DetectedAt = r.now()
	}
	r.changes = append(r.changes, c)
	return c
}

// PropertyHistory returns the changes of a single property, newest first
func (r *Recorder) PropertyHistory(propertyID int64, limit int) []models.PropertyChange {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []models.PropertyChange{}
	for i := len(r.changes) - 1; i >= 0; i-- {
		if r.changes[i].PropertyID != propertyID {
			continue
		}
		result = append(result, r.changes[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result
}

// RecentChanges returns the latest changes across all properties, newest first
func (r *Recorder) RecentChanges(limit int) []models.PropertyChange {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.changes)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]models.PropertyChange, 0, n)
	for i := len(r.changes) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, r.changes[i])
	}
	return result
}
