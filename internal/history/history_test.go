package history

import (
	"testing"
	"time"

	"real-estate-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectChanges(t *testing.T) {
	old := models.Property{ID: 2, Price: 750000, Status: models.PropertyStatusActive}

	current := old
	current.Price = 725000
	current.Status = models.PropertyStatusPending

	changes := DetectChanges(old, current)
	require.Len(t, changes, 2)

	assert.Equal(t, models.ChangeTypePrice, changes[0].ChangeType)
	assert.Equal(t, "$750,000", changes[0].OldValue)
	assert.Equal(t, "$725,000", changes[0].NewValue)
	require.NotNil(t, changes[0].ChangeMagnitude)
	assert.Equal(t, -25000.0, *changes[0].ChangeMagnitude)

	assert.Equal(t, models.ChangeTypeStatus, changes[1].ChangeType)
	assert.Equal(t, "active", changes[1].OldValue)
	assert.Equal(t, "pending", changes[1].NewValue)

	assert.Empty(t, DetectChanges(old, old))
}

func TestRecorder_HistoryNewestFirst(t *testing.T) {
	clock := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	r := NewRecorder(func() time.Time { return clock })

	listing := models.Property{ID: 7, Price: 750000, Status: models.PropertyStatusActive}
	r.RecordNew(listing)

	clock = clock.AddDate(0, 1, 5)
	reduced := listing
	reduced.Price = 725000
	_, err := r.Record(listing, reduced)
	require.NoError(t, err)

	r.RecordNew(models.Property{ID: 8, Price: 100})

	clock = clock.AddDate(0, 1, 0)
	contract := reduced
	contract.Status = models.PropertyStatusPending
	_, err = r.Record(reduced, contract)
	require.NoError(t, err)

	hist := r.PropertyHistory(7, 0)
	require.Len(t, hist, 3)
	assert.Equal(t, models.ChangeTypeStatus, hist[0].ChangeType)
	assert.Equal(t, models.ChangeTypePrice, hist[1].ChangeType)
	assert.Equal(t, models.ChangeTypeNew, hist[2].ChangeType)
	assert.True(t, hist[0].DetectedAt.After(hist[1].DetectedAt))

	assert.Len(t, r.PropertyHistory(7, 2), 2)
	assert.Empty(t, r.PropertyHistory(99, 10))

	recent := r.RecentChanges(2)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(4), recent[0].ID)
	assert.Equal(t, int64(3), recent[1].ID)
	assert.Len(t, r.RecentChanges(0), 4)
}

func TestRecorder_RecordRejectsDifferentIDs(t *testing.T) {
	r := NewRecorder(nil)
	_, err := r.Record(models.Property{ID: 1}, models.Property{ID: 2})
	assert.Error(t, err)
}
