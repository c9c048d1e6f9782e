package handlers

import (
	"math"
	"net/http"
	"time"

	"real-estate-marketplace/internal/catalog"
	"real-estate-marketplace/internal/history"
	"real-estate-marketplace/internal/logger"
	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/savedsearch"
	"real-estate-marketplace/internal/scheduler"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	catalog   *catalog.Catalog
	history   *history.Recorder
	store     *savedsearch.Store
	scheduler *scheduler.Scheduler
	log       logger.Logger
	now       func() time.Time
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(cat *catalog.Catalog, rec *history.Recorder, store *savedsearch.Store,
	sched *scheduler.Scheduler, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		catalog:   cat,
		history:   rec,
		store:     store,
		scheduler: sched,
		log:       log.WithFields(logger.Fields{"component": "admin"}),
		now:       time.Now,
	}
}

// GetStats returns system statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	props := h.catalog.All()

	byStatus := make(map[models.PropertyStatus]int, len(models.PropertyStatuses))
	for _, s := range models.PropertyStatuses {
		byStatus[s] = 0
	}
	byType := make(map[models.PropertyType]int, len(models.PropertyTypes))
	var featured, inquiries int
	var totalValue models.Money
	for _, p := range props {
		byStatus[p.Status]++
		if p.PropertyType != "" {
			byType[p.PropertyType]++
		}
		if p.Featured {
			featured++
		}
		inquiries += p.Inquiries
		totalValue += p.Price
	}

	// Property changes (last 7 days)
	last7days := h.now().AddDate(0, 0, -7)
	recentChanges := 0
	for _, change := range h.history.RecentChanges(0) {
		if change.DetectedAt.Before(last7days) {
			break
		}
		recentChanges++
	}

	alertsEnabled := 0
	searches := h.store.List()
	for _, s := range searches {
		if s.EmailAlertsEnabled {
			alertsEnabled++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": gin.H{
			"total":     len(props),
			"by_status": byStatus,
			"by_type":   byType,
			"featured":  featured,
			"inquiries": inquiries,
			"value":     totalValue.String(),
		},
		"changes": gin.H{
			"last_7_days": recentChanges,
		},
		"saved_searches": gin.H{
			"total":          len(searches),
			"alerts_enabled": alertsEnabled,
		},
		"catalog_version": h.catalog.Version(),
	})
}

// PriceRange is one bucket of the price distribution
type PriceRange struct {
	RangeLabel string `json:"range_label"`
	Value      string `json:"value"`
	MinPrice   int64  `json:"min_price"`
	MaxPrice   int64  `json:"max_price,omitempty"`
	Count      int    `json:"count"`
}

// GetPriceDistribution returns the price distribution of active listings
func (h *AdminHandler) GetPriceDistribution(c *gin.Context) {
	// Same buckets as the priceRange filter; MaxPrice is exclusive here
	ranges := []PriceRange{
		{RangeLabel: "Under $100K", Value: "0-100000", MinPrice: 0, MaxPrice: 100000},
		{RangeLabel: "$100K - $250K", Value: "100000-250000", MinPrice: 100000, MaxPrice: 250000},
		{RangeLabel: "$250K - $500K", Value: "250000-500000", MinPrice: 250000, MaxPrice: 500000},
		{RangeLabel: "$500K - $1M", Value: "500000-1000000", MinPrice: 500000, MaxPrice: 1000000},
		{RangeLabel: "Over $1M", Value: "1000000+", MinPrice: 1000000},
	}

	for _, p := range h.catalog.All() {
		if !p.IsActive() {
			continue
		}
		for i := range ranges {
			upper := ranges[i].MaxPrice
			if upper == 0 {
				upper = math.MaxInt64
			}
			if int64(p.Price) >= ranges[i].MinPrice && int64(p.Price) < upper {
				ranges[i].Count++
				break
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"price_distribution": ranges,
	})
}

// GetRecentChanges returns recent property changes
func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	changes := h.history.RecentChanges(queryLimit(c, 100))
	c.JSON(http.StatusOK, gin.H{
		"changes": changes,
		"count":   len(changes),
	})
}

// RunAlerts evaluates saved-search alerts immediately. The frequency query
// parameter selects daily (default) or weekly alerts.
func (h *AdminHandler) RunAlerts(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Alert scheduler not available",
			"code":  errCodeUnavailable,
		})
		return
	}

	freq, ok := savedsearch.ParseFrequency(c.DefaultQuery("frequency", string(savedsearch.FrequencyDaily)))
	if !ok {
		respondError(c, errUnknownFrequency(c.Query("frequency")))
		return
	}

	h.log.Info("Manual alert run requested", logger.Fields{"frequency": string(freq)})
	result := h.scheduler.RunNow(c.Request.Context(), freq)
	c.JSON(http.StatusOK, result)
}
