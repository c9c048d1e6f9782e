package handlers

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"real-estate-marketplace/internal/cache"
	"real-estate-marketplace/internal/catalog"
	"real-estate-marketplace/internal/history"
	"real-estate-marketplace/internal/logger"
	"real-estate-marketplace/internal/metrics"
	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/search"

	"github.com/gin-gonic/gin"
)

// query parameters that control ordering rather than filtering
const (
	paramSort  = "sort"
	paramOrder = "order"
)

// PropertyHandler serves listing search and listing maintenance
type PropertyHandler struct {
	catalog *catalog.Catalog
	engine  *search.Engine
	history *history.Recorder
	cache   *cache.ResultCache
	log     logger.Logger
}

// NewPropertyHandler creates a new property handler. resultCache may be nil.
func NewPropertyHandler(cat *catalog.Catalog, engine *search.Engine, rec *history.Recorder,
	resultCache *cache.ResultCache, log logger.Logger) *PropertyHandler {
	return &PropertyHandler{
		catalog: cat,
		engine:  engine,
		history: rec,
		cache:   resultCache,
		log:     log.WithFields(logger.Fields{"component": "properties"}),
	}
}

// SearchResponse is the result of a listing search
type SearchResponse struct {
	Properties        []models.Property `json:"properties"`
	Total             int               `json:"total"`
	ActiveFilterCount int               `json:"active_filter_count"`
	ActiveFilters     []search.Tag      `json:"active_filters"`
	Sort              search.SortSpec   `json:"sort"`
}

// List filters and sorts listings by the request's query string,
// e.g. ?query=loft&status=active&sort=price&order=asc
func (h *PropertyHandler) List(c *gin.Context) {
	criteria := search.ParseQueryString(c.Request.URL.RawQuery).
		Without(paramSort).
		Without(paramOrder)
	spec := search.ParseSortSpec(c.Query(paramSort), c.Query(paramOrder))

	c.JSON(http.StatusOK, h.run(c.Request.Context(), criteria, spec))
}

func (h *PropertyHandler) run(ctx context.Context, criteria search.Criteria, spec search.SortSpec) SearchResponse {
	results := h.search(ctx, criteria, spec)
	tags := slices.Collect(h.engine.ActiveFilterTags(criteria))

	metrics.SearchResults.Observe(float64(len(results)))
	metrics.ActiveFilters.Observe(float64(len(tags)))

	return SearchResponse{
		Properties:        results,
		Total:             len(results),
		ActiveFilterCount: len(tags),
		ActiveFilters:     tags,
		Sort:              spec,
	}
}

// search consults the result cache when one is configured. Cache failures
// are logged and the search runs against the catalog.
func (h *PropertyHandler) search(ctx context.Context, criteria search.Criteria, spec search.SortSpec) []models.Property {
	if h.cache == nil {
		metrics.SearchesTotal.WithLabelValues("disabled").Inc()
		return h.evaluate(criteria, spec)
	}
	if dependsOnClock(criteria) {
		metrics.SearchesTotal.WithLabelValues("bypass").Inc()
		return h.evaluate(criteria, spec)
	}

	key, err := cache.Key(h.catalog.Version(), criteria, spec)
	if err != nil {
		h.log.WithError(err).Warn("Failed to build cache key", nil)
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return h.evaluate(criteria, spec)
	}

	cached, ok, err := h.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrCircuitOpen) {
		metrics.SearchesTotal.WithLabelValues("bypass").Inc()
		return h.evaluate(criteria, spec)
	}
	if err != nil {
		h.log.WithError(err).Warn("Cache lookup failed", logger.Fields{"key": key})
	}
	if ok {
		metrics.SearchesTotal.WithLabelValues("hit").Inc()
		return cached
	}

	metrics.SearchesTotal.WithLabelValues("miss").Inc()
	results := h.evaluate(criteria, spec)
	if err := h.cache.Set(ctx, key, results); err != nil {
		h.log.WithError(err).Warn("Cache store failed", logger.Fields{"key": key})
	}
	return results
}

// dependsOnClock reports whether results move with the current time. Such
// searches are not cached since the key only tracks catalog changes.
func dependsOnClock(criteria search.Criteria) bool {
	v, ok := criteria.Get(search.KeyDateRange)
	return ok && !v.IsAny()
}

func (h *PropertyHandler) evaluate(criteria search.Criteria, spec search.SortSpec) []models.Property {
	start := time.Now()
	results := h.engine.Search(h.catalog.All(), criteria, spec)
	metrics.SearchDuration.WithLabelValues(string(spec.Key)).Observe(time.Since(start).Seconds())
	return results
}

// DescribeFilters returns the active filter count and tags for a criteria
// object without running a search
func (h *PropertyHandler) DescribeFilters(c *gin.Context) {
	var criteria search.Criteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		bindError(c, err)
		return
	}

	tags := slices.Collect(h.engine.ActiveFilterTags(criteria))
	c.JSON(http.StatusOK, gin.H{
		"active_filter_count": len(tags),
		"active_filters":      tags,
	})
}

// Get retrieves a property by ID
func (h *PropertyHandler) Get(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	p, err := h.catalog.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create adds a new listing
func (h *PropertyHandler) Create(c *gin.Context) {
	var p models.Property
	if err := c.ShouldBindJSON(&p); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.catalog.Add(p)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("Property added", logger.Fields{"property_id": created.ID, "title": created.Title})
	c.JSON(http.StatusCreated, created)
}

// UpdateStatus changes a listing's status
func (h *PropertyHandler) UpdateStatus(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.catalog.UpdateStatus(id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdatePrice changes a listing's asking price. The price may be a number
// or a currency string such as "$450,000".
func (h *PropertyHandler) UpdatePrice(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Price *models.Money `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.catalog.UpdatePrice(id, *req.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// History returns the recorded changes of a listing, newest first
func (h *PropertyHandler) History(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.catalog.Get(id); err != nil {
		respondError(c, err)
		return
	}

	changes := h.history.PropertyHistory(id, queryLimit(c, 30))
	c.JSON(http.StatusOK, gin.H{
		"property_id": id,
		"changes":     changes,
		"count":       len(changes),
	})
}
