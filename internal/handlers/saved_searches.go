package handlers

import (
	"net/http"

	"real-estate-marketplace/internal/logger"
	"real-estate-marketplace/internal/metrics"
	"real-estate-marketplace/internal/savedsearch"
	"real-estate-marketplace/internal/search"

	"github.com/gin-gonic/gin"
)

// SavedSearchHandler handles saved-search requests
type SavedSearchHandler struct {
	store      *savedsearch.Store
	properties *PropertyHandler
	log        logger.Logger
}

func NewSavedSearchHandler(store *savedsearch.Store, properties *PropertyHandler, log logger.Logger) *SavedSearchHandler {
	return &SavedSearchHandler{
		store:      store,
		properties: properties,
		log:        log.WithFields(logger.Fields{"component": "saved_searches"}),
	}
}

// List returns every saved search in creation order
func (h *SavedSearchHandler) List(c *gin.Context) {
	searches := h.store.List()
	c.JSON(http.StatusOK, gin.H{
		"saved_searches": searches,
		"count":          len(searches),
	})
}

// Create stores the current query and filters under a name
func (h *SavedSearchHandler) Create(c *gin.Context) {
	var req struct {
		Name    string          `json:"name"`
		Query   string          `json:"query"`
		Filters search.Criteria `json:"filters"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	saved, err := h.store.Create(req.Name, req.Query, req.Filters)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.SavedSearches.Set(float64(h.store.Len()))
	h.log.Info("Saved search created", logger.Fields{"saved_search_id": saved.ID, "name": saved.Name})
	c.JSON(http.StatusCreated, saved)
}

func (h *SavedSearchHandler) Get(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	saved, err := h.store.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// Run replays a saved search and returns its current results
func (h *SavedSearchHandler) Run(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	replay, err := h.store.Run(id)
	if err != nil {
		respondError(c, err)
		return
	}

	spec := search.ParseSortSpec(c.Query(paramSort), c.Query(paramOrder))
	c.JSON(http.StatusOK, gin.H{
		"replay":  replay,
		"results": h.properties.run(c.Request.Context(), replay.Criteria(), spec),
	})
}

// SetAlerts changes the alert settings of a saved search
func (h *SavedSearchHandler) SetAlerts(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Enabled   *bool  `json:"emailAlerts" binding:"required"`
		Frequency string `json:"frequency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	frequency := req.Frequency
	if frequency == "" {
		current, err := h.store.Get(id)
		if err != nil {
			respondError(c, err)
			return
		}
		frequency = string(current.Frequency)
	}

	saved, err := h.store.SetAlerts(id, *req.Enabled, frequency)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// Delete removes a saved search. Unknown ids are not an error.
func (h *SavedSearchHandler) Delete(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	h.store.Delete(id)
	metrics.SavedSearches.Set(float64(h.store.Len()))
	c.Status(http.StatusNoContent)
}
