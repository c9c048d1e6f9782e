package handlers

import (
	"net/http"
	"strconv"

	"real-estate-marketplace/internal/apperrors"

	"github.com/gin-gonic/gin"
)

const (
	errCodeInternal    = "INTERNAL_ERROR"
	errCodeUnavailable = "UNAVAILABLE"
)

// respondError maps the error taxonomy onto HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := errCodeInternal

	switch {
	case apperrors.IsValidation(err):
		status = http.StatusBadRequest
		code = string(apperrors.ErrCodeValidation)
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
		code = string(apperrors.ErrCodeNotFound)
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  code,
	})
}

// bindError reports a malformed request body
func bindError(c *gin.Context, err error) {
	respondError(c, apperrors.NewValidation("body", "%v", err))
}

func paramID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidation("id", "invalid id %q", raw)
	}
	return id, nil
}

func queryLimit(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit < 0 {
		return def
	}
	return limit
}

func errUnknownFrequency(raw string) error {
	return apperrors.NewValidation("frequency", "unknown frequency %q", raw)
}
