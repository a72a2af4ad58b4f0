// ABOUTME: Maps service errors to HTTP status codes.
// ABOUTME: Every error response has the shape {"error": "..."}.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/nutrition/internal/models"
	"github.com/harperreed/nutrition/internal/nutrition"
	"github.com/harperreed/nutrition/internal/storage"
	"github.com/harperreed/nutrition/internal/tracker"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAmbiguousPrefix):
		return http.StatusConflict
	case errors.Is(err, tracker.ErrNoProvider):
		return http.StatusServiceUnavailable
	case errors.Is(err, tracker.ErrInvalidInput),
		errors.Is(err, tracker.ErrNoItems),
		errors.Is(err, models.ErrInvalidMealType),
		errors.Is(err, nutrition.ErrInvalidQuantity),
		errors.Is(err, nutrition.ErrUnknownRule),
		errors.Is(err, nutrition.ErrInvalidWeekday),
		errors.Is(err, nutrition.ErrUnknownWindow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request.URL.Path, "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
