package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Shubz284/biryani-house/internal/models"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error  string              `json:"error"`
	Issues []models.FieldIssue `json:"issues,omitempty"`
}

// respondError maps err onto a status code. notFound names the missing
// resource.
func respondError(c *gin.Context, err error, notFound string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Validation failed", Issues: verr.Issues})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: notFound})
	case models.IsTransient(err):
		log.WithFields(log.Fields{
			"path": c.Request.URL.Path,
		}).WithError(err).Warn("Document store unavailable")
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "Service temporarily unavailable, please retry"})
	default:
		log.WithFields(log.Fields{
			"path": c.Request.URL.Path,
		}).WithError(err).Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

// bindJSON decodes the request body, reporting a malformed body as a
// validation issue.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return models.Invalid("body", "Request body must be a valid JSON object")
	}
	return nil
}
