package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
	"github.com/SscSPs/edu_center_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto its HTTP status. Internal failures keep their detail
// in the log only.
func respondError(c *gin.Context, err error, action string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := apperrors.StatusCode(err)

	switch status {
	case http.StatusInternalServerError:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Failed to " + action})
	case http.StatusNotFound:
		logger.Warn("Not found while trying to "+action, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Not found"})
	case http.StatusForbidden:
		logger.Warn("Forbidden while trying to "+action, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Forbidden"})
	default:
		logger.Warn("Rejected request to "+action, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

// principalFrom returns the authenticated caller or aborts with 401.
func principalFrom(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return domain.Principal{}, false
	}
	return p, true
}

// weekParam parses the :week path parameter or aborts with 400.
func weekParam(c *gin.Context) (int, bool) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil || week < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week must be a positive integer"})
		return 0, false
	}
	return week, true
}
