package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/edu_center_app/internal/core/ports/services"
	"github.com/SscSPs/edu_center_app/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// progressHandler serves totals and pass statistics.
type progressHandler struct {
	progressService portssvc.ProgressSvc
}

func newProgressHandler(progressService portssvc.ProgressSvc) *progressHandler {
	return &progressHandler{progressService: progressService}
}

func registerProgressRoutes(groupRoutes *gin.RouterGroup, progressService portssvc.ProgressSvc) {
	h := newProgressHandler(progressService)

	groupRoutes.GET("/totals", h.getGroupWeeklyTotals)
	groupRoutes.GET("/weeks/:week/totals", h.getStudentWeekTotals)
	groupRoutes.GET("/pass-stats", h.getPassStats)
}

// getStudentWeekTotals godoc
// @Summary Per-student totals of one week
// @Tags progress
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   week path int true "Week number"
// @Success 200 {array} domain.StudentWeekTotal
// @Failure 400 {object} map[string]string "Invalid week"
// @Failure 404 {object} map[string]string "Journal not found"
// @Security BearerAuth
// @Router /groups/{group_id}/weeks/{week}/totals [get]
func (h *progressHandler) getStudentWeekTotals(c *gin.Context) {
	week, ok := weekParam(c)
	if !ok {
		return
	}
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	totals, err := h.progressService.GetStudentWeekTotals(c.Request.Context(), principal, c.Param("group_id"), week)
	if err != nil {
		respondError(c, err, "get week totals")
		return
	}
	c.JSON(http.StatusOK, totals)
}

// getGroupWeeklyTotals godoc
// @Summary Per-week breakdown, with cross-week aggregates when no week is given
// @Tags progress
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   week query int false "Restrict to one week"
// @Success 200 {object} domain.GroupWeeklyTotals
// @Failure 400 {object} map[string]string "Invalid week"
// @Security BearerAuth
// @Router /groups/{group_id}/totals [get]
func (h *progressHandler) getGroupWeeklyTotals(c *gin.Context) {
	var q dto.WeekTotalsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week: " + err.Error()})
		return
	}
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	totals, err := h.progressService.GetGroupWeeklyTotals(c.Request.Context(), principal, c.Param("group_id"), q.Week)
	if err != nil {
		respondError(c, err, "get group totals")
		return
	}
	c.JSON(http.StatusOK, totals)
}

// getPassStats godoc
// @Summary Count students whose average reaches a threshold
// @Tags progress
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   threshold query number false "Pass threshold, defaults to the configured value"
// @Success 200 {object} domain.PassStats
// @Failure 400 {object} map[string]string "Invalid threshold"
// @Security BearerAuth
// @Router /groups/{group_id}/pass-stats [get]
func (h *progressHandler) getPassStats(c *gin.Context) {
	var q dto.PassStatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid threshold: " + err.Error()})
		return
	}

	var threshold *decimal.Decimal
	if q.Threshold != nil {
		t, err := decimal.NewFromString(*q.Threshold)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid threshold: " + err.Error()})
			return
		}
		threshold = &t
	}

	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	stats, err := h.progressService.GetGroupPassStats(c.Request.Context(), principal, c.Param("group_id"), threshold)
	if err != nil {
		respondError(c, err, "get pass stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
