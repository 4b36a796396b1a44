package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/edu_center_app/internal/core/domain"
	portssvc "github.com/SscSPs/edu_center_app/internal/core/ports/services"
	"github.com/SscSPs/edu_center_app/internal/dto"
	"github.com/SscSPs/edu_center_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// membershipHandler exposes membership sync operations to the group service.
type membershipHandler struct {
	syncService portssvc.MembershipSyncSvc
	access      portssvc.AccessGateSvc
}

func newMembershipHandler(syncService portssvc.MembershipSyncSvc, access portssvc.AccessGateSvc) *membershipHandler {
	return &membershipHandler{syncService: syncService, access: access}
}

func registerMembershipRoutes(groupRoutes *gin.RouterGroup, syncService portssvc.MembershipSyncSvc, access portssvc.AccessGateSvc) {
	h := newMembershipHandler(syncService, access)

	members := groupRoutes.Group("/members")
	{
		members.POST("/backfill", h.backfillStudents)
		members.POST("/:student_id/joined", h.studentJoined)
		members.POST("/:student_id/left", h.studentLeft)
	}
	groupRoutes.POST("/reconcile", h.reconcileGroup)
}

// backfillStudents godoc
// @Summary Backfill current-week entries for students
// @Description Creates the missing current-week entries for the listed students that are active members.
// @Tags membership
// @Accept  json
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   request body dto.BackfillRequest true "Students"
// @Success 200 {object} dto.EntriesCreatedResponse
// @Failure 404 {object} map[string]string "No current journal"
// @Security BearerAuth
// @Router /groups/{group_id}/members/backfill [post]
func (h *membershipHandler) backfillStudents(c *gin.Context) {
	var req dto.BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	created, err := h.syncService.BackfillCurrentWeekForStudents(c.Request.Context(), principal, c.Param("group_id"), req.StudentIDs)
	if err != nil {
		respondError(c, err, "backfill students")
		return
	}
	c.JSON(http.StatusOK, dto.EntriesCreatedResponse{EntriesCreated: created})
}

// authorizeHook checks write access before firing a best-effort hook.
func (h *membershipHandler) authorizeHook(c *gin.Context) (string, string, bool) {
	principal, ok := principalFrom(c)
	if !ok {
		return "", "", false
	}
	groupID, studentID := c.Param("group_id"), c.Param("student_id")
	if _, err := h.access.AuthorizeGroupAccess(c.Request.Context(), principal, groupID, domain.CapabilityWrite); err != nil {
		respondError(c, err, "sync membership")
		return "", "", false
	}
	return groupID, studentID, true
}

// studentJoined godoc
// @Summary Notify that a student joined a group
// @Description Best effort: generates week 1 for a fresh group or backfills the running weeks.
// @Tags membership
// @Param   group_id path string true "Group ID"
// @Param   student_id path string true "Student ID"
// @Success 202 "Accepted"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /groups/{group_id}/members/{student_id}/joined [post]
func (h *membershipHandler) studentJoined(c *gin.Context) {
	groupID, studentID, ok := h.authorizeHook(c)
	if !ok {
		return
	}
	h.syncService.OnStudentJoined(c.Request.Context(), groupID, studentID)
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Student joined hook processed",
		slog.String("group_id", groupID), slog.String("student_id", studentID))
	c.Status(http.StatusAccepted)
}

// studentLeft godoc
// @Summary Notify that a student left a group
// @Description Best effort: soft-deletes the student's entries in weeks that have not started.
// @Tags membership
// @Param   group_id path string true "Group ID"
// @Param   student_id path string true "Student ID"
// @Success 202 "Accepted"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /groups/{group_id}/members/{student_id}/left [post]
func (h *membershipHandler) studentLeft(c *gin.Context) {
	groupID, studentID, ok := h.authorizeHook(c)
	if !ok {
		return
	}
	h.syncService.OnStudentLeft(c.Request.Context(), groupID, studentID)
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Student left hook processed",
		slog.String("group_id", groupID), slog.String("student_id", studentID))
	c.Status(http.StatusAccepted)
}

// reconcileGroup godoc
// @Summary Repair entries that drifted from memberships
// @Tags membership
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Success 200 {object} domain.ReconcileResult
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /groups/{group_id}/reconcile [post]
func (h *membershipHandler) reconcileGroup(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	result, err := h.syncService.ReconcileGroup(c.Request.Context(), principal, c.Param("group_id"))
	if err != nil {
		respondError(c, err, "reconcile group")
		return
	}
	c.JSON(http.StatusOK, result)
}
