package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/edu_center_app/internal/core/domain"
	portssvc "github.com/SscSPs/edu_center_app/internal/core/ports/services"
	"github.com/SscSPs/edu_center_app/internal/dto"
	"github.com/SscSPs/edu_center_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to weekly journals and their entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: journalService,
	}
}

// registerJournalRoutes registers journal routes under a group and the entry routes under rg.
func registerJournalRoutes(rg *gin.RouterGroup, groupRoutes *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	journals := groupRoutes.Group("/journals")
	{
		journals.POST("", h.generateJournal)
		journals.GET("/latest", h.getLatestJournal)
		journals.GET("/by-date", h.getJournalByDate)
		journals.GET("/:week", h.getJournal)
	}
	groupRoutes.GET("/weeks", h.listWeekNumbers)

	rg.PATCH("/entries/:entry_id", h.updateEntry)
}

// generateJournal godoc
// @Summary Generate the next journal week
// @Description Creates the journal of the next week for a group with one entry per active student and lesson slot.
// @Description Repeating the request for the latest week returns status ALREADY_EXISTS.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   journal body dto.GenerateJournalRequest true "Week to generate"
// @Success 201 {object} dto.GenerateJournalResponse "Journal created"
// @Success 200 {object} dto.GenerateJournalResponse "Journal already existed"
// @Failure 400 {object} map[string]string "Invalid week or out of sequence"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Group not found"
// @Failure 409 {object} map[string]string "Generation already in progress"
// @Failure 500 {object} map[string]string "Failed to generate journal"
// @Security BearerAuth
// @Router /groups/{group_id}/journals [post]
func (h *journalHandler) generateJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var req dto.GenerateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for GenerateJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	result, err := h.journalService.GenerateWeeklyJournal(c.Request.Context(), principal, groupID, req.WeekNumber)
	if err != nil {
		respondError(c, err, "generate journal")
		return
	}

	status := http.StatusCreated
	if result.Status == domain.GenerateAlreadyExists {
		status = http.StatusOK
	}
	logger.Info("Journal generation handled",
		slog.String("group_id", groupID),
		slog.Int("week_number", req.WeekNumber),
		slog.String("status", string(result.Status)))
	c.JSON(status, dto.ToGenerateJournalResponse(result))
}

// getJournal godoc
// @Summary Get the progress view of one week
// @Tags journals
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   week path int true "Week number"
// @Success 200 {object} dto.JournalViewResponse
// @Failure 400 {object} map[string]string "Invalid week"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Journal not found"
// @Security BearerAuth
// @Router /groups/{group_id}/journals/{week} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	week, ok := weekParam(c)
	if !ok {
		return
	}
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	view, err := h.journalService.GetJournal(c.Request.Context(), principal, c.Param("group_id"), week)
	if err != nil {
		respondError(c, err, "get journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalViewResponse(view))
}

// getLatestJournal godoc
// @Summary Get the progress view of the latest week
// @Tags journals
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Success 200 {object} dto.JournalViewResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "No journal yet"
// @Security BearerAuth
// @Router /groups/{group_id}/journals/latest [get]
func (h *journalHandler) getLatestJournal(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	view, err := h.journalService.GetLatestJournal(c.Request.Context(), principal, c.Param("group_id"))
	if err != nil {
		respondError(c, err, "get latest journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalViewResponse(view))
}

// getJournalByDate godoc
// @Summary Get the progress view of the week containing a date
// @Tags journals
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.JournalViewResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 404 {object} map[string]string "No journal for that date"
// @Security BearerAuth
// @Router /groups/{group_id}/journals/by-date [get]
func (h *journalHandler) getJournalByDate(c *gin.Context) {
	var q dto.JournalByDateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date: " + err.Error()})
		return
	}
	date, _ := time.Parse(time.DateOnly, q.Date) // Format checked by the binding tag

	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	view, err := h.journalService.GetJournalByDate(c.Request.Context(), principal, c.Param("group_id"), date)
	if err != nil {
		respondError(c, err, "get journal by date")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalViewResponse(view))
}

// listWeekNumbers godoc
// @Summary List the created weeks of a group
// @Tags journals
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Success 200 {object} dto.WeekNumbersResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /groups/{group_id}/weeks [get]
func (h *journalHandler) listWeekNumbers(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	groupID := c.Param("group_id")

	weeks, err := h.journalService.GetGroupWeekNumbers(c.Request.Context(), principal, groupID)
	if err != nil {
		respondError(c, err, "list weeks")
		return
	}
	if weeks == nil {
		weeks = []int{}
	}
	c.JSON(http.StatusOK, dto.WeekNumbersResponse{GroupID: groupID, Weeks: weeks})
}

// updateEntry godoc
// @Summary Update one journal entry
// @Description Partially updates attendance, grade, bonus points or comment of an entry.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entry_id path string true "Entry ID"
// @Param   entry body dto.UpdateEntryRequest true "Fields to change"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /entries/{entry_id} [patch]
func (h *journalHandler) updateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entry_id")

	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	entry, err := h.journalService.UpdateEntry(c.Request.Context(), principal, entryID, req.ToEntryPatch())
	if err != nil {
		respondError(c, err, "update entry")
		return
	}

	logger.Info("Entry updated", slog.String("entry_id", entryID))
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}
