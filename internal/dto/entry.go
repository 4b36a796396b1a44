package dto

import (
	"time"

	"github.com/SscSPs/edu_center_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpdateEntryRequest is a partial update; omitted fields stay unchanged and the clear flags
// reset an optional field.
type UpdateEntryRequest struct {
	Attendance           *string          `json:"attendance" binding:"omitempty,attendance"`
	Grade                *decimal.Decimal `json:"grade"`
	ClearGrade           bool             `json:"clearGrade"`
	BonusPoints          *decimal.Decimal `json:"bonusPoints"`
	ClearBonusPoints     bool             `json:"clearBonusPoints"`
	Comment              *string          `json:"comment" binding:"omitempty,max=2000"`
	ClearComment         bool             `json:"clearComment"`
	CommentCategory      *string          `json:"commentCategory" binding:"omitempty,max=64"`
	ClearCommentCategory bool             `json:"clearCommentCategory"`
}

// ToEntryPatch converts the request into the domain patch.
func (r UpdateEntryRequest) ToEntryPatch() domain.EntryPatch {
	patch := domain.EntryPatch{
		Grade:                r.Grade,
		ClearGrade:           r.ClearGrade,
		BonusPoints:          r.BonusPoints,
		ClearBonusPoints:     r.ClearBonusPoints,
		Comment:              r.Comment,
		ClearComment:         r.ClearComment,
		CommentCategory:      r.CommentCategory,
		ClearCommentCategory: r.ClearCommentCategory,
	}
	if r.Attendance != nil {
		status := domain.AttendanceStatus(*r.Attendance)
		patch.Attendance = &status
	}
	return patch
}

// EntryResponse defines the data returned for one journal entry.
type EntryResponse struct {
	EntryID         string           `json:"entryID"`
	JournalID       string           `json:"journalID"`
	StudentID       string           `json:"studentID"`
	DayOfWeek       int              `json:"dayOfWeek"`
	LessonNumber    int              `json:"lessonNumber"`
	LessonType      string           `json:"lessonType"`
	LessonDate      time.Time        `json:"lessonDate"`
	Attendance      string           `json:"attendance"`
	Grade           *decimal.Decimal `json:"grade,omitempty"`
	BonusPoints     *decimal.Decimal `json:"bonusPoints,omitempty"`
	Comment         *string          `json:"comment,omitempty"`
	CommentCategory *string          `json:"commentCategory,omitempty"`
	LastUpdatedAt   time.Time        `json:"lastUpdatedAt"`
	LastUpdatedBy   string           `json:"lastUpdatedBy"`
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	return EntryResponse{
		EntryID:         e.EntryID,
		JournalID:       e.JournalID,
		StudentID:       e.StudentID,
		DayOfWeek:       e.DayOfWeek,
		LessonNumber:    e.LessonNumber,
		LessonType:      string(e.LessonType),
		LessonDate:      e.LessonDate,
		Attendance:      string(e.Attendance),
		Grade:           e.Grade,
		BonusPoints:     e.BonusPoints,
		Comment:         e.Comment,
		CommentCategory: e.CommentCategory,
		LastUpdatedAt:   e.LastUpdatedAt,
		LastUpdatedBy:   e.LastUpdatedBy,
	}
}
