package dto

import (
	"time"

	"github.com/SscSPs/edu_center_app/internal/core/domain"
)

// GenerateJournalRequest is the body of POST /groups/{group_id}/journals.
type GenerateJournalRequest struct {
	WeekNumber int `json:"weekNumber" binding:"required,min=1"`
}

// JournalByDateQuery selects the week containing a calendar date.
type JournalByDateQuery struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// SlotResponse is one planned lesson of a week.
type SlotResponse struct {
	DayOfWeek    int       `json:"dayOfWeek"`
	LessonNumber int       `json:"lessonNumber"`
	LessonType   string    `json:"lessonType"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	LessonDate   time.Time `json:"lessonDate"`
}

// JournalResponse defines the data returned for a journal week.
type JournalResponse struct {
	JournalID  string         `json:"journalID"`
	GroupID    string         `json:"groupID"`
	WeekNumber int            `json:"weekNumber"`
	WeekStart  time.Time      `json:"weekStart"`
	WeekEnd    time.Time      `json:"weekEnd"`
	Slots      []SlotResponse `json:"slots"`
	CreatedAt  time.Time      `json:"createdAt"`
	CreatedBy  string         `json:"createdBy"`
}

// GenerateJournalResponse reports whether the week was created or already there.
type GenerateJournalResponse struct {
	Status         string          `json:"status"`
	Journal        JournalResponse `json:"journal"`
	EntriesCreated int             `json:"entriesCreated"`
}

// JournalViewResponse is the ranked progress view of one week.
type JournalViewResponse struct {
	Journal  JournalResponse              `json:"journal"`
	Students []domain.StudentWeekProgress `json:"students"`
}

// WeekNumbersResponse lists the created weeks of a group.
type WeekNumbersResponse struct {
	GroupID string `json:"groupID"`
	Weeks   []int  `json:"weeks"`
}

// ToJournalResponse converts a domain.Journal to JournalResponse DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	slots := make([]SlotResponse, len(j.Slots))
	for i, s := range j.Slots {
		slots[i] = SlotResponse{
			DayOfWeek:    s.DayOfWeek,
			LessonNumber: s.LessonNumber,
			LessonType:   string(s.LessonType),
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
			LessonDate:   s.LessonDate,
		}
	}
	return JournalResponse{
		JournalID:  j.JournalID,
		GroupID:    j.GroupID,
		WeekNumber: j.WeekNumber,
		WeekStart:  j.WeekStart,
		WeekEnd:    j.WeekEnd,
		Slots:      slots,
		CreatedAt:  j.CreatedAt,
		CreatedBy:  j.CreatedBy,
	}
}

// ToGenerateJournalResponse converts a generation result.
func ToGenerateJournalResponse(r *domain.GenerateResult) GenerateJournalResponse {
	resp := GenerateJournalResponse{
		Status:         string(r.Status),
		EntriesCreated: r.EntriesCreated,
	}
	if r.Journal != nil {
		resp.Journal = ToJournalResponse(r.Journal)
	}
	return resp
}

// ToJournalViewResponse converts a ranked view.
func ToJournalViewResponse(v *domain.JournalView) JournalViewResponse {
	students := v.Students
	if students == nil {
		students = []domain.StudentWeekProgress{}
	}
	return JournalViewResponse{
		Journal:  ToJournalResponse(&v.Journal),
		Students: students,
	}
}
