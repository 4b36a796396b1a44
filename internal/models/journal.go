package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields mirrors the audit columns shared by journal tables.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
}

// Journal is a row of the journals table.
type Journal struct {
	JournalID  string    `db:"journal_id"`
	GroupID    string    `db:"group_id"`
	WeekNumber int       `db:"week_number"`
	WeekStart  time.Time `db:"week_start"`
	WeekEnd    time.Time `db:"week_end"`
	AuditFields
}

// JournalSlot is a row of the journal_slots table.
type JournalSlot struct {
	JournalID    string    `db:"journal_id"`
	DayOfWeek    int       `db:"day_of_week"`
	LessonNumber int       `db:"lesson_number"`
	LessonType   string    `db:"lesson_type"`
	StartTime    string    `db:"start_time"`
	EndTime      string    `db:"end_time"`
	LessonDate   time.Time `db:"lesson_date"`
}

// JournalEntry is a row of the journal_entries table. Nullable numerics use NullDecimal.
type JournalEntry struct {
	EntryID         string              `db:"entry_id"`
	JournalID       string              `db:"journal_id"`
	StudentID       string              `db:"student_id"`
	DayOfWeek       int                 `db:"day_of_week"`
	LessonNumber    int                 `db:"lesson_number"`
	LessonType      string              `db:"lesson_type"`
	StartTime       string              `db:"start_time"`
	EndTime         string              `db:"end_time"`
	Attendance      string              `db:"attendance"`
	Grade           decimal.NullDecimal `db:"grade"`
	BonusPoints     decimal.NullDecimal `db:"bonus_points"`
	Comment         *string             `db:"comment"`
	CommentCategory *string             `db:"comment_category"`
	LessonDate      time.Time           `db:"lesson_date"`
	IsDeleted       bool                `db:"is_deleted"`
	AuditFields
}
