package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LessonType distinguishes regular lessons from exams.
type LessonType string

const (
	LessonRegular LessonType = "REGULAR"
	LessonExam    LessonType = "EXAM"
)

// AttendanceStatus is the attendance mark of one entry.
type AttendanceStatus string

const (
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceExcused AttendanceStatus = "EXCUSED"
)

// IsValid reports whether s is a known attendance status.
func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendanceAbsent, AttendancePresent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// Journal is the record of one group's one lesson-week.
type Journal struct {
	JournalID  string        `json:"journalID"`
	GroupID    string        `json:"groupID"`
	WeekNumber int           `json:"weekNumber"`
	WeekStart  time.Time     `json:"weekStart"`
	WeekEnd    time.Time     `json:"weekEnd"`
	Slots      []JournalSlot `json:"slots,omitempty"` // Week template, ordered by lesson number
	AuditFields
}

// Contains reports whether t falls inside [WeekStart, WeekEnd].
func (j Journal) Contains(t time.Time) bool {
	return !t.Before(j.WeekStart) && !t.After(j.WeekEnd)
}

// JournalSlot is one planned lesson of a week; the set of slots is the week template.
type JournalSlot struct {
	DayOfWeek    int        `json:"dayOfWeek"` // Store convention, 1=Monday..7=Sunday
	LessonNumber int        `json:"lessonNumber"`
	LessonType   LessonType `json:"lessonType"`
	StartTime    string     `json:"startTime"`
	EndTime      string     `json:"endTime"`
	LessonDate   time.Time  `json:"lessonDate"`
}

// SlotKey identifies a slot inside one journal.
type SlotKey struct {
	DayOfWeek    int
	LessonNumber int
}

// Key returns the (dayOfWeek, lessonNumber) identity of the slot.
func (s JournalSlot) Key() SlotKey {
	return SlotKey{DayOfWeek: s.DayOfWeek, LessonNumber: s.LessonNumber}
}

// JournalEntry is one student's record for one lesson slot within a journal.
type JournalEntry struct {
	EntryID         string           `json:"entryID"`
	JournalID       string           `json:"journalID"`
	StudentID       string           `json:"studentID"`
	DayOfWeek       int              `json:"dayOfWeek"`
	LessonNumber    int              `json:"lessonNumber"`
	LessonType      LessonType       `json:"lessonType"`
	StartTime       string           `json:"startTime"`
	EndTime         string           `json:"endTime"`
	Attendance      AttendanceStatus `json:"attendance"`
	Grade           *decimal.Decimal `json:"grade,omitempty"`
	BonusPoints     *decimal.Decimal `json:"bonusPoints,omitempty"`
	Comment         *string          `json:"comment,omitempty"`
	CommentCategory *string          `json:"commentCategory,omitempty"`
	LessonDate      time.Time        `json:"lessonDate"`
	IsDeleted       bool             `json:"isDeleted"`
	AuditFields
}

// Slot returns the template slot this entry was created from.
func (e JournalEntry) Slot() JournalSlot {
	return JournalSlot{
		DayOfWeek:    e.DayOfWeek,
		LessonNumber: e.LessonNumber,
		LessonType:   e.LessonType,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		LessonDate:   e.LessonDate,
	}
}

// NewEntryForSlot builds an ABSENT, ungraded entry for the student in the given slot.
func NewEntryForSlot(entryID, journalID, studentID string, slot JournalSlot, audit AuditFields) JournalEntry {
	return JournalEntry{
		EntryID:      entryID,
		JournalID:    journalID,
		StudentID:    studentID,
		DayOfWeek:    slot.DayOfWeek,
		LessonNumber: slot.LessonNumber,
		LessonType:   slot.LessonType,
		StartTime:    slot.StartTime,
		EndTime:      slot.EndTime,
		Attendance:   AttendanceAbsent,
		LessonDate:   slot.LessonDate,
		AuditFields:  audit,
	}
}

// GenerateStatus is the outcome category of a successful GenerateWeeklyJournal call.
type GenerateStatus string

const (
	GenerateCreated       GenerateStatus = "CREATED"
	GenerateAlreadyExists GenerateStatus = "ALREADY_EXISTS"
)

// GenerateResult describes the journal produced (or found) by GenerateWeeklyJournal.
type GenerateResult struct {
	Status         GenerateStatus `json:"status"`
	Journal        *Journal       `json:"journal"`
	EntriesCreated int            `json:"entriesCreated"`
}

// ReconcileResult summarises one repair pass over a group.
type ReconcileResult struct {
	GroupID        string `json:"groupID"`
	EntriesCreated int    `json:"entriesCreated"`
	EntriesRemoved int64  `json:"entriesRemoved"`
}

// ExamLessonNumber is the lesson slot that can carry an exam.
const ExamLessonNumber = 6

// LessonTypeFor decides the lesson type of a planned slot. Groups with a weekly exam sit one
// in lesson 6 of every week; other groups only in lesson 6 of every fourth week.
func LessonTypeFor(lessonNumber, weekNumber int, hasWeeklyExam bool) LessonType {
	if lessonNumber != ExamLessonNumber {
		return LessonRegular
	}
	if hasWeeklyExam || weekNumber%4 == 0 {
		return LessonExam
	}
	return LessonRegular
}
