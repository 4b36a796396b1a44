package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProgressEntry is an entry decorated for display.
type ProgressEntry struct {
	JournalEntry
	DayName string `json:"dayName"`
}

// StudentWeekProgress is one student's row in a per-journal view.
type StudentWeekProgress struct {
	StudentID          string          `json:"studentID"`
	FullName           string          `json:"fullName"`
	IsMembershipActive bool            `json:"isMembershipActive"`
	WeeklyTotal        decimal.Decimal `json:"weeklyTotal"`
	Rank               int             `json:"rank"`
	Entries            []ProgressEntry `json:"entries"`
}

// JournalView is the ranked progress view of one journal.
type JournalView struct {
	Journal  Journal               `json:"journal"`
	Students []StudentWeekProgress `json:"students"`
}

// StudentWeekTotal is a student's total for a single week.
type StudentWeekTotal struct {
	StudentID          string          `json:"studentID"`
	FullName           string          `json:"fullName"`
	IsMembershipActive bool            `json:"isMembershipActive"`
	WeekNumber         int             `json:"weekNumber"`
	WeeklyTotal        decimal.Decimal `json:"weeklyTotal"`
	HasEntries         bool            `json:"hasEntries"` // At least one non-deleted entry that week
}

// WeekBreakdown lists every student's total for one week.
type WeekBreakdown struct {
	WeekNumber int                `json:"weekNumber"`
	WeekStart  time.Time          `json:"weekStart"`
	WeekEnd    time.Time          `json:"weekEnd"`
	Totals     []StudentWeekTotal `json:"totals"`
}

// StudentAggregate is a student's cross-week aggregate over the weeks they have entries in.
type StudentAggregate struct {
	StudentID          string          `json:"studentID"`
	FullName           string          `json:"fullName"`
	IsMembershipActive bool            `json:"isMembershipActive"`
	QualifyingWeeks    int             `json:"qualifyingWeeks"`
	AggregateTotal     decimal.Decimal `json:"aggregateTotal"`
	Average            decimal.Decimal `json:"average"`
	Rank               int             `json:"rank"`
}

// GroupWeeklyTotals is the result of GetGroupWeeklyTotals.
// Aggregates is only populated when no specific week was requested.
type GroupWeeklyTotals struct {
	GroupID    string             `json:"groupID"`
	Weeks      []WeekBreakdown    `json:"weeks"`
	Aggregates []StudentAggregate `json:"aggregates,omitempty"`
}

// PassStats counts students whose cross-week average reaches the threshold.
type PassStats struct {
	GroupID       string          `json:"groupID"`
	Threshold     decimal.Decimal `json:"threshold"`
	PassedCount   int             `json:"passedCount"`
	TotalStudents int             `json:"totalStudents"`
}
