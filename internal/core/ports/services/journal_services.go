package services

import (
	"context"
	"time"

	"github.com/SscSPs/edu_center_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalWriterSvc defines journal generation
type JournalWriterSvc interface {
	// GenerateWeeklyJournal creates the next week of a group's journal and its entries.
	// Calling it again for the week that was just created reports GenerateAlreadyExists.
	GenerateWeeklyJournal(ctx context.Context, principal domain.Principal, groupID string, weekNumber int) (*domain.GenerateResult, error)
}

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetJournal returns the ranked progress view of one week.
	GetJournal(ctx context.Context, principal domain.Principal, groupID string, weekNumber int) (*domain.JournalView, error)

	// GetLatestJournal returns the ranked progress view of the highest week.
	GetLatestJournal(ctx context.Context, principal domain.Principal, groupID string) (*domain.JournalView, error)

	// GetJournalByDate returns the progress view of the week containing date.
	GetJournalByDate(ctx context.Context, principal domain.Principal, groupID string, date time.Time) (*domain.JournalView, error)

	// GetGroupWeekNumbers returns 1..max of the created weeks.
	GetGroupWeekNumbers(ctx context.Context, principal domain.Principal, groupID string) ([]int, error)
}

// EntryWriterSvc defines mutation of single entries
type EntryWriterSvc interface {
	// UpdateEntry applies a partial update to one entry.
	UpdateEntry(ctx context.Context, principal domain.Principal, entryID string, patch domain.EntryPatch) (*domain.JournalEntry, error)
}

// MembershipSyncSvc keeps entries consistent with group membership
type MembershipSyncSvc interface {
	// BackfillCurrentWeekForStudent creates missing current-week entries for a joining student.
	BackfillCurrentWeekForStudent(ctx context.Context, principal domain.Principal, groupID, studentID string) (int, error)

	// BackfillCurrentWeekForStudents is the batch variant, restricted to currently active members.
	BackfillCurrentWeekForStudents(ctx context.Context, principal domain.Principal, groupID string, studentIDs []string) (int, error)

	// RemoveFutureEntriesForStudent soft-deletes the student's entries in weeks that start after now.
	RemoveFutureEntriesForStudent(ctx context.Context, principal domain.Principal, groupID, studentID string) (int64, error)

	// OnStudentJoined is the best-effort hook fired after a membership becomes active.
	OnStudentJoined(ctx context.Context, groupID, studentID string)

	// OnStudentLeft is the best-effort hook fired after a membership is deactivated or deleted.
	OnStudentLeft(ctx context.Context, groupID, studentID string)

	// ReconcileGroup repairs drift between memberships and entries left by failed hooks.
	ReconcileGroup(ctx context.Context, principal domain.Principal, groupID string) (*domain.ReconcileResult, error)
}

// ProgressSvc defines totals and statistics
type ProgressSvc interface {
	// GetStudentWeekTotals returns per-student totals for one week.
	GetStudentWeekTotals(ctx context.Context, principal domain.Principal, groupID string, weekNumber int) ([]domain.StudentWeekTotal, error)

	// GetGroupWeeklyTotals returns the per-week breakdown, plus cross-week aggregates when weekNumber is nil.
	GetGroupWeeklyTotals(ctx context.Context, principal domain.Principal, groupID string, weekNumber *int) (*domain.GroupWeeklyTotals, error)

	// GetGroupPassStats counts students whose cross-week average reaches threshold.
	// A nil threshold uses the configured default.
	GetGroupPassStats(ctx context.Context, principal domain.Principal, groupID string, threshold *decimal.Decimal) (*domain.PassStats, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalWriterSvc
	JournalReaderSvc
	EntryWriterSvc
	MembershipSyncSvc
	ProgressSvc
}
