package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/edu_center_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// MaxWeekNumber returns the highest week number created for the group, 0 if none.
	MaxWeekNumber(ctx context.Context, groupID string) (int, error)

	// FindJournalByID retrieves a journal with its slot template.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// FindJournalByWeek retrieves the journal of a given week with its slot template.
	FindJournalByWeek(ctx context.Context, groupID string, weekNumber int) (*domain.Journal, error)

	// FindJournalContaining retrieves the journal whose [WeekStart, WeekEnd] contains at.
	FindJournalContaining(ctx context.Context, groupID string, at time.Time) (*domain.Journal, error)

	// ListJournalsByGroup returns all journals of the group ordered by week number, without slots.
	ListJournalsByGroup(ctx context.Context, groupID string) ([]domain.Journal, error)

	// ListJournalsStartingAfter returns journals whose WeekStart is strictly after the instant, with slots.
	ListJournalsStartingAfter(ctx context.Context, groupID string, after time.Time) ([]domain.Journal, error)
}

// EntryReader defines read operations for journal entries. Soft-deleted entries are never returned.
type EntryReader interface {
	// FindEntryByID retrieves one entry.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntriesByJournal retrieves all entries of a journal.
	ListEntriesByJournal(ctx context.Context, journalID string) ([]domain.JournalEntry, error)

	// ListEntriesByJournals retrieves entries for several journals, grouped by journal ID.
	ListEntriesByJournals(ctx context.Context, journalIDs []string) (map[string][]domain.JournalEntry, error)

	// ListStudentSlotKeys returns the slots a student already has entries for in a journal.
	ListStudentSlotKeys(ctx context.Context, journalID, studentID string) ([]domain.SlotKey, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// CreateJournalWithEntries persists the journal, its slot template and its entries in one
	// transaction. A journal for the same (group, week) yields apperrors.ErrDuplicate.
	CreateJournalWithEntries(ctx context.Context, journal domain.Journal, entries []domain.JournalEntry) error
}

// EntryWriter defines write operations for journal entries
type EntryWriter interface {
	// CreateEntries inserts entries, skipping any that collide with a live entry for the same
	// (journal, student, day, lesson). It returns the number actually inserted.
	CreateEntries(ctx context.Context, entries []domain.JournalEntry) (int, error)

	// CreateEntriesInTx is CreateEntries within the caller's transaction.
	CreateEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.JournalEntry) (int, error)

	// SoftDeleteStudentEntries flags the students' entries in the given journals as deleted and
	// returns how many were flagged.
	SoftDeleteStudentEntries(ctx context.Context, journalIDs, studentIDs []string, actor string, at time.Time) (int64, error)

	// SoftDeleteStudentEntriesInTx is SoftDeleteStudentEntries within the caller's transaction.
	SoftDeleteStudentEntriesInTx(ctx context.Context, tx pgx.Tx, journalIDs, studentIDs []string, actor string, at time.Time) (int64, error)

	// UpdateEntry persists the mutable fields of an entry.
	UpdateEntry(ctx context.Context, entry domain.JournalEntry) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	EntryReader
	JournalWriter
	EntryWriter
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
