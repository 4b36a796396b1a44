package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
	portsrepo "github.com/SscSPs/edu_center_app/internal/core/ports/repositories"
	"github.com/SscSPs/edu_center_app/internal/models"
	"github.com/SscSPs/edu_center_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// journalWeekConstraint guards one journal per (group, week).
const journalWeekConstraint = "uq_journals_group_week"

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journals, slots and entries.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

const journalColumns = `
	journal_id, group_id, week_number, week_start, week_end,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanJournal(row pgx.Row) (domain.Journal, error) {
	var m models.Journal
	err := row.Scan(
		&m.JournalID,
		&m.GroupID,
		&m.WeekNumber,
		&m.WeekStart,
		&m.WeekEnd,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return mapping.ToDomainJournal(m), err
}

const entryColumns = `
	entry_id, journal_id, student_id, day_of_week, lesson_number, lesson_type, start_time, end_time,
	attendance, grade, bonus_points, comment, comment_category, lesson_date, is_deleted,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.JournalID,
		&m.StudentID,
		&m.DayOfWeek,
		&m.LessonNumber,
		&m.LessonType,
		&m.StartTime,
		&m.EndTime,
		&m.Attendance,
		&m.Grade,
		&m.BonusPoints,
		&m.Comment,
		&m.CommentCategory,
		&m.LessonDate,
		&m.IsDeleted,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return mapping.ToDomainJournalEntry(m), err
}

// MaxWeekNumber returns the highest week created for the group, 0 if none.
func (r *PgxJournalRepository) MaxWeekNumber(ctx context.Context, groupID string) (int, error) {
	var maxWeek int
	err := r.Pool.QueryRow(ctx, `SELECT COALESCE(MAX(week_number), 0) FROM journals WHERE group_id = $1;`, groupID).Scan(&maxWeek)
	if err != nil {
		return 0, internalError("failed to read max week of group "+groupID, err)
	}
	return maxWeek, nil
}

// findOneJournal runs a single-journal query and attaches the slot template.
func (r *PgxJournalRepository) findOneJournal(ctx context.Context, what, query string, args ...any) (*domain.Journal, error) {
	j, err := scanJournal(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, internalError("failed to find journal "+what, err)
	}
	journals := []domain.Journal{j}
	if err := r.attachSlots(ctx, journals); err != nil {
		return nil, err
	}
	return &journals[0], nil
}

// FindJournalByID retrieves a journal by its ID.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE journal_id = $1;`
	return r.findOneJournal(ctx, "by ID "+journalID, query, journalID)
}

// FindJournalByWeek retrieves the journal of one week of a group.
func (r *PgxJournalRepository) FindJournalByWeek(ctx context.Context, groupID string, weekNumber int) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE group_id = $1 AND week_number = $2;`
	return r.findOneJournal(ctx, "by week for group "+groupID, query, groupID, weekNumber)
}

// FindJournalContaining retrieves the journal whose week range contains at.
func (r *PgxJournalRepository) FindJournalContaining(ctx context.Context, groupID string, at time.Time) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + `
		FROM journals
		WHERE group_id = $1 AND week_start <= $2 AND week_end >= $2
		ORDER BY week_number
		LIMIT 1;
	`
	return r.findOneJournal(ctx, "by date for group "+groupID, query, groupID, at)
}

func (r *PgxJournalRepository) listJournals(ctx context.Context, query string, args ...any) ([]domain.Journal, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, internalError("failed to query journals", err)
	}
	journals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Journal, error) {
		return scanJournal(row)
	})
	if err != nil {
		return nil, internalError("failed to scan journal rows", err)
	}
	return journals, nil
}

// ListJournalsByGroup returns all journals of a group ordered by week, without slots.
func (r *PgxJournalRepository) ListJournalsByGroup(ctx context.Context, groupID string) ([]domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE group_id = $1 ORDER BY week_number;`
	return r.listJournals(ctx, query, groupID)
}

// ListJournalsStartingAfter returns the group's journals that start strictly after the instant.
func (r *PgxJournalRepository) ListJournalsStartingAfter(ctx context.Context, groupID string, after time.Time) ([]domain.Journal, error) {
	query := `SELECT ` + journalColumns + `
		FROM journals
		WHERE group_id = $1 AND week_start > $2
		ORDER BY week_number;
	`
	journals, err := r.listJournals(ctx, query, groupID, after)
	if err != nil {
		return nil, err
	}
	if err := r.attachSlots(ctx, journals); err != nil {
		return nil, err
	}
	return journals, nil
}

// attachSlots loads the week templates of the given journals in one query.
func (r *PgxJournalRepository) attachSlots(ctx context.Context, journals []domain.Journal) error {
	if len(journals) == 0 {
		return nil
	}
	ids := make([]string, len(journals))
	for i, j := range journals {
		ids[i] = j.JournalID
	}
	query := `
		SELECT journal_id, day_of_week, lesson_number, lesson_type, start_time, end_time, lesson_date
		FROM journal_slots
		WHERE journal_id = ANY($1)
		ORDER BY journal_id, lesson_number;
	`
	rows, err := r.Pool.Query(ctx, query, ids)
	if err != nil {
		return internalError("failed to query journal slots", err)
	}
	defer rows.Close()

	byJournal := make(map[string][]domain.JournalSlot, len(journals))
	for rows.Next() {
		var m models.JournalSlot
		if err := rows.Scan(&m.JournalID, &m.DayOfWeek, &m.LessonNumber, &m.LessonType, &m.StartTime, &m.EndTime, &m.LessonDate); err != nil {
			return internalError("failed to scan journal slot row", err)
		}
		byJournal[m.JournalID] = append(byJournal[m.JournalID], mapping.ToDomainJournalSlot(m))
	}
	if err := rows.Err(); err != nil {
		return internalError("error iterating journal slot rows", err)
	}
	for i := range journals {
		journals[i].Slots = byJournal[journals[i].JournalID]
	}
	return nil
}

// FindEntryByID retrieves a live entry by its ID.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1 AND is_deleted = FALSE;`
	e, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, internalError("failed to find entry "+entryID, err)
	}
	return &e, nil
}

// ListEntriesByJournal returns the live entries of one journal.
func (r *PgxJournalRepository) ListEntriesByJournal(ctx context.Context, journalID string) ([]domain.JournalEntry, error) {
	byJournal, err := r.ListEntriesByJournals(ctx, []string{journalID})
	if err != nil {
		return nil, err
	}
	return byJournal[journalID], nil
}

// ListEntriesByJournals returns the live entries of several journals keyed by journal ID.
func (r *PgxJournalRepository) ListEntriesByJournals(ctx context.Context, journalIDs []string) (map[string][]domain.JournalEntry, error) {
	result := make(map[string][]domain.JournalEntry, len(journalIDs))
	if len(journalIDs) == 0 {
		return result, nil
	}
	query := `SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE journal_id = ANY($1) AND is_deleted = FALSE
		ORDER BY journal_id, student_id, lesson_number;
	`
	rows, err := r.Pool.Query(ctx, query, journalIDs)
	if err != nil {
		return nil, internalError("failed to query journal entries", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.JournalEntry, error) {
		return scanEntry(row)
	})
	if err != nil {
		return nil, internalError("failed to scan journal entry rows", err)
	}
	for _, e := range entries {
		result[e.JournalID] = append(result[e.JournalID], e)
	}
	return result, nil
}

// ListStudentSlotKeys returns the slots a student already has live entries for.
func (r *PgxJournalRepository) ListStudentSlotKeys(ctx context.Context, journalID, studentID string) ([]domain.SlotKey, error) {
	query := `
		SELECT day_of_week, lesson_number
		FROM journal_entries
		WHERE journal_id = $1 AND student_id = $2 AND is_deleted = FALSE;
	`
	rows, err := r.Pool.Query(ctx, query, journalID, studentID)
	if err != nil {
		return nil, internalError("failed to query slot keys of student "+studentID, err)
	}
	keys, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SlotKey, error) {
		var k domain.SlotKey
		err := row.Scan(&k.DayOfWeek, &k.LessonNumber)
		return k, err
	})
	if err != nil {
		return nil, internalError("failed to scan slot keys of student "+studentID, err)
	}
	return keys, nil
}

const insertSlotQuery = `
	INSERT INTO journal_slots (journal_id, day_of_week, lesson_number, lesson_type, start_time, end_time, lesson_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
`

const insertEntryQuery = `
	INSERT INTO journal_entries (
		entry_id, journal_id, student_id, day_of_week, lesson_number, lesson_type, start_time, end_time,
		attendance, grade, bonus_points, comment, comment_category, lesson_date, is_deleted,
		created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, FALSE, $15, $16, $17, $18)
`

// skipLiveDuplicate leaves an existing live entry for the same slot untouched.
const skipLiveDuplicate = `
	ON CONFLICT (journal_id, student_id, day_of_week, lesson_number) WHERE is_deleted = FALSE DO NOTHING;
`

func queueEntry(batch *pgx.Batch, query string, d domain.JournalEntry) {
	e := mapping.ToModelJournalEntry(d)
	batch.Queue(query,
		e.EntryID,
		e.JournalID,
		e.StudentID,
		e.DayOfWeek,
		e.LessonNumber,
		e.LessonType,
		e.StartTime,
		e.EndTime,
		e.Attendance,
		e.Grade,
		e.BonusPoints,
		e.Comment,
		e.CommentCategory,
		e.LessonDate,
		e.CreatedAt,
		e.CreatedBy,
		e.LastUpdatedAt,
		e.LastUpdatedBy,
	)
}

// CreateJournalWithEntries saves a journal, its slots and its entries within a DB transaction.
func (r *PgxJournalRepository) CreateJournalWithEntries(ctx context.Context, j domain.Journal, entries []domain.JournalEntry) error {
	journal := mapping.ToModelJournal(j)
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored once committed

	journalQuery := `
		INSERT INTO journals (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, journalQuery,
		journal.JournalID,
		journal.GroupID,
		journal.WeekNumber,
		journal.WeekStart,
		journal.WeekEnd,
		journal.CreatedAt,
		journal.CreatedBy,
		journal.LastUpdatedAt,
		journal.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, journalWeekConstraint) {
			return apperrors.ErrDuplicate
		}
		return internalError("failed to insert journal "+journal.JournalID, err)
	}

	batch := &pgx.Batch{}
	for _, slot := range j.Slots {
		s := mapping.ToModelJournalSlot(journal.JournalID, slot)
		batch.Queue(insertSlotQuery, s.JournalID, s.DayOfWeek, s.LessonNumber, s.LessonType, s.StartTime, s.EndTime, s.LessonDate)
	}
	for _, e := range entries {
		queueEntry(batch, insertEntryQuery+";", e)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return internalError("failed to insert slots and entries for journal "+journal.JournalID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// CreateEntries inserts entries in their own transaction. See CreateEntriesInTx.
func (r *PgxJournalRepository) CreateEntries(ctx context.Context, entries []domain.JournalEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	inserted, err := r.CreateEntriesInTx(ctx, tx, entries)
	if err != nil {
		return 0, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return inserted, nil
}

// CreateEntriesInTx inserts entries, skipping slots the student already holds live, and returns
// the number of rows actually inserted.
func (r *PgxJournalRepository) CreateEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.JournalEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		queueEntry(batch, insertEntryQuery+skipLiveDuplicate, e)
	}
	br := tx.SendBatch(ctx, batch)
	inserted := 0
	for range entries {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return 0, internalError("failed to insert journal entry", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, internalError("failed to close entry batch", err)
	}
	return inserted, nil
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const softDeleteEntriesQuery = `
	UPDATE journal_entries
	SET is_deleted = TRUE, last_updated_at = $3, last_updated_by = $4
	WHERE journal_id = ANY($1) AND student_id = ANY($2) AND is_deleted = FALSE;
`

func softDeleteStudentEntries(ctx context.Context, db execer, journalIDs, studentIDs []string, actor string, at time.Time) (int64, error) {
	if len(journalIDs) == 0 || len(studentIDs) == 0 {
		return 0, nil
	}
	tag, err := db.Exec(ctx, softDeleteEntriesQuery, journalIDs, studentIDs, at, actor)
	if err != nil {
		return 0, internalError("failed to remove entries of students", err)
	}
	return tag.RowsAffected(), nil
}

// SoftDeleteStudentEntries flags the students' live entries in the given journals as deleted.
func (r *PgxJournalRepository) SoftDeleteStudentEntries(ctx context.Context, journalIDs, studentIDs []string, actor string, at time.Time) (int64, error) {
	return softDeleteStudentEntries(ctx, r.Pool, journalIDs, studentIDs, actor, at)
}

// SoftDeleteStudentEntriesInTx is SoftDeleteStudentEntries within tx.
func (r *PgxJournalRepository) SoftDeleteStudentEntriesInTx(ctx context.Context, tx pgx.Tx, journalIDs, studentIDs []string, actor string, at time.Time) (int64, error) {
	return softDeleteStudentEntries(ctx, tx, journalIDs, studentIDs, actor, at)
}

// UpdateEntry persists the mutable fields of a live entry.
func (r *PgxJournalRepository) UpdateEntry(ctx context.Context, d domain.JournalEntry) error {
	entry := mapping.ToModelJournalEntry(d)
	query := `
		UPDATE journal_entries
		SET attendance = $2, grade = $3, bonus_points = $4, comment = $5, comment_category = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE entry_id = $1 AND is_deleted = FALSE;
	`
	tag, err := r.Pool.Exec(ctx, query,
		entry.EntryID,
		entry.Attendance,
		entry.Grade,
		entry.BonusPoints,
		entry.Comment,
		entry.CommentCategory,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return internalError("failed to update entry "+entry.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
