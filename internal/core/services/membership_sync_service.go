package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
)

// BackfillCurrentWeekForStudent creates the current-week entries a joining student lacks.
// A student without an active membership is a successful no-op.
func (s *journalService) BackfillCurrentWeekForStudent(ctx context.Context, principal domain.Principal, groupID, studentID string) (int, error) {
	return s.BackfillCurrentWeekForStudents(ctx, principal, groupID, []string{studentID})
}

// BackfillCurrentWeekForStudents backfills the current week for the given students that are
// currently active members of the group.
func (s *journalService) BackfillCurrentWeekForStudents(ctx context.Context, principal domain.Principal, groupID string, studentIDs []string) (int, error) {
	if _, err := s.AuthorizeGroup(ctx, principal, groupID, domain.CapabilityWrite); err != nil {
		return 0, err
	}
	return s.backfillCurrentWeek(ctx, groupID, studentIDs, actorOf(principal))
}

func (s *journalService) backfillCurrentWeek(ctx context.Context, groupID string, studentIDs []string, actor string) (int, error) {
	journal, err := s.journalRepo.FindJournalContaining(ctx, groupID, s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, apperrors.NewAppError(http.StatusNotFound, fmt.Sprintf("group %s has no journal for the current week", groupID), ErrNoCurrentJournal)
		}
		s.LogError(ctx, err, "Failed to find current journal", slog.String("group_id", groupID))
		return 0, fmt.Errorf("failed to find current journal: %w", err)
	}

	active, err := s.activeAmong(ctx, groupID, studentIDs)
	if err != nil {
		return 0, err
	}
	if len(active) == 0 {
		s.LogDebug(ctx, "No active students to backfill", slog.String("group_id", groupID))
		return 0, nil
	}

	created, err := s.fillMissingEntries(ctx, journal, active, actor)
	if err != nil {
		return 0, err
	}
	if created > 0 {
		s.invalidate(ctx, groupID)
	}
	s.LogInfo(ctx, "Backfilled current week",
		slog.String("group_id", groupID),
		slog.String("journal_id", journal.JournalID),
		slog.Int("students", len(active)),
		slog.Int("created", created))
	return created, nil
}

// activeAmong filters studentIDs down to students with an active, non-deleted membership.
func (s *journalService) activeAmong(ctx context.Context, groupID string, studentIDs []string) ([]string, error) {
	if len(studentIDs) == 1 {
		m, err := s.groupRepo.FindMembership(ctx, groupID, studentIDs[0])
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, nil
			}
			s.LogError(ctx, err, "Failed to load membership", slog.String("group_id", groupID), slog.String("student_id", studentIDs[0]))
			return nil, fmt.Errorf("failed to load membership: %w", err)
		}
		if !m.IsCurrent() {
			return nil, nil
		}
		return []string{m.StudentID}, nil
	}

	memberships, err := s.groupRepo.ListMemberships(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list memberships", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	wanted := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = true
	}
	active := make([]string, 0, len(studentIDs))
	for _, id := range currentStudentIDs(memberships) {
		if wanted[id] {
			active = append(active, id)
		}
	}
	return active, nil
}

// slotTemplate returns the journal's stored week template. Journals written before the
// template was stored derive it from the distinct slots of their entries.
func (s *journalService) slotTemplate(ctx context.Context, journal *domain.Journal) ([]domain.JournalSlot, error) {
	if len(journal.Slots) > 0 {
		return journal.Slots, nil
	}
	entries, err := s.journalRepo.ListEntriesByJournal(ctx, journal.JournalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries for template", slog.String("journal_id", journal.JournalID))
		return nil, fmt.Errorf("failed to derive slot template: %w", err)
	}
	seen := make(map[domain.SlotKey]bool)
	slots := make([]domain.JournalSlot, 0, len(entries))
	for _, e := range entries {
		slot := e.Slot()
		if seen[slot.Key()] {
			continue
		}
		seen[slot.Key()] = true
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].LessonNumber != slots[j].LessonNumber {
			return slots[i].LessonNumber < slots[j].LessonNumber
		}
		return slots[i].DayOfWeek < slots[j].DayOfWeek
	})
	return slots, nil
}

// fillMissingEntries creates an ABSENT entry for every template slot each student lacks.
func (s *journalService) fillMissingEntries(ctx context.Context, journal *domain.Journal, studentIDs []string, actor string) (int, error) {
	missing, err := s.missingEntries(ctx, journal, studentIDs, actor)
	if err != nil || len(missing) == 0 {
		return 0, err
	}
	created, err := s.journalRepo.CreateEntries(ctx, missing)
	if err != nil {
		s.LogError(ctx, err, "Failed to create missing entries", slog.String("journal_id", journal.JournalID))
		return 0, fmt.Errorf("failed to create missing entries: %w", err)
	}
	return created, nil
}

// missingEntries builds, without writing, the entries the students lack in the journal.
func (s *journalService) missingEntries(ctx context.Context, journal *domain.Journal, studentIDs []string, actor string) ([]domain.JournalEntry, error) {
	slots, err := s.slotTemplate(ctx, journal)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, nil
	}

	now := s.now()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
	missing := make([]domain.JournalEntry, 0)
	for _, studentID := range studentIDs {
		keys, err := s.journalRepo.ListStudentSlotKeys(ctx, journal.JournalID, studentID)
		if err != nil {
			s.LogError(ctx, err, "Failed to list student slots", slog.String("journal_id", journal.JournalID), slog.String("student_id", studentID))
			return nil, fmt.Errorf("failed to list student slots: %w", err)
		}
		have := make(map[domain.SlotKey]bool, len(keys))
		for _, k := range keys {
			have[k] = true
		}
		for _, slot := range slots {
			if !have[slot.Key()] {
				missing = append(missing, domain.NewEntryForSlot(uuid.NewString(), journal.JournalID, studentID, slot, audit))
			}
		}
	}
	return missing, nil
}

// RemoveFutureEntriesForStudent soft-deletes the student's entries in journals starting after now.
// Current and past weeks are kept.
func (s *journalService) RemoveFutureEntriesForStudent(ctx context.Context, principal domain.Principal, groupID, studentID string) (int64, error) {
	if _, err := s.AuthorizeGroup(ctx, principal, groupID, domain.CapabilityWrite); err != nil {
		return 0, err
	}
	removed, err := s.removeFutureEntries(ctx, groupID, []string{studentID}, actorOf(principal))
	if removed > 0 {
		s.invalidate(ctx, groupID)
	}
	return removed, err
}

// futureJournalIDs lists the group's journals that start after now.
func (s *journalService) futureJournalIDs(ctx context.Context, groupID string, now time.Time) ([]string, error) {
	future, err := s.journalRepo.ListJournalsStartingAfter(ctx, groupID, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to list future journals", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to list future journals: %w", err)
	}
	ids := make([]string, len(future))
	for i, j := range future {
		ids[i] = j.JournalID
	}
	return ids, nil
}

func (s *journalService) removeFutureEntries(ctx context.Context, groupID string, studentIDs []string, actor string) (int64, error) {
	now := s.now()
	journalIDs, err := s.futureJournalIDs(ctx, groupID, now)
	if err != nil {
		return 0, err
	}
	if len(journalIDs) == 0 || len(studentIDs) == 0 {
		return 0, nil
	}

	removed, err := s.journalRepo.SoftDeleteStudentEntries(ctx, journalIDs, studentIDs, actor, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to remove future entries", slog.String("group_id", groupID), slog.Int("students", len(studentIDs)))
		return 0, fmt.Errorf("failed to remove future entries: %w", err)
	}
	s.LogInfo(ctx, "Removed future entries", slog.String("group_id", groupID), slog.Int("students", len(studentIDs)), slog.Int64("removed", removed))
	return removed, nil
}

// OnStudentJoined runs after a membership becomes active. It creates week 1 for a group that
// has no journal yet, backfills the current week and fills already created future weeks.
// Failures are logged and swallowed so the membership change itself stands.
func (s *journalService) OnStudentJoined(ctx context.Context, groupID, studentID string) {
	// Cached views carry membership status, so they go stale even when no entry changes.
	defer s.invalidate(ctx, groupID)

	system := domain.SystemPrincipal()
	logAttrs := []any{slog.String("group_id", groupID), slog.String("student_id", studentID)}

	maxWeek, err := s.journalRepo.MaxWeekNumber(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Join hook: failed to read highest week", logAttrs...)
		return
	}
	if maxWeek == 0 {
		if _, err := s.GenerateWeeklyJournal(ctx, system, groupID, 1); err != nil {
			s.LogError(ctx, err, "Join hook: failed to create first week", logAttrs...)
		}
		return
	}

	if _, err := s.backfillCurrentWeek(ctx, groupID, []string{studentID}, domain.SystemActor); err != nil {
		if errors.Is(err, ErrNoCurrentJournal) {
			s.LogDebug(ctx, "Join hook: no current week to backfill", logAttrs...)
		} else {
			s.LogError(ctx, err, "Join hook: backfill failed", logAttrs...)
		}
	}

	active, err := s.activeAmong(ctx, groupID, []string{studentID})
	if err != nil || len(active) == 0 {
		return
	}
	future, err := s.journalRepo.ListJournalsStartingAfter(ctx, groupID, s.now())
	if err != nil {
		s.LogError(ctx, err, "Join hook: failed to list future journals", logAttrs...)
		return
	}
	for i := range future {
		if _, err := s.fillMissingEntries(ctx, &future[i], active, domain.SystemActor); err != nil {
			s.LogError(ctx, err, "Join hook: failed to fill future week", append(logAttrs, slog.Int("week", future[i].WeekNumber))...)
		}
	}
}

// OnStudentLeft runs after a membership is deactivated or deleted. Failures are logged and swallowed.
func (s *journalService) OnStudentLeft(ctx context.Context, groupID, studentID string) {
	defer s.invalidate(ctx, groupID)

	if _, err := s.removeFutureEntries(ctx, groupID, []string{studentID}, domain.SystemActor); err != nil {
		s.LogError(ctx, err, "Leave hook: failed to remove future entries",
			slog.String("group_id", groupID),
			slog.String("student_id", studentID))
	}
}

// ReconcileGroup repairs what failed hooks left behind: every active member gets the entries
// they lack in the current and future weeks, and every former member loses their future entries.
func (s *journalService) ReconcileGroup(ctx context.Context, principal domain.Principal, groupID string) (*domain.ReconcileResult, error) {
	if _, err := s.AuthorizeGroup(ctx, principal, groupID, domain.CapabilityWrite); err != nil {
		return nil, err
	}
	actor := actorOf(principal)
	result := &domain.ReconcileResult{GroupID: groupID}

	memberships, err := s.groupRepo.ListMemberships(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list memberships", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	active := currentStudentIDs(memberships)
	isActive := make(map[string]bool, len(active))
	for _, id := range active {
		isActive[id] = true
	}
	former := make([]string, 0)
	seenFormer := make(map[string]bool)
	for _, m := range memberships {
		if !isActive[m.StudentID] && !seenFormer[m.StudentID] {
			seenFormer[m.StudentID] = true
			former = append(former, m.StudentID)
		}
	}

	now := s.now()
	targets := make([]domain.Journal, 0)
	current, err := s.journalRepo.FindJournalContaining(ctx, groupID, now)
	switch {
	case err == nil:
		targets = append(targets, *current)
	case !errors.Is(err, apperrors.ErrNotFound):
		s.LogError(ctx, err, "Failed to find current journal", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to find current journal: %w", err)
	}
	future, err := s.journalRepo.ListJournalsStartingAfter(ctx, groupID, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to list future journals", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to list future journals: %w", err)
	}
	targets = append(targets, future...)
	futureIDs := make([]string, len(future))
	for i, j := range future {
		futureIDs[i] = j.JournalID
	}

	missing := make([]domain.JournalEntry, 0)
	if len(active) > 0 {
		for i := range targets {
			entries, err := s.missingEntries(ctx, &targets[i], active, actor)
			if err != nil {
				return nil, err
			}
			missing = append(missing, entries...)
		}
	}

	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin reconcile transaction", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.journalRepo.Rollback(ctx, tx) // Ignored once committed

	created, err := s.journalRepo.CreateEntriesInTx(ctx, tx, missing)
	if err != nil {
		s.LogError(ctx, err, "Failed to create missing entries", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to create missing entries: %w", err)
	}
	removed, err := s.journalRepo.SoftDeleteStudentEntriesInTx(ctx, tx, futureIDs, former, actor, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to remove future entries", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to remove future entries: %w", err)
	}
	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit reconcile transaction", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to commit reconcile: %w", err)
	}
	result.EntriesCreated = created
	result.EntriesRemoved = removed

	if created > 0 || removed > 0 {
		s.invalidate(ctx, groupID)
	}
	s.LogInfo(ctx, "Group reconciled",
		slog.String("group_id", groupID),
		slog.Int("created", result.EntriesCreated),
		slog.Int64("removed", result.EntriesRemoved))
	return result, nil
}
