package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
	"github.com/SscSPs/edu_center_app/internal/utils/progress"
)

// allWeeks is the cache slot of the cross-week view.
const allWeeks = 0

// GetStudentWeekTotals returns ranked totals of every student with entries in the week.
func (s *journalService) GetStudentWeekTotals(ctx context.Context, principal domain.Principal, groupID string, weekNumber int) ([]domain.StudentWeekTotal, error) {
	if _, err := s.AuthorizeGroup(ctx, principal, groupID, domain.CapabilityRead); err != nil {
		return nil, err
	}
	journal, err := s.findJournalByWeek(ctx, groupID, weekNumber)
	if err != nil {
		return nil, err
	}
	entries, err := s.journalRepo.ListEntriesByJournal(ctx, journal.JournalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries", slog.String("journal_id", journal.JournalID))
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	roster, err := s.loadRoster(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return progress.WeekTotals(*journal, entries, roster), nil
}

// GetGroupWeeklyTotals returns the breakdown of one week, or of all weeks together with the
// cross-week aggregates when weekNumber is nil.
func (s *journalService) GetGroupWeeklyTotals(ctx context.Context, principal domain.Principal, groupID string, weekNumber *int) (*domain.GroupWeeklyTotals, error) {
	if _, err := s.AuthorizeGroup(ctx, principal, groupID, domain.CapabilityRead); err != nil {
		return nil, err
	}

	cacheSlot := allWeeks
	if weekNumber != nil {
		if *weekNumber < 1 {
			return nil, apperrors.NewValidationFailedError(fmt.Sprintf("week number must be at least 1, got %d", *weekNumber))
		}
		cacheSlot = *weekNumber
	}
	if cached := s.cachedTotals(ctx, groupID, cacheSlot); cached != nil {
		return cached, nil
	}

	var journals []domain.Journal
	if weekNumber != nil {
		journal, err := s.findJournalByWeek(ctx, groupID, *weekNumber)
		if err != nil {
			return nil, err
		}
		journals = []domain.Journal{*journal}
	} else {
		var err error
		journals, err = s.journalRepo.ListJournalsByGroup(ctx, groupID)
		if err != nil {
			s.LogError(ctx, err, "Failed to list journals", slog.String("group_id", groupID))
			return nil, fmt.Errorf("failed to list journals: %w", err)
		}
	}

	journalIDs := make([]string, len(journals))
	for i, j := range journals {
		journalIDs[i] = j.JournalID
	}
	entriesByJournal := map[string][]domain.JournalEntry{}
	if len(journalIDs) > 0 {
		var err error
		entriesByJournal, err = s.journalRepo.ListEntriesByJournals(ctx, journalIDs)
		if err != nil {
			s.LogError(ctx, err, "Failed to list entries", slog.String("group_id", groupID))
			return nil, fmt.Errorf("failed to list entries: %w", err)
		}
	}
	roster, err := s.loadRoster(ctx, groupID)
	if err != nil {
		return nil, err
	}

	weeks, aggregates := progress.CrossWeek(journals, entriesByJournal, roster)
	totals := &domain.GroupWeeklyTotals{GroupID: groupID, Weeks: weeks}
	if weekNumber == nil {
		totals.Aggregates = aggregates
	}

	s.storeTotals(ctx, groupID, cacheSlot, totals)
	return totals, nil
}

// GetGroupPassStats counts students whose cross-week average is at least threshold.
// A group without journals yields zero counts.
func (s *journalService) GetGroupPassStats(ctx context.Context, principal domain.Principal, groupID string, threshold *decimal.Decimal) (*domain.PassStats, error) {
	th := s.passThreshold
	if threshold != nil {
		th = *threshold
	}
	if th.IsNegative() {
		return nil, apperrors.NewValidationFailedError("threshold must not be negative")
	}

	totals, err := s.GetGroupWeeklyTotals(ctx, principal, groupID, nil)
	if err != nil {
		return nil, err
	}
	passed, total := progress.CountPassed(totals.Aggregates, th)
	return &domain.PassStats{
		GroupID:       groupID,
		Threshold:     th,
		PassedCount:   passed,
		TotalStudents: total,
	}, nil
}

func (s *journalService) cachedTotals(ctx context.Context, groupID string, week int) *domain.GroupWeeklyTotals {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.GetGroupTotals(ctx, groupID, week)
	if err != nil {
		s.LogError(ctx, err, "Progress cache read failed", slog.String("group_id", groupID))
		return nil
	}
	if cached != nil {
		s.LogDebug(ctx, "Progress cache hit", slog.String("group_id", groupID), slog.Int("week", week))
	}
	return cached
}

func (s *journalService) storeTotals(ctx context.Context, groupID string, week int, totals *domain.GroupWeeklyTotals) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetGroupTotals(ctx, groupID, week, totals); err != nil {
		s.LogError(ctx, err, "Progress cache write failed", slog.String("group_id", groupID))
	}
}
