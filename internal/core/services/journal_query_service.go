package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
	"github.com/SscSPs/edu_center_app/internal/utils/progress"
)

// GetJournal returns the ranked progress view of one week.
func (s *journalService) GetJournal(ctx context.Context, principal domain.Principal, groupID string, weekNumber int) (*domain.JournalView, error) {
	if _, err := s.AuthorizeGroup(ctx, principal, groupID, domain.CapabilityRead); err != nil {
		return nil, err
	}
	journal, err := s.findJournalByWeek(ctx, groupID, weekNumber)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, journal)
}

// GetLatestJournal returns the ranked progress view of the highest created week.
func (s *journalService) GetLatestJournal(ctx context.Context, principal domain.Principal, groupID string) (*domain.JournalView, error) {
	if _, err := s.AuthorizeGroup(ctx, principal, groupID, domain.CapabilityRead); err != nil {
		return nil, err
	}
	maxWeek, err := s.journalRepo.MaxWeekNumber(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read highest week", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to read highest week: %w", err)
	}
	if maxWeek == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("group %s has no journals yet", groupID))
	}
	journal, err := s.findJournalByWeek(ctx, groupID, maxWeek)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, journal)
}

// GetJournalByDate returns the progress view of the week whose bounds contain date.
func (s *journalService) GetJournalByDate(ctx context.Context, principal domain.Principal, groupID string, date time.Time) (*domain.JournalView, error) {
	if _, err := s.AuthorizeGroup(ctx, principal, groupID, domain.CapabilityRead); err != nil {
		return nil, err
	}
	journal, err := s.journalRepo.FindJournalContaining(ctx, groupID, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("no journal of group %s covers %s", groupID, date.Format(time.DateOnly)))
		}
		s.LogError(ctx, err, "Failed to find journal by date", slog.String("group_id", groupID), slog.Time("date", date))
		return nil, fmt.Errorf("failed to find journal by date: %w", err)
	}
	return s.buildView(ctx, journal)
}

// GetGroupWeekNumbers returns 1..max. Weeks are never deleted, so the range has no gaps.
func (s *journalService) GetGroupWeekNumbers(ctx context.Context, principal domain.Principal, groupID string) ([]int, error) {
	if _, err := s.AuthorizeGroup(ctx, principal, groupID, domain.CapabilityRead); err != nil {
		return nil, err
	}
	maxWeek, err := s.journalRepo.MaxWeekNumber(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read highest week", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to read highest week: %w", err)
	}
	weeks := make([]int, maxWeek)
	for i := range weeks {
		weeks[i] = i + 1
	}
	return weeks, nil
}

func (s *journalService) findJournalByWeek(ctx context.Context, groupID string, weekNumber int) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByWeek(ctx, groupID, weekNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("week %d of group %s not found", weekNumber, groupID))
		}
		s.LogError(ctx, err, "Failed to find journal", slog.String("group_id", groupID), slog.Int("week", weekNumber))
		return nil, fmt.Errorf("failed to find journal: %w", err)
	}
	return journal, nil
}

func (s *journalService) buildView(ctx context.Context, journal *domain.Journal) (*domain.JournalView, error) {
	entries, err := s.journalRepo.ListEntriesByJournal(ctx, journal.JournalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries", slog.String("journal_id", journal.JournalID))
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	roster, err := s.loadRoster(ctx, journal.GroupID)
	if err != nil {
		return nil, err
	}
	view := progress.BuildJournalView(*journal, entries, roster, s.dayNamer(ctx))
	return &view, nil
}

// loadRoster maps every student ever in the group to their name and current membership state.
func (s *journalService) loadRoster(ctx context.Context, groupID string) (progress.Roster, error) {
	memberships, err := s.groupRepo.ListMemberships(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list memberships", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	roster := make(progress.Roster, len(memberships))
	for _, m := range memberships {
		if prev, ok := roster[m.StudentID]; ok && prev.IsMembershipActive {
			continue
		}
		roster[m.StudentID] = progress.StudentInfo{
			StudentID:          m.StudentID,
			FullName:           m.FullName,
			IsMembershipActive: m.IsCurrent(),
		}
	}
	return roster, nil
}

func (s *journalService) dayNamer(ctx context.Context) progress.DayNamer {
	if s.days == nil {
		return nil
	}
	return func(storeDay int) string {
		return s.days.DayName(ctx, storeDay)
	}
}
