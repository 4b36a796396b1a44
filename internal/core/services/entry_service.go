package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
)

// UpdateEntry applies a partial update to one entry of a journal the caller may write.
// Callers that cannot read the entry's group get the same NotFound as for an unknown entry.
func (s *journalService) UpdateEntry(ctx context.Context, principal domain.Principal, entryID string, patch domain.EntryPatch) (*domain.JournalEntry, error) {
	entryNotFound := apperrors.NewNotFoundError(fmt.Sprintf("entry %s not found", entryID))

	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, entryNotFound
		}
		s.LogError(ctx, err, "Failed to find entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}

	journal, err := s.journalRepo.FindJournalByID(ctx, entry.JournalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find journal of entry", slog.String("entry_id", entryID), slog.String("journal_id", entry.JournalID))
		return nil, fmt.Errorf("failed to find journal of entry: %w", err)
	}

	if _, err := s.AuthorizeGroup(ctx, principal, journal.GroupID, domain.CapabilityRead); err != nil {
		if errors.Is(err, apperrors.ErrForbidden) || errors.Is(err, apperrors.ErrNotFound) {
			return nil, entryNotFound
		}
		return nil, err
	}
	if _, err := s.AuthorizeGroup(ctx, principal, journal.GroupID, domain.CapabilityWrite); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return nil, apperrors.NewValidationFailedError("no fields to update")
	}
	if err := patch.Validate(); err != nil {
		return nil, apperrors.NewAppError(http.StatusBadRequest, "invalid entry update", err)
	}

	updated := domain.ApplyEntryPatch(*entry, patch, actorOf(principal), s.now())
	if err := s.journalRepo.UpdateEntry(ctx, updated); err != nil {
		s.LogError(ctx, err, "Failed to update entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	s.invalidate(ctx, journal.GroupID)

	s.LogInfo(ctx, "Journal entry updated", slog.String("entry_id", entryID), slog.String("journal_id", journal.JournalID))
	return &updated, nil
}
