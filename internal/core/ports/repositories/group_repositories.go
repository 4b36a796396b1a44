package repositories

import (
	"context"

	"github.com/SscSPs/edu_center_app/internal/core/domain"
)

// GroupReader defines the read-only view of groups, memberships and mentor assignments
// that the journal engine consumes. Groups themselves are owned by another service.
type GroupReader interface {
	// FindGroupByID returns the group, or apperrors.ErrNotFound if it is absent or soft-deleted.
	FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error)

	// ListMemberships returns every membership row of the group, including inactive and
	// soft-deleted ones, with the student's full name.
	ListMemberships(ctx context.Context, groupID string) ([]domain.GroupMembership, error)

	// FindMembership returns the membership of one student, or apperrors.ErrNotFound.
	FindMembership(ctx context.Context, groupID, studentID string) (*domain.GroupMembership, error)

	// FindMentorAssignment returns a co-mentor assignment, or apperrors.ErrNotFound.
	FindMentorAssignment(ctx context.Context, groupID, mentorID string) (*domain.MentorAssignment, error)

	// ListActiveGroupIDs returns IDs of all non-deleted groups, used by repair passes.
	ListActiveGroupIDs(ctx context.Context) ([]string, error)
}

// GroupRepositoryFacade is everything the engine needs from the group store.
type GroupRepositoryFacade interface {
	GroupReader
}
