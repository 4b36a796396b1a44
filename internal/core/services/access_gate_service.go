package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
	portsrepo "github.com/SscSPs/edu_center_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/edu_center_app/internal/core/ports/services"
)

// accessGateService gates journal access per group across center boundaries.
type accessGateService struct {
	BaseService
	groupRepo portsrepo.GroupReader
}

// NewAccessGateService creates the access gate backed by the group store.
func NewAccessGateService(groupRepo portsrepo.GroupReader) portssvc.AccessGateSvc {
	return &accessGateService{groupRepo: groupRepo}
}

var _ portssvc.AccessGateSvc = (*accessGateService)(nil)

// AuthorizeGroupAccess evaluates, in order: group existence, the write capability, the
// administrative cross-center bypass, the center-equality shortcut, then the per-principal check.
func (s *accessGateService) AuthorizeGroupAccess(ctx context.Context, p domain.Principal, groupID string, capability domain.Capability) (*domain.Group, error) {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("group %s not found", groupID))
		}
		s.LogError(ctx, err, "Failed to load group for access check", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to load group %s: %w", groupID, err)
	}

	if capability == domain.CapabilityWrite && !p.IsAdministrative() && p.Type != domain.PrincipalMentor {
		return nil, s.deny(ctx, p, groupID, "only staff may modify journals")
	}

	if p.IsAdministrative() && p.CenterID == nil {
		return group, nil
	}
	if p.CenterID != nil && *p.CenterID == group.CenterID {
		return group, nil
	}

	if p.ID == "" {
		return nil, s.deny(ctx, p, groupID, "caller has no principal id")
	}

	switch {
	case p.IsAdministrative():
		// Scoped to another center: the group must look absent.
		s.LogDebug(ctx, "Administrative caller outside group center", slog.String("principal_id", p.ID), slog.String("group_id", groupID))
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("group %s not found", groupID))

	case p.Type == domain.PrincipalMentor:
		if group.MentorID != nil && *group.MentorID == p.ID {
			return group, nil
		}
		assignment, err := s.groupRepo.FindMentorAssignment(ctx, groupID, p.ID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load mentor assignment", slog.String("group_id", groupID), slog.String("mentor_id", p.ID))
			return nil, fmt.Errorf("failed to load mentor assignment: %w", err)
		}
		if assignment != nil && assignment.IsActive && !assignment.IsDeleted {
			return group, nil
		}
		return nil, s.deny(ctx, p, groupID, "mentor is not assigned to this group")

	case p.Type == domain.PrincipalStudent:
		membership, err := s.groupRepo.FindMembership(ctx, groupID, p.ID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load membership", slog.String("group_id", groupID), slog.String("student_id", p.ID))
			return nil, fmt.Errorf("failed to load membership: %w", err)
		}
		if membership != nil && membership.IsCurrent() {
			return group, nil
		}
		return nil, s.deny(ctx, p, groupID, "student is not a member of this group")
	}

	return nil, s.deny(ctx, p, groupID, "unknown principal type")
}

func (s *accessGateService) deny(ctx context.Context, p domain.Principal, groupID, reason string) error {
	s.LogWarn(ctx, "Journal access denied",
		slog.String("principal_id", p.ID),
		slog.String("principal_type", string(p.Type)),
		slog.String("group_id", groupID),
		slog.String("reason", reason))
	return apperrors.NewForbiddenError(reason)
}
