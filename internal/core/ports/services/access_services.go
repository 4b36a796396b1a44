package services

import (
	"context"

	"github.com/SscSPs/edu_center_app/internal/core/domain"
)

// AccessGateSvc decides whether a principal may read or write a group's journal data.
type AccessGateSvc interface {
	// AuthorizeGroupAccess returns the group when access is granted. It fails with
	// apperrors.ErrForbidden on rejection and apperrors.ErrNotFound when the caller
	// must not learn that the group exists.
	AuthorizeGroupAccess(ctx context.Context, principal domain.Principal, groupID string, capability domain.Capability) (*domain.Group, error)
}

// DayNameLocalizer maps a store-convention day code to a display name in the request locale.
type DayNameLocalizer interface {
	DayName(ctx context.Context, storeDay int) string
}
