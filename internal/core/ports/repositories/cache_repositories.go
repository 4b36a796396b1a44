package repositories

import (
	"context"

	"github.com/SscSPs/edu_center_app/internal/core/domain"
)

// ProgressCache stores computed weekly totals per group. Any write to a group's journal data
// must call InvalidateGroup so stale views are never served.
type ProgressCache interface {
	// GetGroupTotals returns the cached totals for week (0 means all weeks), or nil on a miss.
	GetGroupTotals(ctx context.Context, groupID string, week int) (*domain.GroupWeeklyTotals, error)

	// SetGroupTotals caches totals for week (0 means all weeks).
	SetGroupTotals(ctx context.Context, groupID string, week int, totals *domain.GroupWeeklyTotals) error

	// InvalidateGroup drops every cached view of the group.
	InvalidateGroup(ctx context.Context, groupID string) error
}

// CreationLocker serialises journal generation for one (group, week) across processes.
type CreationLocker interface {
	// Acquire tries to take the lock once. When acquired is false another holder owns it.
	Acquire(ctx context.Context, key string) (release func(context.Context) error, acquired bool, err error)
}
