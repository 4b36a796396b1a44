package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
	portsrepo "github.com/SscSPs/edu_center_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxGroupRepository reads groups, memberships and mentor assignments.
type PgxGroupRepository struct {
	BaseRepository
}

func newPgxGroupRepository(pool *pgxpool.Pool) portsrepo.GroupRepositoryFacade {
	return &PgxGroupRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.GroupRepositoryFacade = (*PgxGroupRepository)(nil)

// FindGroupByID retrieves a live group by its ID.
func (r *PgxGroupRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	query := `
		SELECT group_id, center_id, name, mentor_id, start_date, total_weeks, lesson_days,
		       has_weekly_exam, lesson_start_time, lesson_end_time, is_deleted
		FROM groups
		WHERE group_id = $1 AND is_deleted = FALSE;
	`
	var g domain.Group
	err := r.Pool.QueryRow(ctx, query, groupID).Scan(
		&g.GroupID,
		&g.CenterID,
		&g.Name,
		&g.MentorID,
		&g.StartDate,
		&g.TotalWeeks,
		&g.LessonDays,
		&g.HasWeeklyExam,
		&g.LessonStartTime,
		&g.LessonEndTime,
		&g.IsDeleted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, internalError("failed to find group "+groupID, err)
	}
	return &g, nil
}

const membershipColumns = `
	m.group_id, m.student_id, s.full_name, m.is_active, m.is_deleted, m.joined_at
`

func scanMembership(row pgx.Row) (domain.GroupMembership, error) {
	var m domain.GroupMembership
	err := row.Scan(&m.GroupID, &m.StudentID, &m.FullName, &m.IsActive, &m.IsDeleted, &m.JoinedAt)
	return m, err
}

// ListMemberships returns all memberships of the group, including inactive and deleted ones.
func (r *PgxGroupRepository) ListMemberships(ctx context.Context, groupID string) ([]domain.GroupMembership, error) {
	query := `SELECT ` + membershipColumns + `
		FROM group_memberships m
		JOIN students s ON s.student_id = m.student_id
		WHERE m.group_id = $1
		ORDER BY s.full_name, m.student_id;
	`
	rows, err := r.Pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, internalError("failed to query memberships for group "+groupID, err)
	}
	memberships, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.GroupMembership, error) {
		return scanMembership(row)
	})
	if err != nil {
		return nil, internalError("failed to scan memberships for group "+groupID, err)
	}
	return memberships, nil
}

// FindMembership retrieves one student's membership in the group.
func (r *PgxGroupRepository) FindMembership(ctx context.Context, groupID, studentID string) (*domain.GroupMembership, error) {
	query := `SELECT ` + membershipColumns + `
		FROM group_memberships m
		JOIN students s ON s.student_id = m.student_id
		WHERE m.group_id = $1 AND m.student_id = $2;
	`
	m, err := scanMembership(r.Pool.QueryRow(ctx, query, groupID, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, internalError("failed to find membership of student "+studentID, err)
	}
	return &m, nil
}

// FindMentorAssignment retrieves a co-mentor assignment.
func (r *PgxGroupRepository) FindMentorAssignment(ctx context.Context, groupID, mentorID string) (*domain.MentorAssignment, error) {
	query := `
		SELECT group_id, mentor_id, is_active, is_deleted
		FROM mentor_assignments
		WHERE group_id = $1 AND mentor_id = $2;
	`
	var a domain.MentorAssignment
	err := r.Pool.QueryRow(ctx, query, groupID, mentorID).Scan(&a.GroupID, &a.MentorID, &a.IsActive, &a.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, internalError("failed to find mentor assignment of "+mentorID, err)
	}
	return &a, nil
}

// ListActiveGroupIDs returns the IDs of all live groups.
func (r *PgxGroupRepository) ListActiveGroupIDs(ctx context.Context) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT group_id FROM groups WHERE is_deleted = FALSE ORDER BY group_id;`)
	if err != nil {
		return nil, internalError("failed to query groups", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, internalError("failed to scan group IDs", err)
	}
	return ids, nil
}
