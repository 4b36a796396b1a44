package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
	portsrepo "github.com/SscSPs/edu_center_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/edu_center_app/internal/core/ports/services"
	"github.com/SscSPs/edu_center_app/internal/utils/calendar"
)

var (
	ErrWeekSequence     = errors.New("week sequence violation")
	ErrWeekAlreadyTaken = errors.New("week already created or in the past")
	ErrWeekOutOfRange   = errors.New("week exceeds the group's total weeks")
	ErrNoCurrentJournal = errors.New("no journal covers the current date")
	ErrGenerationBusy   = errors.New("journal generation already in progress")
)

// journalService generates weekly journals, keeps their entries in line with group
// membership and serves progress views over them.
type journalService struct {
	BaseService
	groupRepo     portsrepo.GroupRepositoryFacade
	journalRepo   portsrepo.JournalRepositoryWithTx
	cache         portsrepo.ProgressCache
	locker        portsrepo.CreationLocker
	days          portssvc.DayNameLocalizer
	passThreshold decimal.Decimal
	now           func() time.Time
}

// JournalServiceOption is a functional option for configuring the journal service
type JournalServiceOption func(*journalService)

// WithAccessGate sets the access gate consulted by every operation.
func WithAccessGate(gate portssvc.AccessGateSvc) JournalServiceOption {
	return func(s *journalService) {
		s.AccessGate = gate
	}
}

// WithProgressCache enables caching of weekly totals.
func WithProgressCache(cache portsrepo.ProgressCache) JournalServiceOption {
	return func(s *journalService) {
		s.cache = cache
	}
}

// WithCreationLocker serialises journal generation across processes.
func WithCreationLocker(locker portsrepo.CreationLocker) JournalServiceOption {
	return func(s *journalService) {
		s.locker = locker
	}
}

// WithDayNameLocalizer sets the source of localized day names for progress views.
func WithDayNameLocalizer(days portssvc.DayNameLocalizer) JournalServiceOption {
	return func(s *journalService) {
		s.days = days
	}
}

// WithPassThreshold sets the default threshold of GetGroupPassStats.
func WithPassThreshold(threshold decimal.Decimal) JournalServiceOption {
	return func(s *journalService) {
		s.passThreshold = threshold
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) JournalServiceOption {
	return func(s *journalService) {
		s.now = now
	}
}

// NewJournalService creates a new journal service with the provided options
func NewJournalService(groupRepo portsrepo.GroupRepositoryFacade, journalRepo portsrepo.JournalRepositoryWithTx, options ...JournalServiceOption) portssvc.JournalSvcFacade {
	svc := &journalService{
		groupRepo:     groupRepo,
		journalRepo:   journalRepo,
		passThreshold: decimal.NewFromInt(60),
		now:           func() time.Time { return time.Now().UTC() },
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure journalService implements the JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

func actorOf(p domain.Principal) string {
	if p.ID == "" {
		return domain.SystemActor
	}
	return p.ID
}

// GenerateWeeklyJournal creates week weekNumber of the group's journal. Weeks are created
// strictly in order; repeating the call for the newest week reports GenerateAlreadyExists.
func (s *journalService) GenerateWeeklyJournal(ctx context.Context, principal domain.Principal, groupID string, weekNumber int) (*domain.GenerateResult, error) {
	group, err := s.AuthorizeGroup(ctx, principal, groupID, domain.CapabilityWrite)
	if err != nil {
		return nil, err
	}

	maxExisting, err := s.journalRepo.MaxWeekNumber(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read highest week", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to read highest week: %w", err)
	}
	expected := maxExisting + 1

	if weekNumber < 1 {
		return nil, fmt.Errorf("%w: week number must be positive, expected next week is %d", apperrors.ErrValidation, expected)
	}
	if weekNumber > group.TotalWeeks {
		return nil, fmt.Errorf("%w: %w: week %d of %d, expected next week is %d",
			apperrors.ErrValidation, ErrWeekOutOfRange, weekNumber, group.TotalWeeks, expected)
	}
	if weekNumber == maxExisting {
		return s.existingResult(ctx, groupID, weekNumber)
	}
	if weekNumber < maxExisting {
		return nil, fmt.Errorf("%w: %w: week %d, expected next week is %d",
			apperrors.ErrValidation, ErrWeekAlreadyTaken, weekNumber, expected)
	}
	if weekNumber != expected {
		return nil, fmt.Errorf("%w: %w: week %d, expected next week is %d",
			apperrors.ErrValidation, ErrWeekSequence, weekNumber, expected)
	}

	if s.locker != nil {
		release, acquired, lockErr := s.locker.Acquire(ctx, fmt.Sprintf("journal:%s:%d", groupID, weekNumber))
		switch {
		case lockErr != nil:
			// Falls back to the unique (group, week) constraint.
			s.LogError(ctx, lockErr, "Failed to acquire journal creation lock, continuing", slog.String("group_id", groupID))
		case !acquired:
			return nil, apperrors.NewAppError(http.StatusConflict, fmt.Sprintf("week %d of group %s is being generated", weekNumber, groupID), ErrGenerationBusy)
		default:
			defer func() {
				if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
					s.LogError(ctx, relErr, "Failed to release journal creation lock", slog.String("group_id", groupID))
				}
			}()
		}
	}

	journal, err := s.planJournal(ctx, group, weekNumber)
	if err != nil {
		return nil, err
	}

	memberships, err := s.groupRepo.ListMemberships(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list memberships", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	actor := actorOf(principal)
	audit := domain.AuditFields{CreatedAt: journal.CreatedAt, CreatedBy: actor, LastUpdatedAt: journal.CreatedAt, LastUpdatedBy: actor}
	entries := make([]domain.JournalEntry, 0, len(memberships)*len(journal.Slots))
	for _, studentID := range currentStudentIDs(memberships) {
		for _, slot := range journal.Slots {
			entries = append(entries, domain.NewEntryForSlot(uuid.NewString(), journal.JournalID, studentID, slot, audit))
		}
	}

	if err := s.journalRepo.CreateJournalWithEntries(ctx, *journal, entries); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogInfo(ctx, "Journal created concurrently, returning existing", slog.String("group_id", groupID), slog.Int("week", weekNumber))
			return s.existingResult(ctx, groupID, weekNumber)
		}
		s.LogError(ctx, err, "Failed to persist journal", slog.String("group_id", groupID), slog.Int("week", weekNumber))
		return nil, fmt.Errorf("failed to persist journal: %w", err)
	}
	s.invalidate(ctx, groupID)

	s.LogInfo(ctx, "Weekly journal created",
		slog.String("group_id", groupID),
		slog.String("journal_id", journal.JournalID),
		slog.Int("week", weekNumber),
		slog.Int("entries", len(entries)))

	return &domain.GenerateResult{Status: domain.GenerateCreated, Journal: journal, EntriesCreated: len(entries)}, nil
}

func (s *journalService) existingResult(ctx context.Context, groupID string, weekNumber int) (*domain.GenerateResult, error) {
	existing, err := s.journalRepo.FindJournalByWeek(ctx, groupID, weekNumber)
	if err != nil {
		s.LogError(ctx, err, "Failed to load existing journal", slog.String("group_id", groupID), slog.Int("week", weekNumber))
		return nil, fmt.Errorf("failed to load existing journal: %w", err)
	}
	return &domain.GenerateResult{Status: domain.GenerateAlreadyExists, Journal: existing}, nil
}

// planJournal lays out the slots of a new week. Week 1 starts at the group's start date,
// later weeks the day after the previous week ends.
func (s *journalService) planJournal(ctx context.Context, group *domain.Group, weekNumber int) (*domain.Journal, error) {
	cursor := group.StartDate
	if weekNumber > 1 {
		prev, err := s.journalRepo.FindJournalByWeek(ctx, group.GroupID, weekNumber-1)
		if err != nil {
			s.LogError(ctx, err, "Failed to load previous week", slog.String("group_id", group.GroupID), slog.Int("week", weekNumber-1))
			return nil, fmt.Errorf("failed to load week %d: %w", weekNumber-1, err)
		}
		cursor = calendar.NextCursor(prev.WeekEnd)
	}

	plan := calendar.PlanWeek(calendar.ParseLessonDays(group.LessonDays), cursor)
	if len(plan.Slots) != calendar.SlotsPerWeek {
		return nil, fmt.Errorf("%w: planned %d slots for week %d", apperrors.ErrInternal, len(plan.Slots), weekNumber)
	}

	now := s.now()
	journal := &domain.Journal{
		JournalID:  uuid.NewString(),
		GroupID:    group.GroupID,
		WeekNumber: weekNumber,
		WeekStart:  plan.WeekStart,
		WeekEnd:    plan.WeekEnd,
		Slots:      make([]domain.JournalSlot, len(plan.Slots)),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	for i, ps := range plan.Slots {
		journal.Slots[i] = domain.JournalSlot{
			DayOfWeek:    ps.DayOfWeek,
			LessonNumber: ps.LessonNumber,
			LessonType:   domain.LessonTypeFor(ps.LessonNumber, weekNumber, group.HasWeeklyExam),
			StartTime:    group.LessonStartTime,
			EndTime:      group.LessonEndTime,
			LessonDate:   ps.Date,
		}
	}
	return journal, nil
}

// currentStudentIDs returns students with an active, non-deleted membership, once each.
func currentStudentIDs(memberships []domain.GroupMembership) []string {
	seen := make(map[string]bool, len(memberships))
	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		if !m.IsCurrent() || seen[m.StudentID] {
			continue
		}
		seen[m.StudentID] = true
		ids = append(ids, m.StudentID)
	}
	return ids
}

func (s *journalService) invalidate(ctx context.Context, groupID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateGroup(ctx, groupID); err != nil {
		s.LogError(ctx, err, "Failed to invalidate progress cache", slog.String("group_id", groupID))
	}
}
