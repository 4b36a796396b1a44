package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
	"github.com/SscSPs/edu_center_app/internal/core/domain"
	portsrepo "github.com/SscSPs/edu_center_app/internal/core/ports/repositories"
)

// --- Mock GroupRepository ---
type MockGroupRepository struct {
	mock.Mock
}

var _ portsrepo.GroupRepositoryFacade = (*MockGroupRepository)(nil)

func (m *MockGroupRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepository) ListMemberships(ctx context.Context, groupID string) ([]domain.GroupMembership, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GroupMembership), args.Error(1)
}

func (m *MockGroupRepository) FindMembership(ctx context.Context, groupID, studentID string) (*domain.GroupMembership, error) {
	args := m.Called(ctx, groupID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupMembership), args.Error(1)
}

func (m *MockGroupRepository) FindMentorAssignment(ctx context.Context, groupID, mentorID string) (*domain.MentorAssignment, error) {
	args := m.Called(ctx, groupID, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MentorAssignment), args.Error(1)
}

func (m *MockGroupRepository) ListActiveGroupIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Mock ProgressCache ---
type MockProgressCache struct {
	mock.Mock
}

var _ portsrepo.ProgressCache = (*MockProgressCache)(nil)

func (m *MockProgressCache) GetGroupTotals(ctx context.Context, groupID string, week int) (*domain.GroupWeeklyTotals, error) {
	args := m.Called(ctx, groupID, week)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupWeeklyTotals), args.Error(1)
}

func (m *MockProgressCache) SetGroupTotals(ctx context.Context, groupID string, week int, totals *domain.GroupWeeklyTotals) error {
	args := m.Called(ctx, groupID, week, totals)
	return args.Error(0)
}

func (m *MockProgressCache) InvalidateGroup(ctx context.Context, groupID string) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

// --- Mock CreationLocker ---
type MockCreationLocker struct {
	mock.Mock
}

var _ portsrepo.CreationLocker = (*MockCreationLocker)(nil)

func (m *MockCreationLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, bool, error) {
	args := m.Called(ctx, key)
	release, _ := args.Get(0).(func(context.Context) error)
	return release, args.Bool(1), args.Error(2)
}

// --- In-memory group store ---
type fakeGroupRepo struct {
	groups      map[string]domain.Group
	memberships []domain.GroupMembership
	mentors     []domain.MentorAssignment
}

var _ portsrepo.GroupRepositoryFacade = (*fakeGroupRepo)(nil)

func newFakeGroupRepo(groups ...domain.Group) *fakeGroupRepo {
	r := &fakeGroupRepo{groups: map[string]domain.Group{}}
	for _, g := range groups {
		r.groups[g.GroupID] = g
	}
	return r
}

func (r *fakeGroupRepo) addMember(groupID, studentID, name string, active bool) {
	r.memberships = append(r.memberships, domain.GroupMembership{
		GroupID: groupID, StudentID: studentID, FullName: name, IsActive: active,
	})
}

func (r *fakeGroupRepo) setActive(groupID, studentID string, active bool) {
	for i := range r.memberships {
		if r.memberships[i].GroupID == groupID && r.memberships[i].StudentID == studentID {
			r.memberships[i].IsActive = active
		}
	}
}

func (r *fakeGroupRepo) FindGroupByID(_ context.Context, groupID string) (*domain.Group, error) {
	g, ok := r.groups[groupID]
	if !ok || g.IsDeleted {
		return nil, apperrors.ErrNotFound
	}
	return &g, nil
}

func (r *fakeGroupRepo) ListMemberships(_ context.Context, groupID string) ([]domain.GroupMembership, error) {
	out := make([]domain.GroupMembership, 0)
	for _, m := range r.memberships {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) FindMembership(_ context.Context, groupID, studentID string) (*domain.GroupMembership, error) {
	for _, m := range r.memberships {
		if m.GroupID == groupID && m.StudentID == studentID {
			found := m
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeGroupRepo) FindMentorAssignment(_ context.Context, groupID, mentorID string) (*domain.MentorAssignment, error) {
	for _, a := range r.mentors {
		if a.GroupID == groupID && a.MentorID == mentorID {
			found := a
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeGroupRepo) ListActiveGroupIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.groups))
	for id, g := range r.groups {
		if !g.IsDeleted {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// --- In-memory journal store with the same uniqueness rules as the database ---
type fakeJournalRepo struct {
	mu        sync.Mutex
	journals  map[string]domain.Journal
	entries   map[string]domain.JournalEntry
	createErr error
	// removeErr fails every soft delete.
	removeErr error
	// beforeCreate runs inside CreateJournalWithEntries, used to simulate a concurrent writer.
	beforeCreate func()
	// snapshot holds the entries as they were at Begin until Commit or Rollback.
	snapshot map[string]domain.JournalEntry
}

var _ portsrepo.JournalRepositoryWithTx = (*fakeJournalRepo)(nil)

func newFakeJournalRepo() *fakeJournalRepo {
	return &fakeJournalRepo{journals: map[string]domain.Journal{}, entries: map[string]domain.JournalEntry{}}
}

func (r *fakeJournalRepo) Begin(context.Context) (pgx.Tx, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = make(map[string]domain.JournalEntry, len(r.entries))
	for id, e := range r.entries {
		r.snapshot[id] = e
	}
	return nil, nil
}

func (r *fakeJournalRepo) Commit(context.Context, pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = nil
	return nil
}

func (r *fakeJournalRepo) Rollback(context.Context, pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot != nil {
		r.entries = r.snapshot
		r.snapshot = nil
	}
	return nil
}

func (r *fakeJournalRepo) MaxWeekNumber(_ context.Context, groupID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	maxWeek := 0
	for _, j := range r.journals {
		if j.GroupID == groupID && j.WeekNumber > maxWeek {
			maxWeek = j.WeekNumber
		}
	}
	return maxWeek, nil
}

func (r *fakeJournalRepo) FindJournalByID(_ context.Context, journalID string) (*domain.Journal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.journals[journalID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &j, nil
}

func (r *fakeJournalRepo) FindJournalByWeek(_ context.Context, groupID string, weekNumber int) (*domain.Journal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.journals {
		if j.GroupID == groupID && j.WeekNumber == weekNumber {
			found := j
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeJournalRepo) FindJournalContaining(_ context.Context, groupID string, at time.Time) (*domain.Journal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.journals {
		if j.GroupID == groupID && j.Contains(at) {
			found := j
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeJournalRepo) sortedJournals(groupID string, keep func(domain.Journal) bool) []domain.Journal {
	out := make([]domain.Journal, 0)
	for _, j := range r.journals {
		if j.GroupID == groupID && keep(j) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].WeekNumber < out[k].WeekNumber })
	return out
}

func (r *fakeJournalRepo) ListJournalsByGroup(_ context.Context, groupID string) ([]domain.Journal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedJournals(groupID, func(domain.Journal) bool { return true }), nil
}

func (r *fakeJournalRepo) ListJournalsStartingAfter(_ context.Context, groupID string, after time.Time) ([]domain.Journal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedJournals(groupID, func(j domain.Journal) bool { return j.WeekStart.After(after) }), nil
}

func (r *fakeJournalRepo) FindEntryByID(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[entryID]
	if !ok || e.IsDeleted {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (r *fakeJournalRepo) liveEntries(keep func(domain.JournalEntry) bool) []domain.JournalEntry {
	out := make([]domain.JournalEntry, 0)
	for _, e := range r.entries {
		if !e.IsDeleted && keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].EntryID < out[k].EntryID })
	return out
}

func (r *fakeJournalRepo) ListEntriesByJournal(_ context.Context, journalID string) ([]domain.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liveEntries(func(e domain.JournalEntry) bool { return e.JournalID == journalID }), nil
}

func (r *fakeJournalRepo) ListEntriesByJournals(_ context.Context, journalIDs []string) (map[string][]domain.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]domain.JournalEntry, len(journalIDs))
	for _, id := range journalIDs {
		journalID := id
		out[journalID] = r.liveEntries(func(e domain.JournalEntry) bool { return e.JournalID == journalID })
	}
	return out, nil
}

func (r *fakeJournalRepo) ListStudentSlotKeys(_ context.Context, journalID, studentID string) ([]domain.SlotKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]domain.SlotKey, 0)
	for _, e := range r.liveEntries(func(e domain.JournalEntry) bool { return e.JournalID == journalID && e.StudentID == studentID }) {
		keys = append(keys, e.Slot().Key())
	}
	return keys, nil
}

func (r *fakeJournalRepo) CreateJournalWithEntries(_ context.Context, journal domain.Journal, entries []domain.JournalEntry) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, j := range r.journals {
		if j.GroupID == journal.GroupID && j.WeekNumber == journal.WeekNumber {
			return apperrors.ErrDuplicate
		}
	}
	r.journals[journal.JournalID] = journal
	for _, e := range entries {
		r.entries[e.EntryID] = e
	}
	return nil
}

// insertJournal stores a journal directly, bypassing generation.
func (r *fakeJournalRepo) insertJournal(journal domain.Journal, entries ...domain.JournalEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journals[journal.JournalID] = journal
	for _, e := range entries {
		r.entries[e.EntryID] = e
	}
}

func (r *fakeJournalRepo) CreateEntries(ctx context.Context, entries []domain.JournalEntry) (int, error) {
	return r.CreateEntriesInTx(ctx, nil, entries)
}

func (r *fakeJournalRepo) CreateEntriesInTx(_ context.Context, _ pgx.Tx, entries []domain.JournalEntry) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := 0
	for _, e := range entries {
		clash := false
		for _, existing := range r.entries {
			if !existing.IsDeleted && existing.JournalID == e.JournalID && existing.StudentID == e.StudentID &&
				existing.DayOfWeek == e.DayOfWeek && existing.LessonNumber == e.LessonNumber {
				clash = true
				break
			}
		}
		if !clash {
			r.entries[e.EntryID] = e
			created++
		}
	}
	return created, nil
}

func (r *fakeJournalRepo) SoftDeleteStudentEntries(ctx context.Context, journalIDs, studentIDs []string, actor string, at time.Time) (int64, error) {
	return r.SoftDeleteStudentEntriesInTx(ctx, nil, journalIDs, studentIDs, actor, at)
}

func (r *fakeJournalRepo) SoftDeleteStudentEntriesInTx(_ context.Context, _ pgx.Tx, journalIDs, studentIDs []string, actor string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.removeErr != nil {
		return 0, r.removeErr
	}
	inJournal := make(map[string]bool, len(journalIDs))
	for _, id := range journalIDs {
		inJournal[id] = true
	}
	isStudent := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		isStudent[id] = true
	}
	var n int64
	for id, e := range r.entries {
		if !e.IsDeleted && isStudent[e.StudentID] && inJournal[e.JournalID] {
			e.IsDeleted = true
			e.LastUpdatedBy = actor
			e.LastUpdatedAt = at
			r.entries[id] = e
			n++
		}
	}
	return n, nil
}

func (r *fakeJournalRepo) UpdateEntry(_ context.Context, entry domain.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[entry.EntryID]; !ok {
		return apperrors.ErrNotFound
	}
	r.entries[entry.EntryID] = entry
	return nil
}

// allEntries returns every stored entry including soft-deleted ones.
func (r *fakeJournalRepo) allEntries(journalID string) []domain.JournalEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.JournalEntry, 0)
	for _, e := range r.entries {
		if e.JournalID == journalID {
			out = append(out, e)
		}
	}
	return out
}
