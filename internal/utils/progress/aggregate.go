package progress

import (
	"sort"

	"github.com/SscSPs/edu_center_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StudentInfo is what ranking needs to know about a student besides their entries.
type StudentInfo struct {
	StudentID          string
	FullName           string
	IsMembershipActive bool
}

// Roster resolves display data for students; unknown students rank as inactive with their ID as name.
type Roster map[string]StudentInfo

func (r Roster) lookup(studentID string) StudentInfo {
	if info, ok := r[studentID]; ok {
		return info
	}
	return StudentInfo{StudentID: studentID, FullName: studentID}
}

// DayNamer maps a store-convention day code to a display name.
type DayNamer func(storeDay int) string

// WeeklyTotal sums present grades and present bonus points of non-deleted entries.
func WeeklyTotal(entries []domain.JournalEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.IsDeleted {
			continue
		}
		if e.Grade != nil {
			total = total.Add(*e.Grade)
		}
		if e.BonusPoints != nil {
			total = total.Add(*e.BonusPoints)
		}
	}
	return total
}

// groupByStudent buckets non-deleted entries by student, preserving first-seen order.
func groupByStudent(entries []domain.JournalEntry) (map[string][]domain.JournalEntry, []string) {
	byStudent := make(map[string][]domain.JournalEntry)
	order := make([]string, 0)
	for _, e := range entries {
		if e.IsDeleted {
			continue
		}
		if _, ok := byStudent[e.StudentID]; !ok {
			order = append(order, e.StudentID)
		}
		byStudent[e.StudentID] = append(byStudent[e.StudentID], e)
	}
	return byStudent, order
}

// less orders by total desc, active desc, name asc, then ID for a stable result.
func less(totalA, totalB decimal.Decimal, a, b StudentInfo) bool {
	if c := totalA.Cmp(totalB); c != 0 {
		return c > 0
	}
	if a.IsMembershipActive != b.IsMembershipActive {
		return a.IsMembershipActive
	}
	if a.FullName != b.FullName {
		return a.FullName < b.FullName
	}
	return a.StudentID < b.StudentID
}

// BuildJournalView produces the ranked per-journal view.
func BuildJournalView(journal domain.Journal, entries []domain.JournalEntry, roster Roster, dayName DayNamer) domain.JournalView {
	byStudent, order := groupByStudent(entries)

	rows := make([]domain.StudentWeekProgress, 0, len(order))
	for _, studentID := range order {
		own := byStudent[studentID]
		sort.SliceStable(own, func(i, j int) bool {
			if own[i].LessonNumber != own[j].LessonNumber {
				return own[i].LessonNumber < own[j].LessonNumber
			}
			return own[i].DayOfWeek < own[j].DayOfWeek
		})
		decorated := make([]domain.ProgressEntry, len(own))
		for i, e := range own {
			name := ""
			if dayName != nil {
				name = dayName(e.DayOfWeek)
			}
			decorated[i] = domain.ProgressEntry{JournalEntry: e, DayName: name}
		}
		info := roster.lookup(studentID)
		rows = append(rows, domain.StudentWeekProgress{
			StudentID:          studentID,
			FullName:           info.FullName,
			IsMembershipActive: info.IsMembershipActive,
			WeeklyTotal:        WeeklyTotal(own),
			Entries:            decorated,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return less(rows[i].WeeklyTotal, rows[j].WeeklyTotal,
			StudentInfo{rows[i].StudentID, rows[i].FullName, rows[i].IsMembershipActive},
			StudentInfo{rows[j].StudentID, rows[j].FullName, rows[j].IsMembershipActive})
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return domain.JournalView{Journal: journal, Students: rows}
}

// WeekTotals returns ranked totals for every student with entries in the given journal.
func WeekTotals(journal domain.Journal, entries []domain.JournalEntry, roster Roster) []domain.StudentWeekTotal {
	byStudent, order := groupByStudent(entries)
	totals := make([]domain.StudentWeekTotal, 0, len(order))
	for _, studentID := range order {
		info := roster.lookup(studentID)
		totals = append(totals, domain.StudentWeekTotal{
			StudentID:          studentID,
			FullName:           info.FullName,
			IsMembershipActive: info.IsMembershipActive,
			WeekNumber:         journal.WeekNumber,
			WeeklyTotal:        WeeklyTotal(byStudent[studentID]),
			HasEntries:         true,
		})
	}
	sortWeekTotals(totals)
	return totals
}

func sortWeekTotals(totals []domain.StudentWeekTotal) {
	sort.SliceStable(totals, func(i, j int) bool {
		return less(totals[i].WeeklyTotal, totals[j].WeeklyTotal,
			StudentInfo{totals[i].StudentID, totals[i].FullName, totals[i].IsMembershipActive},
			StudentInfo{totals[j].StudentID, totals[j].FullName, totals[j].IsMembershipActive})
	})
}

// CrossWeek builds the per-week breakdown for all students seen in any journal and their
// cross-week aggregates. Only weeks where a student has at least one entry count towards
// that student's sum and averaging denominator.
func CrossWeek(journals []domain.Journal, entriesByJournal map[string][]domain.JournalEntry, roster Roster) ([]domain.WeekBreakdown, []domain.StudentAggregate) {
	sorted := append([]domain.Journal(nil), journals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].WeekNumber < sorted[j].WeekNumber })

	type weekData struct {
		byStudent map[string][]domain.JournalEntry
	}
	weeks := make([]weekData, len(sorted))
	universe := make([]string, 0)
	seen := make(map[string]bool)
	for i, j := range sorted {
		byStudent, order := groupByStudent(entriesByJournal[j.JournalID])
		weeks[i] = weekData{byStudent: byStudent}
		for _, id := range order {
			if !seen[id] {
				seen[id] = true
				universe = append(universe, id)
			}
		}
	}

	breakdowns := make([]domain.WeekBreakdown, len(sorted))
	sums := make(map[string]decimal.Decimal, len(universe))
	counts := make(map[string]int, len(universe))
	for i, j := range sorted {
		totals := make([]domain.StudentWeekTotal, 0, len(universe))
		for _, id := range universe {
			info := roster.lookup(id)
			own, has := weeks[i].byStudent[id]
			total := WeeklyTotal(own)
			if has {
				sums[id] = sums[id].Add(total)
				counts[id]++
			}
			totals = append(totals, domain.StudentWeekTotal{
				StudentID:          id,
				FullName:           info.FullName,
				IsMembershipActive: info.IsMembershipActive,
				WeekNumber:         j.WeekNumber,
				WeeklyTotal:        total,
				HasEntries:         has,
			})
		}
		sortWeekTotals(totals)
		breakdowns[i] = domain.WeekBreakdown{
			WeekNumber: j.WeekNumber,
			WeekStart:  j.WeekStart,
			WeekEnd:    j.WeekEnd,
			Totals:     totals,
		}
	}

	aggregates := make([]domain.StudentAggregate, 0, len(universe))
	for _, id := range universe {
		info := roster.lookup(id)
		aggregates = append(aggregates, domain.StudentAggregate{
			StudentID:          id,
			FullName:           info.FullName,
			IsMembershipActive: info.IsMembershipActive,
			QualifyingWeeks:    counts[id],
			AggregateTotal:     sums[id],
			Average:            Average(sums[id], counts[id]),
		})
	}
	sort.SliceStable(aggregates, func(i, j int) bool {
		return less(aggregates[i].AggregateTotal, aggregates[j].AggregateTotal,
			StudentInfo{aggregates[i].StudentID, aggregates[i].FullName, aggregates[i].IsMembershipActive},
			StudentInfo{aggregates[j].StudentID, aggregates[j].FullName, aggregates[j].IsMembershipActive})
	})
	for i := range aggregates {
		aggregates[i].Rank = i + 1
	}
	return breakdowns, aggregates
}

// Average is sum/count rounded to two places, or zero when count is zero.
func Average(sum decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(count))).Round(2)
}

// CountPassed returns how many aggregates have an average at or above threshold, and the total.
func CountPassed(aggregates []domain.StudentAggregate, threshold decimal.Decimal) (passed int, total int) {
	for _, a := range aggregates {
		if a.Average.GreaterThanOrEqual(threshold) {
			passed++
		}
	}
	return passed, len(aggregates)
}
