package calendar

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// SlotsPerWeek is the fixed number of lessons in one journal week.
const SlotsPerWeek = 6

// DefaultLessonDays is used when a group has no usable lesson-day configuration (Tuesday..Saturday).
var DefaultLessonDays = []int{2, 3, 4, 5, 6}

// maxScanDays bounds the forward scan; with at least one valid lesson day six slots fit in six weeks.
const maxScanDays = 7 * SlotsPerWeek

// PlannedSlot is one dated lesson produced by the planner.
type PlannedSlot struct {
	DayOfWeek    int // Store convention
	LessonNumber int
	Date         time.Time // 00:00:00 UTC
}

// WeekPlan is the ordered slot list of one week and its bounds.
type WeekPlan struct {
	Slots     []PlannedSlot
	WeekStart time.Time // First slot date, 00:00:00 UTC
	WeekEnd   time.Time // Last slot date, 23:59:59 UTC
}

// ParseLessonDays parses a delimited list of store-convention day codes.
// Values outside 1..7 and non-numeric tokens are dropped, duplicates collapse, and an empty
// result falls back to DefaultLessonDays. The result is sorted ascending.
func ParseLessonDays(raw string) []int {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '|'
	})
	seen := make(map[int]bool, len(fields))
	days := make([]int, 0, len(fields))
	for _, f := range fields {
		d, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || d < 1 || d > 7 || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	if len(days) == 0 {
		return append([]int(nil), DefaultLessonDays...)
	}
	sort.Ints(days)
	return days
}

// StartOfDay truncates t to 00:00:00 UTC of its UTC calendar date.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59 UTC of t's UTC calendar date.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 0, time.UTC)
}

// PlanWeek scans forward from cursor one calendar day at a time and collects SlotsPerWeek
// days whose store-convention weekday is in lessonDays. Because lessonDays may hold fewer than
// SlotsPerWeek weekdays, a plan can span several calendar weeks.
func PlanWeek(lessonDays []int, cursor time.Time) WeekPlan {
	if len(lessonDays) == 0 {
		lessonDays = DefaultLessonDays
	}
	allowed := make(map[int]bool, len(lessonDays))
	for _, d := range lessonDays {
		allowed[d] = true
	}

	slots := make([]PlannedSlot, 0, SlotsPerWeek)
	day := StartOfDay(cursor)
	for i := 0; len(slots) < SlotsPerWeek && i < maxScanDays; i++ {
		storeDay := StoreDayOf(day)
		if allowed[storeDay] {
			slots = append(slots, PlannedSlot{
				DayOfWeek:    storeDay,
				LessonNumber: len(slots) + 1,
				Date:         day,
			})
		}
		day = day.AddDate(0, 0, 1)
	}

	plan := WeekPlan{Slots: slots}
	if len(slots) > 0 {
		plan.WeekStart = slots[0].Date
		plan.WeekEnd = EndOfDay(slots[len(slots)-1].Date)
	}
	return plan
}

// NextCursor is the day after the last slot of the previous week.
func NextCursor(previousWeekEnd time.Time) time.Time {
	return StartOfDay(previousWeekEnd).AddDate(0, 0, 1)
}
