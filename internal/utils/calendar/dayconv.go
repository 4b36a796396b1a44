package calendar

import (
	"fmt"
	"time"

	"github.com/SscSPs/edu_center_app/internal/apperrors"
)

// Two day-of-week encodings meet in this package:
//   - engine convention: time.Weekday, 0=Sunday..6=Saturday
//   - store convention: configuration and entries, 1=Monday..7=Sunday
// Every comparison of a calendar date against stored lesson days goes through these helpers.

// StoreDayFromEngine converts an engine day (0..6) to a store day (1..7).
func StoreDayFromEngine(engineDay int) (int, error) {
	if engineDay < 0 || engineDay > 6 {
		return 0, fmt.Errorf("%w: engine day %d out of range 0..6", apperrors.ErrValidation, engineDay)
	}
	if engineDay == 0 {
		return 7, nil
	}
	return engineDay, nil
}

// EngineDayFromStore converts a store day (1..7) to an engine day (0..6).
func EngineDayFromStore(storeDay int) (int, error) {
	if storeDay < 1 || storeDay > 7 {
		return 0, fmt.Errorf("%w: store day %d out of range 1..7", apperrors.ErrValidation, storeDay)
	}
	if storeDay == 7 {
		return 0, nil
	}
	return storeDay, nil
}

// StoreDayOf returns the store-convention weekday of t.
func StoreDayOf(t time.Time) int {
	// time.Weekday is always 0..6
	d, _ := StoreDayFromEngine(int(t.Weekday()))
	return d
}
