package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryPatch is a partial update of the mutable fields of a JournalEntry.
// A nil field is left untouched; the Clear* flags reset the optional value to unset.
type EntryPatch struct {
	Grade                *decimal.Decimal
	ClearGrade           bool
	BonusPoints          *decimal.Decimal
	ClearBonusPoints     bool
	Attendance           *AttendanceStatus
	Comment              *string
	CommentCategory      *string
	ClearComment         bool
	ClearCommentCategory bool
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return p.Grade == nil && !p.ClearGrade &&
		p.BonusPoints == nil && !p.ClearBonusPoints &&
		p.Attendance == nil &&
		p.Comment == nil && !p.ClearComment &&
		p.CommentCategory == nil && !p.ClearCommentCategory
}

// Validate checks field-level constraints of the patch.
func (p EntryPatch) Validate() error {
	if p.Attendance != nil && !p.Attendance.IsValid() {
		return fmt.Errorf("unknown attendance status %q", *p.Attendance)
	}
	if p.Grade != nil && p.Grade.IsNegative() {
		return fmt.Errorf("grade must not be negative, got %s", p.Grade.String())
	}
	if p.Grade != nil && p.ClearGrade {
		return fmt.Errorf("grade cannot be both set and cleared")
	}
	if p.BonusPoints != nil && p.ClearBonusPoints {
		return fmt.Errorf("bonus points cannot be both set and cleared")
	}
	return nil
}

// ApplyEntryPatch returns a copy of entry with the patch merged in. It does not mutate entry.
func ApplyEntryPatch(entry JournalEntry, patch EntryPatch, actor string, now time.Time) JournalEntry {
	out := entry
	switch {
	case patch.ClearGrade:
		out.Grade = nil
	case patch.Grade != nil:
		g := *patch.Grade
		out.Grade = &g
	}
	switch {
	case patch.ClearBonusPoints:
		out.BonusPoints = nil
	case patch.BonusPoints != nil:
		b := *patch.BonusPoints
		out.BonusPoints = &b
	}
	if patch.Attendance != nil {
		out.Attendance = *patch.Attendance
	}
	switch {
	case patch.ClearComment:
		out.Comment = nil
	case patch.Comment != nil:
		c := *patch.Comment
		out.Comment = &c
	}
	switch {
	case patch.ClearCommentCategory:
		out.CommentCategory = nil
	case patch.CommentCategory != nil:
		c := *patch.CommentCategory
		out.CommentCategory = &c
	}
	out.LastUpdatedAt = now
	out.LastUpdatedBy = actor
	return out
}
