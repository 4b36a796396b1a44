package mapping

import (
	"github.com/SscSPs/edu_center_app/internal/core/domain"
	"github.com/SscSPs/edu_center_app/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelJournal converts a domain Journal to a model Journal. Slots are mapped separately.
func ToModelJournal(d domain.Journal) models.Journal {
	return models.Journal{
		JournalID:   d.JournalID,
		GroupID:     d.GroupID,
		WeekNumber:  d.WeekNumber,
		WeekStart:   d.WeekStart,
		WeekEnd:     d.WeekEnd,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournal converts a model Journal to a domain Journal
func ToDomainJournal(m models.Journal) domain.Journal {
	return domain.Journal{
		JournalID:   m.JournalID,
		GroupID:     m.GroupID,
		WeekNumber:  m.WeekNumber,
		WeekStart:   m.WeekStart,
		WeekEnd:     m.WeekEnd,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalSlot converts a domain slot of the given journal to a model row
func ToModelJournalSlot(journalID string, d domain.JournalSlot) models.JournalSlot {
	return models.JournalSlot{
		JournalID:    journalID,
		DayOfWeek:    d.DayOfWeek,
		LessonNumber: d.LessonNumber,
		LessonType:   string(d.LessonType),
		StartTime:    d.StartTime,
		EndTime:      d.EndTime,
		LessonDate:   d.LessonDate,
	}
}

// ToDomainJournalSlot converts a model slot row to a domain JournalSlot
func ToDomainJournalSlot(m models.JournalSlot) domain.JournalSlot {
	return domain.JournalSlot{
		DayOfWeek:    m.DayOfWeek,
		LessonNumber: m.LessonNumber,
		LessonType:   domain.LessonType(m.LessonType),
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		LessonDate:   m.LessonDate,
	}
}

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:         d.EntryID,
		JournalID:       d.JournalID,
		StudentID:       d.StudentID,
		DayOfWeek:       d.DayOfWeek,
		LessonNumber:    d.LessonNumber,
		LessonType:      string(d.LessonType),
		StartTime:       d.StartTime,
		EndTime:         d.EndTime,
		Attendance:      string(d.Attendance),
		Grade:           toNullDecimal(d.Grade),
		BonusPoints:     toNullDecimal(d.BonusPoints),
		Comment:         d.Comment,
		CommentCategory: d.CommentCategory,
		LessonDate:      d.LessonDate,
		IsDeleted:       d.IsDeleted,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:         m.EntryID,
		JournalID:       m.JournalID,
		StudentID:       m.StudentID,
		DayOfWeek:       m.DayOfWeek,
		LessonNumber:    m.LessonNumber,
		LessonType:      domain.LessonType(m.LessonType),
		StartTime:       m.StartTime,
		EndTime:         m.EndTime,
		Attendance:      domain.AttendanceStatus(m.Attendance),
		Grade:           fromNullDecimal(m.Grade),
		BonusPoints:     fromNullDecimal(m.BonusPoints),
		Comment:         m.Comment,
		CommentCategory: m.CommentCategory,
		LessonDate:      m.LessonDate,
		IsDeleted:       m.IsDeleted,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalEntrySlice converts a slice of model entries
func ToDomainJournalEntrySlice(ms []models.JournalEntry) []domain.JournalEntry {
	ds := make([]domain.JournalEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntry(m)
	}
	return ds
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func fromNullDecimal(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	v := n.Decimal
	return &v
}
