package domain

import "time"

// Group is a cohort of students taught together inside one center.
// The journal engine only reads groups; they are owned by the group CRUD service.
type Group struct {
	GroupID         string    `json:"groupID"`
	CenterID        string    `json:"centerID"`
	Name            string    `json:"name"`
	MentorID        *string   `json:"mentorID,omitempty"` // Primary mentor
	StartDate       time.Time `json:"startDate"`
	TotalWeeks      int       `json:"totalWeeks"`
	LessonDays      string    `json:"lessonDays"` // Delimited store-convention day codes, e.g. "1,3,5"
	HasWeeklyExam   bool      `json:"hasWeeklyExam"`
	LessonStartTime string    `json:"lessonStartTime"` // HH:MM
	LessonEndTime   string    `json:"lessonEndTime"`   // HH:MM
	IsDeleted       bool      `json:"isDeleted"`
}

// Student is the subset of the student record the journal needs for display and ranking.
type Student struct {
	StudentID string `json:"studentID"`
	FullName  string `json:"fullName"`
	IsActive  bool   `json:"isActive"`
}

// GroupMembership links a student to a group.
type GroupMembership struct {
	GroupID   string    `json:"groupID"`
	StudentID string    `json:"studentID"`
	FullName  string    `json:"fullName"`
	IsActive  bool      `json:"isActive"`
	IsDeleted bool      `json:"isDeleted"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// IsCurrent reports whether the membership counts as an active, non-deleted one.
func (m GroupMembership) IsCurrent() bool {
	return m.IsActive && !m.IsDeleted
}

// MentorAssignment is a co-mentor assignment of a mentor to a group.
type MentorAssignment struct {
	GroupID   string `json:"groupID"`
	MentorID  string `json:"mentorID"`
	IsActive  bool   `json:"isActive"`
	IsDeleted bool   `json:"isDeleted"`
}
