package models

import "time"

// SessionStatus captures workflow states for a tutoring session record.
type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "draft"
	SessionStatusSubmitted SessionStatus = "submitted"
	SessionStatusApproved  SessionStatus = "approved"
	SessionStatusRejected  SessionStatus = "rejected"
)

// Valid reports whether the status is one of the known workflow states.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusDraft, SessionStatusSubmitted, SessionStatusApproved, SessionStatusRejected:
		return true
	default:
		return false
	}
}

// TutorSession is one logged tutoring event record. TutorName and TutorEmail
// are snapshots of the owner at creation time and are not kept in sync with
// later profile edits. SubmittedAt and ReviewedAt are write-once: once set
// they are never cleared or overwritten.
type TutorSession struct {
	ID          string        `db:"id" json:"id"`
	UserID      string        `db:"user_id" json:"user_id"`
	TutorName   string        `db:"tutor_name" json:"tutor_name"`
	TutorEmail  string        `db:"tutor_email" json:"tutor_email"`
	Date        time.Time     `db:"date" json:"date"`
	Location    string        `db:"location" json:"location"`
	Description string        `db:"description" json:"description"`
	Hours       float64       `db:"hours" json:"hours"`
	Status      SessionStatus `db:"status" json:"status"`
	SubmittedAt *time.Time    `db:"submitted_at" json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time    `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNote  *string       `db:"review_note" json:"review_note,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionFilter constrains listing and export queries. OwnerID scoping is
// always explicit: callers acting for a tutor must set it themselves.
type SessionFilter struct {
	OwnerID   string
	Status    SessionStatus
	TutorName string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// SessionFields carries the owner-editable fields of a draft.
type SessionFields struct {
	Date        time.Time
	Location    string
	Description string
	Hours       float64
}

// TutorHours aggregates logged hours per tutor email.
type TutorHours struct {
	TutorEmail   string  `db:"tutor_email" json:"tutor_email"`
	TutorName    string  `db:"tutor_name" json:"tutor_name"`
	TotalHours   float64 `db:"total_hours" json:"total_hours"`
	SessionCount int     `db:"session_count" json:"session_count"`
}

// SessionStats summarises the session collection.
type SessionStats struct {
	Total        int          `json:"total"`
	Draft        int          `json:"draft"`
	Submitted    int          `json:"submitted"`
	Approved     int          `json:"approved"`
	Rejected     int          `json:"rejected"`
	TotalHours   float64      `json:"total_hours"`
	HoursByTutor []TutorHours `json:"hours_by_tutor"`
}
