package models

import "time"

// ReviewAction enumerates admin decisions recorded in the audit trail.
type ReviewAction string

const (
	ReviewActionApproved ReviewAction = "approved"
	ReviewActionRejected ReviewAction = "rejected"
)

// AdminReviewLog is an append-only record of one admin decision on a session.
// Rows are inserted once and never updated. AdminName and AdminEmail are
// snapshots of the reviewing admin at decision time.
type AdminReviewLog struct {
	ID         string       `db:"id" json:"id"`
	AdminID    string       `db:"admin_id" json:"admin_id"`
	AdminName  string       `db:"admin_name" json:"admin_name"`
	AdminEmail string       `db:"admin_email" json:"admin_email"`
	SessionID  string       `db:"session_id" json:"session_id"`
	Action     ReviewAction `db:"action" json:"action"`
	Note       *string      `db:"note" json:"note,omitempty"`
	Timestamp  time.Time    `db:"timestamp" json:"timestamp"`
}
