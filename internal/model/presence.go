package model

import "time"

// PresenceStatus is the liveness state of an active attempt.
type PresenceStatus string

const (
	PresenceActive PresenceStatus = "active"
	PresenceStale  PresenceStatus = "stale"
)

// ActiveSession is the presence record of a student currently sitting a
// session. One record exists per (session name, student key).
type ActiveSession struct {
	ID           int            `json:"id"`
	StudentName  string         `json:"student_name"`
	StudentKey   string         `json:"-"`
	Group        string         `json:"group"`
	SessionName  string         `json:"session_name"`
	StartTime    time.Time      `json:"start_time"`
	LastActivity time.Time      `json:"last_activity"`
	Status       PresenceStatus `json:"status"`
}
