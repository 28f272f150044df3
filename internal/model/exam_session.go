package model

import "time"

// ExamSession is an admin-created sitting students join with a code.
type ExamSession struct {
	ID          int       `json:"id"`
	SessionName string    `json:"session_name"`
	JoinCode    string    `json:"join_code"`
	IsOpen      bool      `json:"is_open"`
	RosterSize  int       `json:"roster_size"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateExamSessionRequest is the payload for creating an exam session.
type CreateExamSessionRequest struct {
	SessionName string `json:"session_name" binding:"required,notblank,max=200"`
	IsOpen      *bool  `json:"is_open"`
}

// UpdateExamSessionRequest opens or closes an exam session.
type UpdateExamSessionRequest struct {
	IsOpen *bool `json:"is_open" binding:"required"`
}

// RosterEntry is one student permitted to sit an exam session.
type RosterEntry struct {
	ID          int    `json:"id"`
	SessionID   int    `json:"session_id"`
	FullName    string `json:"full_name"`
	FullNameKey string `json:"full_name_key"`
}

// UploadRosterRequest replaces a session roster from a JSON list of names.
type UploadRosterRequest struct {
	Names []string `json:"names" binding:"required,min=1,dive,max=200"`
}

// RosterUploadResult summarizes a roster replacement.
type RosterUploadResult struct {
	SessionID  int `json:"session_id"`
	Loaded     int `json:"loaded"`
	Duplicates int `json:"duplicates"`
	Blank      int `json:"blank"`
}
