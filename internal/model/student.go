package model

import (
	"encoding/json"
	"time"
)

// StartRequest is the payload a student sends to begin an attempt.
type StartRequest struct {
	Code        string `json:"code" binding:"required,notblank,max=32"`
	StudentName string `json:"studentName" binding:"required,notblank,max=200"`
	Group       string `json:"group" binding:"max=200"`
}

// StartResponse is returned when an attempt begins.
type StartResponse struct {
	Token          string              `json:"token"`
	SessionName    string              `json:"sessionName"`
	Duration       int                 `json:"duration"`
	IndicationKey  string              `json:"indicationKey"`
	IndicationSets map[string][]string `json:"indicationSets"`
	Ticket         []TicketItem        `json:"ticket"`
	StartTime      time.Time           `json:"startTime"`
}

// SubmitRequest is the payload a student sends to finish an attempt.
type SubmitRequest struct {
	Answers       Answers           `json:"answers"`
	Warnings      []json.RawMessage `json:"warnings"`
	StartTime     string            `json:"startTime"`
	EndTime       string            `json:"endTime"`
	AutoSubmitted bool              `json:"autoSubmitted"`
}

// SubmitResponse is returned after a submission is stored.
type SubmitResponse struct {
	ID    int      `json:"id"`
	Score *float64 `json:"score"`
}
