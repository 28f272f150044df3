package notify

import "time"

// StudentFinished is the payload of student_finished.
type StudentFinished struct {
	StudentName string   `json:"studentName"`
	Group       string   `json:"group"`
	SessionName string   `json:"sessionName"`
	Score       *float64 `json:"score"`
}

// SubmissionCreated is the payload of submission_created.
type SubmissionCreated struct {
	ID            int        `json:"id"`
	SessionName   string     `json:"sessionName"`
	StudentName   string     `json:"studentName"`
	Group         string     `json:"group"`
	StartTime     *time.Time `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
	AutoSubmitted bool       `json:"autoSubmitted"`
	Score         *float64   `json:"score"`
}

// SettingsUpdated is the payload of settings_updated.
type SettingsUpdated struct {
	Drugs          []string            `json:"drugs"`
	Duration       int                 `json:"duration"`
	SessionName    string              `json:"sessionName"`
	IndicationKey  string              `json:"indicationKey"`
	IndicationSets map[string][]string `json:"indicationSets"`
}
