package model

import (
	"encoding/json"
	"strings"
	"time"
)

// StringList accepts either a JSON array of strings or a single
// semicolon-separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var arr []*string
	if err := json.Unmarshal(data, &arr); err == nil {
		out := make([]string, 0, len(arr))
		for _, s := range arr {
			if s != nil {
				out = append(out, *s)
			}
		}
		*l = out
		return nil
	}
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*l = nil
		return nil
	}
	*l = strings.Split(*s, ";")
	return nil
}

// DoseAnswer is the student's value for one dose bucket.
type DoseAnswer struct {
	Main   *Number           `json:"main,omitempty"`
	Extras map[string]Number `json:"extras,omitempty"`
}

// HalfLifeAnswer is the student's half-life range.
type HalfLifeAnswer struct {
	From *Number `json:"from,omitempty"`
	To   *Number `json:"to,omitempty"`
}

// StudentAnswer is everything a student wrote for one drug.
type StudentAnswer struct {
	DictatedType string                `json:"dictatedType,omitempty"`
	MNN          string                `json:"mnn"`
	TradeNames   StringList            `json:"tradeNames,omitempty"`
	Forms        StringList            `json:"forms,omitempty"`
	FormDosages  map[string]StringList `json:"formDosages,omitempty"`
	Indications  StringList            `json:"indications,omitempty"`
	Doses        map[string]DoseAnswer `json:"doses,omitempty"`
	HalfLife     HalfLifeAnswer        `json:"halfLife"`
	Elimination  StringList            `json:"elimination,omitempty"`
}

// Answers maps a drug id (or a shown ticket index before un-shuffling) to
// the student's answer.
type Answers map[string]StudentAnswer

// FormDosageDetail is the per-form breakdown of the form dosage category.
type FormDosageDetail struct {
	Total   float64            `json:"total"`
	PerForm map[string]float64 `json:"perForm"`
}

// DoseDetail is the per-bucket breakdown of the dose category.
type DoseDetail struct {
	Total float64            `json:"total"`
	Per   map[string]float64 `json:"per"`
}

// CategoryDetails holds a score for each category the key had data for.
// Categories without key data are nil and omitted.
type CategoryDetails struct {
	MNN         *float64          `json:"mnn,omitempty"`
	TradeNames  *float64          `json:"tradeNames,omitempty"`
	Forms       *float64          `json:"forms,omitempty"`
	FormDosages *FormDosageDetail `json:"formDosages,omitempty"`
	Indications *float64          `json:"indications,omitempty"`
	Doses       *DoseDetail       `json:"doses,omitempty"`
	HalfLife    *float64          `json:"halfLife,omitempty"`
	Elimination *float64          `json:"elimination,omitempty"`
}

// DrugScore is the score of one answered drug.
type DrugScore struct {
	Score   float64         `json:"score"`
	Details CategoryDetails `json:"details"`
}

// ScoreBreakdown maps drug id to its score.
type ScoreBreakdown map[string]DrugScore

// Submission is a completed attempt. Immutable once stored.
type Submission struct {
	ID            int               `json:"id"`
	SessionName   string            `json:"session_name"`
	ExamSessionID *int              `json:"exam_session_id,omitempty"`
	StudentName   string            `json:"student_name"`
	StudentKey    string            `json:"-"`
	Group         string            `json:"group"`
	StartTime     *time.Time        `json:"start_time,omitempty"`
	EndTime       *time.Time        `json:"end_time,omitempty"`
	Warnings      []json.RawMessage `json:"warnings"`
	Answers       Answers           `json:"answers"`
	AutoSubmitted bool              `json:"auto_submitted"`
	Score         *float64          `json:"score"`
	ScoreDetails  ScoreBreakdown    `json:"score_details"`
	CreatedAt     time.Time         `json:"created_at"`
}

// SubmissionSummary is the list-view shape of a Submission.
type SubmissionSummary struct {
	ID            int        `json:"id"`
	SessionName   string     `json:"session_name"`
	StudentName   string     `json:"student_name"`
	Group         string     `json:"group"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	AutoSubmitted bool       `json:"auto_submitted"`
	WarningsCount int        `json:"warnings_count"`
	Score         *float64   `json:"score"`
}

// Summary returns the list-view shape of s.
func (s *Submission) Summary() SubmissionSummary {
	return SubmissionSummary{
		ID:            s.ID,
		SessionName:   s.SessionName,
		StudentName:   s.StudentName,
		Group:         s.Group,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		AutoSubmitted: s.AutoSubmitted,
		WarningsCount: len(s.Warnings),
		Score:         s.Score,
	}
}

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	SessionName   string
	ExamSessionID *int
	Page          int
	PerPage       int
}
