package model

import "time"

// TermKind records which name form of a drug was dictated.
type TermKind string

const (
	TermKindMNN   TermKind = "mnn"
	TermKindTrade TermKind = "trade"
)

// TicketItem is one resolved dictation term.
type TicketItem struct {
	DrugID       string   `json:"drug_id"`
	DictatedRu   string   `json:"dictated_ru"`
	DictatedKind TermKind `json:"dictated_kind"`
}

// Settings is the singleton dictation configuration.
type Settings struct {
	AnswerKey      AnswerKey           `json:"-"`
	Ticket         []TicketItem        `json:"ticket"`
	Duration       int                 `json:"duration"`
	Code           string              `json:"code"`
	SessionName    string              `json:"session_name"`
	IndicationKey  string              `json:"indication_key"`
	IndicationSets map[string][]string `json:"indication_sets"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// DictatedTerms returns the ticket as the strings the admin entered.
func (s *Settings) DictatedTerms() []string {
	out := make([]string, 0, len(s.Ticket))
	for _, it := range s.Ticket {
		out = append(out, it.DictatedRu)
	}
	return out
}

// SettingsView is the admin-facing shape of Settings.
type SettingsView struct {
	Drugs          []string            `json:"drugs"`
	Ticket         []TicketItem        `json:"ticket"`
	Duration       int                 `json:"duration"`
	Code           string              `json:"code"`
	SessionName    string              `json:"sessionName"`
	IndicationKey  string              `json:"indicationKey"`
	IndicationSets map[string][]string `json:"indicationSets"`
	MasterSize     int                 `json:"masterSize"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// UpdateSettingsRequest patches settings field by field; nil fields are kept.
type UpdateSettingsRequest struct {
	Drugs          *[]string            `json:"drugs"`
	Duration       *int                 `json:"duration" binding:"omitempty,min=1,max=600"`
	Code           *string              `json:"code" binding:"omitempty,max=100"`
	SessionName    *string              `json:"sessionName" binding:"omitempty,max=200"`
	IndicationKey  *string              `json:"indicationKey" binding:"omitempty,max=100"`
	IndicationSets *map[string][]string `json:"indicationSets"`
}

// MasterUploadResult summarizes a master-table replacement.
type MasterUploadResult struct {
	Loaded       int          `json:"loaded"`
	Skipped      int          `json:"skipped"`
	OrphanTicket []TicketItem `json:"orphan_ticket"`
}
