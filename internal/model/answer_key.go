package model

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Number holds a numeric answer value that may arrive either as a JSON
// number or as a string ("10", "2,5"). The raw text is preserved so exports
// and non-numeric comparisons see exactly what was entered.
type Number struct {
	Raw string
}

// NewNumber builds a Number from its textual form. Empty text yields nil.
func NewNumber(raw string) *Number {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &Number{Raw: raw}
}

// Float parses the value, accepting a comma as decimal separator. NaN and
// infinities are not numbers here.
func (n *Number) Float() (float64, bool) {
	if n == nil {
		return 0, false
	}
	s := strings.ReplaceAll(strings.TrimSpace(n.Raw), ",", ".")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (n *Number) String() string {
	if n == nil {
		return ""
	}
	return n.Raw
}

// MarshalJSON writes parseable values as JSON numbers and anything else as a string.
func (n Number) MarshalJSON() ([]byte, error) {
	if f, ok := (&n).Float(); ok && !strings.Contains(n.Raw, ",") {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	return json.Marshal(n.Raw)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		n.Raw = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n.Raw = strings.TrimSpace(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	n.Raw = num.String()
	return nil
}

// DoseRange is a min/avg/max triple, each bound optional.
type DoseRange struct {
	Min *Number `json:"min"`
	Avg *Number `json:"avg"`
	Max *Number `json:"max"`
}

// Get returns the bound named "min", "avg" or "max".
func (r DoseRange) Get(bucket string) *Number {
	switch bucket {
	case "min":
		return r.Min
	case "avg":
		return r.Avg
	case "max":
		return r.Max
	}
	return nil
}

// IsZero reports whether no bound is set.
func (r DoseRange) IsZero() bool {
	return r.Min == nil && r.Avg == nil && r.Max == nil
}

// DoseTable holds daily dose ranges per population category. Main is the
// one graded; the others are carried for exports.
type DoseTable struct {
	Main       DoseRange `json:"main"`
	Outpatient DoseRange `json:"outpatient"`
	Inpatient  DoseRange `json:"inpatient"`
	Children   DoseRange `json:"children"`
	Elderly    DoseRange `json:"elderly"`
	Notes      string    `json:"notes,omitempty"`
}

// DoseBuckets are the graded dose types, in order.
var DoseBuckets = []string{"min", "avg", "max"}

// DoseCategories lists DoseTable populations in export order.
var DoseCategories = []string{"main", "outpatient", "inpatient", "children", "elderly"}

// Category returns the range for a population category name.
func (t DoseTable) Category(name string) DoseRange {
	switch name {
	case "main":
		return t.Main
	case "outpatient":
		return t.Outpatient
	case "inpatient":
		return t.Inpatient
	case "children":
		return t.Children
	case "elderly":
		return t.Elderly
	}
	return DoseRange{}
}

// HalfLife is a from/to range in hours. Raw keeps the text as uploaded.
type HalfLife struct {
	From *Number `json:"from,omitempty"`
	To   *Number `json:"to,omitempty"`
	Raw  string  `json:"raw,omitempty"`
}

// IsZero reports whether neither bound is set.
func (h HalfLife) IsZero() bool {
	return h.From == nil && h.To == nil
}

// ParseHalfLife reads "a-b", "a–b" or a single "a" (From and To both a).
func ParseHalfLife(raw string) HalfLife {
	raw = strings.TrimSpace(raw)
	h := HalfLife{Raw: raw}
	if raw == "" {
		return h
	}
	s := strings.ReplaceAll(raw, "–", "-")
	if i := strings.Index(s[1:], "-"); i >= 0 {
		h.From = NewNumber(s[:i+1])
		h.To = NewNumber(s[i+2:])
		return h
	}
	h.From = NewNumber(s)
	h.To = NewNumber(s)
	return h
}

// Form keys used in FormDosages, in the master-table column order.
const (
	FormTablets  = "tablets"
	FormCapsules = "capsules"
	FormDragee   = "dragee"
	FormPowder   = "powder"
	FormAmpoules = "ampoules"
	FormDrops    = "drops"
)

// FormKeys lists every dispensing form in column order.
var FormKeys = []string{FormTablets, FormCapsules, FormDragee, FormPowder, FormAmpoules, FormDrops}

// DrugEntry is one row of the master table, the correct answer for a drug.
type DrugEntry struct {
	DrugID       string              `json:"drug_id"`
	MNN          string              `json:"mnn"`
	MNNAliases   []string            `json:"mnn_aliases"`
	TradeNames   []string            `json:"trade_names"`
	MNNRu        string              `json:"inn_ru"`
	TradeNamesRu []string            `json:"trade_names_ru"`
	Forms        []string            `json:"forms"`
	FormDosages  map[string][]string `json:"form_dosages"`
	Indications  []string            `json:"indications"`
	HalfLife     HalfLife            `json:"half_life"`
	Elimination  []string            `json:"elimination"`
	Doses        DoseTable           `json:"doses"`
}

// AnswerKey maps drug id to its master-table entry.
type AnswerKey map[string]DrugEntry

// IDs returns the key's drug ids, sorted.
func (k AnswerKey) IDs() []string {
	ids := make([]string, 0, len(k))
	for id := range k {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
