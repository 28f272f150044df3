package sheet

import (
	"io"
	"strings"

	"github.com/stemsi/dictant-backend/internal/model"
)

// Master-table column names.
const (
	ColDrugID       = "drug_id"
	ColINNMain      = "inn_main"
	ColINNAliases   = "inn_aliases"
	ColTradeNames   = "trade_names"
	ColINNRu        = "inn_ru"
	ColTradeNamesRu = "trade_names_ru"
	ColIndications  = "indications"
	ColHalfLife     = "half_life"
	ColElimination  = "elimination_routes"
	ColDoseNotes    = "dose_notes"
)

// FormColumns maps each dispensing-form column to its form key.
var FormColumns = []struct {
	Column string
	Form   string
}{
	{"form_tabs", model.FormTablets},
	{"form_caps", model.FormCapsules},
	{"form_dragee", model.FormDragee},
	{"form_powder", model.FormPowder},
	{"form_ampoules", model.FormAmpoules},
	{"form_drops", model.FormDrops},
}

// SplitList splits a multi-valued cell on ";" and ",".
func SplitList(cell string) []string {
	cell = strings.ReplaceAll(cell, ",", ";")
	parts := strings.Split(cell, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DoseColumn names the dose cell for a population category and bucket.
func DoseColumn(category, bucket string) string {
	return "dose_" + category + "_" + bucket
}

// MasterRow converts one master-table record. ok is false when the row has
// no drug_id.
func MasterRow(rec Record) (model.DrugEntry, bool) {
	id := rec.Get(ColDrugID)
	if id == "" {
		return model.DrugEntry{}, false
	}

	e := model.DrugEntry{
		DrugID:       id,
		MNN:          rec.Get(ColINNMain),
		MNNAliases:   SplitList(rec.Get(ColINNAliases)),
		TradeNames:   SplitList(rec.Get(ColTradeNames)),
		MNNRu:        rec.Get(ColINNRu),
		TradeNamesRu: SplitList(rec.Get(ColTradeNamesRu)),
		Forms:        []string{},
		FormDosages:  map[string][]string{},
		Indications:  SplitList(rec.Get(ColIndications)),
		HalfLife:     model.ParseHalfLife(rec.Get(ColHalfLife)),
		Elimination:  SplitList(rec.Get(ColElimination)),
	}
	for _, fc := range FormColumns {
		if dosages := SplitList(rec.Get(fc.Column)); len(dosages) > 0 {
			e.Forms = append(e.Forms, fc.Form)
			e.FormDosages[fc.Form] = dosages
		}
	}

	dr := func(category string) model.DoseRange {
		return model.DoseRange{
			Min: model.NewNumber(rec.Get(DoseColumn(category, "min"))),
			Avg: model.NewNumber(rec.Get(DoseColumn(category, "avg"))),
			Max: model.NewNumber(rec.Get(DoseColumn(category, "max"))),
		}
	}
	e.Doses = model.DoseTable{
		Main:       dr("main"),
		Outpatient: dr("outpatient"),
		Inpatient:  dr("inpatient"),
		Children:   dr("children"),
		Elderly:    dr("elderly"),
		Notes:      rec.Get(ColDoseNotes),
	}
	return e, true
}

// ParseMaster converts records into an answer key. Rows without a drug_id
// are counted as skipped; a repeated drug_id keeps the last row.
func ParseMaster(records []Record) (model.AnswerKey, int) {
	key := make(model.AnswerKey, len(records))
	skipped := 0
	for _, rec := range records {
		e, ok := MasterRow(rec)
		if !ok {
			skipped++
			continue
		}
		key[e.DrugID] = e
	}
	return key, skipped
}

// ReadMaster reads a master-table workbook.
func ReadMaster(r io.Reader) (model.AnswerKey, int, error) {
	records, err := ReadRecords(r)
	if err != nil {
		return nil, 0, err
	}
	key, skipped := ParseMaster(records)
	return key, skipped, nil
}
