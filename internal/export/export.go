// Package export renders submissions and the master table for download.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/sheet"
)

// utf8BOM makes spreadsheet applications detect UTF-8 in CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// baseColumns are present in every submission row, in this order.
var baseColumns = []string{
	"id", "session_name", "student_name", "group", "start_time", "end_time",
	"auto_submitted", "warnings_count", "score", "answers_json", "score_details_json",
}

// Row is one flattened submission.
type Row map[string]string

// Table is a set of rows with a stable column order.
type Table struct {
	Columns []string
	Rows    []Row
}

// FlattenSubmission turns a submission into one row: base columns followed
// by per-drug answer columns prefixed with the drug id.
func FlattenSubmission(s model.Submission) (Row, []string) {
	row := Row{
		"id":             strconv.Itoa(s.ID),
		"session_name":   s.SessionName,
		"student_name":   s.StudentName,
		"group":          s.Group,
		"start_time":     formatTime(s.StartTime),
		"end_time":       formatTime(s.EndTime),
		"auto_submitted": strconv.FormatBool(s.AutoSubmitted),
		"warnings_count": strconv.Itoa(len(s.Warnings)),
		"score":          formatScore(s.Score),
	}
	row["answers_json"] = jsonString(s.Answers)
	row["score_details_json"] = jsonString(s.ScoreDetails)

	cols := append([]string(nil), baseColumns...)
	set := func(col, val string) {
		if _, ok := row[col]; !ok {
			cols = append(cols, col)
		}
		row[col] = val
	}

	ids := make([]string, 0, len(s.Answers))
	for id := range s.Answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		a := s.Answers[id]
		set(id+"_dictated_type", a.DictatedType)
		set(id+"_mnn", a.MNN)
		set(id+"_trade_names", strings.Join(a.TradeNames, ", "))
		set(id+"_forms", strings.Join(a.Forms, ", "))
		set(id+"_indications", strings.Join(a.Indications, ", "))
		set(id+"_elimination", strings.Join(a.Elimination, ", "))

		for _, form := range sortedKeys(a.FormDosages) {
			set(id+"_dosages_"+form, strings.Join(a.FormDosages[form], ", "))
		}
		for _, bucket := range sortedKeys(a.Doses) {
			dose := a.Doses[bucket]
			set(id+"_dose_"+bucket+"_main", dose.Main.String())
			for _, k := range sortedKeys(dose.Extras) {
				v := dose.Extras[k]
				set(id+"_dose_"+bucket+"_"+k, v.Raw)
			}
		}
		set(id+"_half_life_from", a.HalfLife.From.String())
		set(id+"_half_life_to", a.HalfLife.To.String())

		if ds, ok := s.ScoreDetails[id]; ok {
			set(id+"_score", strconv.FormatFloat(ds.Score, 'f', -1, 64))
		}
	}
	return row, cols
}

// Submissions flattens every submission, merging columns in first-seen order.
func Submissions(list []model.Submission) Table {
	t := Table{Rows: make([]Row, 0, len(list))}
	seen := make(map[string]struct{})
	for _, s := range list {
		row, cols := FlattenSubmission(s)
		for _, c := range cols {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				t.Columns = append(t.Columns, c)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	if t.Columns == nil {
		t.Columns = append([]string(nil), baseColumns...)
	}
	return t
}

// WriteCSV writes the table as BOM-prefixed UTF-8 CSV.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			record[i] = row[c]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the table as a single-sheet workbook.
func WriteXLSX(w io.Writer, sheetName string, t Table) error {
	rows := make([][]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			cells[i] = row[c]
		}
		rows = append(rows, cells)
	}
	return sheet.WriteTable(w, sheetName, t.Columns, rows)
}

// MasterJSON renders the answer key as indented JSON.
func MasterJSON(key model.AnswerKey) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(key); err != nil {
		return nil, fmt.Errorf("encode master: %w", err)
	}
	return buf.Bytes(), nil
}

// Master lays the answer key out in the master-table column format, so an
// export can be edited and uploaded again.
func Master(key model.AnswerKey) Table {
	cols := []string{
		sheet.ColDrugID, sheet.ColINNMain, sheet.ColINNAliases, sheet.ColTradeNames,
		sheet.ColINNRu, sheet.ColTradeNamesRu,
	}
	for _, fc := range sheet.FormColumns {
		cols = append(cols, fc.Column)
	}
	cols = append(cols, sheet.ColIndications, sheet.ColHalfLife, sheet.ColElimination)
	for _, cat := range model.DoseCategories {
		for _, b := range model.DoseBuckets {
			cols = append(cols, sheet.DoseColumn(cat, b))
		}
	}
	cols = append(cols, sheet.ColDoseNotes)

	t := Table{Columns: cols, Rows: make([]Row, 0, len(key))}
	for _, id := range key.IDs() {
		e := key[id]
		row := Row{
			sheet.ColDrugID:       id,
			sheet.ColINNMain:      e.MNN,
			sheet.ColINNAliases:   strings.Join(e.MNNAliases, "; "),
			sheet.ColTradeNames:   strings.Join(e.TradeNames, "; "),
			sheet.ColINNRu:        e.MNNRu,
			sheet.ColTradeNamesRu: strings.Join(e.TradeNamesRu, "; "),
			sheet.ColIndications:  strings.Join(e.Indications, "; "),
			sheet.ColHalfLife:     e.HalfLife.Raw,
			sheet.ColElimination:  strings.Join(e.Elimination, "; "),
			sheet.ColDoseNotes:    e.Doses.Notes,
		}
		for _, fc := range sheet.FormColumns {
			row[fc.Column] = strings.Join(e.FormDosages[fc.Form], "; ")
		}
		for _, cat := range model.DoseCategories {
			r := e.Doses.Category(cat)
			for _, b := range model.DoseBuckets {
				row[sheet.DoseColumn(cat, b)] = r.Get(b).String()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Filename builds a timestamped download name.
func Filename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("2006-01-02_15-04"), ext)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatScore(s *float64) string {
	if s == nil {
		return ""
	}
	return strconv.FormatFloat(*s, 'f', -1, 64)
}

func jsonString(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
