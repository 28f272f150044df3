// Package scoring grades a student's answers against the answer key.
//
// Each drug is graded over independent categories. A category counts toward
// the drug's denominator only when the key has data for it, so missing
// master-table cells never penalize the student. Set-valued categories use
// recall: extra student entries are not penalized. Text matching is exact
// after normalization; there is no fuzzy matching.
package scoring

import (
	"math"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/textnorm"
)

// Compute grades answers against key. The final score is the mean drug
// score scaled to 0-10 and rounded to two decimals. Empty answers are
// unscored: the score is nil and the breakdown empty.
func Compute(answers model.Answers, key model.AnswerKey) (*float64, model.ScoreBreakdown) {
	breakdown := make(model.ScoreBreakdown, len(answers))
	if len(answers) == 0 {
		return nil, breakdown
	}

	var total float64
	for id, ans := range answers {
		ds := ScoreDrug(ans, key[id])
		breakdown[id] = ds
		total += ds.Score
	}

	final := math.Round(total/float64(len(answers))*10*100) / 100
	return &final, breakdown
}

// ScoreDrug grades one answer. A zero DrugEntry (unknown id) scores 0 with
// no details.
func ScoreDrug(ans model.StudentAnswer, correct model.DrugEntry) model.DrugScore {
	var (
		d     model.CategoryDetails
		sum   float64
		count int
	)
	add := func(v float64) *float64 {
		sum += v
		count++
		return &v
	}

	if valid := mnnSet(correct); len(valid) > 0 {
		s := textnorm.AnswerToken(ans.MNN)
		_, ok := valid[s]
		d.MNN = add(boolScore(s != "" && ok))
	}
	if v, ok := recall(correct.TradeNames, ans.TradeNames); ok {
		d.TradeNames = add(v)
	}
	if v, ok := recall(correct.Forms, ans.Forms); ok {
		d.Forms = add(v)
	}
	if fd, ok := formDosages(correct.FormDosages, ans.FormDosages); ok {
		add(fd.Total)
		d.FormDosages = fd
	}
	if v, ok := recall(correct.Indications, ans.Indications); ok {
		d.Indications = add(v)
	}
	if dd, ok := doses(correct.Doses.Main, ans.Doses); ok {
		add(dd.Total)
		d.Doses = dd
	}
	if v, ok := halfLife(correct.HalfLife, ans.HalfLife); ok {
		d.HalfLife = add(v)
	}
	if v, ok := recall(correct.Elimination, ans.Elimination); ok {
		d.Elimination = add(v)
	}

	ds := model.DrugScore{Details: d}
	if count > 0 {
		ds.Score = sum / float64(count)
	}
	return ds
}

// mnnSet accepts the international name, its aliases and the Russian name.
func mnnSet(e model.DrugEntry) map[string]struct{} {
	return textnorm.TokenSet(append([]string{e.MNN, e.MNNRu}, e.MNNAliases...))
}

// recall is |correct ∩ student| / |correct|; ok is false when correct is empty.
func recall(correct, student []string) (float64, bool) {
	c := textnorm.TokenSet(correct)
	if len(c) == 0 {
		return 0, false
	}
	s := textnorm.TokenSet(student)
	hit := 0
	for tok := range c {
		if _, ok := s[tok]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(c)), true
}

func formDosages(correct map[string][]string, student map[string]model.StringList) (*model.FormDosageDetail, bool) {
	fd := &model.FormDosageDetail{PerForm: make(map[string]float64)}
	var sum float64
	for form, list := range correct {
		v, ok := recall(list, student[form])
		if !ok {
			continue
		}
		fd.PerForm[form] = v
		sum += v
	}
	if len(fd.PerForm) == 0 {
		return nil, false
	}
	fd.Total = sum / float64(len(fd.PerForm))
	return fd, true
}

func doses(correct model.DoseRange, student map[string]model.DoseAnswer) (*model.DoseDetail, bool) {
	dd := &model.DoseDetail{Per: make(map[string]float64)}
	var sum float64
	for _, bucket := range model.DoseBuckets {
		c := correct.Get(bucket)
		if c == nil {
			continue
		}
		v := boolScore(numbersEqual(c, student[bucket].Main))
		dd.Per[bucket] = v
		sum += v
	}
	if len(dd.Per) == 0 {
		return nil, false
	}
	dd.Total = sum / float64(len(dd.Per))
	return dd, true
}

// halfLife scores 1 when every bound the key defines is supplied and equal.
func halfLife(correct model.HalfLife, student model.HalfLifeAnswer) (float64, bool) {
	if correct.IsZero() {
		return 0, false
	}
	if correct.From != nil && !numbersEqual(correct.From, student.From) {
		return 0, true
	}
	if correct.To != nil && !numbersEqual(correct.To, student.To) {
		return 0, true
	}
	return 1, true
}

// numbersEqual compares numerically when both sides parse, otherwise by
// normalized text. A missing student value never matches.
func numbersEqual(correct, student *model.Number) bool {
	if correct == nil || student == nil {
		return false
	}
	cf, cok := correct.Float()
	sf, sok := student.Float()
	if cok && sok {
		return cf == sf
	}
	if cok != sok {
		return false
	}
	c := textnorm.AnswerToken(correct.Raw)
	return c != "" && c == textnorm.AnswerToken(student.Raw)
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
