package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/dictant-backend/internal/model"
)

func num(s string) *model.Number { return model.NewNumber(s) }

func TestCompute_EmptyAnswersUnscored(t *testing.T) {
	key := model.AnswerKey{"d1": {MNN: "atorvastatin"}}
	for _, answers := range []model.Answers{nil, {}} {
		score, breakdown := Compute(answers, key)
		assert.Nil(t, score)
		assert.Empty(t, breakdown)
	}
}

func TestCompute_SingleCategoryFullMarks(t *testing.T) {
	key := model.AnswerKey{"d1": {DrugID: "d1", MNN: "аторвастатин", MNNRu: "аторвастатин", TradeNamesRu: []string{"липримар"}}}
	score, breakdown := Compute(model.Answers{"d1": {MNN: "Аторвастатин"}}, key)
	require.NotNil(t, score)
	assert.Equal(t, 10.0, *score)
	require.NotNil(t, breakdown["d1"].Details.MNN)
	assert.Equal(t, 1.0, *breakdown["d1"].Details.MNN)
	assert.Nil(t, breakdown["d1"].Details.TradeNames)
}

func TestScoreDrug_MNN(t *testing.T) {
	entry := model.DrugEntry{MNN: "Диклофенак", MNNAliases: []string{"Ортофен"}}
	tests := []struct {
		answer string
		want   float64
	}{
		{"ортофен ", 1},
		{"  ДИКЛОФЕНАК", 1},
		{"диклофенак натрия", 0},
		{"диклофенк", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			ds := ScoreDrug(model.StudentAnswer{MNN: tt.answer}, entry)
			require.NotNil(t, ds.Details.MNN)
			assert.Equal(t, tt.want, *ds.Details.MNN)
			assert.Equal(t, tt.want, ds.Score)
		})
	}
}

func TestScoreDrug_AliasOnlyKey(t *testing.T) {
	ds := ScoreDrug(model.StudentAnswer{MNN: "ортофен"}, model.DrugEntry{MNNAliases: []string{"ортофен"}})
	require.NotNil(t, ds.Details.MNN)
	assert.Equal(t, 1.0, ds.Score)
}

func TestScoreDrug_TradeNamesRecall(t *testing.T) {
	entry := model.DrugEntry{TradeNames: []string{"Вольтарен", "Ортофен", "Диклак"}}
	ds := ScoreDrug(model.StudentAnswer{TradeNames: model.StringList{"вольтарен", "нурофен", "аспирин"}}, entry)
	require.NotNil(t, ds.Details.TradeNames)
	assert.InDelta(t, 1.0/3.0, *ds.Details.TradeNames, 1e-12)
	assert.InDelta(t, 1.0/3.0, ds.Score, 1e-12)
}

func TestScoreDrug_RecallIgnoresExtras(t *testing.T) {
	entry := model.DrugEntry{Forms: []string{"tablets"}, Indications: []string{"Боль", "Воспаление"}, Elimination: []string{"почки"}}
	ds := ScoreDrug(model.StudentAnswer{
		Forms:       model.StringList{"tablets", "drops", "powder"},
		Indications: model.StringList{"боль;", "воспаление", "лихорадка"},
		Elimination: model.StringList{"Почки", "печень"},
	}, entry)
	assert.Equal(t, 1.0, *ds.Details.Forms)
	assert.Equal(t, 1.0, *ds.Details.Indications)
	assert.Equal(t, 1.0, *ds.Details.Elimination)
	assert.Equal(t, 1.0, ds.Score)
}

func TestScoreDrug_FormDosages(t *testing.T) {
	entry := model.DrugEntry{
		MNN: "диклофенак",
		FormDosages: map[string][]string{
			model.FormTablets:  {"25", "50"},
			model.FormAmpoules: {"25 mg – 3 ml"},
			model.FormDrops:    {},
		},
	}
	ds := ScoreDrug(model.StudentAnswer{
		MNN: "диклофенак",
		FormDosages: map[string]model.StringList{
			model.FormTablets:  {"25"},
			model.FormAmpoules: {"25 MG - 3 ml;"},
			model.FormDrops:    {"1%"},
		},
	}, entry)
	require.NotNil(t, ds.Details.FormDosages)
	assert.Equal(t, map[string]float64{model.FormTablets: 0.5, model.FormAmpoules: 1}, ds.Details.FormDosages.PerForm)
	assert.Equal(t, 0.75, ds.Details.FormDosages.Total)
	assert.Equal(t, (1+0.75)/2, ds.Score)
}

func TestScoreDrug_NoFormDosagesExcluded(t *testing.T) {
	entry := model.DrugEntry{MNN: "аторвастатин", Forms: []string{"tablets"}}
	ds := ScoreDrug(model.StudentAnswer{MNN: "аторвастатин", Forms: model.StringList{"tablets"}}, entry)
	assert.Nil(t, ds.Details.FormDosages)
	assert.Equal(t, 1.0, ds.Score)

	entry.FormDosages = map[string][]string{model.FormTablets: nil}
	ds = ScoreDrug(model.StudentAnswer{MNN: "аторвастатин", Forms: model.StringList{"tablets"}}, entry)
	assert.Nil(t, ds.Details.FormDosages)
	assert.Equal(t, 1.0, ds.Score)
}

func TestScoreDrug_Doses(t *testing.T) {
	entry := model.DrugEntry{Doses: model.DoseTable{
		Main:     model.DoseRange{Min: num("10"), Max: num("80")},
		Children: model.DoseRange{Min: num("5")},
	}}
	ds := ScoreDrug(model.StudentAnswer{Doses: map[string]model.DoseAnswer{
		"min": {Main: num("10.0")},
		"avg": {Main: num("40")},
		"max": {Main: num("60")},
	}}, entry)
	require.NotNil(t, ds.Details.Doses)
	assert.Equal(t, map[string]float64{"min": 1, "max": 0}, ds.Details.Doses.Per)
	assert.Equal(t, 0.5, ds.Details.Doses.Total)
	assert.Equal(t, 0.5, ds.Score)
}

func TestScoreDrug_DosesWithoutMainExcluded(t *testing.T) {
	entry := model.DrugEntry{MNN: "x", Doses: model.DoseTable{Elderly: model.DoseRange{Max: num("20")}, Notes: "n"}}
	ds := ScoreDrug(model.StudentAnswer{MNN: "x"}, entry)
	assert.Nil(t, ds.Details.Doses)
	assert.Equal(t, 1.0, ds.Score)
}

func TestScoreDrug_HalfLife(t *testing.T) {
	tests := []struct {
		name    string
		key     model.HalfLife
		student model.HalfLifeAnswer
		want    float64
	}{
		{"both match", model.ParseHalfLife("14-16"), model.HalfLifeAnswer{From: num("14"), To: num("16.0")}, 1},
		{"decimal comma", model.ParseHalfLife("1,5–2"), model.HalfLifeAnswer{From: num("1.5"), To: num("2")}, 1},
		{"to missing", model.ParseHalfLife("14-16"), model.HalfLifeAnswer{From: num("14")}, 0},
		{"mismatch", model.ParseHalfLife("14-16"), model.HalfLifeAnswer{From: num("14"), To: num("15")}, 0},
		{"single value", model.ParseHalfLife("7"), model.HalfLifeAnswer{From: num("7"), To: num("7")}, 1},
		{"from only key", model.HalfLife{From: num("3")}, model.HalfLifeAnswer{From: num("3")}, 1},
		{"open upper bound", model.ParseHalfLife("5-"), model.HalfLifeAnswer{From: num("5")}, 1},
		{"open upper bound, extra to", model.ParseHalfLife("5-"), model.HalfLifeAnswer{From: num("5"), To: num("9")}, 1},
		{"open upper bound mismatch", model.ParseHalfLife("5-"), model.HalfLifeAnswer{From: num("6")}, 0},
		{"to only key", model.HalfLife{To: num("8")}, model.HalfLifeAnswer{To: num("8")}, 1},
		{"to only key, from missing", model.HalfLife{To: num("8")}, model.HalfLifeAnswer{From: num("8")}, 0},
		{"infinite answer", model.ParseHalfLife("14-16"), model.HalfLifeAnswer{From: num("inf"), To: num("16")}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := ScoreDrug(model.StudentAnswer{HalfLife: tt.student}, model.DrugEntry{HalfLife: tt.key})
			require.NotNil(t, ds.Details.HalfLife)
			assert.Equal(t, tt.want, *ds.Details.HalfLife)
		})
	}

	ds := ScoreDrug(model.StudentAnswer{MNN: "x"}, model.DrugEntry{MNN: "x", HalfLife: model.ParseHalfLife("")})
	assert.Nil(t, ds.Details.HalfLife)
}

func TestScoreDrug_UnknownDrug(t *testing.T) {
	ds := ScoreDrug(model.StudentAnswer{MNN: "что-то"}, model.DrugEntry{})
	assert.Equal(t, 0.0, ds.Score)
	assert.Equal(t, model.CategoryDetails{}, ds.Details)
}

func TestCompute_MeanAndRounding(t *testing.T) {
	key := model.AnswerKey{
		"d1": {MNN: "аторвастатин"},
		"d2": {TradeNames: []string{"a", "b", "c"}},
	}
	score, breakdown := Compute(model.Answers{
		"d1": {MNN: "аторвастатин"},
		"d2": {TradeNames: model.StringList{"a"}},
		"zz": {MNN: "аторвастатин"},
	}, key)
	require.NotNil(t, score)
	// (1 + 1/3 + 0) / 3 * 10 = 4.444...
	assert.Equal(t, 4.44, *score)
	assert.Len(t, breakdown, 3)
	assert.Equal(t, 0.0, breakdown["zz"].Score)
}

func TestNumbersEqual_TextFallback(t *testing.T) {
	assert.True(t, numbersEqual(num("по показаниям"), num(" По  показаниям ")))
	assert.False(t, numbersEqual(num("10"), num("десять")))
	assert.False(t, numbersEqual(num("10"), nil))
	assert.True(t, numbersEqual(num("2,5"), num("2.50")))
}

func TestNumbersEqual_NonFinite(t *testing.T) {
	assert.False(t, numbersEqual(num("10"), num("inf")))
	assert.False(t, numbersEqual(num("10"), num("NaN")))
	assert.True(t, numbersEqual(num("inf"), num("Inf")))
	assert.False(t, numbersEqual(num("NaN"), num("inf")))
}

func TestScoreDrug_DosesNonFiniteAnswer(t *testing.T) {
	entry := model.DrugEntry{Doses: model.DoseTable{Main: model.DoseRange{Min: num("10"), Max: num("80")}}}
	ds := ScoreDrug(model.StudentAnswer{Doses: map[string]model.DoseAnswer{
		"min": {Main: num("inf")},
		"max": {Main: num("80")},
	}}, entry)
	require.NotNil(t, ds.Details.Doses)
	assert.Equal(t, map[string]float64{"min": 0, "max": 1}, ds.Details.Doses.Per)
}

func TestScoreDrug_RussianPrimaryName(t *testing.T) {
	entry := model.DrugEntry{MNN: "atorvastatin", MNNRu: "аторвастатин", TradeNamesRu: []string{"липримар"}}
	for _, answer := range []string{"Atorvastatin", "аторвастатин"} {
		ds := ScoreDrug(model.StudentAnswer{MNN: answer}, entry)
		assert.Equal(t, 1.0, ds.Score, answer)
	}
	ds := ScoreDrug(model.StudentAnswer{MNN: "липримар"}, entry)
	assert.Equal(t, 0.0, ds.Score)
	assert.Nil(t, ds.Details.TradeNames)
}
