package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Иванов   Иван  ", "иванов иван"},
		{"Иванов\tИван\nПетрович", "иванов иван петрович"},
		{"", ""},
		{"   ", ""},
		{"ALREADY key", "already key"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NameKey(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NameKey(got), "idempotent")
		})
	}
}

func TestTermKey(t *testing.T) {
	assert.Equal(t, "леветирацетам", TermKey(" Леветирацетам "))
	assert.Equal(t, "трилептал", TermKey("трилептал"))
	assert.Equal(t, "фенобарбитал", TermKey("фенобарбитал"))
	assert.Equal(t, "берлитион еж", TermKey("Берлитион  ЁЖ"))
	assert.Equal(t, "ее", TermKey("ёЁ"))

	for _, in := range []string{" Ёлка  зелёная ", "ёж\tЁж", "  "} {
		once := TermKey(in)
		assert.Equal(t, once, TermKey(once), "idempotent for %q", in)
		assert.Equal(t, once, TermKey(" "+in+" "), "trim commutes for %q", in)
	}
}

func TestAnswerToken(t *testing.T) {
	assert.Equal(t, "25 mg - 2 ml", AnswerToken(" 25 mg – 2 ml; "))
	assert.Equal(t, "10", AnswerToken("10;;"))
	assert.Equal(t, "ортофен", AnswerToken("Ортофен "))
	assert.Equal(t, "", AnswerToken(" ; "))
}

func TestTokenSet(t *testing.T) {
	set := TokenSet([]string{"Таблетки", " таблетки ", "", "Капсулы;"})
	assert.Len(t, set, 2)
	assert.Contains(t, set, "таблетки")
	assert.Contains(t, set, "капсулы")
}

func TestGenerateJoinCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := GenerateJoinCode(JoinCodeLength)
		require.NoError(t, err)
		require.Len(t, code, JoinCodeLength)
		for _, r := range code {
			assert.Contains(t, joinCodeAlphabet, string(r))
		}
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, 200)

	code, err := GenerateJoinCode(0)
	require.NoError(t, err)
	assert.Len(t, code, JoinCodeLength)
}

func TestValidateDictationTerms(t *testing.T) {
	assert.Nil(t, ValidateDictationTerms([]string{"аторвастатин", "Липримар 10"}))
	assert.Nil(t, ValidateDictationTerms(nil))

	fields := ValidateDictationTerms([]string{"аторвастатин", "atorvastatin", "  ", "123", "ибупрофен-N"})
	require.Len(t, fields, 4)
	assert.Contains(t, fields["drugs[1]"], "Latin")
	assert.Equal(t, "term is empty", fields["drugs[2]"])
	assert.Contains(t, fields["drugs[3]"], "Cyrillic")
	assert.Contains(t, fields["drugs[4]"], "Latin")
	assert.NotContains(t, fields, "drugs[0]")
}
