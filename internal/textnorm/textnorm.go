// Package textnorm canonicalizes free-text identifiers (student names, dictated
// drug terms, answer tokens) into stable lookup keys.
package textnorm

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// JoinCodeLength is the default length of generated exam session join codes.
const JoinCodeLength = 10

const joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NameKey trims, collapses internal whitespace runs to a single space and
// lowercases. Used for roster and attempt matching of student full names.
func NameKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// TermKey is NameKey for Cyrillic drug terms: "ё" is folded to "е" so that
// stylistic spelling variants resolve to the same key.
func TermKey(s string) string {
	s = strings.NewReplacer("ё", "е", "Ё", "е").Replace(s)
	return NameKey(s)
}

// AnswerToken normalizes a single student or key answer token for scoring.
func AnswerToken(s string) string {
	s = strings.ReplaceAll(s, "–", "-")
	s = NameKey(s)
	for strings.HasSuffix(s, ";") {
		s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	}
	return s
}

// TokenSet normalizes values with AnswerToken and drops empties.
func TokenSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		if t := AnswerToken(v); t != "" {
			out[t] = struct{}{}
		}
	}
	return out
}

// GenerateJoinCode draws length characters from [A-Z0-9] using crypto/rand.
func GenerateJoinCode(length int) (string, error) {
	if length <= 0 {
		length = JoinCodeLength
	}
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		b.WriteByte(joinCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// ValidateDictationTerms checks that every term is a non-empty, Cyrillic-only
// string. Problems are keyed "drugs[i]" so callers can report them per index.
func ValidateDictationTerms(terms []string) map[string]string {
	fields := make(map[string]string)
	for i, raw := range terms {
		key := fmt.Sprintf("drugs[%d]", i)
		s := strings.TrimSpace(raw)
		switch {
		case s == "":
			fields[key] = "term is empty"
		case hasLatin(s):
			fields[key] = fmt.Sprintf("term contains Latin letters: %s", s)
		case !hasCyrillic(s):
			fields[key] = fmt.Sprintf("term must contain Cyrillic letters: %s", s)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func hasLatin(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func hasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}
