// Package ticket builds the dictation ticket: it resolves admin-entered
// terms against the answer key and derives each student's deterministic
// item order.
package ticket

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/stemsi/dictant-backend/internal/model"
)

// ProtocolVersion is mixed into every shuffle seed. Changing it changes
// every student's order.
const ProtocolVersion = "ticket_v1"

// SeedFor builds the shuffle seed for one student attempt.
func SeedFor(sessionName, studentName, group, joinCode string) string {
	return strings.Join([]string{sessionName, studentName, group, joinCode, ProtocolVersion}, "|")
}

// Shuffle returns a permutation of [0..n-1] that depends only on n and seed.
func Shuffle(n int, seed string) []int {
	if n <= 0 {
		return []int{}
	}
	sum := sha256.Sum256([]byte(seed))
	s := binary.BigEndian.Uint64(sum[:8])
	rng := rand.New(rand.NewPCG(s, binary.BigEndian.Uint64(sum[8:16])))

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// Permute returns the items in shown order: shown[i] = items[order[i]].
func Permute(items []model.TicketItem, order []int) []model.TicketItem {
	out := make([]model.TicketItem, 0, len(order))
	for _, idx := range order {
		if idx >= 0 && idx < len(items) {
			out = append(out, items[idx])
		}
	}
	return out
}

// Unshuffle re-keys answers submitted by shown position ("0".."n-1") to the
// drug ids of the canonical ticket. Answers keyed any other way, including
// by drug id, are returned unchanged. When the ticket's drug ids are
// themselves "0".."n-1" the two keyings cannot be told apart and answers are
// taken as keyed by drug id.
func Unshuffle(answers model.Answers, items []model.TicketItem, order []int) model.Answers {
	n := len(order)
	if n == 0 || len(answers) != n || len(items) != n {
		return answers
	}
	for i := 0; i < n; i++ {
		if _, ok := answers[strconv.Itoa(i)]; !ok {
			return answers
		}
	}
	if keyedByDrugID(answers, items) {
		return answers
	}

	out := make(model.Answers, n)
	for shown := 0; shown < n; shown++ {
		idx := order[shown]
		if idx < 0 || idx >= len(items) {
			return answers
		}
		out[items[idx].DrugID] = answers[strconv.Itoa(shown)]
	}
	return out
}

func keyedByDrugID(answers model.Answers, items []model.TicketItem) bool {
	for _, it := range items {
		if _, ok := answers[it.DrugID]; !ok {
			return false
		}
	}
	return true
}
