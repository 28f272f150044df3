package ticket

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/textnorm"
)

// ProblemKind classifies a term that could not be resolved.
type ProblemKind string

const (
	ProblemNotFound  ProblemKind = "not_found"
	ProblemAmbiguous ProblemKind = "ambiguous"
	ProblemDuplicate ProblemKind = "duplicate"
)

// Problem describes one unresolvable dictation term.
type Problem struct {
	Index   int         `json:"index"`
	Term    string      `json:"term"`
	Kind    ProblemKind `json:"kind"`
	DrugIDs []string    `json:"drug_ids,omitempty"`
}

func (p Problem) String() string {
	switch p.Kind {
	case ProblemNotFound:
		return fmt.Sprintf("drugs[%d] %q: not found in master table", p.Index, p.Term)
	case ProblemAmbiguous:
		return fmt.Sprintf("drugs[%d] %q: ambiguous, matches %s", p.Index, p.Term, strings.Join(p.DrugIDs, ", "))
	case ProblemDuplicate:
		return fmt.Sprintf("drugs[%d] %q: duplicate drug in ticket (%s)", p.Index, p.Term, strings.Join(p.DrugIDs, ", "))
	}
	return fmt.Sprintf("drugs[%d] %q: %s", p.Index, p.Term, p.Kind)
}

// Index maps normalized Russian terms to the drugs that carry them.
type Index struct {
	candidates map[string][]string
	kinds      map[string]model.TermKind
}

func kindKey(drugID, term string) string { return drugID + "|" + term }

// BuildIndex indexes every drug's Russian primary name and trade names.
// When a drug lists the same term as both, the primary name wins.
func BuildIndex(key model.AnswerKey) *Index {
	idx := &Index{
		candidates: make(map[string][]string),
		kinds:      make(map[string]model.TermKind),
	}
	for _, id := range key.IDs() {
		entry := key[id]
		if t := textnorm.TermKey(entry.MNNRu); t != "" {
			idx.add(id, t, model.TermKindMNN)
		}
		for _, tn := range entry.TradeNamesRu {
			if t := textnorm.TermKey(tn); t != "" {
				idx.add(id, t, model.TermKindTrade)
			}
		}
	}
	return idx
}

func (idx *Index) add(drugID, term string, kind model.TermKind) {
	k := kindKey(drugID, term)
	prev, seen := idx.kinds[k]
	if !seen {
		idx.candidates[term] = append(idx.candidates[term], drugID)
		idx.kinds[k] = kind
		return
	}
	if prev != model.TermKindMNN && kind == model.TermKindMNN {
		idx.kinds[k] = kind
	}
}

// Lookup returns the distinct drug ids carrying the term, sorted.
func (idx *Index) Lookup(term string) []string {
	ids := idx.candidates[textnorm.TermKey(term)]
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

// Kind returns how the term names the drug.
func (idx *Index) Kind(drugID, term string) model.TermKind {
	if k, ok := idx.kinds[kindKey(drugID, textnorm.TermKey(term))]; ok {
		return k
	}
	return model.TermKindMNN
}

// Resolve maps each dictation term to exactly one drug. All problems are
// collected; a non-empty problem list means the ticket must not be used.
func Resolve(terms []string, key model.AnswerKey) ([]model.TicketItem, []Problem) {
	idx := BuildIndex(key)
	items := make([]model.TicketItem, 0, len(terms))
	var problems []Problem
	used := make(map[string]int)

	for i, raw := range terms {
		term := strings.TrimSpace(raw)
		ids := idx.Lookup(term)
		switch {
		case len(ids) == 0:
			problems = append(problems, Problem{Index: i, Term: term, Kind: ProblemNotFound})
			continue
		case len(ids) > 1:
			problems = append(problems, Problem{Index: i, Term: term, Kind: ProblemAmbiguous, DrugIDs: ids})
			continue
		}

		id := ids[0]
		if _, dup := used[id]; dup {
			problems = append(problems, Problem{Index: i, Term: term, Kind: ProblemDuplicate, DrugIDs: ids})
			continue
		}
		used[id] = i
		items = append(items, model.TicketItem{
			DrugID:       id,
			DictatedRu:   term,
			DictatedKind: idx.Kind(id, term),
		})
	}
	if len(problems) > 0 {
		return nil, problems
	}
	return items, nil
}
