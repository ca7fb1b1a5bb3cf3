package resolve

import (
	"github.com/lexweave/lexweave/pkg/clause"
)

// ResolveConflicts arbitrates declared mutual exclusions. Conflicts
// are treated as symmetric even when declared one-directionally: each
// candidate is checked against the accumulating accepted list in both
// directions. When two clauses conflict, the higher priority score
// wins and evicts the other; on an equal score the clause accepted
// earlier is kept. Candidates are processed in template declaration
// order, so the tie-break is declaration order.
func ResolveConflicts(in []clause.Clause) []clause.Clause {
	accepted := make([]clause.Clause, 0, len(in))

	for _, cand := range in {
		conflicting := make(map[int]bool)
		blocked := false
		for i, acc := range accepted {
			if !conflictsWith(cand, acc) {
				continue
			}
			if cand.PriorityScore() > acc.PriorityScore() {
				conflicting[i] = true
			} else {
				// Lower or equal priority: the earlier clause stands.
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		if len(conflicting) > 0 {
			kept := accepted[:0]
			for i, acc := range accepted {
				if !conflicting[i] {
					kept = append(kept, acc)
				}
			}
			accepted = kept
		}
		accepted = append(accepted, cand)
	}
	return accepted
}

// ConflictPairs returns every pair of clauses in the set that declare
// a conflict with each other, for validation reporting.
func ConflictPairs(in []clause.Clause) [][2]clause.Clause {
	var pairs [][2]clause.Clause
	for i := 0; i < len(in); i++ {
		for j := i + 1; j < len(in); j++ {
			if conflictsWith(in[i], in[j]) {
				pairs = append(pairs, [2]clause.Clause{in[i], in[j]})
			}
		}
	}
	return pairs
}

func conflictsWith(a, b clause.Clause) bool {
	for _, s := range a.Conflicts {
		if s == b.Slug {
			return true
		}
	}
	for _, s := range b.Conflicts {
		if s == a.Slug {
			return true
		}
	}
	return false
}
