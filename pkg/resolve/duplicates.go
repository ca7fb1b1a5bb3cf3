package resolve

import (
	"github.com/lexweave/lexweave/pkg/clause"
)

// CollapseDuplicates resolves categories that ended up with more than
// one clause. Multi-allowed categories pass through unchanged. For any
// other category, exactly one clause survives: the one with the
// highest specificity score over its display name. Ties keep the first
// clause encountered in pool order, which makes the tie-break
// auditable rather than random.
func CollapseDuplicates(in []clause.Clause) []clause.Clause {
	// winner per contested category, keyed by category.
	type pick struct {
		idx   int
		score int
	}
	winners := make(map[clause.Category]pick)
	counts := make(map[clause.Category]int)

	for i, c := range in {
		if c.Category.MultiAllowed() {
			continue
		}
		counts[c.Category]++
		score := clause.SpecificityScore(c.Name)
		w, seen := winners[c.Category]
		if !seen || score > w.score {
			winners[c.Category] = pick{idx: i, score: score}
		}
	}

	out := make([]clause.Clause, 0, len(in))
	for i, c := range in {
		if c.Category.MultiAllowed() || counts[c.Category] < 2 {
			out = append(out, c)
			continue
		}
		if winners[c.Category].idx == i {
			out = append(out, c)
		}
	}
	return out
}
