package summarize

import "sort"

// ClampLimit forces limit into [1, total]. It returns 0 only when total is 0.
func ClampLimit(limit, total int) int {
	if total <= 0 {
		return 0
	}
	if limit < 1 {
		return 1
	}
	if limit > total {
		return total
	}
	return limit
}

// SelectTop picks the limit highest-scoring sentences and returns their
// indices in document order. Equal scores go to the lower index.
func SelectTop(scored []ScoredSentence, limit int) []int {
	limit = ClampLimit(limit, len(scored))
	if limit == 0 {
		return nil
	}

	ranked := make([]ScoredSentence, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Index < ranked[j].Index
	})

	picked := make([]int, limit)
	for i := range picked {
		picked[i] = ranked[i].Index
	}
	sort.Ints(picked)
	return picked
}
