package dedupe

import (
	"slices"
	"sort"

	"github.com/okian/volley/internal/domain/model"
)

// Resolve keeps the highest-confidence subset of non-overlapping candidates.
// Candidates are taken greedily by descending confidence (ties by earlier
// peak) and the survivors are returned ordered by start time. The input is
// not modified and Resolve(Resolve(x)) equals Resolve(x).
func Resolve(candidates []model.CandidateEvent) []model.CandidateEvent {
	if len(candidates) == 0 {
		return nil
	}

	ranked := slices.Clone(candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RawConfidence != ranked[j].RawConfidence {
			return ranked[i].RawConfidence > ranked[j].RawConfidence
		}
		return ranked[i].PeakTime < ranked[j].PeakTime
	})

	accepted := make([]model.CandidateEvent, 0, len(ranked))
	for _, c := range ranked {
		if !overlapsAny(c, accepted) {
			accepted = append(accepted, c)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].StartTime < accepted[j].StartTime
	})
	return accepted
}

func overlapsAny(c model.CandidateEvent, accepted []model.CandidateEvent) bool {
	for _, a := range accepted {
		if c.Overlaps(a) {
			return true
		}
	}
	return false
}
