package recommender

import (
	"sort"

	"github.com/hrygo/gourmet/store"
)

// rank converts a distance-ascending candidate list into the final order.
//
// Each candidate at position idx is scored N / ((idx+1) * u) with a fresh
// uniform draw u per candidate per call, then the list is sorted ascending by
// score. The closest candidate has the lowest expected score and usually
// ranks first, but a small u can push any candidate up, so repeated calls
// over the same candidates vary. This batch re-score was chosen over the
// iterative perturb-and-requery variant: one store round-trip, same
// exploration intent.
func (e *Engine) rank(candidates []*store.ContentCandidate) []*store.ContentCandidate {
	if len(candidates) <= 1 {
		return candidates
	}

	type scored struct {
		candidate *store.ContentCandidate
		score     float64
	}

	n := float64(len(candidates))
	list := make([]scored, len(candidates))
	for idx, candidate := range candidates {
		list[idx] = scored{
			candidate: candidate,
			score:     n / (float64(idx+1) * e.uniform()),
		}
	}

	sort.SliceStable(list, func(i, j int) bool { return list[i].score < list[j].score })

	ranked := make([]*store.ContentCandidate, len(list))
	for i, s := range list {
		ranked[i] = s.candidate
	}
	return ranked
}
