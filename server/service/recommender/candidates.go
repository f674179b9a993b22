package recommender

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/internal/vector"
	"github.com/hrygo/gourmet/store"
)

// getCandidates retrieves content near the reference embedding and applies
// the age penalty. The store returns raw distances ordered ascending; the
// penalty is added per hour of content age before re-sorting, so fresher
// content wins ties without stale content being hard-excluded.
func (e *Engine) getCandidates(ctx context.Context, userID string, reference []float32, excludedIDs []int32, now time.Time) ([]*store.ContentCandidate, error) {
	maxDistance := vector.CosineToL2(e.profile.MinSearchCosineSimilarity)
	since := now.AddDate(0, 0, -e.profile.MaxContentAgeDays)

	candidates, err := e.store.SearchContentCandidates(ctx, &store.FindContentCandidates{
		UserID:      userID,
		Embedding:   reference,
		ExcludedIDs: excludedIDs,
		MaxDistance: maxDistance,
		Since:       since,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to search content candidates")
	}

	for _, candidate := range candidates {
		ageInHours := now.Sub(candidate.Date).Hours()
		candidate.Distance += ageInHours * e.profile.AgePenaltyFactor
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	return candidates, nil
}
