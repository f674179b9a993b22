package recommender

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/gourmet/internal/vector"
	"github.com/hrygo/gourmet/store"
)

// GetOnboardingContent builds a diverse sample for a new user to pick from.
// Content the client already showed (selected or rejected) is echoed back
// verbatim so prior choices can be re-rendered; fresh candidates are drawn at
// a minimum dissimilarity from everything already known.
func (e *Engine) GetOnboardingContent(ctx context.Context, selectedIDs, rejectedIDs []int32) ([]*store.Content, error) {
	var selected, rejected []*store.Content
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		selected, err = e.store.ListContentByIDs(groupCtx, selectedIDs)
		return err
	})
	group.Go(func() error {
		var err error
		rejected, err = e.store.ListContentByIDs(groupCtx, rejectedIDs)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to load onboarding content")
	}

	// Rejected items that are near-duplicates of a selected item would show
	// content the user likes as "rejected" context; drop those.
	filteredRejected := make([]*store.Content, 0, len(rejected))
	for _, item := range rejected {
		if e.nearAnySelected(item, selected) {
			continue
		}
		filteredRejected = append(filteredRejected, item)
	}

	sampleCount := e.profile.SampleCount - len(selectedIDs) - len(filteredRejected)
	known := append(append([]*store.Content{}, selected...), filteredRejected...)
	if sampleCount <= 0 {
		return known, nil
	}

	knownIDs := make([]int32, 0, len(selectedIDs)+len(rejectedIDs))
	knownIDs = append(knownIDs, selectedIDs...)
	knownIDs = append(knownIDs, rejectedIDs...)

	sampled, err := e.store.SampleContent(ctx, &store.SampleDistantContent{
		KnownIDs:    knownIDs,
		MinDistance: vector.CosineToL2(e.profile.MaxOnboardingCosineSimilarity),
		Limit:       sampleCount,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to sample onboarding content")
	}
	if len(sampled) == 0 {
		return nil, ErrNoContentFound
	}
	if e.metrics != nil {
		e.metrics.AddOnboardingSamples(len(sampled))
	}

	return append(known, sampled...), nil
}

// nearAnySelected reports whether the item's embedding is more similar to any
// selected item than the onboarding diversity ceiling allows.
func (e *Engine) nearAnySelected(item *store.Content, selected []*store.Content) bool {
	for _, s := range selected {
		similarity, err := vector.CosineSimilarity(item.Embedding, s.Embedding)
		if err != nil {
			continue
		}
		if similarity > e.profile.MaxOnboardingCosineSimilarity {
			return true
		}
	}
	return false
}

// Onboard bootstraps the user's reference embedding as the normalized
// arithmetic mean of the liked content embeddings. This is the one-time
// bootstrap; incremental adjustment afterwards goes through HandleFeedback.
func (e *Engine) Onboard(ctx context.Context, userID string, likedContentIDs []int32) error {
	liked, err := e.store.ListContentByIDs(ctx, likedContentIDs)
	if err != nil {
		return errors.Wrap(err, "failed to load liked content")
	}
	if len(liked) == 0 {
		return ErrNoContentFound
	}

	embeddings := make([][]float32, 0, len(liked))
	for _, item := range liked {
		if err := e.checkDimension(item.Embedding); err != nil {
			return err
		}
		embeddings = append(embeddings, item.Embedding)
	}

	mean, err := vector.Mean(embeddings)
	if err != nil {
		return errors.Wrap(err, "failed to average liked embeddings")
	}
	vector.Normalize(mean)

	if err := e.store.UpdateUserEmbedding(ctx, userID, mean); err != nil {
		return errors.Wrap(err, "failed to persist user embedding")
	}
	return nil
}
