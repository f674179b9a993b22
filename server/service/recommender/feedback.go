package recommender

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/gourmet/internal/vector"
	"github.com/hrygo/gourmet/store"
)

// HandleFeedback adjusts the subject's reference embedding from an explicit
// rating and records the rating. The subject is the user's primary embedding,
// or a flavour when flavourID is set.
//
// The update is an exponential moving average:
//
//	updated = AdjustFactor * contentEmbedding * rating + (1 - AdjustFactor) * current
//
// renormalized to unit length. Updates for the same subject are serialized;
// two racing feedback events would otherwise lose one adjustment in the
// read-modify-write.
func (e *Engine) HandleFeedback(ctx context.Context, userID string, flavourID *int32, contentID int32, rating float64) error {
	subject := "user"
	if flavourID != nil {
		subject = "flavour"
	}

	err := e.handleFeedback(ctx, userID, flavourID, contentID, rating)
	if e.metrics != nil {
		e.metrics.ObserveFeedback(subject, err)
	}
	return err
}

func (e *Engine) handleFeedback(ctx context.Context, userID string, flavourID *int32, contentID int32, rating float64) error {
	if rating < -1 || rating > 1 {
		return errors.Wrapf(ErrInvalidRating, "got %f", rating)
	}

	lockKey := "user/" + userID
	if flavourID != nil {
		lockKey = fmt.Sprintf("flavour/%d", *flavourID)
	}
	unlock := e.subjectLocks.Lock(lockKey)
	defer unlock()

	var current []float32
	var content *store.Content
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		current, err = e.referenceEmbedding(groupCtx, userID, flavourID)
		return err
	})
	group.Go(func() error {
		var err error
		content, err = e.store.GetContent(groupCtx, contentID)
		return err
	})
	if err := group.Wait(); err != nil {
		return err
	}
	if content == nil {
		return errors.Wrapf(ErrNotFound, "content %d", contentID)
	}
	if err := e.checkDimension(current); err != nil {
		return err
	}
	if err := e.checkDimension(content.Embedding); err != nil {
		return err
	}

	adjust := e.profile.AdjustFactor
	updated := make([]float32, len(current))
	for i := range current {
		updated[i] = float32(adjust*float64(content.Embedding[i])*rating + (1-adjust)*float64(current[i]))
	}
	// A zero blend (all-zero result) stays unnormalized rather than dividing
	// by zero.
	vector.Normalize(updated)

	// Persist the embedding first, then the rating. The two writes are not
	// atomic across a crash; each is atomic on its own and the transport
	// reports failure of either.
	if flavourID != nil {
		if err := e.store.UpdateFlavourEmbedding(ctx, *flavourID, updated); err != nil {
			return errors.Wrap(err, "failed to persist flavour embedding")
		}
	} else {
		if err := e.store.UpdateUserEmbedding(ctx, userID, updated); err != nil {
			return errors.Wrap(err, "failed to persist user embedding")
		}
	}

	if _, err := e.store.UpsertRating(ctx, &store.UpsertRating{
		UserID:    userID,
		ContentID: contentID,
		Rating:    rating,
	}); err != nil {
		return errors.Wrap(err, "failed to upsert rating")
	}
	return nil
}
