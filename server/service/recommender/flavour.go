package recommender

import (
	"context"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/store"
)

// CreateFlavour creates an alternate reference embedding for the user, seeded
// directly from one content item's embedding. The nickname comes from the
// configured generator; when none is set or generation fails, a placeholder is
// used so flavour creation never depends on the LLM being up.
func (e *Engine) CreateFlavour(ctx context.Context, userID string, contentID int32) (*store.Flavour, error) {
	content, err := e.store.GetContent(ctx, contentID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get content")
	}
	if content == nil {
		return nil, errors.Wrapf(ErrNotFound, "content %d", contentID)
	}
	if err := e.checkDimension(content.Embedding); err != nil {
		return nil, err
	}

	nickname := ""
	if e.nicknames != nil {
		nickname, err = e.nicknames.GenerateNickname(ctx, content.Title)
		if err != nil {
			nickname = ""
		}
	}
	if nickname == "" {
		nickname = "flavour-" + shortuuid.New()
	}

	seed := make([]float32, len(content.Embedding))
	copy(seed, content.Embedding)

	flavour, err := e.store.CreateFlavour(ctx, &store.Flavour{
		UserID:    userID,
		Nickname:  nickname,
		Embedding: seed,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create flavour")
	}
	return flavour, nil
}

// GetFlavour returns one of the user's flavours.
func (e *Engine) GetFlavour(ctx context.Context, userID string, id int32) (*store.Flavour, error) {
	flavour, err := e.store.GetFlavour(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get flavour")
	}
	if flavour == nil || flavour.UserID != userID {
		return nil, errors.Wrapf(ErrNotFound, "flavour %d", id)
	}
	return flavour, nil
}

// ListFlavours lists the user's flavours.
func (e *Engine) ListFlavours(ctx context.Context, userID string) ([]*store.Flavour, error) {
	list, err := e.store.ListFlavours(ctx, &store.FindFlavour{UserID: &userID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list flavours")
	}
	return list, nil
}

// DeleteFlavour deletes one of the user's flavours.
func (e *Engine) DeleteFlavour(ctx context.Context, userID string, id int32) error {
	// Ownership check before the delete; the store delete is by id only.
	if _, err := e.GetFlavour(ctx, userID, id); err != nil {
		return err
	}
	if err := e.store.DeleteFlavour(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete flavour")
	}
	return nil
}
