// Package recommender implements the content recommendation engine: candidate
// retrieval around a reference embedding, recency-aware re-scoring, stochastic
// re-ranking, diversity-constrained onboarding sampling and online preference
// adjustment from explicit ratings.
package recommender

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/internal/metrics"
	"github.com/hrygo/gourmet/internal/profile"
	"github.com/hrygo/gourmet/store"
)

// NicknameGenerator produces a human-readable nickname for a flavour seeded
// from a content item. Implementations may call an external LLM; the engine
// falls back to a placeholder when generation fails or no generator is set.
type NicknameGenerator interface {
	GenerateNickname(ctx context.Context, title string) (string, error)
}

// Engine computes recommendations and applies preference feedback. It holds
// no cross-request state beyond the per-subject update locks; all durable
// state lives in the store.
type Engine struct {
	store     *store.Store
	profile   *profile.Profile
	metrics   *metrics.Exporter
	nicknames NicknameGenerator

	// rng is the source for ranking randomness. It is injectable so tests
	// can pin outcomes; *rand.Rand is not goroutine safe, hence the mutex.
	rngMu sync.Mutex
	rng   *rand.Rand

	subjectLocks *keyedMutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics attaches a Prometheus exporter.
func WithMetrics(exporter *metrics.Exporter) Option {
	return func(e *Engine) { e.metrics = exporter }
}

// WithNicknameGenerator attaches a flavour nickname generator.
func WithNicknameGenerator(generator NicknameGenerator) Option {
	return func(e *Engine) { e.nicknames = generator }
}

// WithRandomSource replaces the ranking randomness source.
func WithRandomSource(src rand.Source) Option {
	return func(e *Engine) { e.rng = rand.New(src) }
}

// New creates a recommendation engine backed by the given store.
func New(store *store.Store, profile *profile.Profile, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		profile:      profile,
		rng:          rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		subjectLocks: newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// uniform returns one draw in (0, 1].
func (e *Engine) uniform() float64 {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return 1 - e.rng.Float64()
}

// referenceEmbedding resolves the reference embedding for a subject: the
// flavour's embedding when a flavour id is given, the user's otherwise.
func (e *Engine) referenceEmbedding(ctx context.Context, userID string, flavourID *int32) ([]float32, error) {
	if flavourID != nil {
		flavour, err := e.store.GetFlavour(ctx, *flavourID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get flavour")
		}
		if flavour == nil || flavour.UserID != userID {
			return nil, errors.Wrapf(ErrNotFound, "flavour %d", *flavourID)
		}
		return flavour.Embedding, nil
	}

	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	if user == nil {
		return nil, errors.Wrapf(ErrNotFound, "user %s", userID)
	}
	if !user.HasEmbedding() {
		return nil, ErrNotOnboarded
	}
	return user.Embedding, nil
}

// checkDimension validates an embedding against the deployment-wide
// dimension. Mismatches are fatal for the request, never truncated or padded.
func (e *Engine) checkDimension(embedding []float32) error {
	if len(embedding) != e.profile.EmbeddingDim {
		return errors.Wrapf(ErrDimensionMismatch, "got %d, want %d", len(embedding), e.profile.EmbeddingDim)
	}
	return nil
}

// GetFeed returns a ranked, hydrated recommendation page for the subject.
// excludedIDs carries content already shown in this session.
func (e *Engine) GetFeed(ctx context.Context, userID string, flavourID *int32, excludedIDs []int32) ([]*store.RatedContent, error) {
	subject := "user"
	if flavourID != nil {
		subject = "flavour"
	}

	start := time.Now()
	feed, candidates, err := e.getFeed(ctx, userID, flavourID, excludedIDs)
	if e.metrics != nil {
		e.metrics.ObserveRecommendation(subject, time.Since(start).Seconds(), candidates, err)
	}
	return feed, err
}

func (e *Engine) getFeed(ctx context.Context, userID string, flavourID *int32, excludedIDs []int32) ([]*store.RatedContent, int, error) {
	reference, err := e.referenceEmbedding(ctx, userID, flavourID)
	if err != nil {
		return nil, 0, err
	}
	if err := e.checkDimension(reference); err != nil {
		return nil, 0, err
	}

	candidates, err := e.getCandidates(ctx, userID, reference, excludedIDs, time.Now())
	if err != nil {
		return nil, 0, err
	}
	if len(candidates) == 0 {
		return []*store.RatedContent{}, 0, nil
	}

	ranked := e.rank(candidates)
	if len(ranked) > e.profile.NumRecommendations {
		ranked = ranked[:e.profile.NumRecommendations]
	}

	ids := make([]int32, len(ranked))
	for i, c := range ranked {
		ids[i] = c.ID
	}

	hydrated, err := e.store.ListRatedContent(ctx, &store.FindRatedContent{UserID: userID, IDs: ids})
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to hydrate recommendations")
	}

	// The id-set lookup does not preserve rank order.
	byID := make(map[int32]*store.RatedContent, len(hydrated))
	for _, item := range hydrated {
		byID[item.Content.ID] = item
	}
	feed := make([]*store.RatedContent, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			feed = append(feed, item)
		}
	}
	return feed, len(candidates), nil
}

// GetClosestContent returns the content nearest to the user's embedding,
// regardless of age or prior exposure. Used for single-lookup contexts where
// an empty result is an error.
func (e *Engine) GetClosestContent(ctx context.Context, userID string, limit int) ([]*store.RatedContent, error) {
	reference, err := e.referenceEmbedding(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	if err := e.checkDimension(reference); err != nil {
		return nil, err
	}

	list, err := e.store.ListRatedContent(ctx, &store.FindRatedContent{
		UserID:    userID,
		NearestTo: reference,
		Limit:     limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list closest content")
	}
	if len(list) == 0 {
		return nil, ErrNoContentFound
	}
	return list, nil
}
