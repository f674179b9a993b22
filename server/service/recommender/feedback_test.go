package recommender

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/gourmet/store"
)

func TestHandleFeedbackMovesEmbeddingTowardContent(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	seedContent(driver, 1, []float32{0, 1, 0, 0}, time.Hour)
	engine := newTestEngine(driver)

	require.NoError(t, engine.HandleFeedback(ctx, "alice", nil, 1, 1.0))

	// 0.1*content + 0.9*current = [0.9, 0.1], renormalized.
	got := driver.users["alice"].Embedding
	require.Len(t, got, 4)
	require.InDelta(t, 0.9939, got[0], 1e-4)
	require.InDelta(t, 0.1104, got[1], 1e-4)
	require.InDelta(t, 0, got[2], 1e-9)
	require.InDelta(t, 0, got[3], 1e-9)

	rating, err := driver.GetRating(ctx, "alice", 1)
	require.NoError(t, err)
	require.NotNil(t, rating)
	require.InDelta(t, 1.0, rating.Rating, 1e-9)
}

func TestHandleFeedbackNegativeRatingMovesAway(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	seedContent(driver, 1, []float32{0, 1, 0, 0}, time.Hour)
	engine := newTestEngine(driver)

	require.NoError(t, engine.HandleFeedback(ctx, "alice", nil, 1, -1.0))

	got := driver.users["alice"].Embedding
	require.Positive(t, got[0])
	require.Negative(t, got[1])
}

func TestHandleFeedbackRejectsOutOfRangeRating(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	seedContent(driver, 1, []float32{0, 1, 0, 0}, time.Hour)
	engine := newTestEngine(driver)

	for _, rating := range []float64{1.3, -2, 1.0001} {
		err := engine.HandleFeedback(ctx, "alice", nil, 1, rating)
		require.ErrorIs(t, err, ErrInvalidRating, "rating %f", rating)
	}

	// No mutation on rejection.
	require.Equal(t, []float32{1, 0, 0, 0}, driver.users["alice"].Embedding)
	require.Empty(t, driver.ratings)
}

func TestHandleFeedbackUnknownContent(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	engine := newTestEngine(driver)

	err := engine.HandleFeedback(ctx, "alice", nil, 99, 0.5)
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, []float32{1, 0, 0, 0}, driver.users["alice"].Embedding)
}

func TestHandleFeedbackDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	seedContent(driver, 1, []float32{0, 1}, time.Hour)
	engine := newTestEngine(driver)

	err := engine.HandleFeedback(ctx, "alice", nil, 1, 0.5)
	require.ErrorIs(t, err, ErrDimensionMismatch)
	require.Equal(t, []float32{1, 0, 0, 0}, driver.users["alice"].Embedding)
	require.Empty(t, driver.ratings)
}

func TestHandleFeedbackOnFlavour(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	driver.flavours[1] = &store.Flavour{ID: 1, UserID: "alice", Nickname: "jazz", Embedding: []float32{0, 0, 1, 0}}
	seedContent(driver, 1, []float32{0, 1, 0, 0}, time.Hour)
	engine := newTestEngine(driver)

	flavourID := int32(1)
	require.NoError(t, engine.HandleFeedback(ctx, "alice", &flavourID, 1, 1.0))

	// The flavour moved, the user's own embedding did not.
	require.Equal(t, []float32{1, 0, 0, 0}, driver.users["alice"].Embedding)
	got := driver.flavours[1].Embedding
	require.InDelta(t, 0.1104, got[1], 1e-4)
	require.InDelta(t, 0.9939, got[2], 1e-4)

	// The rating is recorded against the owning user regardless.
	rating, err := driver.GetRating(ctx, "alice", 1)
	require.NoError(t, err)
	require.NotNil(t, rating)
}

func TestHandleFeedbackUpsertsSingleRating(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	seedContent(driver, 1, []float32{0, 1, 0, 0}, time.Hour)
	engine := newTestEngine(driver)

	require.NoError(t, engine.HandleFeedback(ctx, "alice", nil, 1, 0.5))
	require.NoError(t, engine.HandleFeedback(ctx, "alice", nil, 1, -0.2))

	require.Len(t, driver.ratings, 1)
	rating, err := driver.GetRating(ctx, "alice", 1)
	require.NoError(t, err)
	require.InDelta(t, -0.2, rating.Rating, 1e-9)
}

func TestHandleFeedbackConcurrentUpdatesAllApply(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	seedContent(driver, 1, []float32{0, 1, 0, 0}, time.Hour)
	engine := newTestEngine(driver)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, engine.HandleFeedback(ctx, "alice", nil, 1, 1.0))
		}()
	}
	wg.Wait()

	// Serialized read-modify-write: n sequential blends land in the same
	// place no matter the interleaving.
	sequential := newFakeDriver()
	seedUser(sequential, "alice", []float32{1, 0, 0, 0})
	seedContent(sequential, 1, []float32{0, 1, 0, 0}, time.Hour)
	ref := newTestEngine(sequential)
	for i := 0; i < n; i++ {
		require.NoError(t, ref.HandleFeedback(ctx, "alice", nil, 1, 1.0))
	}

	got := driver.users["alice"].Embedding
	want := sequential.users["alice"].Embedding
	for i := range want {
		require.InDelta(t, want[i], got[i], 1e-5)
	}
}
