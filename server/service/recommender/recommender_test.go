package recommender

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/gourmet/store"
)

func seedUser(driver *fakeDriver, id string, embedding []float32) {
	driver.users[id] = &store.User{ID: id, Embedding: embedding, CreatedTs: time.Now().Unix()}
}

func seedContent(driver *fakeDriver, id int32, embedding []float32, age time.Duration) *store.Content {
	content := &store.Content{
		ID:          id,
		ContentType: "article",
		Title:       "title",
		URL:         "https://example.com",
		Date:        time.Now().Add(-age),
		Embedding:   embedding,
	}
	driver.contents[id] = content
	return content
}

func TestGetFeedRequiresOnboarding(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", nil)
	engine := newTestEngine(driver)

	_, err := engine.GetFeed(ctx, "alice", nil, nil)
	require.ErrorIs(t, err, ErrNotOnboarded)

	_, err = engine.GetFeed(ctx, "nobody", nil, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetFeedRejectsBadReferenceDimension(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0})
	engine := newTestEngine(driver)

	_, err := engine.GetFeed(ctx, "alice", nil, nil)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestGetFeedHydratesInRankOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	for i := int32(1); i <= 5; i++ {
		seedContent(driver, i, []float32{0, 1, 0, 0}, time.Hour)
		driver.candidates = append(driver.candidates, &store.ContentCandidate{
			ID:       i,
			Date:     now.Add(-time.Hour),
			Distance: float64(i) * 0.1,
		})
	}
	driver.ratings[ratingKey("alice", 3)] = &store.Rating{UserID: "alice", ContentID: 3, Rating: 0.5}

	engine := newTestEngine(driver, WithRandomSource(rand.NewPCG(3, 5)))

	feed, err := engine.GetFeed(ctx, "alice", nil, []int32{4})
	require.NoError(t, err)
	require.Len(t, feed, 4)

	for _, item := range feed {
		require.NotEqual(t, int32(4), item.Content.ID)
		if item.Content.ID == 3 {
			require.InDelta(t, 0.5, item.Rating, 1e-9)
		} else {
			require.Zero(t, item.Rating)
		}
	}

	// Hydration must not reshuffle: the feed order equals the rank order of a
	// second engine with the same seed.
	twin := newTestEngine(driver, WithRandomSource(rand.NewPCG(3, 5)))
	candidates, err := twin.getCandidates(ctx, "alice", []float32{1, 0, 0, 0}, []int32{4}, now)
	require.NoError(t, err)
	ranked := twin.rank(candidates)
	require.Len(t, ranked, len(feed))
	for i := range feed {
		require.Equal(t, ranked[i].ID, feed[i].Content.ID)
	}
}

func TestGetFeedTruncatesToPageSize(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	for i := int32(1); i <= 30; i++ {
		seedContent(driver, i, []float32{0, 1, 0, 0}, time.Hour)
		driver.candidates = append(driver.candidates, &store.ContentCandidate{
			ID:       i,
			Date:     now.Add(-time.Hour),
			Distance: float64(i) * 0.01,
		})
	}

	p := testProfile()
	p.NumRecommendations = 3
	engine := New(store.New(driver, p), p)

	feed, err := engine.GetFeed(ctx, "alice", nil, nil)
	require.NoError(t, err)
	require.Len(t, feed, 3)
}

func TestGetFeedEmptyCandidates(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	engine := newTestEngine(driver)

	feed, err := engine.GetFeed(ctx, "alice", nil, nil)
	require.NoError(t, err)
	require.Empty(t, feed)
}

func TestGetFeedPropagatesStoreError(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	driver.searchErr = errors.New("connection refused")
	engine := newTestEngine(driver)

	_, err := engine.GetFeed(ctx, "alice", nil, nil)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoContentFound)
}

func TestGetFeedUsesFlavourReference(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", nil) // not onboarded, flavour carries the reference
	driver.flavours[1] = &store.Flavour{ID: 1, UserID: "alice", Nickname: "jazz", Embedding: []float32{0, 1, 0, 0}}
	engine := newTestEngine(driver)

	flavourID := int32(1)
	feed, err := engine.GetFeed(ctx, "alice", &flavourID, nil)
	require.NoError(t, err)
	require.Empty(t, feed)
	require.Equal(t, []float32{0, 1, 0, 0}, driver.lastFind.Embedding)

	// A flavour owned by someone else is invisible.
	driver.flavours[2] = &store.Flavour{ID: 2, UserID: "bob", Embedding: []float32{1, 0, 0, 0}}
	otherID := int32(2)
	_, err = engine.GetFeed(ctx, "alice", &otherID, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetClosestContent(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	seedContent(driver, 1, []float32{0, 1, 0, 0}, time.Hour)
	seedContent(driver, 2, []float32{1, 0, 0, 0}, 30*24*time.Hour) // old content still eligible
	engine := newTestEngine(driver)

	list, err := engine.GetClosestContent(ctx, "alice", 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, int32(2), list[0].Content.ID)
}

func TestGetClosestContentEmpty(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", []float32{1, 0, 0, 0})
	engine := newTestEngine(driver)

	_, err := engine.GetClosestContent(ctx, "alice", 5)
	require.ErrorIs(t, err, ErrNoContentFound)
}
