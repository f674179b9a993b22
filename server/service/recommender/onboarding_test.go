package recommender

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/gourmet/internal/vector"
	"github.com/hrygo/gourmet/store"
)

func TestGetOnboardingContentSampleCount(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedContent(driver, 1, []float32{1, 0, 0, 0}, time.Hour)
	seedContent(driver, 2, []float32{0, 1, 0, 0}, time.Hour)
	seedContent(driver, 3, []float32{0, 0, 1, 0}, time.Hour)
	for i := int32(10); i < 30; i++ {
		driver.sampled = append(driver.sampled, seedContent(driver, i, []float32{0, 0, 0, 1}, time.Hour))
	}

	p := testProfile()
	p.SampleCount = 10
	engine := New(store.New(driver, p), p)

	// 3 already shown, so exactly 7 fresh samples are requested.
	list, err := engine.GetOnboardingContent(ctx, []int32{1, 2}, []int32{3})
	require.NoError(t, err)
	require.NotNil(t, driver.lastSample)
	require.Equal(t, 7, driver.lastSample.Limit)
	require.Len(t, list, 10)

	// Known ids are passed through so the sample avoids them.
	require.ElementsMatch(t, []int32{1, 2, 3}, driver.lastSample.KnownIDs)

	// The echoed items come first, in selected-then-rejected order.
	require.Equal(t, int32(1), list[0].ID)
	require.Equal(t, int32(2), list[1].ID)
	require.Equal(t, int32(3), list[2].ID)
}

func TestGetOnboardingContentMinDistance(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	driver.sampled = []*store.Content{seedContent(driver, 1, []float32{1, 0, 0, 0}, time.Hour)}
	engine := newTestEngine(driver)

	_, err := engine.GetOnboardingContent(ctx, nil, nil)
	require.NoError(t, err)

	// cosine ceiling 0.15 converted to L2 on unit vectors.
	want := math.Sqrt(2 - 2*0.15)
	require.InDelta(t, want, driver.lastSample.MinDistance, 1e-9)
}

func TestGetOnboardingContentFiltersNearDuplicateRejections(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedContent(driver, 1, []float32{1, 0, 0, 0}, time.Hour)
	// Nearly parallel to the selected item: dropped from the rejected set.
	seedContent(driver, 2, []float32{0.99, 0.1, 0, 0}, time.Hour)
	// Orthogonal: kept.
	seedContent(driver, 3, []float32{0, 0, 1, 0}, time.Hour)
	for i := int32(10); i < 30; i++ {
		driver.sampled = append(driver.sampled, seedContent(driver, i, []float32{0, 0, 0, 1}, time.Hour))
	}
	engine := newTestEngine(driver)

	list, err := engine.GetOnboardingContent(ctx, []int32{1}, []int32{2, 3})
	require.NoError(t, err)

	ids := make([]int32, 0, len(list))
	for _, item := range list {
		ids = append(ids, item.ID)
	}
	require.Contains(t, ids, int32(1))
	require.Contains(t, ids, int32(3))
	require.NotContains(t, ids, int32(2))

	// The dropped near-duplicate does not count against the sample budget,
	// but it is still excluded from the fresh draw.
	require.Equal(t, testProfile().SampleCount-2, driver.lastSample.Limit)
	require.ElementsMatch(t, []int32{1, 2, 3}, driver.lastSample.KnownIDs)
}

func TestGetOnboardingContentFullPageSkipsSampling(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	p := testProfile()
	p.SampleCount = 2
	ids := []int32{}
	for i := int32(1); i <= 2; i++ {
		seedContent(driver, i, []float32{0, 0, 1, 0}, time.Hour)
		ids = append(ids, i)
	}
	engine := New(store.New(driver, p), p)

	list, err := engine.GetOnboardingContent(ctx, ids, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Nil(t, driver.lastSample, "no fresh sample should be drawn")
}

func TestGetOnboardingContentExhaustedCatalogue(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	engine := newTestEngine(driver)

	_, err := engine.GetOnboardingContent(ctx, nil, nil)
	require.ErrorIs(t, err, ErrNoContentFound)
}

func TestOnboardAveragesLikedContent(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", nil)
	seedContent(driver, 1, []float32{1, 0, 0, 0}, time.Hour)
	seedContent(driver, 2, []float32{0, 1, 0, 0}, time.Hour)
	engine := newTestEngine(driver)

	require.NoError(t, engine.Onboard(ctx, "alice", []int32{1, 2}))

	got := driver.users["alice"].Embedding
	require.Len(t, got, 4)
	require.InDelta(t, 1/math.Sqrt2, got[0], 1e-6)
	require.InDelta(t, 1/math.Sqrt2, got[1], 1e-6)
	norm := vector.Norm(got)
	require.InDelta(t, 1.0, norm, 1e-6)
}

func TestOnboardRequiresLikedContent(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", nil)
	engine := newTestEngine(driver)

	require.ErrorIs(t, engine.Onboard(ctx, "alice", nil), ErrNoContentFound)
	require.ErrorIs(t, engine.Onboard(ctx, "alice", []int32{404}), ErrNoContentFound)
	require.Nil(t, driver.users["alice"].Embedding)
}

func TestOnboardRejectsBadDimensions(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedUser(driver, "alice", nil)
	seedContent(driver, 1, []float32{1, 0}, time.Hour)
	engine := newTestEngine(driver)

	require.ErrorIs(t, engine.Onboard(ctx, "alice", []int32{1}), ErrDimensionMismatch)
	require.Nil(t, driver.users["alice"].Embedding)
}
