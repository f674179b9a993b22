package recommender

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type stubNicknames struct {
	nickname string
	err      error
}

func (s *stubNicknames) GenerateNickname(context.Context, string) (string, error) {
	return s.nickname, s.err
}

func TestCreateFlavourSeedsFromContent(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	content := seedContent(driver, 1, []float32{0, 1, 0, 0}, time.Hour)
	engine := newTestEngine(driver, WithNicknameGenerator(&stubNicknames{nickname: "jazz piano"}))

	flavour, err := engine.CreateFlavour(ctx, "alice", 1)
	require.NoError(t, err)
	require.Equal(t, "alice", flavour.UserID)
	require.Equal(t, "jazz piano", flavour.Nickname)
	require.Equal(t, content.Embedding, flavour.Embedding)

	// The seed is a copy; later feedback on the flavour must not reach back
	// into the content row.
	flavour.Embedding[0] = 42
	require.Zero(t, content.Embedding[0])
}

func TestCreateFlavourNicknameFallback(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedContent(driver, 1, []float32{0, 1, 0, 0}, time.Hour)

	// No generator configured.
	engine := newTestEngine(driver)
	flavour, err := engine.CreateFlavour(ctx, "alice", 1)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(flavour.Nickname, "flavour-"), "got %q", flavour.Nickname)

	// Generator configured but failing.
	engine = newTestEngine(driver, WithNicknameGenerator(&stubNicknames{err: errors.New("rate limited")}))
	flavour, err = engine.CreateFlavour(ctx, "alice", 1)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(flavour.Nickname, "flavour-"), "got %q", flavour.Nickname)
}

func TestCreateFlavourUnknownContent(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(newFakeDriver())

	_, err := engine.CreateFlavour(ctx, "alice", 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFlavourOwnership(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	seedContent(driver, 1, []float32{0, 1, 0, 0}, time.Hour)
	engine := newTestEngine(driver)

	flavour, err := engine.CreateFlavour(ctx, "alice", 1)
	require.NoError(t, err)

	got, err := engine.GetFlavour(ctx, "alice", flavour.ID)
	require.NoError(t, err)
	require.Equal(t, flavour.ID, got.ID)

	_, err = engine.GetFlavour(ctx, "bob", flavour.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, engine.DeleteFlavour(ctx, "bob", flavour.ID), ErrNotFound)
	require.NoError(t, engine.DeleteFlavour(ctx, "alice", flavour.ID))

	list, err := engine.ListFlavours(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, list)
}
