package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGame(key string) *Game {
	return &Game{
		Key:      key,
		MinValue: 1,
		MaxValue: 6,
		Rules:    []Rule{{Tier: TierWin, Match: OneOf(6), Payout: 4}},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(testGame("darts")))

	g, ok := r.Get("darts")
	require.True(t, ok)
	assert.Equal(t, "darts", g.Key)

	again, ok := r.Get("dartsAgain")
	require.True(t, ok)
	assert.Same(t, g, again)

	_, ok = r.Get("unknown")
	assert.False(t, ok)
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&Game{}))
	assert.Error(t, r.Register(&Game{Key: "empty"}))

	require.NoError(t, r.Register(testGame("darts")))
	assert.Error(t, r.Register(testGame("darts")))
}

func TestRegistry_ListKeepsOrder(t *testing.T) {
	r := NewRegistry()
	for _, k := range []string{"slot", "football", "basket"} {
		require.NoError(t, r.Register(testGame(k)))
	}

	assert.Equal(t, []string{"slot", "football", "basket"}, r.Keys())
	assert.Equal(t, 3, r.Count())
	assert.Len(t, r.List(), 3)
}

func TestClassify_FirstMatchWins(t *testing.T) {
	g := &Game{
		Key:      "overlap",
		MinValue: 1,
		MaxValue: 6,
		Rules: []Rule{
			{Tier: TierWin, Match: OneOf(5, 6), Payout: 4},
			{Tier: TierPartialWin, Match: OneOf(4, 5), Payout: 1},
		},
	}

	out, err := g.Classify(5)
	require.NoError(t, err)
	assert.Equal(t, TierWin, out.Tier)

	out, err = g.Classify(4)
	require.NoError(t, err)
	assert.Equal(t, TierPartialWin, out.Tier)
	assert.Equal(t, int64(1), out.Payout)

	out, err = g.Classify(1)
	require.NoError(t, err)
	assert.Equal(t, TierLoss, out.Tier)
	assert.Equal(t, LossPayout, out.Payout)
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "win", TierWin.String())
	assert.Equal(t, "partial_win", TierPartialWin.String())
	assert.Equal(t, "loss", TierLoss.String())
}
