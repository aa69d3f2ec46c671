package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dice-games-bot/internal/model"
	"dice-games-bot/internal/pkg/clock"
	"dice-games-bot/internal/pkg/lock"
)

func newAccountService(store UserStore, clk clock.Clock) *AccountService {
	return NewAccountService(store, clk, lock.NewUserLock(), 6, 6)
}

func TestEnsureUser(t *testing.T) {
	store := newFakeStore()
	svc := newAccountService(store, clock.NewMock(time.Unix(0, 0)))
	ctx := context.Background()

	id := model.Identity{ID: 5, FirstName: "Ivan", LastName: "Petrov"}
	user, created, err := svc.EnsureUser(ctx, id)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Ivan Petrov", user.DisplayName)
	assert.Equal(t, int64(model.DefaultCoins), user.Coins)

	id.Username = "ivan"
	user, created, err = svc.EnsureUser(ctx, id)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Ivan Petrov", user.DisplayName, "name is captured once")

	store.errs["GetOrCreate"] = errors.New("db down")
	_, _, err = svc.EnsureUser(ctx, id)
	assert.Error(t, err)
}

func TestClaimBonus_GrantThenCountdown(t *testing.T) {
	store := newFakeStore(newUser(1, 0))
	clk := clock.NewMock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := newAccountService(store, clk)
	ctx := context.Background()

	res, err := svc.ClaimBonus(ctx, 1)
	require.NoError(t, err)
	require.True(t, res.Granted)
	assert.Equal(t, int64(6), res.Coins)
	assert.Equal(t, int64(6), res.User.Coins)
	assert.InDelta(t, clock.HoursSinceEpoch(clk.Now())+6, res.User.LastBonusAt, 1e-9)

	clk.Advance(90 * time.Minute)
	res, err = svc.ClaimBonus(ctx, 1)
	require.NoError(t, err)
	assert.False(t, res.Granted)
	assert.Equal(t, Countdown{Hours: 4, Minutes: 30}, res.Wait)
	assert.Equal(t, int64(6), store.snapshot(1).Coins)

	clk.Advance(4*time.Hour + 30*time.Minute + time.Second)
	res, err = svc.ClaimBonus(ctx, 1)
	require.NoError(t, err)
	assert.True(t, res.Granted)
	assert.Equal(t, int64(12), res.User.Coins)
}

func TestClaimBonus_ExactBoundaryWaits(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	u := newUser(1, 0)
	u.LastBonusAt = clock.HoursSinceEpoch(start)
	store := newFakeStore(u)
	svc := newAccountService(store, clock.NewMock(start))

	res, err := svc.ClaimBonus(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, res.Granted)
	assert.Equal(t, Countdown{}, res.Wait)
}

func TestClaimBonus_Concurrent(t *testing.T) {
	store := newFakeStore(newUser(1, 0))
	svc := newAccountService(store, clock.NewMock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			res, err := svc.ClaimBonus(context.Background(), 1)
			assert.NoError(t, err)
			if err == nil && res.Granted {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, granted)
	assert.Equal(t, int64(6), store.snapshot(1).Coins)
}

func TestClaimBonus_Errors(t *testing.T) {
	svc := newAccountService(newFakeStore(), clock.NewMock(time.Unix(0, 0)))
	_, err := svc.ClaimBonus(context.Background(), 1)
	assert.Error(t, err)

	store := newFakeStore(newUser(1, 0))
	store.errs["GrantBonus"] = errors.New("write failed")
	svc = newAccountService(store, clock.NewMock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	_, err = svc.ClaimBonus(context.Background(), 1)
	assert.Error(t, err)
}

func TestCountdownFromHours(t *testing.T) {
	tests := []struct {
		remaining float64
		want      Countdown
	}{
		{0, Countdown{}},
		{-1, Countdown{}},
		{5.5, Countdown{Hours: 5, Minutes: 30}},
		{0.25, Countdown{Minutes: 15}},
		{2.999, Countdown{Hours: 3}},
		{1.004, Countdown{Hours: 1}},
		{0.016, Countdown{Minutes: 1}},
		{3.1234, Countdown{Hours: 3, Minutes: 7}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CountdownFromHours(tt.remaining), "remaining=%v", tt.remaining)
	}
}
