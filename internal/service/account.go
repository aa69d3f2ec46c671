package service

import (
	"context"
	"fmt"
	"math"

	"dice-games-bot/internal/model"
	"dice-games-bot/internal/pkg/clock"
	"dice-games-bot/internal/pkg/lock"
)

// AccountService handles user creation and the free coin bonus.
type AccountService struct {
	users         UserStore
	clock         clock.Clock
	userLock      *lock.UserLock
	bonusCoins    int64
	cooldownHours float64
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(
	users UserStore,
	clk clock.Clock,
	userLock *lock.UserLock,
	bonusCoins int64,
	cooldownHours float64,
) *AccountService {
	return &AccountService{
		users:         users,
		clock:         clk,
		userLock:      userLock,
		bonusCoins:    bonusCoins,
		cooldownHours: cooldownHours,
	}
}

// EnsureUser returns the user for an identity, creating the record on first
// contact. The display name is derived once at creation and never re-synced.
func (s *AccountService) EnsureUser(ctx context.Context, id model.Identity) (*model.User, bool, error) {
	user, created, err := s.users.GetOrCreate(ctx, id.ID, id.DisplayName())
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure user: %w", err)
	}
	return user, created, nil
}

// Countdown is the wait until the next bonus, in whole hours and minutes.
type Countdown struct {
	Hours   int64
	Minutes int64
}

// BonusResult describes the outcome of a bonus claim.
type BonusResult struct {
	Granted bool
	Coins   int64
	User    *model.User
	Wait    Countdown
}

// ClaimBonus grants the bonus when the cooldown has passed, otherwise it
// reports how long is left. Claims for one user are serialised in-process.
func (s *AccountService) ClaimBonus(ctx context.Context, telegramID int64) (*BonusResult, error) {
	var result *BonusResult

	err := s.userLock.WithLock(telegramID, func() error {
		user, err := s.users.GetByID(ctx, telegramID)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		now := clock.HoursSinceEpoch(s.clock.Now())
		if now <= user.LastBonusAt {
			result = &BonusResult{User: user, Wait: CountdownFromHours(user.LastBonusAt - now)}
			return nil
		}

		user, err = s.users.GrantBonus(ctx, telegramID, s.bonusCoins, now+s.cooldownHours)
		if err != nil {
			return fmt.Errorf("failed to grant bonus: %w", err)
		}
		result = &BonusResult{Granted: true, Coins: s.bonusCoins, User: user}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CountdownFromHours splits a fractional hour count into hours and minutes.
// The fractional part is rounded to two decimals before conversion, and a
// full 60 minutes carries into the hour.
func CountdownFromHours(remaining float64) Countdown {
	if remaining <= 0 {
		return Countdown{}
	}

	hours := math.Floor(remaining)
	frac := math.Round((remaining-hours)*100) / 100
	minutes := math.Floor(frac * 60)

	if minutes >= 60 {
		hours++
		minutes = 0
	}
	return Countdown{Hours: int64(hours), Minutes: int64(minutes)}
}

