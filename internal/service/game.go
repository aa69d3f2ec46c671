package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"dice-games-bot/internal/game"
	"dice-games-bot/internal/model"
	"dice-games-bot/internal/pkg/clock"
)

// Roller performs the randomized roll on the messaging platform and returns
// the value it landed on.
type Roller interface {
	Roll(ctx context.Context, g *game.Game) (int, error)
}

// RollerFunc adapts a function to the Roller interface.
type RollerFunc func(ctx context.Context, g *game.Game) (int, error)

func (f RollerFunc) Roll(ctx context.Context, g *game.Game) (int, error) {
	return f(ctx, g)
}

// TrialStatus tells the caller what to show after PlayTrial.
type TrialStatus int

const (
	// TrialPlayed means the roll happened and the result was settled.
	TrialPlayed TrialStatus = iota
	// TrialBusy means another trial for the user is in flight; the request
	// is dropped without a reply.
	TrialBusy
	// TrialNoCoins means the balance is not positive.
	TrialNoCoins
)

// TrialResult is the outcome of PlayTrial.
type TrialResult struct {
	Status  TrialStatus
	Game    *game.Game
	Outcome game.Outcome
	User    *model.User
}

// GameService runs trials: it guards each user with the persisted busy
// flag, rolls through the platform, waits out the animation and settles.
type GameService struct {
	users UserStore
	clock clock.Clock
}

// NewGameService creates a new GameService instance.
func NewGameService(users UserStore, clk clock.Clock) *GameService {
	return &GameService{users: users, clock: clk}
}

// PlayTrial plays one round of g for the user.
//
// The busy flag is set before the roll and cleared by the settlement write.
// If the roll or the settlement fails the flag stays set until the next
// startup sweep; no compensating write is attempted.
func (s *GameService) PlayTrial(ctx context.Context, telegramID int64, g *game.Game, roller Roller) (*TrialResult, error) {
	user, err := s.users.GetByID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.Busy {
		return &TrialResult{Status: TrialBusy, Game: g, User: user}, nil
	}
	if !user.CanPlay() {
		return &TrialResult{Status: TrialNoCoins, Game: g, User: user}, nil
	}

	acquired, err := s.users.TryMarkBusy(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		// Lost the race against a concurrent press of the same button.
		return &TrialResult{Status: TrialBusy, Game: g, User: user}, nil
	}

	value, err := roller.Roll(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("failed to roll %s: %w", g.Key, err)
	}

	if err := s.clock.Sleep(ctx, g.Delay); err != nil {
		return nil, err
	}

	outcome, err := g.Classify(value)
	if err != nil {
		return nil, err
	}

	var victories int64
	if outcome.Victory() {
		victories = 1
	}

	user, err = s.users.Settle(ctx, telegramID, victories, outcome.Payout)
	if err != nil {
		return nil, fmt.Errorf("failed to settle %s: %w", g.Key, err)
	}

	log.Debug().
		Int64("user_id", telegramID).
		Str("game", g.Key).
		Int("value", value).
		Stringer("tier", outcome.Tier).
		Int64("payout", outcome.Payout).
		Int64("coins", user.Coins).
		Msg("Trial settled")

	return &TrialResult{Status: TrialPlayed, Game: g, Outcome: outcome, User: user}, nil
}

// ReleaseStaleTrials clears every busy flag. Call it before accepting
// updates so users stranded by an unclean shutdown can play again.
func (s *GameService) ReleaseStaleTrials(ctx context.Context) error {
	n, err := s.users.ReleaseAllBusy(ctx)
	if err != nil {
		return err
	}
	log.Info().Int64("released", n).Msg("Cleared busy flags left from previous run")
	return nil
}
