// Package game defines the dice-backed mini-games and the rule table used to
// classify a rolled value into a payout tier.
package game

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// LossPayout is the balance change applied when no rule matches.
const LossPayout int64 = -1

// RetrySuffix is appended to a game key to form its "play again" token.
const RetrySuffix = "Again"

// ErrValueOutOfRange is returned by Classify for a value outside the game's range.
var ErrValueOutOfRange = errors.New("rolled value out of range")

// Tier is the outcome class of a single trial.
type Tier int

const (
	TierLoss Tier = iota
	TierPartialWin
	TierWin
)

// String returns the tier name used in logs.
func (t Tier) String() string {
	switch t {
	case TierWin:
		return "win"
	case TierPartialWin:
		return "partial_win"
	default:
		return "loss"
	}
}

// Rule maps a set of rolled values to a tier and its payout.
type Rule struct {
	Tier   Tier
	Match  func(value int) bool
	Payout int64
}

// Outcome is the classified result of a roll.
type Outcome struct {
	Value  int
	Tier   Tier
	Payout int64
}

// Victory reports whether the outcome counts towards the victory total.
func (o Outcome) Victory() bool {
	return o.Tier != TierLoss
}

// Game describes one mini-game played through Telegram's animated dice.
type Game struct {
	// Key is the callback token that starts the game, e.g. "slot".
	Key   string
	Name  string
	Emoji string
	// MinValue and MaxValue bound the values Telegram may return for Emoji.
	MinValue int
	MaxValue int
	// Delay lets the dice animation finish before the result is posted.
	Delay      time.Duration
	RetryLabel string
	// Rules are evaluated in order; the first match wins and anything
	// unmatched is a loss.
	Rules []Rule
}

// RetryKey returns the callback token of the "play again" button.
func (g *Game) RetryKey() string {
	return g.Key + RetrySuffix
}

// Classify evaluates the rule table against a rolled value.
func (g *Game) Classify(value int) (Outcome, error) {
	if value < g.MinValue || value > g.MaxValue {
		return Outcome{}, fmt.Errorf("%w: %s got %d, want [%d,%d]",
			ErrValueOutOfRange, g.Key, value, g.MinValue, g.MaxValue)
	}

	for _, r := range g.Rules {
		if r.Match(value) {
			return Outcome{Value: value, Tier: r.Tier, Payout: r.Payout}, nil
		}
	}
	return Outcome{Value: value, Tier: TierLoss, Payout: LossPayout}, nil
}

// OneOf returns a predicate matching any of the given values.
func OneOf(values ...int) func(int) bool {
	set := slices.Clone(values)
	return func(v int) bool {
		return slices.Contains(set, v)
	}
}
