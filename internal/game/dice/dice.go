// Package dice implements the single-throw games backed by Telegram's
// six-sided animated dice: basketball, bowling, football and darts.
package dice

import (
	"time"

	"dice-games-bot/internal/game"
)

// Callback tokens of the throw games.
const (
	KeyBasketball = "basket"
	KeyBowling    = "bowling"
	KeyFootball   = "football"
	KeyDarts      = "darts"
)

const (
	minValue = 1
	maxValue = 6
)

// Basketball wins on a 4 or 5.
func Basketball() *game.Game {
	return throw(KeyBasketball, "Баскетбол", "🏀", 4500*time.Millisecond, "Бросить ещё раз",
		game.OneOf(4, 5), 2)
}

// Bowling wins on a strike.
func Bowling() *game.Game {
	return throw(KeyBowling, "Боулинг", "🎳", 4000*time.Millisecond, "Бросить ещё раз",
		game.OneOf(6), 4)
}

// Football wins when the ball goes in: 3, 4 or 5.
func Football() *game.Game {
	return throw(KeyFootball, "Футбол", "⚽", 4000*time.Millisecond, "Ударить ещё раз",
		game.OneOf(3, 4, 5), 2)
}

// Darts wins on a bullseye.
func Darts() *game.Game {
	return throw(KeyDarts, "Дартс", "🎯", 3000*time.Millisecond, "Метнуть ещё раз",
		game.OneOf(6), 4)
}

// All returns every throw game in menu order.
func All() []*game.Game {
	return []*game.Game{Football(), Basketball(), Bowling(), Darts()}
}

func throw(key, name, emoji string, delay time.Duration, retry string, win func(int) bool, payout int64) *game.Game {
	return &game.Game{
		Key:        key,
		Name:       name,
		Emoji:      emoji,
		MinValue:   minValue,
		MaxValue:   maxValue,
		Delay:      delay,
		RetryLabel: retry,
		Rules: []game.Rule{
			{Tier: game.TierWin, Match: win, Payout: payout},
		},
	}
}
