// Package slot implements the slot machine game played with Telegram's 🎰 dice.
package slot

import (
	"time"

	"dice-games-bot/internal/game"
)

const (
	Key        = "slot"
	Emoji      = "🎰"
	Delay      = 2000 * time.Millisecond
	WinPayout  = 4
	PairPayout = 1
)

// Symbol constants for display
const (
	SymbolBAR   = 1
	SymbolGrape = 2
	SymbolLemon = 3
	SymbolSeven = 4
)

// SymbolNames maps reel symbols to their display form.
var SymbolNames = map[int]string{
	SymbolBAR:   "BAR",
	SymbolGrape: "🍇",
	SymbolLemon: "🍋",
	SymbolSeven: "7️⃣",
}

// New returns the slot machine: three matching reels pay WinPayout,
// exactly two matching reels pay PairPayout.
func New() *game.Game {
	return &game.Game{
		Key:        Key,
		Name:       "Слот-машина",
		Emoji:      Emoji,
		MinValue:   1,
		MaxValue:   64,
		Delay:      Delay,
		RetryLabel: "Крутить ещё раз",
		Rules: []game.Rule{
			{Tier: game.TierWin, Match: IsTriple, Payout: WinPayout},
			{Tier: game.TierPartialWin, Match: IsPair, Payout: PairPayout},
		},
	}
}

// DecodeSlot decodes a slot value (1-64) into three symbols (1-4 each).
// Formula: value = left + (middle-1)*4 + (right-1)*16
func DecodeSlot(slotValue int) (left, middle, right int) {
	value := slotValue - 1
	left = (value % 4) + 1
	middle = ((value / 4) % 4) + 1
	right = (value / 16) + 1
	return left, middle, right
}

// EncodeSlot is the inverse of DecodeSlot.
func EncodeSlot(left, middle, right int) int {
	return left + (middle-1)*4 + (right-1)*16
}

// IsTriple reports whether all three reels show the same symbol.
func IsTriple(slotValue int) bool {
	left, middle, right := DecodeSlot(slotValue)
	return left == middle && middle == right
}

// IsPair reports whether exactly two reels show the same symbol.
func IsPair(slotValue int) bool {
	left, middle, right := DecodeSlot(slotValue)
	if left == middle && middle == right {
		return false
	}
	return left == middle || middle == right || left == right
}

// Reels renders the decoded symbols of a slot value.
func Reels(slotValue int) string {
	left, middle, right := DecodeSlot(slotValue)
	return SymbolNames[left] + " " + SymbolNames[middle] + " " + SymbolNames[right]
}
