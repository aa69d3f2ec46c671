// Package model defines the data models for the dice games bot.
package model

import (
	"strings"
	"time"
)

// Defaults applied to a freshly created user record.
const (
	DefaultCoins = 6
)

// User represents a Telegram user taking part in the games.
type User struct {
	TelegramID  int64     `db:"telegram_id"`
	DisplayName string    `db:"display_name"`
	Coins       int64     `db:"coins"`
	Victories   int64     `db:"victories"`
	Games       int64     `db:"games"`
	Ranking     int       `db:"ranking"`
	LastBonusAt float64   `db:"last_bonus_at"` // hours since the Unix epoch
	Busy        bool      `db:"busy"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// CanPlay reports whether the user has a positive balance.
func (u *User) CanPlay() bool {
	return u.Coins > 0
}

// Identity is the acting platform identity resolved from an inbound update.
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// DisplayName returns the name shown for the identity: the handle when
// present, otherwise the first name optionally followed by the last name.
func (i Identity) DisplayName() string {
	return DisplayName(i.Username, i.FirstName, i.LastName)
}

// DisplayName derives a user's display name from profile fields.
func DisplayName(username, firstName, lastName string) string {
	if username != "" {
		return username
	}
	if lastName != "" {
		return strings.TrimSpace(firstName + " " + lastName)
	}
	return firstName
}
