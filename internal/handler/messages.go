package handler

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"dice-games-bot/internal/game"
	"dice-games-bot/internal/model"
	"dice-games-bot/internal/pkg/plural"
	"dice-games-bot/internal/service"
)

const (
	msgCommands = "/start - приветствие\n\n" +
		"/games - список игр\n\n" +
		"/bonus - получить бонус\n\n" +
		"/stats - ваша статистика\n\n" +
		"/ranking - рейтинг игроков"
	msgChooseGame = "Выберите игру:"
	msgNoCoins    = "У вас закончились монеты 😒"
	msgError      = "Произошла ошибка :("
	msgNoPlayers  = "Пока нет ни одного игрока"
)

func welcomeMessage(user *model.User) string {
	return fmt.Sprintf(
		"Добро пожаловать, %s 👋. Играй в игры и выигрывай!\n\n"+
			"Чтобы увидеть список игр напиши /games\n"+
			"Чтобы узнать больше команд напиши /commands",
		user.DisplayName,
	)
}

// trialMessage renders the settled balance and the signed change.
func trialMessage(user *model.User, outcome game.Outcome) string {
	return fmt.Sprintf("Имя: %s; Баланс: %d %s (%+d)",
		user.DisplayName, user.Coins, plural.Coins.Pick(user.Coins), outcome.Payout)
}

func bonusGrantedMessage(coins int64) string {
	return fmt.Sprintf("Вы получили %d %s 🎉", coins, plural.Coins.Pick(coins))
}

// countdownMessage omits zero hours, and zero minutes when hours remain.
func countdownMessage(wait service.Countdown) string {
	var b strings.Builder
	b.WriteString("Получить монеты вы сможете через ")
	if wait.Hours > 0 {
		fmt.Fprintf(&b, "%d %s ", wait.Hours, plural.Hours.Pick(wait.Hours))
	}
	if wait.Minutes > 0 || wait.Hours == 0 {
		fmt.Fprintf(&b, "%d %s ", wait.Minutes, plural.Minutes.Pick(wait.Minutes))
	}
	b.WriteString("😉")
	return b.String()
}

func statsMessage(user *model.User) string {
	return fmt.Sprintf("Имя: %s\nПобед: %d\nИгр: %d\nМонет: %d\nМесто в рейтинге: %d",
		user.DisplayName, user.Victories, user.Games, user.Coins, user.Ranking)
}

func leaderboardMessage(users []*model.User) string {
	if len(users) == 0 {
		return msgNoPlayers
	}
	entries := make([]string, len(users))
	for i, u := range users {
		entries[i] = fmt.Sprintf("%d место: %s\nПобед: %d, Игр: %d", u.Ranking, u.DisplayName, u.Victories, u.Games)
	}
	return strings.Join(entries, "\n\n")
}

// gamesMarkup lists one button per game, one per row, in registration order.
func gamesMarkup(games []*game.Game) *tele.ReplyMarkup {
	rows := make([][]tele.InlineButton, len(games))
	for i, g := range games {
		rows[i] = []tele.InlineButton{{Text: g.Emoji, Data: g.Key}}
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

func retryMarkup(g *game.Game) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{
		{{Text: g.RetryLabel, Data: g.RetryKey()}},
	}}
}

// identityOf converts a Telegram sender to a platform identity.
func identityOf(u *tele.User) model.Identity {
	return model.Identity{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
