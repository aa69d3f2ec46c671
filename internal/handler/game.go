package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"dice-games-bot/internal/game"
	"dice-games-bot/internal/service"
)

// ErrNoDiceValue is returned when Telegram answers a dice send without a value.
var ErrNoDiceValue = errors.New("dice message has no value")

// DiceSender is the part of *tele.Bot the roller needs.
type DiceSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// DiceRoller rolls by sending an animated dice message to a chat; Telegram
// picks the value.
type DiceRoller struct {
	api  DiceSender
	chat tele.Recipient
}

// NewDiceRoller creates a roller that posts dice into chat.
func NewDiceRoller(api DiceSender, chat tele.Recipient) *DiceRoller {
	return &DiceRoller{api: api, chat: chat}
}

// Roll sends the game's dice emoji and returns the value it landed on.
func (r *DiceRoller) Roll(ctx context.Context, g *game.Game) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg, err := r.api.Send(r.chat, &tele.Dice{Type: tele.DiceType(g.Emoji)})
	if err != nil {
		return 0, fmt.Errorf("failed to send dice: %w", err)
	}
	if msg == nil || msg.Dice == nil {
		return 0, ErrNoDiceValue
	}
	return msg.Dice.Value, nil
}

// GameHandler handles the game menu and game button presses.
type GameHandler struct {
	accountService *service.AccountService
	gameService    *service.GameService
	gameRegistry   *game.Registry
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(
	accountService *service.AccountService,
	gameService *service.GameService,
	gameRegistry *game.Registry,
) *GameHandler {
	return &GameHandler{
		accountService: accountService,
		gameService:    gameService,
		gameRegistry:   gameRegistry,
	}
}

// HandleGames handles the /games command by showing the game menu.
func (h *GameHandler) HandleGames(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	if _, err := ensureSender(context.Background(), h.accountService, c); err != nil {
		return replyError(c, "games", err)
	}
	return c.Send(msgChooseGame, gamesMarkup(h.gameRegistry.List()))
}

// HandleCallback handles a game button press, from the menu or a retry button.
// Unknown tokens are acknowledged and ignored.
func (h *GameHandler) HandleCallback(c tele.Context) error {
	ctx := context.Background()
	callback := c.Callback()
	if callback == nil || c.Sender() == nil || c.Chat() == nil {
		return nil
	}

	token := callbackToken(callback.Data)
	g, ok := h.gameRegistry.Get(token)
	if !ok {
		log.Debug().Str("data", token).Msg("Ignoring unknown callback")
		return c.Respond()
	}

	// Acknowledge now; the trial keeps the request open for seconds.
	if err := c.Respond(); err != nil {
		log.Debug().Err(err).Msg("Failed to answer callback")
	}

	user, err := ensureSender(ctx, h.accountService, c)
	if err != nil {
		return replyError(c, g.Key, err)
	}

	res, err := h.gameService.PlayTrial(ctx, user.TelegramID, g, NewDiceRoller(c.Bot(), c.Chat()))
	if err != nil {
		return replyError(c, g.Key, err)
	}

	switch res.Status {
	case service.TrialBusy:
		log.Debug().Int64("user_id", user.TelegramID).Str("game", g.Key).Msg("Trial in flight, press dropped")
		return nil
	case service.TrialNoCoins:
		return c.Send(msgNoCoins)
	default:
		return c.Send(trialMessage(res.User, res.Outcome), retryMarkup(g))
	}
}

// callbackToken strips the marker telebot puts in front of unique button data.
func callbackToken(data string) string {
	data = strings.TrimPrefix(data, "\f")
	if i := strings.IndexByte(data, '|'); i >= 0 {
		data = data[:i]
	}
	return data
}
