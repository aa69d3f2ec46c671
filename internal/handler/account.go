// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"dice-games-bot/internal/model"
	"dice-games-bot/internal/service"
)

// ensureSender registers the sender on first contact and returns the record.
// Updates without a sender are ignored by the caller.
func ensureSender(ctx context.Context, accounts *service.AccountService, c tele.Context) (*model.User, error) {
	user, created, err := accounts.EnsureUser(ctx, identityOf(c.Sender()))
	if err != nil {
		return nil, err
	}
	if created {
		log.Info().
			Int64("user_id", user.TelegramID).
			Str("name", user.DisplayName).
			Msg("New player registered")
	}
	return user, nil
}

// replyError logs err and shows the generic failure message.
func replyError(c tele.Context, op string, err error) error {
	evt := log.Error().Err(err).Str("op", op)
	if sender := c.Sender(); sender != nil {
		evt = evt.Int64("user_id", sender.ID)
	}
	evt.Msg("Request failed")
	return c.Send(msgError)
}

// AccountHandler handles account-related commands.
type AccountHandler struct {
	accountService *service.AccountService
	rankingService *service.RankingService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *service.AccountService, rankingService *service.RankingService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		rankingService: rankingService,
	}
}

// HandleStart handles the /start command.
func (h *AccountHandler) HandleStart(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	user, err := ensureSender(context.Background(), h.accountService, c)
	if err != nil {
		return replyError(c, "start", err)
	}
	return c.Send(welcomeMessage(user))
}

// HandleCommands handles the /commands command.
func (h *AccountHandler) HandleCommands(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	if _, err := ensureSender(context.Background(), h.accountService, c); err != nil {
		return replyError(c, "commands", err)
	}
	return c.Send(msgCommands)
}

// HandleBonus handles the /bonus command.
// Grants free coins once the cooldown is over, otherwise shows the wait.
func (h *AccountHandler) HandleBonus(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil {
		return nil
	}
	user, err := ensureSender(ctx, h.accountService, c)
	if err != nil {
		return replyError(c, "bonus", err)
	}

	res, err := h.accountService.ClaimBonus(ctx, user.TelegramID)
	if err != nil {
		return replyError(c, "bonus", err)
	}
	if !res.Granted {
		return c.Send(countdownMessage(res.Wait))
	}

	log.Info().
		Int64("user_id", user.TelegramID).
		Int64("coins", res.User.Coins).
		Msg("Bonus granted")
	return c.Send(bonusGrantedMessage(res.Coins))
}

// HandleStats handles the /stats command.
// Rankings are recomputed before the record is read.
func (h *AccountHandler) HandleStats(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil {
		return nil
	}
	user, err := ensureSender(ctx, h.accountService, c)
	if err != nil {
		return replyError(c, "stats", err)
	}

	user, err = h.rankingService.Stats(ctx, user.TelegramID)
	if err != nil {
		return replyError(c, "stats", err)
	}
	return c.Send(statsMessage(user))
}
