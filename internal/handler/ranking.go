package handler

import (
	"context"

	tele "gopkg.in/telebot.v3"

	"dice-games-bot/internal/service"
)

// RankingHandler handles the leaderboard command.
type RankingHandler struct {
	accountService *service.AccountService
	rankingService *service.RankingService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(accountService *service.AccountService, rankingService *service.RankingService) *RankingHandler {
	return &RankingHandler{
		accountService: accountService,
		rankingService: rankingService,
	}
}

// HandleRanking handles the /ranking command.
// Recomputes rankings and shows the top players by victories.
func (h *RankingHandler) HandleRanking(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil {
		return nil
	}
	if _, err := ensureSender(ctx, h.accountService, c); err != nil {
		return replyError(c, "ranking", err)
	}

	users, err := h.rankingService.Leaderboard(ctx)
	if err != nil {
		return replyError(c, "ranking", err)
	}
	return c.Send(leaderboardMessage(users))
}
