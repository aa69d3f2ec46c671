// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"dice-games-bot/internal/config"
	"dice-games-bot/internal/game"
	"dice-games-bot/internal/handler"
	"dice-games-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	// Handlers
	accountHandler *handler.AccountHandler
	gameHandler    *handler.GameHandler
	rankingHandler *handler.RankingHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config         *config.Config
	AccountService *service.AccountService
	GameService    *service.GameService
	RankingService *service.RankingService
	GameRegistry   *game.Registry
}

// Commands is the command menu shown by Telegram clients.
func Commands() []tele.Command {
	return []tele.Command{
		{Text: "start", Description: "Приветствие"},
		{Text: "games", Description: "Список игр"},
		{Text: "commands", Description: "Список команд"},
		{Text: "bonus", Description: "Получить бонус"},
		{Text: "stats", Description: "Ваша статистика"},
		{Text: "ranking", Description: "Рейтинг игроков"},
	}
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, config.ErrMissingToken
	}

	pref := tele.Settings{
		Token:   deps.Config.Bot.Token,
		Poller:  &tele.LongPoller{Timeout: deps.Config.Bot.PollTimeout},
		OnError: onError,
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:            teleBot,
		cfg:            deps.Config,
		accountHandler: handler.NewAccountHandler(deps.AccountService, deps.RankingService),
		gameHandler:    handler.NewGameHandler(deps.AccountService, deps.GameService, deps.GameRegistry),
		rankingHandler: handler.NewRankingHandler(deps.AccountService, deps.RankingService),
	}

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(LoggingMiddleware())
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.accountHandler.HandleStart)
	b.bot.Handle("/commands", b.accountHandler.HandleCommands)
	b.bot.Handle("/bonus", b.accountHandler.HandleBonus)
	b.bot.Handle("/stats", b.accountHandler.HandleStats)

	b.bot.Handle("/ranking", b.rankingHandler.HandleRanking)

	b.bot.Handle("/games", b.gameHandler.HandleGames)
	b.bot.Handle(tele.OnCallback, b.gameHandler.HandleCallback)
}

// onError logs errors returned by handlers; users already got a reply.
func onError(err error, c tele.Context) {
	evt := log.Error().Err(err)
	if c != nil {
		if sender := c.Sender(); sender != nil {
			evt = evt.Int64("user_id", sender.ID)
		}
		evt = evt.Interface(requestIDKey, c.Get(requestIDKey))
	}
	evt.Msg("Handler error")
}

// Start publishes the command menu and starts polling. It blocks until Stop.
func (b *Bot) Start() {
	if err := b.bot.SetCommands(Commands()); err != nil {
		log.Warn().Err(err).Msg("Failed to set bot commands")
	}

	log.Info().Str("username", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
