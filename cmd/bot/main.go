// Package main is the entry point for the dice games bot.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dice-games-bot/internal/bot"
	"dice-games-bot/internal/config"
	"dice-games-bot/internal/game"
	"dice-games-bot/internal/game/dice"
	"dice-games-bot/internal/game/slot"
	"dice-games-bot/internal/pkg/clock"
	"dice-games-bot/internal/pkg/db"
	"dice-games-bot/internal/pkg/lock"
	"dice-games-bot/internal/repository"
	"dice-games-bot/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Run database migrations before the pool is handed to repositories
	log.Info().Msg("Running database migrations...")
	if err := db.Migrate(cfg.Database.DSN()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	userRepo := repository.NewUserRepository(dbPool.Pool)

	clk := clock.New()
	accountService := service.NewAccountService(
		userRepo,
		clk,
		lock.NewUserLock(),
		cfg.Bonus.Coins,
		cfg.Bonus.CooldownHours,
	)
	gameService := service.NewGameService(userRepo, clk)
	rankingService := service.NewRankingService(userRepo, cfg.Ranking.Top)

	// Register games in menu order
	gameRegistry := game.NewRegistry()
	for _, g := range append([]*game.Game{slot.New()}, dice.All()...) {
		if err := gameRegistry.Register(g); err != nil {
			log.Fatal().Err(err).Str("game", g.Key).Msg("Failed to register game")
		}
	}
	log.Info().
		Int("game_count", gameRegistry.Count()).
		Strs("games", gameRegistry.Keys()).
		Msg("Games registered")

	// Users stranded mid-trial by the previous process may play again
	if err := gameService.ReleaseStaleTrials(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to release busy users")
	}

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:         cfg,
		AccountService: accountService,
		GameService:    gameService,
		RankingService: rankingService,
		GameRegistry:   gameRegistry,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go telegramBot.Start()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// setupLogger configures the global zerolog logger from config.
func setupLogger(cfg *config.Config) {
	zerolog.SetGlobalLevel(cfg.LogLevel())
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out io.Writer = os.Stderr
	if cfg.Log.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}
