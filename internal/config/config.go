// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("bot token is required")

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Bonus     BonusConfig     `mapstructure:"bonus"`
	Ranking   RankingConfig   `mapstructure:"ranking"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Log       LogConfig       `mapstructure:"log"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// BonusConfig holds the free coin bonus settings.
type BonusConfig struct {
	Coins         int64   `mapstructure:"coins"`
	CooldownHours float64 `mapstructure:"cooldown_hours"`
}

// RankingConfig holds leaderboard settings.
type RankingConfig struct {
	Top int `mapstructure:"top"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in configPath, the working directory and ./config.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. BOT_TOKEN, DATABASE_HOST, BONUS_COOLDOWN_HOURS.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the bot cannot start without.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return ErrMissingToken
	}
	if c.Bonus.Coins <= 0 {
		return fmt.Errorf("bonus.coins must be positive, got %d", c.Bonus.Coins)
	}
	if c.Ranking.Top <= 0 {
		return fmt.Errorf("ranking.top must be positive, got %d", c.Ranking.Top)
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.poll_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gamebot")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "gamebot")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("bonus.coins", 6)
	v.SetDefault("bonus.cooldown_hours", 6)

	v.SetDefault("ranking.top", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
}

// IsChatAllowed checks if a chat ID is in the whitelist.
// An empty whitelist allows every chat.
func (c *Config) IsChatAllowed(chatID int64) bool {
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	return slices.Contains(c.Whitelist.Chats, chatID)
}

// LogLevel parses the configured level, falling back to info.
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil || c.Log.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
