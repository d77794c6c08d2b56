package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"derby/models"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Derby defaults, overridable per guild
	RaceFrequency       int   // races created per guild per day
	DefaultWallet       int64 // starting balance for new wallets
	RetirementThreshold int   // draw in [1,100] at or above this retires a racer

	// Race lifecycle timing
	TickInterval      time.Duration // orchestrator cadence
	BetWindow         time.Duration // betting window after the announcement
	CountdownTotal    time.Duration // total duration of the 3-step countdown
	CommentaryDelay   time.Duration // pause between commentary events
	HouseEdge         float64       // fraction shaved off fair odds
	ParticipantSample int           // racers drawn into each race
	CourseLength      int           // segments laid out for scheduled races

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// DefaultGuildSettings returns the settings a guild starts with before any
// per-guild overrides
func (c *Config) DefaultGuildSettings(guildID int64) *models.GuildSettings {
	return &models.GuildSettings{
		GuildID:             guildID,
		RaceFrequency:       c.RaceFrequency,
		DefaultWallet:       c.DefaultWallet,
		RetirementThreshold: c.RetirementThreshold,
	}
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// Pick up a local .env in development; real environment variables win
	_ = godotenv.Load()

	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Derby settings with defaults
		RaceFrequency:       1,
		DefaultWallet:       100,
		RetirementThreshold: 65,

		TickInterval:      24 * time.Hour,
		BetWindow:         5 * time.Minute,
		CountdownTotal:    9 * time.Second,
		CommentaryDelay:   2 * time.Second,
		HouseEdge:         0.1,
		ParticipantSample: 8,
		CourseLength:      6,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if freq := os.Getenv("RACE_FREQUENCY"); freq != "" {
		if parsed, err := strconv.Atoi(freq); err == nil {
			config.RaceFrequency = parsed
		}
	}
	if wallet := os.Getenv("DEFAULT_WALLET"); wallet != "" {
		if parsed, err := strconv.ParseInt(wallet, 10, 64); err == nil {
			config.DefaultWallet = parsed
		}
	}
	if threshold := os.Getenv("RETIREMENT_THRESHOLD"); threshold != "" {
		if parsed, err := strconv.Atoi(threshold); err == nil {
			config.RetirementThreshold = parsed
		}
	}
	if window := os.Getenv("BET_WINDOW"); window != "" {
		if parsed, err := time.ParseDuration(window); err == nil {
			config.BetWindow = parsed
		}
	}
	if countdown := os.Getenv("COUNTDOWN_TOTAL"); countdown != "" {
		if parsed, err := time.ParseDuration(countdown); err == nil {
			config.CountdownTotal = parsed
		}
	}
	if delay := os.Getenv("COMMENTARY_DELAY"); delay != "" {
		if parsed, err := time.ParseDuration(delay); err == nil {
			config.CommentaryDelay = parsed
		}
	}
	if interval := os.Getenv("TICK_INTERVAL"); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil {
			config.TickInterval = parsed
		}
	}
	if edge := os.Getenv("HOUSE_EDGE"); edge != "" {
		if parsed, err := strconv.ParseFloat(edge, 64); err == nil {
			config.HouseEdge = parsed
		}
	}
	if sample := os.Getenv("PARTICIPANT_SAMPLE"); sample != "" {
		if parsed, err := strconv.Atoi(sample); err == nil {
			config.ParticipantSample = parsed
		}
	}
	if course := os.Getenv("COURSE_LENGTH"); course != "" {
		if parsed, err := strconv.Atoi(course); err == nil {
			config.CourseLength = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	if config.RetirementThreshold < 1 || config.RetirementThreshold > 100 {
		return nil, fmt.Errorf("RETIREMENT_THRESHOLD must be within 1-100")
	}
	if config.HouseEdge < 0 || config.HouseEdge >= 1 {
		return nil, fmt.Errorf("HOUSE_EDGE must be within [0,1)")
	}
	if config.ParticipantSample < 1 {
		return nil, fmt.Errorf("PARTICIPANT_SAMPLE must be positive")
	}

	return config, nil
}
