package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port                      string
	DefaultGoalScore          int
	AutoAdvanceMillis         int
	RoundDurationSeconds      int
	LeaderboardRefreshSeconds int
	HistoryRefreshSeconds     int
	DatabaseURL               string
	DBMaxOpenConns            int
	DBMaxIdleConns            int
	DBConnMaxLifetimeSeconds  int
	DBConnMaxIdleTimeSeconds  int
	RedisAddr                 string
	RedisPassword             string
	RedisDB                   int
	FeedStream                string
	FeedGroup                 string
	FeedConsumer              string
	DemoFeed                  bool
	DemoFeedIntervalMillis    int
	CORSOrigins               []string
}

func Default() Config {
	consumer, err := os.Hostname()
	if err != nil || consumer == "" {
		consumer = "gift-battle"
	}
	return Config{
		Port:                      "8080",
		DefaultGoalScore:          3000,
		AutoAdvanceMillis:         3000,
		RoundDurationSeconds:      600,
		LeaderboardRefreshSeconds: 15,
		HistoryRefreshSeconds:     30,
		DBMaxOpenConns:            10,
		DBMaxIdleConns:            10,
		DBConnMaxLifetimeSeconds:  300,
		DBConnMaxIdleTimeSeconds:  60,
		FeedStream:                "battle.events",
		FeedGroup:                 "battle-dashboard",
		FeedConsumer:              consumer,
		DemoFeedIntervalMillis:    5000,
		CORSOrigins:               []string{"*"},
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	positiveInt("DEFAULT_GOAL_SCORE", &cfg.DefaultGoalScore)
	positiveInt("AUTO_ADVANCE_MS", &cfg.AutoAdvanceMillis)
	positiveInt("ROUND_SECONDS", &cfg.RoundDurationSeconds)
	positiveInt("LEADERBOARD_REFRESH_SECONDS", &cfg.LeaderboardRefreshSeconds)
	positiveInt("HISTORY_REFRESH_SECONDS", &cfg.HistoryRefreshSeconds)
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	positiveInt("DB_MAX_OPEN_CONNS", &cfg.DBMaxOpenConns)
	positiveInt("DB_MAX_IDLE_CONNS", &cfg.DBMaxIdleConns)
	positiveInt("DB_CONN_MAX_LIFETIME_SECONDS", &cfg.DBConnMaxLifetimeSeconds)
	positiveInt("DB_CONN_MAX_IDLE_SECONDS", &cfg.DBConnMaxIdleTimeSeconds)
	if raw := os.Getenv("REDIS_ADDR"); raw != "" {
		cfg.RedisAddr = raw
	}
	if raw := os.Getenv("REDIS_PASSWORD"); raw != "" {
		cfg.RedisPassword = raw
	}
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.RedisDB = value
		}
	}
	if raw := os.Getenv("FEED_STREAM"); raw != "" {
		cfg.FeedStream = raw
	}
	if raw := os.Getenv("FEED_GROUP"); raw != "" {
		cfg.FeedGroup = raw
	}
	if raw := os.Getenv("FEED_CONSUMER"); raw != "" {
		cfg.FeedConsumer = raw
	}
	if raw := os.Getenv("DEMO_FEED"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.DemoFeed = value
		}
	}
	positiveInt("DEMO_FEED_INTERVAL_MS", &cfg.DemoFeedIntervalMillis)
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins := make([]string, 0)
		for _, origin := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}
	return cfg
}

// positiveInt overwrites dest when the variable parses to a value above zero.
func positiveInt(key string, dest *int) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	if value, err := strconv.Atoi(raw); err == nil && value > 0 {
		*dest = value
	}
}
