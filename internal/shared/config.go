package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv            string
	HTTPAddr          string
	MetricsAddr       string
	MySQLDSN          string
	RedisAddr         string
	RedisDB           int
	RedisPass         string
	HostawayBase      string
	HostawayKey       string
	HostawayAccountID string
	MockDataPath      string
	SeedSkipInvalid   bool
	SeedForce         bool
	CacheTTL          time.Duration
	RatePerMinute     int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	abool := func(k string, def bool) bool {
		if v := os.Getenv(k); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
		return def
	}
	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		HTTPAddr:          env("HTTP_ADDR", ":8080"),
		MetricsAddr:       env("METRICS_ADDR", ":9100"),
		MySQLDSN:          env("MYSQL_DSN", "root:root@tcp(localhost:3306)/flexreviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:         env("REDIS_ADDR", "localhost:6379"),
		RedisDB:           atoi("REDIS_DB", 0),
		RedisPass:         env("REDIS_PASSWORD", ""),
		HostawayBase:      env("HOSTAWAY_BASE_URL", "https://api.hostaway.com/v1"),
		HostawayKey:       env("HOSTAWAY_API_KEY", ""),
		HostawayAccountID: env("HOSTAWAY_ACCOUNT_ID", ""),
		MockDataPath:      env("MOCK_DATA_PATH", "data/mock_reviews.json"),
		SeedSkipInvalid:   abool("SEED_SKIP_INVALID", true),
		SeedForce:         abool("SEED_FORCE", false),
		CacheTTL:          time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		RatePerMinute:     atoi("RATE_LIMIT_PER_MINUTE", 60),
	}
	if !abool("RATE_LIMIT_ENABLED", true) {
		c.RatePerMinute = 0
	}
	if c.HostawayKey == "" {
		log.Warn().Msg("HOSTAWAY_API_KEY is empty; seeder will use the mock payload")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
