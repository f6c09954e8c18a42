package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	CatalogStatic = "static"
	CatalogMySQL  = "mysql"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	CatalogSource string // static|mysql
	MySQLDSN      string
	RedisAddr     string // empty disables the cache
	RedisDB       int
	RedisPass     string
	CacheTTL      time.Duration

	SessionTTL     time.Duration
	SweepInterval  time.Duration
	SettleValidate time.Duration
	SettleCharge   time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	TrustProxy     bool
	SeedWorkers    int
}

// Load reads the configuration from the environment. A .env file in the
// working directory, if present, fills in variables that are not set.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env not loaded")
	}
	ms := func(k string, def int) time.Duration { return time.Duration(atoi(k, def)) * time.Millisecond }

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", ""),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),

		CatalogSource: env("CATALOG_SOURCE", CatalogStatic),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/minihotel?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:     env("REDIS_ADDR", ""),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", 0),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		SessionTTL:     time.Duration(atoi("SESSION_TTL_SECONDS", 1800)) * time.Second,
		SweepInterval:  time.Duration(atoi("SESSION_SWEEP_SECONDS", 60)) * time.Second,
		SettleValidate: ms("SETTLE_VALIDATE_MS", 2000),
		SettleCharge:   ms("SETTLE_CHARGE_MS", 1500),

		RateLimitRPS:   atof("RATE_LIMIT_RPS", 20),
		RateLimitBurst: atoi("RATE_LIMIT_BURST", 40),
		TrustProxy:     atob("TRUST_PROXY", false),
		SeedWorkers:    atoi("SEED_WORKERS", 4),
	}
	if c.CatalogSource != CatalogStatic && c.CatalogSource != CatalogMySQL {
		log.Warn().Str("source", c.CatalogSource).Msg("unknown CATALOG_SOURCE, using static")
		c.CatalogSource = CatalogStatic
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func atof(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not a number, using default")
	}
	return def
}

func atob(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not a boolean, using default")
	}
	return def
}
