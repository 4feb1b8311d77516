package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	LogLevel    string
	LogFormat   string

	ServerPort int

	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	TxIsolation    string
	TxMaxRetries   int

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	CookieSecure     bool

	KafkaBrokers      []string
	OutboxBatchSize   int
	OutboxInterval    time.Duration
	OutboxLease       time.Duration
	OutboxMaxAttempts int

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string
	ElasticIndex    string

	RedisAddr      string
	RedisPassword  string
	IdempotencyTTL time.Duration

	SeedData      bool
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),
		LogFormat:   EnvDefault("LOG_FORMAT", "json"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBMaxOpenConns: EnvIntDefault("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns: EnvIntDefault("DB_MAX_IDLE_CONNS", 10),
		TxIsolation:    EnvDefault("TX_ISOLATION", "serializable"),
		TxMaxRetries:   EnvIntDefault("TX_MAX_RETRIES", 3),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTokenTTL:   EnvDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:  EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		CookieSecure:     EnvBoolDefault("COOKIE_SECURE", true),

		KafkaBrokers:      CSV(os.Getenv("KAFKA_BROKERS")),
		OutboxBatchSize:   EnvIntDefault("OUTBOX_BATCH_SIZE", 100),
		OutboxInterval:    EnvDurationDefault("OUTBOX_INTERVAL", 500*time.Millisecond),
		OutboxLease:       EnvDurationDefault("OUTBOX_LEASE", 30*time.Second),
		OutboxMaxAttempts: EnvIntDefault("OUTBOX_MAX_ATTEMPTS", 5),

		ElasticURL:      os.Getenv("ES_URL"),
		ElasticUser:     os.Getenv("ES_USER"),
		ElasticPassword: os.Getenv("ES_PASSWORD"),
		ElasticIndex:    EnvDefault("ES_INDEX", "products"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		IdempotencyTTL: EnvDurationDefault("IDEMPOTENCY_TTL", 24*time.Hour),

		SeedData:      EnvBoolDefault("SEED_DATA", false),
		AdminUsername: EnvDefault("ADMIN_USERNAME", "admin"),
		AdminEmail:    EnvDefault("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// EnvDurationDefault accepts time.ParseDuration syntax ("15m", "500ms").
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
