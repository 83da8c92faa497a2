package config

import (
	"os"
	"strings"
	"time"
)

// Backend names accepted by --backend / PHONEFIX_BACKEND.
const (
	BackendLDAP     = "ldap"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// LDAP carries connection settings for the LDAP backend.
type LDAP struct {
	URL          string
	BindDN       string
	BindPassword string
	BaseDN       string
}

// Postgres carries the DSN for the SQL backend.
type Postgres struct {
	DSN string
}

// Redis configures the optional run lock. An empty URL disables it.
type Redis struct {
	URL     string
	LockTTL time.Duration
}

// Kafka configures the optional audit mirror. No brokers disables it.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Config is everything a run needs, resolved from the environment first and
// CLI flags second. All paths, clocks and checks are passed into the run
// controller explicitly so main stays the only place that reads ambient state.
type Config struct {
	Backend    string
	Simulate   bool
	LogDir     string
	StatusAddr string

	LDAP     LDAP
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
}

// FromEnv builds a Config from PHONEFIX_* environment variables so main stays
// lean. Flags override these afterwards.
func FromEnv() Config {
	cfg := Config{
		Backend:    envOr("PHONEFIX_BACKEND", BackendLDAP),
		LogDir:     envOr("PHONEFIX_LOG_DIR", os.TempDir()),
		StatusAddr: os.Getenv("PHONEFIX_STATUS_ADDR"),
		LDAP: LDAP{
			URL:          os.Getenv("PHONEFIX_LDAP_URL"),
			BindDN:       os.Getenv("PHONEFIX_LDAP_BIND_DN"),
			BindPassword: os.Getenv("PHONEFIX_LDAP_BIND_PASSWORD"),
			BaseDN:       os.Getenv("PHONEFIX_LDAP_BASE_DN"),
		},
		Postgres: Postgres{
			DSN: os.Getenv("PHONEFIX_POSTGRES_DSN"),
		},
		Redis: Redis{
			URL:     os.Getenv("PHONEFIX_REDIS_URL"),
			LockTTL: durationOr("PHONEFIX_REDIS_LOCK_TTL", 30*time.Minute),
		},
		Kafka: Kafka{
			Topic: envOr("PHONEFIX_KAFKA_TOPIC", "phonefix.audit"),
		},
	}
	if brokers := os.Getenv("PHONEFIX_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
