package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr     string
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string
	ServiceName  string

	JWTSecret   string
	TokenTTL    time.Duration
	UploadsDir  string
	CORSOrigins []string

	WorkerGroup string
	WorkerCount int
}

func Load() Config {
	return Config{
		HTTPAddr:     httpAddr(),
		PostgresDSN:  postgresDSN(),
		RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: splitCSV(getenv("KAFKA_BROKERS", "localhost:9092")),
		ServiceName:  getenv("SERVICE_NAME", "storefront-api"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     getduration("TOKEN_TTL", 7*24*time.Hour),
		UploadsDir:   getenv("UPLOADS_DIR", "./uploads"),
		CORSOrigins:  splitCSV(getenv("CORS_ORIGINS", "*")),
		WorkerGroup:  getenv("WORKER_GROUP", "storefront-worker"),
		WorkerCount:  getint("WORKER_COUNT", 4),
	}
}

// Validate checks the values the API cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.PostgresDSN == "" {
		errs = append(errs, errors.New("database is not configured"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func httpAddr() string {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		return v
	}
	if p := os.Getenv("PORT"); p != "" {
		return ":" + p
	}
	return ":5000"
}

// postgresDSN prefers POSTGRES_DSN and otherwise assembles one from the DB_* variables.
func postgresDSN() string {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		return v
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getenv("DB_USER", "postgres"), os.Getenv("DB_PASSWORD")),
		Host:     fmt.Sprintf("%s:%s", getenv("DB_HOST", "localhost"), getenv("DB_PORT", "5432")),
		Path:     "/" + getenv("DB_NAME", "nep_shop"),
		RawQuery: "sslmode=" + getenv("DB_SSLMODE", "disable"),
	}
	return u.String()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getduration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
