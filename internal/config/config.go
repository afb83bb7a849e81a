// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/streamfest/station-booking/internal/model"
)

// Defaults for the station set and event window, matching the event this
// service was first deployed for.  Both are overridable via environment.
const (
	defaultStations    = "Door (Left),Door (Right),Window (Left),Window (Right)"
	defaultWindowStart = "2023-07-22"
	defaultWindowEnd   = "2023-07-29"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Strings for identifiers and secrets,
// durations for the lock lease parameters.
type Config struct {
	Env               string          // application environment (e.g. "dev", "prod")
	Port              string          // HTTP port to listen on
	DBUser            string          // database username
	DBPass            string          // database password (optional)
	DBHost            string          // database host address
	DBPort            string          // database port number
	DBName            string          // database name
	AMQPURL           string          // RabbitMQ URL; empty uses the local default
	AdminPasswordHash string          // bcrypt hash of the shared admin password
	Stations          []model.Station // ordered set of bookable stations
	WindowStart       time.Time       // first bookable hour (00:00 of the start date)
	WindowEnd         time.Time       // last bookable hour (23:00 of the end date)
	LockTTL           time.Duration   // lease TTL of the booking lock
	LockTimeout       time.Duration   // how long to wait for the lock before Busy
}

// Load reads configuration from the environment.  A .env file in the
// working directory is applied first when present.  Missing required
// variables cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load() // .env is optional

	windowStart := envDate("EVENT_WINDOW_START", defaultWindowStart)
	windowEnd := envDate("EVENT_WINDOW_END", defaultWindowEnd)
	return Config{
		Env:               envStr("APP_ENV", "dev"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		AMQPURL:           os.Getenv("RABBITMQ_URL"),
		AdminPasswordHash: must("ADMIN_PASSWORD_HASH"),
		Stations:          model.ParseStations(envStr("STATIONS", defaultStations)),
		WindowStart:       windowStart,
		WindowEnd:         windowEnd.Add(23 * time.Hour), // inclusive last hour of the end date
		LockTTL:           envDur("BOOKING_LOCK_TTL", 10*time.Second),
		LockTimeout:       envDur("BOOKING_LOCK_TIMEOUT", 5*time.Second),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}

// envDate parses a YYYY-MM-DD date in UTC.
func envDate(key, def string) time.Time {
	v := envStr(key, def)
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		log.Fatalf("invalid date for %s: %q", key, v)
	}
	return t
}
