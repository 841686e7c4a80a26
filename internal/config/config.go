package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	APIURL    string
	APIToken  string
	CSRFToken string
	EventID   int
	// Target overrides the event's attendance target when > 0
	Target int

	NotesDebounce      time.Duration
	EventNotesDebounce time.Duration
	BatchConcurrency   int
	RequestTimeout     time.Duration

	LogLevel string
	LogFile  string

	WhatsAppEnabled     bool
	WhatsAppDataDir     string
	WhatsAppNotify      string
	WhatsAppCountryCode string
}

// LoadConfig loads configuration from an optional .env file, environment
// variables or defaults
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		APIURL:    strings.TrimRight(getEnv("RSVP_API_URL", "http://localhost:5000"), "/"),
		APIToken:  getEnv("RSVP_API_TOKEN", ""),
		CSRFToken: getEnv("RSVP_CSRF_TOKEN", ""),
		EventID:   getEnvInt("RSVP_EVENT_ID", 0),
		Target:    getEnvInt("RSVP_TARGET", 0),

		NotesDebounce:      getEnvDuration("NOTES_DEBOUNCE", 400*time.Millisecond),
		EventNotesDebounce: getEnvDuration("EVENT_NOTES_DEBOUNCE", 500*time.Millisecond),
		BatchConcurrency:   getEnvInt("BATCH_CONCURRENCY", 0),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 0),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		WhatsAppEnabled:     getEnvBool("WHATSAPP_ENABLED", false),
		WhatsAppDataDir:     getEnv("WHATSAPP_DATA_DIR", "data"),
		WhatsAppNotify:      getEnv("WHATSAPP_NOTIFY_NUMBER", ""),
		WhatsAppCountryCode: getEnv("WHATSAPP_COUNTRY_CODE", "972"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("400ms") or plain milliseconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
