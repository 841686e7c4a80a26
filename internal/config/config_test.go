package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"RSVP_API_URL", "RSVP_EVENT_ID", "NOTES_DEBOUNCE", "BATCH_CONCURRENCY", "WHATSAPP_ENABLED"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, "http://localhost:5000", cfg.APIURL)
	assert.Equal(t, 0, cfg.EventID)
	assert.Equal(t, 400*time.Millisecond, cfg.NotesDebounce)
	assert.Equal(t, 500*time.Millisecond, cfg.EventNotesDebounce)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
	assert.Equal(t, 0, cfg.BatchConcurrency)
	assert.False(t, cfg.WhatsAppEnabled)
	assert.Equal(t, "972", cfg.WhatsAppCountryCode)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RSVP_API_URL", "https://rsvp.example.com/")
	t.Setenv("RSVP_EVENT_ID", "7")
	t.Setenv("NOTES_DEBOUNCE", "250")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("BATCH_CONCURRENCY", "4")
	t.Setenv("WHATSAPP_ENABLED", "true")

	cfg := LoadConfig()
	assert.Equal(t, "https://rsvp.example.com", cfg.APIURL)
	assert.Equal(t, 7, cfg.EventID)
	assert.Equal(t, 250*time.Millisecond, cfg.NotesDebounce)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.True(t, cfg.WhatsAppEnabled)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RSVP_EVENT_ID", "seven")
	t.Setenv("EVENT_NOTES_DEBOUNCE", "soon")

	cfg := LoadConfig()
	assert.Equal(t, 0, cfg.EventID)
	assert.Equal(t, 500*time.Millisecond, cfg.EventNotesDebounce)
}
