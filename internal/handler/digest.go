// Package handler connects the invitation table to WhatsApp: it sends the
// host a digest after every batch and answers the host's summary requests.
package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"rsvp-table/internal/models"
	"rsvp-table/internal/summary"
	"rsvp-table/internal/table"
	"rsvp-table/internal/whatsapp"
)

// Sender delivers a text message to a phone number
type Sender interface {
	SendMessage(ctx context.Context, phoneNumber, text string) error
}

// Source exposes the current state of a table
type Source interface {
	Event() models.Event
	Summary() summary.Summary
}

// Config of the handlers
type Config struct {
	// Host is the phone number digests go to and commands are accepted from
	Host        string
	CountryCode string
}

// DigestNotifier sends the host a digest of every finished batch
type DigestNotifier struct {
	sender Sender
	source Source
	cfg    Config
	log    zerolog.Logger
}

// NewDigestNotifier creates a notifier. source supplies the event name.
func NewDigestNotifier(sender Sender, source Source, cfg Config, logger zerolog.Logger) *DigestNotifier {
	return &DigestNotifier{
		sender: sender,
		source: source,
		cfg:    cfg,
		log:    logger.With().Str("component", "digest").Logger(),
	}
}

// BatchDone implements table.Notifier
func (n *DigestNotifier) BatchDone(ctx context.Context, res table.BatchResult, s summary.Summary) error {
	if n.cfg.Host == "" || len(res.Outcomes) == 0 {
		return nil
	}
	name := ""
	if n.source != nil {
		name = n.source.Event().Name
	}
	if err := n.sender.SendMessage(ctx, n.cfg.Host, FormatDigest(name, res, s)); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}
	n.log.Debug().Str("action", string(res.Action)).Msg("Digest sent")
	return nil
}

// FormatDigest renders a batch result for a chat message
func FormatDigest(eventName string, res table.BatchResult, s summary.Summary) string {
	var b strings.Builder
	if eventName != "" {
		fmt.Fprintf(&b, "*%s*\n", eventName)
	}
	fmt.Fprintf(&b, "Batch %s: %d done, %d skipped, %d failed\n",
		res.Action, res.Succeeded(), res.Skipped(), len(res.Failed()))
	for _, o := range res.Failed() {
		fmt.Fprintf(&b, "❌ %s\n", o.Name)
	}
	b.WriteString(FormatSummary(s))
	return b.String()
}

// FormatSummary renders the summary for a chat message
func FormatSummary(s summary.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Attending: %d\n", s.Total.Attending)
	fmt.Fprintf(&b, "⏳ Pending: %d\n", s.Total.Pending)
	fmt.Fprintf(&b, "❌ Declined: %d\n", s.Total.Declined)
	fmt.Fprintf(&b, "✉️ Not sent: %d\n", s.Total.NotSent)
	fmt.Fprintf(&b, "📨 %s", s.Breakdown.Label())
	if label := s.Target.Label(); label != "" {
		fmt.Fprintf(&b, "\n🎯 Target: %s", label)
	}
	return b.String()
}

// CommandHandler answers summary requests sent by the host
type CommandHandler struct {
	sender Sender
	source Source
	cfg    Config
	log    zerolog.Logger
}

// NewCommandHandler creates a handler for incoming messages
func NewCommandHandler(sender Sender, source Source, cfg Config, logger zerolog.Logger) *CommandHandler {
	return &CommandHandler{
		sender: sender,
		source: source,
		cfg:    cfg,
		log:    logger.With().Str("component", "commands").Logger(),
	}
}

// HandleMessage replies with the summary when the host asks for it; other
// senders and texts are ignored
func (h *CommandHandler) HandleMessage(ctx context.Context, msg whatsapp.Message) error {
	if h.cfg.Host == "" {
		return nil
	}
	host := whatsapp.NormalizePhoneNumber(h.cfg.Host, h.cfg.CountryCode)
	if whatsapp.NormalizePhoneNumber(msg.Sender, h.cfg.CountryCode) != host {
		return nil
	}

	text := strings.ToLower(strings.TrimSpace(msg.Text))
	if !containsAny(text, "summary", "status", "stats") {
		return nil
	}

	reply := FormatSummary(h.source.Summary())
	if name := h.source.Event().Name; name != "" {
		reply = fmt.Sprintf("*%s*\n%s", name, reply)
	}
	if err := h.sender.SendMessage(ctx, msg.Sender, reply); err != nil {
		return fmt.Errorf("failed to send summary: %w", err)
	}
	h.log.Info().Str("sender", msg.Sender).Msg("Summary sent")
	return nil
}

// containsAny checks if the text contains any of the given keywords
func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
