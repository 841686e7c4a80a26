package whatsapp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

// DefaultCountryCode is prepended to local numbers starting with 0
const DefaultCountryCode = "972"

// Message is an incoming text message
type Message struct {
	// Sender is the phone number of the sender, digits only
	Sender string
	Text   string
}

// MessageHandler is a callback for incoming text messages
type MessageHandler func(ctx context.Context, msg Message) error

type Config struct {
	DataDir     string
	CountryCode string
}

// Service is a WhatsApp session backed by a SQLite device store
type Service struct {
	client *whatsmeow.Client
	cfg    Config
	log    zerolog.Logger

	mu             sync.RWMutex
	messageHandler MessageHandler
}

// NewService opens the device store and creates a client
func NewService(ctx context.Context, cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CountryCode == "" {
		cfg.CountryCode = DefaultCountryCode
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s/whatsmeow.db?_foreign_keys=on", cfg.DataDir), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	service := &Service{
		client: whatsmeow.NewClient(deviceStore, nil),
		cfg:    cfg,
		log:    logger.With().Str("component", "whatsapp").Logger(),
	}
	service.client.AddEventHandler(service.eventHandler)
	return service, nil
}

// NormalizePhoneNumber strips formatting and converts a local number
// (leading 0, ten digits) to international form with countryCode
func NormalizePhoneNumber(phoneNumber, countryCode string) string {
	phoneNumber = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phoneNumber)

	if countryCode == "" {
		return phoneNumber
	}
	if strings.HasPrefix(phoneNumber, "0") && len(phoneNumber) == 10 {
		phoneNumber = countryCode + phoneNumber[1:]
	}
	// country code followed by the local trunk 0
	if strings.HasPrefix(phoneNumber, countryCode+"0") {
		phoneNumber = countryCode + phoneNumber[len(countryCode)+1:]
	}
	return phoneNumber
}

// Connect connects to WhatsApp. A device that was never paired prints a
// QR code to out and waits for it to be scanned.
func (s *Service) Connect(ctx context.Context, out io.Writer) error {
	if s.client.Store.ID != nil {
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	for evt := range qrChan {
		if evt.Event != "code" {
			s.log.Info().Str("event", evt.Event).Msg("Login event")
			continue
		}
		q, err := qrcode.New(evt.Code, qrcode.Medium)
		if err != nil {
			fmt.Fprintf(out, "QR Code: %s\n", evt.Code)
			continue
		}
		fmt.Fprintln(out, "\n"+q.ToSmallString(false))
		fmt.Fprintln(out, "Scan the QR code above with WhatsApp: Settings > Linked Devices > Link a Device")
	}
	return nil
}

// Disconnect disconnects from WhatsApp
func (s *Service) Disconnect() {
	s.client.Disconnect()
}

// SendMessage sends a text message to a phone number
func (s *Service) SendMessage(ctx context.Context, phoneNumber, text string) error {
	phoneNumber = NormalizePhoneNumber(phoneNumber, s.cfg.CountryCode)

	resp, err := s.client.IsOnWhatsApp(ctx, []string{"+" + phoneNumber})
	if err != nil {
		return fmt.Errorf("failed to verify number on WhatsApp: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return fmt.Errorf("number %s is not registered on WhatsApp", phoneNumber)
	}
	jid := resp[0].JID

	s.log.Debug().Str("jid", jid.String()).Str("phone", phoneNumber).Msg("Sending message")

	sent, err := s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", jid, err)
	}

	s.log.Info().Str("id", sent.ID).Time("timestamp", sent.Timestamp).Msg("Message sent")
	return nil
}

// eventHandler handles incoming WhatsApp events
func (s *Service) eventHandler(evt interface{}) {
	switch evt := evt.(type) {
	case *events.Message:
		s.handleMessage(evt)
	case *events.Connected:
		s.log.Info().Msg("Connected to WhatsApp")
	case *events.Disconnected:
		s.log.Info().Msg("Disconnected from WhatsApp")
	case *events.LoggedOut:
		s.log.Info().Msg("Logged out from WhatsApp")
	}
}

// handleMessage passes text messages from others to the message handler
func (s *Service) handleMessage(evt *events.Message) {
	if evt.Info.IsFromMe || evt.Message == nil {
		return
	}

	msg := Message{
		Sender: senderNumber(evt.Info.Sender),
		Text:   evt.Message.GetConversation(),
	}
	if msg.Text == "" {
		msg.Text = evt.Message.GetExtendedTextMessage().GetText()
	}
	if msg.Text == "" {
		return
	}

	s.mu.RLock()
	handler := s.messageHandler
	s.mu.RUnlock()

	if handler == nil {
		s.log.Info().Str("sender", msg.Sender).Msg("Received message")
		return
	}
	if err := handler(context.Background(), msg); err != nil {
		s.log.Error().Err(err).Str("sender", msg.Sender).Msg("Error handling message")
	}
}

func senderNumber(jid types.JID) string {
	return NormalizePhoneNumber(jid.User, "")
}

// SetMessageHandler sets the handler for incoming messages
func (s *Service) SetMessageHandler(handler MessageHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messageHandler = handler
}
