package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"rsvp-table/internal/api"
	"rsvp-table/internal/config"
	"rsvp-table/internal/handler"
	"rsvp-table/internal/logging"
	"rsvp-table/internal/picker"
	"rsvp-table/internal/render"
	"rsvp-table/internal/table"
	"rsvp-table/internal/whatsapp"
)

// app is what every command works on
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	client *api.Client
	table  *table.Table
	picker *picker.Picker
	wa     *whatsapp.Service
}

var (
	current app

	rootArgs struct {
		eventID int
		apiURL  string
		target  int
	}
)

func init() {
	rootCmd.PersistentFlags().IntVar(&rootArgs.eventID, "event", 0, "Event ID (default $RSVP_EVENT_ID)")
	rootCmd.PersistentFlags().StringVar(&rootArgs.apiURL, "api", "", "Backend URL (default $RSVP_API_URL)")
	rootCmd.PersistentFlags().IntVar(&rootArgs.target, "target", 0, "Attendance target override")
}

var rootCmd = &cobra.Command{
	Use:           "rsvp-table",
	Short:         "Manage the invitation table of an event",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return current.setup(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		current.teardown()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSummary(cmd, args)
	},
}

func (a *app) setup(ctx context.Context) error {
	a.cfg = config.LoadConfig()
	if rootArgs.eventID > 0 {
		a.cfg.EventID = rootArgs.eventID
	}
	if rootArgs.apiURL != "" {
		a.cfg.APIURL = rootArgs.apiURL
	}
	if rootArgs.target > 0 {
		a.cfg.Target = rootArgs.target
	}
	if a.cfg.EventID <= 0 {
		return fmt.Errorf("no event selected: set RSVP_EVENT_ID or pass --event")
	}

	a.log = logging.New(logging.Options{Level: a.cfg.LogLevel, File: a.cfg.LogFile})
	a.client = api.NewClient(api.Config{
		BaseURL:   a.cfg.APIURL,
		Token:     a.cfg.APIToken,
		CSRFToken: a.cfg.CSRFToken,
		Timeout:   a.cfg.RequestTimeout,
	}, a.log)

	opts := table.Options{
		EventID:         a.cfg.EventID,
		Target:          a.cfg.Target,
		NotesDelay:      a.cfg.NotesDebounce,
		EventNotesDelay: a.cfg.EventNotesDebounce,
		BatchLimit:      a.cfg.BatchConcurrency,
	}

	if a.cfg.WhatsAppEnabled {
		wa, err := whatsapp.NewService(ctx, whatsapp.Config{
			DataDir:     a.cfg.WhatsAppDataDir,
			CountryCode: a.cfg.WhatsAppCountryCode,
		}, a.log)
		if err != nil {
			return fmt.Errorf("failed to initialize WhatsApp: %w", err)
		}
		if err := wa.Connect(ctx, os.Stdout); err != nil {
			return fmt.Errorf("failed to connect to WhatsApp: %w", err)
		}
		a.wa = wa
	}

	a.table = table.New(a.client, opts, a.log)
	if err := a.table.Load(ctx); err != nil {
		return err
	}
	a.picker = picker.New(a.client, a.table, a.cfg.EventID, &a.table.Modals, a.log)

	if a.wa != nil {
		a.table.SetNotifier(handler.NewDigestNotifier(a.wa, a.table, a.handlerConfig(), a.log))
		commands := handler.NewCommandHandler(a.wa, a.table, a.handlerConfig(), a.log)
		a.wa.SetMessageHandler(commands.HandleMessage)
	}
	return nil
}

func (a *app) handlerConfig() handler.Config {
	return handler.Config{Host: a.cfg.WhatsAppNotify, CountryCode: a.cfg.WhatsAppCountryCode}
}

func (a *app) teardown() {
	if a.table != nil {
		a.table.FlushPending()
	}
	if a.wa != nil {
		a.wa.Disconnect()
	}
}

func (a *app) printTable(views []render.RowView) {
	s := a.table.Summary()
	ev := a.table.Event()
	fmt.Printf("\n%s (%s)\n\n", ev.Name, ev.Date)
	_ = render.WriteSummary(os.Stdout, s)
	fmt.Println()
	_ = render.WriteTable(os.Stdout, views)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
