package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rsvp-table/internal/models"
	"rsvp-table/internal/query"
	"rsvp-table/internal/render"
	"rsvp-table/internal/table"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Work on the table from a menu",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if current.wa != nil {
			fmt.Println("✅ Connected to WhatsApp, listening for host commands.")
		}
		startCLI(cmd.Context(), bufio.NewScanner(os.Stdin))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

// session is the state the menu keeps between commands
type session struct {
	scanner *bufio.Scanner
	state   query.State
	sorter  query.Sorter
}

func startCLI(ctx context.Context, scanner *bufio.Scanner) {
	s := &session{scanner: scanner}

	for {
		fmt.Println("\nCommands:")
		fmt.Println("  1. View table")
		fmt.Println("  2. Search / filter")
		fmt.Println("  3. Sort")
		fmt.Println("  4. Toggle sent")
		fmt.Println("  5. Set status")
		fmt.Println("  6. Edit notes")
		fmt.Println("  7. Select rows")
		fmt.Println("  8. Batch action")
		fmt.Println("  9. Add guests")
		fmt.Println("  10. Remove guest")
		fmt.Println("  11. View guests by status")
		fmt.Println("  12. Exit")
		fmt.Print("\nEnter command (1-12): ")

		if ctx.Err() != nil || !scanner.Scan() {
			return
		}

		var err error
		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			current.printTable(current.table.View(s.state))
		case "2":
			s.filter()
		case "3":
			err = s.sort()
		case "4":
			err = s.toggleSent(ctx)
		case "5":
			err = s.setStatus(ctx)
		case "6":
			err = s.editNotes()
		case "7":
			err = s.selectRows()
		case "8":
			err = s.batch(ctx)
		case "9":
			err = s.addGuests(ctx)
		case "10":
			err = s.remove(ctx)
		case "11":
			err = s.viewByStatus()
		case "12":
			fmt.Println("Exiting...")
			return
		default:
			fmt.Println("Invalid command. Please try again.")
		}
		if err != nil {
			fmt.Printf("❌ %v\n", err)
		}
	}
}

func (s *session) ask(prompt string) (string, bool) {
	fmt.Print(prompt)
	if !s.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.scanner.Text()), true
}

func (s *session) askID(prompt string) (int, error) {
	v, ok := s.ask(prompt)
	if !ok {
		return 0, table.ErrCancelled
	}
	return parseID(v)
}

func (s *session) filter() {
	search, _ := s.ask("Search (empty for all): ")
	gender, _ := s.ask("Gender (Male/Female, empty for all): ")
	status, _ := s.ask("Status (empty for all): ")
	s.state.Search = search
	s.state.Filters = []query.Filter{
		query.ByAttr(render.AttrGender, gender),
		query.ByColumn(render.ColStatus, status),
	}
	current.printTable(current.table.View(s.state))
}

func (s *session) sort() error {
	fmt.Println("  1. Guest (last name)")
	fmt.Println("  2. Sent")
	fmt.Println("  3. Status")
	fmt.Println("  4. Date invited")
	choice, _ := s.ask("Sort by (1-4, same again flips): ")

	var key query.SortKey
	switch choice {
	case "1":
		key = query.SortKey{Column: render.ColGuest, Type: query.SortLast}
	case "2":
		key = query.SortKey{Column: render.ColSent, Type: query.SortCheck}
	case "3":
		key = query.SortKey{Column: render.ColStatus, Type: query.SortText}
	case "4":
		key = query.SortKey{Type: query.SortAttr, Attr: render.AttrDateInvited}
	default:
		return errors.New("invalid choice")
	}
	sort := s.sorter.Select(key)
	s.state.Sort = &sort
	current.printTable(current.table.View(s.state))
	return nil
}

func (s *session) toggleSent(ctx context.Context) error {
	id, err := s.askID("Invitation ID: ")
	if err != nil {
		return err
	}
	row, err := current.table.ToggleSent(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("✅ %s: %s\n", row.DisplayName(), row.Status)
	return nil
}

func (s *session) setStatus(ctx context.Context) error {
	id, err := s.askID("Invitation ID: ")
	if err != nil {
		return err
	}
	v, _ := s.ask("Status (Attending/Pending/Declined): ")
	status, err := models.ParseStatus(v)
	if err != nil {
		return err
	}
	row, err := current.table.SetStatus(ctx, id, status)
	if err != nil {
		return err
	}
	fmt.Printf("✅ %s: %s\n", row.DisplayName(), row.Status)
	return nil
}

func (s *session) editNotes() error {
	id, err := s.askID("Invitation ID: ")
	if err != nil {
		return err
	}
	notes, _ := s.ask("Notes: ")
	return current.table.EditNotes(id, notes)
}

func (s *session) selectRows() error {
	v, _ := s.ask("Invitation IDs (space separated, \"all\" or \"none\"): ")
	switch v {
	case "all":
		current.table.SelectAll(true)
	case "none":
		current.table.ClearSelection()
	default:
		for _, f := range strings.Fields(v) {
			id, err := parseID(f)
			if err != nil {
				return err
			}
			row, err := current.table.Row(id)
			if err != nil {
				return err
			}
			if err := current.table.Select(id, !row.Selected); err != nil {
				return err
			}
		}
	}
	fmt.Printf("%d selected\n", current.table.BatchBar().Count)
	return nil
}

func (s *session) batch(ctx context.Context) error {
	bar := current.table.BatchBar()
	if !bar.Visible {
		return errors.New("no rows selected")
	}
	v, _ := s.ask(fmt.Sprintf("Action for %d rows (send/unsend/attending/pending/declined/remove): ", bar.Count))
	action, err := table.ParseAction(v)
	if err != nil {
		return err
	}
	res, err := current.table.BatchApply(ctx, action, s.confirm)
	fmt.Printf("%s: %d done, %d skipped, %d failed\n",
		res.Action, res.Succeeded(), res.Skipped(), len(res.Failed()))
	return err
}

func (s *session) confirm(n int) bool {
	v, _ := s.ask(fmt.Sprintf("Remove %d guest(s) from this event? [y/N] ", n))
	v = strings.ToLower(v)
	return v == "y" || v == "yes"
}

func (s *session) addGuests(ctx context.Context) error {
	fmt.Println("One guest per line as \"First Last:Gender\", empty line to finish.")
	var guests []models.NewGuest
	for {
		v, ok := s.ask("> ")
		if !ok || v == "" {
			break
		}
		guests = append(guests, parseNewGuest(v))
	}
	rows, err := current.table.BulkCreate(ctx, guests)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Created and invited %d guests\n", len(rows))
	return nil
}

func (s *session) viewByStatus() error {
	v, _ := s.ask("Status (Not Sent/Attending/Pending/Declined): ")
	status, err := models.ParseStatus(v)
	if err != nil {
		return err
	}
	rows := current.table.RowsByStatus(status)
	if len(rows) == 0 {
		fmt.Printf("\nNo guests with status '%s'.\n", status)
		return nil
	}
	fmt.Printf("\n📋 Guests with status '%s' (%d total):\n", status, len(rows))
	fmt.Println(strings.Repeat("-", 60))
	for _, r := range rows {
		fmt.Printf("Name: %s %s\n", r.DisplayName(), r.Gender.Tag())
		if r.DateInvited != "" {
			fmt.Printf("Invited: %s\n", r.DateInvited)
		}
		if r.DateResponded != "" {
			fmt.Printf("Responded: %s\n", r.DateResponded)
		}
		fmt.Println(strings.Repeat("-", 60))
	}
	return nil
}

func (s *session) remove(ctx context.Context) error {
	id, err := s.askID("Invitation ID: ")
	if err != nil {
		return err
	}
	return current.table.Remove(ctx, id, s.confirm)
}
