package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rsvp-table/internal/export"
	"rsvp-table/internal/models"
	"rsvp-table/internal/query"
	"rsvp-table/internal/render"
	"rsvp-table/internal/table"
)

var summaryArgs struct {
	search string
	gender string
	sent   string
	status string
	sort   string
	desc   bool
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the summary and the (filtered) invitation table",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, summaryCmd} {
		c.Flags().StringVar(&summaryArgs.search, "search", "", "Search text")
		c.Flags().StringVar(&summaryArgs.gender, "gender", "", "Only Male or Female guests")
		c.Flags().StringVar(&summaryArgs.sent, "sent", "", "Only sent (true) or unsent (false) rows")
		c.Flags().StringVar(&summaryArgs.status, "status", "", "Only rows with this status")
		c.Flags().StringVar(&summaryArgs.sort, "sort", "", `Sort key, e.g. "1:last" or "4:text"`)
		c.Flags().BoolVar(&summaryArgs.desc, "desc", false, "Sort descending")
	}
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	st := query.State{
		Search: summaryArgs.search,
		Filters: []query.Filter{
			query.ByAttr(render.AttrGender, summaryArgs.gender),
			query.ByAttr(render.AttrSent, summaryArgs.sent),
			query.ByColumn(render.ColStatus, summaryArgs.status),
		},
	}
	if summaryArgs.sort != "" {
		key, ok := query.ParseSortKey(summaryArgs.sort)
		if !ok {
			return fmt.Errorf("invalid sort key %q", summaryArgs.sort)
		}
		dir := query.Asc
		if summaryArgs.desc {
			dir = query.Desc
		}
		st.Sort = &query.Sort{Key: key, Dir: dir}
	}
	current.printTable(current.table.View(st))
	return nil
}

var sendCmd = &cobra.Command{
	Use:   "send <invitation-id>",
	Short: "Toggle the sent state of an invitation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		row, err := current.table.ToggleSent(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("✅ %s: %s\n", row.DisplayName(), row.Status)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <invitation-id> <Attending|Pending|Declined>",
	Short: "Set the response of a sent invitation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		status, err := models.ParseStatus(args[1])
		if err != nil {
			return err
		}
		row, err := current.table.SetStatus(cmd.Context(), id, status)
		if err != nil {
			return err
		}
		fmt.Printf("✅ %s: %s (%s)\n", row.DisplayName(), row.Status, row.DateResponded)
		return nil
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes <invitation-id> <text>",
	Short: "Replace the notes of an invitation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return current.table.EditNotes(id, strings.Join(args[1:], " "))
	},
}

var channelCmd = &cobra.Command{
	Use:   "channel <invitation-id> <channel>",
	Short: "Set the channel an invitation went out on",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		channel := ""
		if len(args) == 2 {
			channel = args[1]
		}
		_, err = current.table.EditChannel(cmd.Context(), id, channel)
		return err
	},
}

var removeArgs struct {
	yes bool
}

var removeCmd = &cobra.Command{
	Use:   "remove <invitation-id>",
	Short: "Remove a guest from the event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := current.table.Remove(cmd.Context(), id, confirmer(removeArgs.yes)); err != nil {
			return err
		}
		fmt.Println("✅ Removed")
		return nil
	},
}

var batchArgs struct {
	all bool
	yes bool
}

var batchCmd = &cobra.Command{
	Use:   "batch <send|unsend|attending|pending|declined|remove> [invitation-id...]",
	Short: "Apply an action to several invitations at once",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, err := table.ParseAction(args[0])
		if err != nil {
			return err
		}
		if batchArgs.all {
			current.table.SelectAll(true)
		}
		for _, v := range args[1:] {
			id, err := parseID(v)
			if err != nil {
				return err
			}
			if err := current.table.Select(id, true); err != nil {
				return err
			}
		}
		return runBatch(cmd, action, batchArgs.yes)
	},
}

func runBatch(cmd *cobra.Command, action table.Action, yes bool) error {
	res, err := current.table.BatchApply(cmd.Context(), action, confirmer(yes))
	fmt.Printf("%s: %d done, %d skipped, %d failed\n",
		res.Action, res.Succeeded(), res.Skipped(), len(res.Failed()))
	for _, o := range res.Failed() {
		fmt.Printf("  ❌ %s: %v\n", o.Name, o.Err)
	}
	return err
}

var pickArgs struct {
	search string
	gender string
	sort   string
	all    bool
}

var pickCmd = &cobra.Command{
	Use:   "pick [guest-id...]",
	Short: "Invite guests from the guest database",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := current.picker
		if err := p.Open(cmd.Context()); err != nil {
			return err
		}
		defer p.Close()

		p.SetQuery(pickArgs.search)
		p.SetGender(models.Gender(pickArgs.gender))
		if pickArgs.sort != "" {
			if err := p.SetSort(pickArgs.sort); err != nil {
				return err
			}
		}
		if pickArgs.all {
			p.SelectAllVisible(true)
		}
		for _, v := range args {
			id, err := parseID(v)
			if err != nil {
				return err
			}
			if err := p.Toggle(id); err != nil {
				return err
			}
		}

		if len(p.CheckedIDs()) == 0 {
			for _, e := range p.Visible() {
				mark := " "
				if e.Disabled {
					mark = "✓"
				}
				fmt.Printf("%s %4d  %s %s\n", mark, e.Guest.ID, e.Name(), e.Guest.Gender.Tag())
			}
			return nil
		}

		rows, err := p.Confirm(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("✅ Invited %d guests\n", len(rows))
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   `add "First Last[:Male|Female]"...`,
	Short: "Create new guests and invite them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		guests := make([]models.NewGuest, 0, len(args))
		for _, v := range args {
			guests = append(guests, parseNewGuest(v))
		}
		rows, err := current.table.BulkCreate(cmd.Context(), guests)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Created and invited %d guests\n", len(rows))
		return nil
	},
}

// parseNewGuest reads "First Last" with an optional ":Gender" suffix
func parseNewGuest(v string) models.NewGuest {
	name, gender, _ := strings.Cut(v, ":")
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	return models.NewGuest{
		FirstName: strings.TrimSpace(first),
		LastName:  strings.TrimSpace(last),
		Gender:    models.Gender(strings.TrimSpace(gender)),
	}
}

var editArgs struct {
	first  string
	last   string
	gender string
	notes  string
	me     bool
}

var detailCmd = &cobra.Command{
	Use:   "detail <invitation-id>",
	Short: "Show or edit the guest and notes of an invitation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		d, err := current.table.OpenDetail(id)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if !flags.Changed("first") && !flags.Changed("last") && !flags.Changed("gender") && !flags.Changed("notes") {
			printDetail(d)
			current.table.CloseDetail()
			return nil
		}
		if flags.Changed("first") {
			d.FirstName = editArgs.first
		}
		if flags.Changed("last") {
			d.LastName = editArgs.last
		}
		if flags.Changed("gender") {
			d.Gender = models.Gender(editArgs.gender)
		}
		if flags.Changed("notes") {
			d.Notes = editArgs.notes
		}
		row, err := current.table.SaveDetail(cmd.Context(), d)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Saved %s\n", row.DisplayName())
		return nil
	},
}

func printDetail(d table.Detail) {
	fmt.Printf("Guest:     %s %s %s\n", d.FirstName, d.LastName, d.Gender.Tag())
	status := string(d.Status)
	if !d.StatusEnabled {
		status += " (not sent)"
	}
	fmt.Printf("Status:    %s\n", status)
	fmt.Printf("Invited:   %s\n", d.DateInvited)
	fmt.Printf("Responded: %s\n", d.DateResponded)
	fmt.Printf("Notes:     %s\n", d.Notes)
}

var guestCmd = &cobra.Command{
	Use:   "guest <guest-id>",
	Short: "Show or edit a guest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		gd, err := current.table.OpenGuestDetail(cmd.Context(), id)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		changed := false
		if flags.Changed("first") {
			gd.FirstName, changed = editArgs.first, true
		}
		if flags.Changed("last") {
			gd.LastName, changed = editArgs.last, true
		}
		if flags.Changed("gender") {
			gd.Gender, changed = models.Gender(editArgs.gender), true
		}
		if flags.Changed("notes") {
			gd.Notes, changed = editArgs.notes, true
		}
		if flags.Changed("me") {
			gd.IsMe, changed = editArgs.me, true
		}
		if !changed {
			g := gd.Guest
			fmt.Printf("%s %s %s\n", g.FirstName, g.LastName, g.Gender.Tag())
			for _, inv := range g.Invitations {
				fmt.Printf("  %-30s %-10s %s\n", inv.EventName, inv.Status, inv.EventDate)
			}
			current.table.CloseGuestDetail()
			return nil
		}
		g, err := current.table.SaveGuestDetail(cmd.Context(), gd)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Saved %s %s\n", g.FirstName, g.LastName)
		return nil
	},
}

var eventNotesCmd = &cobra.Command{
	Use:   "event-notes <text>",
	Short: "Replace the notes of the event",
	RunE: func(cmd *cobra.Command, args []string) error {
		current.table.EditEventNotes(strings.Join(args, " "))
		return nil
	},
}

var exportArgs struct {
	format string
	out    string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the invitation table to xlsx, pdf or csv",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, name, _, err := export.Export(exportArgs.format, current.table.Event(), current.table.Rows(), current.table.Summary())
		if err != nil {
			return err
		}
		if exportArgs.out != "" {
			name = exportArgs.out
		}
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		fmt.Printf("✅ Exported %s\n", name)
		return nil
	},
}

func init() {
	removeCmd.Flags().BoolVarP(&removeArgs.yes, "yes", "y", false, "Do not ask for confirmation")

	batchCmd.Flags().BoolVar(&batchArgs.all, "all", false, "Select every row")
	batchCmd.Flags().BoolVarP(&batchArgs.yes, "yes", "y", false, "Do not ask for confirmation")

	pickCmd.Flags().StringVar(&pickArgs.search, "search", "", "Search text")
	pickCmd.Flags().StringVar(&pickArgs.gender, "gender", "", "Only Male or Female guests")
	pickCmd.Flags().StringVar(&pickArgs.sort, "sort", "", "first-asc, first-desc, last-asc, last-desc, gender-asc or gender-desc")
	pickCmd.Flags().BoolVar(&pickArgs.all, "all", false, "Pick every visible guest")

	for _, c := range []*cobra.Command{detailCmd, guestCmd} {
		c.Flags().StringVar(&editArgs.first, "first", "", "First name")
		c.Flags().StringVar(&editArgs.last, "last", "", "Last name")
		c.Flags().StringVar(&editArgs.gender, "gender", "", "Male or Female")
		c.Flags().StringVar(&editArgs.notes, "notes", "", "Notes")
	}
	guestCmd.Flags().BoolVar(&editArgs.me, "me", false, "Mark the guest as yourself")

	exportCmd.Flags().StringVarP(&exportArgs.format, "format", "f", export.FormatExcel, "xlsx, pdf or csv")
	exportCmd.Flags().StringVarP(&exportArgs.out, "out", "o", "", "Output file (default <event>_guests.<format>)")

	rootCmd.AddCommand(sendCmd, statusCmd, notesCmd, channelCmd, removeCmd, batchCmd,
		pickCmd, addCmd, detailCmd, guestCmd, eventNotesCmd, exportCmd)
}

func parseID(v string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", v)
	}
	return id, nil
}

// confirmer asks on stdin before removing rows; yes skips the question
func confirmer(yes bool) func(n int) bool {
	if yes {
		return nil
	}
	return func(n int) bool {
		fmt.Printf("Remove %d guest(s) from this event? [y/N] ", n)
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return answer == "y" || answer == "yes"
	}
}
