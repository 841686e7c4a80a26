package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"rsvp-table/internal/summary"
)

var classColors = map[string]*color.Color{
	ClassAttending: color.New(color.FgGreen),
	ClassPending:   color.New(color.FgYellow),
	ClassDeclined:  color.New(color.FgRed),
	ClassNotSent:   color.New(color.FgHiBlack),
}

// Paint colours text with the colour of a status class
func Paint(class, text string) string {
	if c, ok := classColors[class]; ok {
		return c.Sprint(text)
	}
	return text
}

// WriteTable prints rows as an aligned text table
func WriteTable(w io.Writer, views []RowView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEL\tID\tGUEST\tSENT\tSTATUS\tINVITED\tNOTES")
	for _, v := range views {
		sel := " "
		if v.Selected {
			sel = "x"
		}
		sent := "[ ]"
		if v.Sent {
			sent = "[x]"
		}
		status := string(v.Status.Value)
		if v.Status.Editable() {
			status = "<" + status + ">"
		}
		name := v.Name
		if v.GenderTag != "" {
			name += " " + v.GenderTag
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			sel, v.InvitationID, name, sent, Paint(v.Status.Class, status), dash(v.DateInvited), v.Notes)
	}
	return tw.Flush()
}

// WriteSummary prints the summary panel and both progress bars
func WriteSummary(w io.Writer, s summary.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tATTENDING\tPENDING\tDECLINED\tINVITED\t")
	for _, name := range []string{summary.BucketMale, summary.BucketFemale, summary.BucketTotal} {
		c, _ := s.Bucket(name)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t\n", name, c.Attending, c.Pending, c.Declined, c.Invited)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if s.Target.State != summary.TargetUnset {
		fmt.Fprintf(w, "Target   %s %3d%%  %s\n", bar(s.Target.Rounded), s.Target.Rounded, s.Target.Label())
	}
	b := s.Breakdown
	fmt.Fprintf(w, "Replies  %s %s %s  %s\n",
		Paint(ClassAttending, fmt.Sprintf("%d%%", b.AttendingPc)),
		Paint(ClassPending, fmt.Sprintf("%d%%", b.PendingPc)),
		Paint(ClassDeclined, fmt.Sprintf("%d%%", b.DeclinedPc)),
		b.Label())
	_, err := fmt.Fprintln(w, s.Heading())
	return err
}

func bar(pct int) string {
	const width = 20
	filled := pct * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
