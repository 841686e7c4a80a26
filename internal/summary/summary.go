// Package summary folds invitation rows into per-gender status counts and
// the two progress bars shown above the guest list.
package summary

import (
	"fmt"
	"math"

	"rsvp-table/internal/models"
)

// Buckets in display order
const (
	BucketMale   = "male"
	BucketFemale = "female"
	BucketTotal  = "total"
)

// Counts of one bucket. Invited is always Attending+Pending+Declined.
type Counts struct {
	Attending int `json:"attending"`
	Pending   int `json:"pending"`
	Declined  int `json:"declined"`
	NotSent   int `json:"not_sent"`
	Invited   int `json:"invited"`
}

func (c *Counts) add(s models.Status) {
	switch s {
	case models.StatusAttending:
		c.Attending++
	case models.StatusPending:
		c.Pending++
	case models.StatusDeclined:
		c.Declined++
	default:
		c.NotSent++
	}
}

func (c Counts) plus(o Counts) Counts {
	return Counts{
		Attending: c.Attending + o.Attending,
		Pending:   c.Pending + o.Pending,
		Declined:  c.Declined + o.Declined,
		NotSent:   c.NotSent + o.NotSent,
	}
}

func (c *Counts) finish() {
	c.Invited = c.Attending + c.Pending + c.Declined
}

// TargetState tells how attendance compares to the event target
type TargetState int

const (
	TargetUnset TargetState = iota
	TargetUnder
	TargetMet
	TargetOver
)

func (s TargetState) String() string {
	switch s {
	case TargetUnder:
		return "under"
	case TargetMet:
		return "at-target"
	case TargetOver:
		return "over-target"
	}
	return "unset"
}

// TargetBar is progress bar 1: attending against target
type TargetBar struct {
	Target    int         `json:"target"`
	Attending int         `json:"attending"`
	Percent   float64     `json:"percent"`
	Rounded   int         `json:"rounded"`
	State     TargetState `json:"state"`
}

// Label renders the bar value, e.g. "0/1", "✓ 4/4", "⚠ 5/4"
func (b TargetBar) Label() string {
	if b.State == TargetUnset {
		return ""
	}
	prefix := ""
	switch b.State {
	case TargetMet:
		prefix = "✓ "
	case TargetOver:
		prefix = "⚠ "
	}
	return fmt.Sprintf("%s%d/%d", prefix, b.Attending, b.Target)
}

// StatusBar is progress bar 2: response breakdown of invited guests.
// Percentages are rounded independently and may not add up to 100.
type StatusBar struct {
	Invited     int `json:"invited"`
	AttendingPc int `json:"attending_pct"`
	PendingPc   int `json:"pending_pct"`
	DeclinedPc  int `json:"declined_pct"`
}

// Label renders the bar value, e.g. "3 invited"
func (b StatusBar) Label() string {
	return fmt.Sprintf("%d invited", b.Invited)
}

// Summary is the aggregate over the whole table
type Summary struct {
	Male      Counts    `json:"male"`
	Female    Counts    `json:"female"`
	Total     Counts    `json:"total"`
	Rows      int       `json:"rows"`
	Target    TargetBar `json:"target_bar"`
	Breakdown StatusBar `json:"status_bar"`
}

// Bucket returns the counts of a named bucket
func (s Summary) Bucket(name string) (Counts, bool) {
	switch name {
	case BucketMale:
		return s.Male, true
	case BucketFemale:
		return s.Female, true
	case BucketTotal:
		return s.Total, true
	}
	return Counts{}, false
}

// Heading is the guest list title including the row count
func (s Summary) Heading() string {
	return fmt.Sprintf("Guest List (%d)", s.Rows)
}

// Compute folds rows into a Summary. target <= 0 leaves the target bar unset.
func Compute(rows []models.Row, target int) Summary {
	var s Summary
	s.Rows = len(rows)

	for _, r := range rows {
		switch r.Gender.Bucket() {
		case BucketMale:
			s.Male.add(r.Status)
		case BucketFemale:
			s.Female.add(r.Status)
		}
	}

	s.Total = s.Male.plus(s.Female)
	s.Male.finish()
	s.Female.finish()
	s.Total.finish()

	s.Target = targetBar(s.Total.Attending, target)
	s.Breakdown = statusBar(s.Total)
	return s
}

func targetBar(attending, target int) TargetBar {
	b := TargetBar{Target: target, Attending: attending}
	if target <= 0 {
		b.Target = 0
		return b
	}

	b.Percent = math.Min(100, float64(attending)/float64(target)*100)
	b.Rounded = int(math.Round(b.Percent))
	switch {
	case attending > target:
		b.State = TargetOver
	case attending == target:
		b.State = TargetMet
	default:
		b.State = TargetUnder
	}
	return b
}

func statusBar(t Counts) StatusBar {
	b := StatusBar{Invited: t.Invited}
	if t.Invited == 0 {
		return b
	}
	pct := func(n int) int {
		return int(math.Round(float64(n) / float64(t.Invited) * 100))
	}
	b.AttendingPc = pct(t.Attending)
	b.PendingPc = pct(t.Pending)
	b.DeclinedPc = pct(t.Declined)
	return b
}
