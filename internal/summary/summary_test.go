package summary

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsvp-table/internal/models"
)

func r(first string, g models.Gender, s models.Status) models.Row {
	return models.Row{FirstName: first, Gender: g, Status: s}
}

func TestComputeScenario(t *testing.T) {
	rows := []models.Row{
		r("Alice", models.GenderMale, models.StatusNotSent),
		r("Beth", models.GenderFemale, models.StatusPending),
	}

	s := Compute(rows, 1)

	assert.Equal(t, 0, s.Total.Attending)
	assert.Equal(t, 1, s.Total.Pending)
	assert.Equal(t, 1, s.Total.Invited)
	assert.Equal(t, 1, s.Total.NotSent)
	assert.Equal(t, TargetUnder, s.Target.State)
	assert.Equal(t, "0/1", s.Target.Label())
	assert.Equal(t, 0, s.Target.Rounded)
	assert.Equal(t, "Guest List (2)", s.Heading())

	// Alice is sent and comes back Pending
	rows[0].Status = models.StatusPending
	s = Compute(rows, 1)
	assert.Equal(t, 2, s.Total.Invited)
}

func TestTargetStates(t *testing.T) {
	tests := []struct {
		name      string
		attending int
		target    int
		state     TargetState
		label     string
		rounded   int
	}{
		{"no target", 3, 0, TargetUnset, "", 0},
		{"under", 1, 3, TargetUnder, "1/3", 33},
		{"met", 3, 3, TargetMet, "✓ 3/3", 100},
		{"over", 4, 3, TargetOver, "⚠ 4/3", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []models.Row
			for i := 0; i < tt.attending; i++ {
				rows = append(rows, r("x", models.GenderFemale, models.StatusAttending))
			}
			s := Compute(rows, tt.target)
			assert.Equal(t, tt.state, s.Target.State)
			assert.Equal(t, tt.label, s.Target.Label())
			assert.Equal(t, tt.rounded, s.Target.Rounded)
			assert.LessOrEqual(t, s.Target.Percent, 100.0)
		})
	}
}

func TestStatusBarRoundsIndependently(t *testing.T) {
	rows := []models.Row{
		r("a", models.GenderMale, models.StatusAttending),
		r("b", models.GenderMale, models.StatusPending),
		r("c", models.GenderFemale, models.StatusDeclined),
	}

	s := Compute(rows, 0)
	assert.Equal(t, 33, s.Breakdown.AttendingPc)
	assert.Equal(t, 33, s.Breakdown.PendingPc)
	assert.Equal(t, 33, s.Breakdown.DeclinedPc)
	assert.Equal(t, "3 invited", s.Breakdown.Label())

	empty := Compute(nil, 5)
	assert.Equal(t, StatusBar{}, empty.Breakdown)
	assert.Equal(t, "0/5", empty.Target.Label())
}

func TestUnsetGenderCountsAsMale(t *testing.T) {
	s := Compute([]models.Row{r("a", models.GenderUnset, models.StatusAttending)}, 0)
	assert.Equal(t, 1, s.Male.Attending)
	assert.Equal(t, 1, s.Total.Attending)
}

func TestComputeIsOrderIndependent(t *testing.T) {
	statuses := []models.Status{models.StatusNotSent, models.StatusPending, models.StatusAttending, models.StatusDeclined}
	genders := []models.Gender{models.GenderMale, models.GenderFemale, models.GenderUnset}

	rnd := rand.New(rand.NewSource(7))
	rows := make([]models.Row, 40)
	for i := range rows {
		rows[i] = r("g", genders[rnd.Intn(len(genders))], statuses[rnd.Intn(len(statuses))])
	}
	want := Compute(rows, 10)

	for i := 0; i < 20; i++ {
		rnd.Shuffle(len(rows), func(a, b int) { rows[a], rows[b] = rows[b], rows[a] })
		got := Compute(rows, 10)
		require.Equal(t, want, got)

		for _, c := range []Counts{got.Male, got.Female, got.Total} {
			assert.Equal(t, c.Invited, c.Attending+c.Pending+c.Declined)
		}
		assert.Equal(t, got.Total.Attending, got.Male.Attending+got.Female.Attending)
		assert.Equal(t, got.Total.Pending, got.Male.Pending+got.Female.Pending)
		assert.Equal(t, got.Total.Declined, got.Male.Declined+got.Female.Declined)
		assert.Equal(t, got.Total.NotSent, got.Male.NotSent+got.Female.NotSent)
	}
}
