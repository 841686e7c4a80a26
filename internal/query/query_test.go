package query

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsvp-table/internal/models"
	"rsvp-table/internal/render"
)

func views() []render.RowView {
	return render.Rows([]models.Row{
		{InvitationID: 1, GuestID: 1, FirstName: "Alice", LastName: "Zed", Gender: models.GenderFemale, Status: models.StatusAttending},
		{InvitationID: 2, GuestID: 2, FirstName: "Bob", LastName: "Young", Gender: models.GenderMale, Status: models.StatusNotSent},
		{InvitationID: 3, GuestID: 3, FirstName: "Carla", LastName: "Xu", Gender: models.GenderFemale, Status: models.StatusPending},
		{InvitationID: 4, GuestID: 4, FirstName: "Dan", Gender: models.GenderMale, Status: models.StatusAttending},
	})
}

func ids(vs []render.RowView) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = v.InvitationID
	}
	return out
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	got := Apply(views(), State{Search: "ALI"})
	assert.Equal(t, []int{1}, ids(got))

	got = Apply(views(), State{Search: "attending"})
	assert.Equal(t, []int{1, 4}, ids(got))

	got = Apply(views(), State{Search: "(m)"})
	assert.Equal(t, []int{2, 4}, ids(got))
}

func TestSearchAndFilterCombine(t *testing.T) {
	female := ByAttr(render.AttrGender, "Female")
	st := State{Search: "a", Filters: []Filter{female}}
	assert.Equal(t, []int{1, 3}, ids(Apply(views(), st)))

	// clearing the search leaves only the dropdown filter
	st.Search = ""
	assert.Equal(t, []int{1, 3}, ids(Apply(views(), st)))

	// clearing the dropdown leaves only the search
	st = State{Search: "attending", Filters: []Filter{ByAttr(render.AttrGender, "")}}
	assert.Equal(t, []int{1, 4}, ids(Apply(views(), st)))

	st = State{Filters: []Filter{ByColumn(render.ColStatus, "Attending"), female}}
	assert.Equal(t, []int{1}, ids(Apply(views(), st)))

	st = State{Filters: []Filter{ByAttr(render.AttrSent, "false")}}
	assert.Equal(t, []int{2}, ids(Apply(views(), st)))
}

func TestSorterTogglesDirection(t *testing.T) {
	var s Sorter
	key := SortKey{Column: render.ColGuest, Type: SortText}

	asc := s.Select(key)
	assert.Equal(t, Asc, asc.Dir)
	first := Apply(views(), State{Sort: &asc})
	assert.Equal(t, []int{1, 2, 3, 4}, ids(first))

	desc := s.Select(key)
	assert.Equal(t, Desc, desc.Dir)
	second := Apply(views(), State{Sort: &desc})
	require.Len(t, second, len(first))

	reversed := ids(first)
	slices.Reverse(reversed)
	assert.Equal(t, reversed, ids(second))

	other := s.Select(SortKey{Column: render.ColGuest, Type: SortLast})
	assert.Equal(t, Asc, other.Dir, "a new key starts ascending")
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, other, cur)
}

func TestSortComparators(t *testing.T) {
	last := Sort{Key: SortKey{Column: render.ColGuest, Type: SortLast}, Dir: Asc}
	// Dan has no last name and sorts by first name
	assert.Equal(t, []int{4, 3, 2, 1}, ids(Apply(views(), State{Sort: &last})))

	gender := Sort{Key: SortKey{Type: SortGender}, Dir: Asc}
	assert.Equal(t, []int{1, 3, 2, 4}, ids(Apply(views(), State{Sort: &gender})))

	check := Sort{Key: SortKey{Column: render.ColSent, Type: SortCheck}, Dir: Desc}
	assert.Equal(t, []int{1, 3, 4, 2}, ids(Apply(views(), State{Sort: &check})))
}

func TestApplyIsIdempotent(t *testing.T) {
	srt := Sort{Key: SortKey{Column: render.ColStatus, Type: SortText}, Dir: Desc}
	st := State{Search: "a", Sort: &srt}

	once := Apply(views(), st)
	twice := Apply(once, st)
	assert.Equal(t, ids(once), ids(twice))
	assert.Equal(t, ids(once), ids(Apply(views(), st)))
}

func TestParseSortKey(t *testing.T) {
	k, ok := ParseSortKey("1:last")
	require.True(t, ok)
	assert.Equal(t, SortKey{Column: 1, Type: SortLast}, k)
	assert.Equal(t, "1:last", k.String())

	_, ok = ParseSortKey("x:text")
	assert.False(t, ok)
	_, ok = ParseSortKey("2:bogus")
	assert.False(t, ok)
	_, ok = ParseSortKey("")
	assert.False(t, ok)
}
