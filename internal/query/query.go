// Package query implements the client-local search, filter and sort
// operations applied to a rendered set of rows or picker entries.
package query

import (
	"slices"
	"strconv"
	"strings"
)

// Item is anything that can be searched, filtered and sorted
type Item interface {
	SearchText() string
	Attr(name string) string
	Column(i int) string
	Checked(i int) bool
}

// Filter is an equality predicate on either a data attribute or a column.
// An empty Value disables the filter.
type Filter struct {
	Attr   string
	Column int
	Value  string
}

// ByAttr filters on a data attribute
func ByAttr(attr, value string) Filter {
	return Filter{Attr: attr, Value: value}
}

// ByColumn filters on a column value
func ByColumn(col int, value string) Filter {
	return Filter{Column: col, Value: value}
}

func (f Filter) match(it Item) bool {
	if f.Value == "" {
		return true
	}
	if f.Attr != "" {
		return it.Attr(f.Attr) == f.Value
	}
	return strings.TrimSpace(it.Column(f.Column)) == f.Value
}

// SortType selects the comparator of a sort key
type SortType string

const (
	SortText   SortType = "text"
	SortLast   SortType = "last"
	SortGender SortType = "gender"
	SortCheck  SortType = "check"
	SortNum    SortType = "num"
	SortAttr   SortType = "attr"
)

// Direction of a sort
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortKey identifies what to sort by
type SortKey struct {
	Column int
	Type   SortType
	Attr   string
}

// String renders the key the way sort selectors encode it, e.g. "1:last"
func (k SortKey) String() string {
	if k.Type == SortAttr {
		return k.Attr
	}
	return strconv.Itoa(k.Column) + ":" + string(k.Type)
}

// ParseSortKey parses a "<column>:<type>" selector value
func ParseSortKey(v string) (SortKey, bool) {
	col, typ, ok := strings.Cut(v, ":")
	if !ok {
		return SortKey{}, false
	}
	n, err := strconv.Atoi(col)
	if err != nil {
		return SortKey{}, false
	}
	switch SortType(typ) {
	case SortText, SortLast, SortGender, SortCheck, SortNum:
	default:
		return SortKey{}, false
	}
	return SortKey{Column: n, Type: SortType(typ)}, true
}

// Sort is a key plus direction
type Sort struct {
	Key SortKey
	Dir Direction
}

// State is everything that decides which items are visible and in what order
type State struct {
	Search  string
	Filters []Filter
	Sort    *Sort
}

// Matches reports whether an item passes the search and every filter
func (s State) Matches(it Item) bool {
	q := strings.ToLower(s.Search)
	if q != "" && !strings.Contains(strings.ToLower(it.SearchText()), q) {
		return false
	}
	for _, f := range s.Filters {
		if !f.match(it) {
			return false
		}
	}
	return true
}

// Apply returns the visible items in display order. It never modifies items
// and gives the same result for the same input and state.
func Apply[T Item](items []T, s State) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if s.Matches(it) {
			out = append(out, it)
		}
	}
	if s.Sort != nil {
		SortItems(out, *s.Sort)
	}
	return out
}

// SortItems sorts in place, stable for equal keys
func SortItems[T Item](items []T, s Sort) {
	slices.SortStableFunc(items, func(a, b T) int {
		c := compare(a, b, s.Key)
		if s.Dir == Desc {
			return -c
		}
		return c
	})
}

func compare(a, b Item, k SortKey) int {
	if k.Type == SortNum {
		x, y := num(a.Column(k.Column)), num(b.Column(k.Column))
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(sortValue(a, k), sortValue(b, k))
}

func sortValue(it Item, k SortKey) string {
	switch k.Type {
	case SortGender:
		return strings.ToLower(it.Attr("data-gender"))
	case SortAttr:
		return strings.ToLower(it.Attr(k.Attr))
	case SortCheck:
		if it.Checked(k.Column) {
			return "1"
		}
		return "0"
	case SortLast:
		return lastNameKey(it.Column(k.Column))
	}
	return strings.ToLower(strings.TrimSpace(it.Column(k.Column)))
}

// lastNameKey sorts by everything after the first word, falling back to the
// whole name for single-word names.
func lastNameKey(name string) string {
	name = strings.TrimSpace(name)
	if _, rest, ok := strings.Cut(name, " "); ok && strings.TrimSpace(rest) != "" {
		return strings.ToLower(strings.TrimSpace(rest))
	}
	return strings.ToLower(name)
}

func num(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// Sorter remembers the last chosen key. Choosing the same key again flips
// the direction; a new key starts ascending.
type Sorter struct {
	last SortKey
	dir  Direction
	set  bool
}

// Select picks a key and returns the resulting sort
func (s *Sorter) Select(k SortKey) Sort {
	if s.set && s.last == k {
		if s.dir == Asc {
			s.dir = Desc
		} else {
			s.dir = Asc
		}
	} else {
		s.last, s.dir, s.set = k, Asc, true
	}
	return Sort{Key: k, Dir: s.dir}
}

// Current returns the active sort, if any
func (s *Sorter) Current() (Sort, bool) {
	if !s.set {
		return Sort{}, false
	}
	return Sort{Key: s.last, Dir: s.dir}, true
}

// Reset forgets the last key
func (s *Sorter) Reset() {
	*s = Sorter{}
}
