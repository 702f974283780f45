// Package seats models seat-label collections as proper sets.  A seat
// label is a short token such as "A1" identifying one physical seat in a
// screening.  Availability and reservation logic relies on set algebra
// (subset, union, difference) instead of ad hoc slice manipulation so the
// inventory invariants stay mechanically checkable.  In the database a set
// is persisted as a single comma-delimited string column; Parse and Format
// convert between the two representations.
package seats

import (
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Set is the concrete set type used throughout the codebase for seat
// labels.  It is an alias so callers get the full golang-set API
// (Union, Difference, IsSubset, Equal, Contains) without a wrapper.
type Set = mapset.Set[string]

// New builds a Set from the given labels.  Labels are trimmed and
// upper-cased; empty labels are dropped.  Duplicates collapse naturally.
func New(labels ...string) Set {
	s := mapset.NewSet[string]()
	for _, l := range labels {
		if n := Normalize(l); n != "" {
			s.Add(n)
		}
	}
	return s
}

// Normalize trims surrounding whitespace and upper-cases a label.  "a1 "
// and "A1" refer to the same seat.
func Normalize(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// Parse decodes the delimited database representation of a seat set.  An
// empty or whitespace-only column yields an empty set, which is a valid
// state for a sold-out screen.
func Parse(column string) Set {
	if strings.TrimSpace(column) == "" {
		return mapset.NewSet[string]()
	}
	return New(strings.Split(column, ",")...)
}

// Format encodes a set into its delimited database representation.  Labels
// are sorted so the stored column is deterministic and diffable.
func Format(s Set) string {
	return strings.Join(Labels(s), ",")
}

// Labels returns the members of a set as a sorted slice.  Handlers use it
// to produce stable JSON output.
func Labels(s Set) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}
