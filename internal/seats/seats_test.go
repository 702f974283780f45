package seats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moviedesk/cinema-booking/internal/seats"
)

func TestNewNormalizesAndDeduplicates(t *testing.T) {
	s := seats.New("a1", "A1", " b2 ", "", "C3")

	assert.Equal(t, 3, s.Cardinality())
	assert.True(t, s.Contains("A1"))
	assert.True(t, s.Contains("B2"))
	assert.True(t, s.Contains("C3"))
}

func TestParseFormatRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		column string
		want   []string
	}{
		{"empty column", "", []string{}},
		{"whitespace column", "   ", []string{}},
		{"single seat", "A1", []string{"A1"}},
		{"unsorted input", "C3,A1,B2", []string{"A1", "B2", "C3"}},
		{"messy input", " b2 ,a1,,A1", []string{"A1", "B2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := seats.Parse(tc.column)
			assert.Equal(t, tc.want, seats.Labels(s))
		})
	}
}

func TestFormatIsSorted(t *testing.T) {
	s := seats.New("D4", "A1", "C3", "B2")
	assert.Equal(t, "A1,B2,C3,D4", seats.Format(s))
}

func TestSetAlgebraForInventory(t *testing.T) {
	layout := seats.New("A1", "A2", "A3")
	requested := seats.New("A1", "A2")

	assert.True(t, requested.IsSubset(layout))

	remaining := layout.Difference(requested)
	assert.Equal(t, []string{"A3"}, seats.Labels(remaining))

	// Releasing seats back is an idempotent union.
	restored := remaining.Union(requested).Union(requested)
	assert.True(t, restored.Equal(layout))
}
