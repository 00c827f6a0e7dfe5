package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"slash separators", "15/03/2024", "2024-03-15T00:00:00"},
		{"two digit year", "15/03/24", "2024-03-15T00:00:00"},
		{"dash separators", "15-03-2024", "2024-03-15T00:00:00"},
		{"single digit day and month", "1/9/25", "2025-09-01T00:00:00"},
		{"invalid calendar date unchanged", "32/13/2024", "32/13/2024"},
		{"not a date unchanged", "mañana", "mañana"},
		{"missing year unchanged", "15/03", "15/03"},
		{"empty unchanged", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeDate(tc.in))
		})
	}
}
