package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartOfWeek(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   time.Time
	}{
		{"monday", monday},
		{"wednesday afternoon", time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)},
		{"saturday", time.Date(2026, 3, 7, 23, 59, 0, 0, time.UTC)},
		{"sunday belongs to preceding monday", time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, monday, StartOfWeek(tc.in))
		})
	}
}
