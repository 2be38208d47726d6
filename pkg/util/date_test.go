package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2024-10-10T10:10:10Z", time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)},
		{"space separated", "2024-10-10 10:10:10", time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)},
		{"date only", "2024-10-10", time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTime(tt.input)
			require.True(t, ok)
			assert.True(t, got.Equal(tt.want), "got %v", got)
		})
	}
}

func TestParseTimeUnixSeconds(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	require.True(t, ok)
	assert.Equal(t, ts, got.Unix())
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "not-a-date", "-5"} {
		_, ok := ParseTime(s)
		assert.False(t, ok, "input %q", s)
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	assert.True(t, ParseTimeDefault("", def).Equal(def))
	assert.True(t, ParseTimeDefault("2023-01-01", def).Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDayOf(t *testing.T) {
	in := time.Date(2024, 10, 10, 23, 59, 59, 0, time.FixedZone("plus2", 2*3600))
	got := DayOf(in)
	assert.Equal(t, time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}
