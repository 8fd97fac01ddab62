package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"90m": 90 * time.Minute,
		"3d":  3 * Day,
		"2w":  2 * Week,
		" 1h": time.Hour,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "d", "3y", "xd"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseRelativeTime(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	got, err := ParseRelativeTime("-7d", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-7*Day), got)

	got, err = ParseRelativeTime("+30m", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), got)

	got, err = ParseRelativeTime("now", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = ParseRelativeTime("2024-01-01T00:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())

	_, err = ParseRelativeTime("7d", now)
	assert.Error(t, err)
}
