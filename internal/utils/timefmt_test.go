package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDisplayTime(t *testing.T) {
	got, err := ParseDisplayTime("February 16, 2024 12:12:12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 16, 12, 12, 12, 0, time.UTC), got)

	// unpadded day and surrounding whitespace are accepted
	got, err = ParseDisplayTime("  February 6, 2024 08:00:00 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 6, 8, 0, 0, 0, time.UTC), got)
}

func TestParseDisplayTime_Invalid(t *testing.T) {
	for _, bad := range []string{"", "2024-02-16 12:12:12", "Feb 16, 2024 12:12:12", "February 16 2024"} {
		_, err := ParseDisplayTime(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestFormatDisplayTime(t *testing.T) {
	assert.Equal(t, "February 16, 2024 12:12:12", FormatDisplayTime("2024-02-16 12:12:12"))
	assert.Equal(t, "September 02, 2026 18:00:00", FormatDisplayTime("2026-09-02 18:00:00"))
}

func TestFormatDisplayTime_MalformedPassesThrough(t *testing.T) {
	assert.Equal(t, "not a timestamp", FormatDisplayTime("not a timestamp"))
}

func TestToDBTime_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	in := time.Date(2026, 9, 2, 21, 0, 0, 0, loc)
	assert.Equal(t, "2026-09-02 18:00:00", ToDBTime(in))
}

func TestDisplayRoundTrip(t *testing.T) {
	in := "February 16, 2024 12:12:12"
	parsed, err := ParseDisplayTime(in)
	require.NoError(t, err)
	assert.Equal(t, in, FormatDisplayTime(ToDBTime(parsed)))
}

func TestIsAlphanumeric(t *testing.T) {
	assert.True(t, IsAlphanumeric("A102"))
	assert.True(t, IsAlphanumeric("7"))
	assert.False(t, IsAlphanumeric(""))
	assert.False(t, IsAlphanumeric("A-102"))
	assert.False(t, IsAlphanumeric("room 1"))
}
