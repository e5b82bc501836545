// internal/api/dates_test.go
package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateAcceptsBackendLayouts(t *testing.T) {
	for _, raw := range []string{
		"2025-03-10",
		"2025-03-10T14:30:00",
		"2025-03-10T14:30",
		"2025-03-10T14:30:00Z",
		"2025-03-10T14:30:00.123456Z",
	} {
		parsed, err := ParseDate(raw)
		require.NoError(t, err, "layout %q", raw)
		assert.Equal(t, 2025, parsed.Year())
		assert.Equal(t, time.March, parsed.Month())
		assert.Equal(t, 10, parsed.Day())
	}

	_, err := ParseDate("10/03/2025")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateFormatting(t *testing.T) {
	d := time.Date(2025, 3, 5, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "2025-03-05", FormatWire(d))
	assert.Equal(t, "Mar 05, 2025", FormatDisplay(d))
	assert.Equal(t, "March 5, 2025", FormatLong(d))
}

func TestDateOnlyStripsTheTimeComponent(t *testing.T) {
	d := time.Date(2025, 3, 5, 23, 59, 59, 999, time.UTC)
	day := DateOnly(d)

	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), day)
	assert.True(t, DateOnly(d).Equal(DateOnly(d.Add(-23*time.Hour))))
}
