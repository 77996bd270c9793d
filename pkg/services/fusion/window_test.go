package fusion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandFetchWindow(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	// A single UK day in October 2024 (BST, UTC+1).
	start := time.Date(2024, 10, 13, 0, 0, 0, 0, london)
	end := time.Date(2024, 10, 13, 23, 59, 59, 0, london)

	fetchStart, fetchEnd, err := expandFetchWindow(start, end)
	require.NoError(t, err)

	t.Run("start reaches back to the earliest regional midnight", func(t *testing.T) {
		// Sydney's 2024-10-13 starts at 2024-10-12T13:00Z (AEDT, UTC+11).
		sydneyDayStart := time.Date(2024, 10, 12, 13, 0, 0, 0, time.UTC)
		assert.False(t, fetchStart.After(sydneyDayStart))
	})

	t.Run("end reaches forward to the latest regional day end", func(t *testing.T) {
		// Chicago's 2024-10-12 (the local day containing the UK window start
		// is the 12th only for zones behind UTC; the local day containing
		// the window end is the 13th) ends at 2024-10-14T04:59:59Z (CDT).
		chicagoDayEnd := time.Date(2024, 10, 14, 4, 59, 59, 0, time.UTC)
		assert.False(t, fetchEnd.Before(chicagoDayEnd))
	})

	t.Run("window is never narrower than requested", func(t *testing.T) {
		assert.False(t, fetchStart.After(start.UTC()))
		assert.False(t, fetchEnd.Before(end.UTC()))
	})
}
