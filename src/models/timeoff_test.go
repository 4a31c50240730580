package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeOffOverlapsRange(t *testing.T) {
	req := TimeOffRequest{
		StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}

	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }

	assert.True(t, req.OverlapsRange(day(12), day(13)))
	assert.True(t, req.OverlapsRange(day(8), day(10)), "touching the first day overlaps")
	assert.True(t, req.OverlapsRange(day(14), day(20)), "touching the last day overlaps")
	assert.True(t, req.OverlapsRange(day(1), day(31)))
	assert.False(t, req.OverlapsRange(day(1), day(9)))
	assert.False(t, req.OverlapsRange(day(15), day(20)))
}
