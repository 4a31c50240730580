package utils

import (
	"os"
	"testing"
	"time"

	"swimops/src/types"

	"github.com/stretchr/testify/assert"
)

func TestHasRole(t *testing.T) {
	roles := []string{types.ROLE_PARENT, types.ROLE_INSTRUCTOR}
	assert.True(t, HasRole(roles, types.ROLE_INSTRUCTOR))
	assert.True(t, HasRole(roles, types.ROLE_ADMIN, types.ROLE_PARENT))
	assert.False(t, HasRole(roles, types.ROLE_ADMIN))
	assert.False(t, HasRole(nil, types.ROLE_ADMIN))
	assert.False(t, HasRole(roles))
}

func TestWithSuffix(t *testing.T) {
	os.Setenv("API_ENV", "test")
	defer os.Unsetenv("API_ENV")
	assert.Equal(t, "emails-to-send-test", WithSuffix("emails-to-send"))

	os.Unsetenv("API_ENV")
	assert.Equal(t, "emails-to-send", WithSuffix("emails-to-send"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-04")
	assert.Nil(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 4, d.Day())

	_, err = ParseDate("03/04/2026")
	assert.NotNil(t, err)
}

func TestCombineDateClock(t *testing.T) {
	ts, err := CombineDateClock("2026-03-04", "15:30")
	assert.Nil(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 15, 30, 0, 0, time.Local), ts)

	_, err = CombineDateClock("2026-03-04", "3:30pm")
	assert.NotNil(t, err)
}

func TestHoursUntil(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 24.0, HoursUntil(now, now.Add(24*time.Hour)))
	assert.Equal(t, 23.5, HoursUntil(now, now.Add(23*time.Hour+30*time.Minute)))
	assert.Equal(t, -2.0, HoursUntil(now, now.Add(-2*time.Hour)))

	// Rounded to one decimal place.
	assert.Equal(t, 1.3, HoursUntil(now, now.Add(77*time.Minute)))
}
