package timehelper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2025-03-10", DayKey(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)))

	// 23:30 in UTC-3 is already the next day in UTC.
	late := time.Date(2025, 3, 10, 23, 30, 0, 0, time.FixedZone("UTC-3", -3*60*60))
	assert.Equal(t, "2025-03-11", DayKey(late))
}
