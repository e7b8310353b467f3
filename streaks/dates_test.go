package streaks_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rorychadbourne-alt/gratitude-sub000/streaks"
)

func TestWeekStartAnchorsOnSunday(t *testing.T) {
	// 2026-08-28 is a Friday; its week starts Sunday 2026-08-23.
	friday := time.Date(2026, time.August, 28, 15, 30, 0, 0, time.UTC)
	ws := streaks.WeekStart(friday)
	assert.Equal(t, "2026-08-23", streaks.FormatDate(ws))
	assert.Equal(t, time.Sunday, ws.Weekday())
	assert.Equal(t, 0, ws.Hour())
}

func TestWeekStartOnSundayIsSameDay(t *testing.T) {
	sunday := time.Date(2026, time.August, 23, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-23", streaks.FormatDate(streaks.WeekStart(sunday)))
}

func TestDayIndex(t *testing.T) {
	assert.Equal(t, 0, streaks.DayIndex(time.Date(2026, time.August, 23, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, streaks.DayIndex(time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 6, streaks.DayIndex(time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, time.January, 4, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-04", streaks.FormatDate(d))
}
