package push_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rorychadbourne-alt/gratitude-sub000/push"
)

func allDays() map[string]bool {
	return map[string]bool{
		"Sun": true, "Mon": true, "Tue": true, "Wed": true, "Thu": true, "Fri": true, "Sat": true,
	}
}

func utcSub(reminderTime string) push.Subscription {
	return push.Subscription{
		ReminderTime: reminderTime,
		ReminderDays: allDays(),
		Timezone:     "UTC",
		Active:       true,
	}
}

// 2026-08-25 is a Tuesday.
func tuesdayAt(hour, minute int) time.Time {
	return time.Date(2026, time.August, 25, hour, minute, 0, 0, time.UTC)
}

func TestEvaluateWithinWindow(t *testing.T) {
	d := push.Evaluate(utcSub("19:00"), tuesdayAt(19, 5))
	assert.True(t, d.Send)
	assert.Contains(t, d.Reason, "within window")
	assert.Contains(t, d.Reason, "5min")
}

func TestEvaluateOutsideWindow(t *testing.T) {
	d := push.Evaluate(utcSub("19:00"), tuesdayAt(19, 20))
	assert.False(t, d.Send)
	assert.Contains(t, d.Reason, "outside window")
	assert.Contains(t, d.Reason, "20min")
}

func TestEvaluateExactBoundary(t *testing.T) {
	assert.True(t, push.Evaluate(utcSub("19:00"), tuesdayAt(19, 15)).Send)
	assert.False(t, push.Evaluate(utcSub("19:00"), tuesdayAt(19, 16)).Send)
	assert.True(t, push.Evaluate(utcSub("19:00"), tuesdayAt(18, 45)).Send)
}

func TestEvaluateDayNotEnabled(t *testing.T) {
	sub := utcSub("19:00")
	sub.ReminderDays["Tue"] = false

	d := push.Evaluate(sub, tuesdayAt(19, 5))
	assert.False(t, d.Send)
	assert.Contains(t, d.Reason, "Tue", "reason names the disabled day")
}

func TestEvaluateDefaultsToUTCAndSevenPM(t *testing.T) {
	sub := push.Subscription{ReminderDays: allDays(), Active: true}
	assert.True(t, push.Evaluate(sub, tuesdayAt(19, 10)).Send)
	assert.False(t, push.Evaluate(sub, tuesdayAt(12, 0)).Send)
}

func TestEvaluateRespectsTimezone(t *testing.T) {
	sub := utcSub("19:00")
	sub.Timezone = "America/New_York"

	// 23:05 UTC is 19:05 in New York (EDT) on this date.
	d := push.Evaluate(sub, tuesdayAt(23, 5))
	assert.True(t, d.Send)

	// 19:05 UTC is mid-afternoon in New York.
	assert.False(t, push.Evaluate(sub, tuesdayAt(19, 5)).Send)
}

// The window uses a plain linear difference, not a circular one: a reminder
// just after midnight never fires for an evaluation just before midnight even
// though only minutes apart on a 24-hour clock. Pinned legacy behavior.
func TestEvaluateDoesNotWrapAroundMidnight(t *testing.T) {
	d := push.Evaluate(utcSub("00:05"), tuesdayAt(23, 58))
	assert.False(t, d.Send)
	assert.Contains(t, d.Reason, "outside window")
	assert.Contains(t, d.Reason, "1433min")
}

func TestEvaluateMalformedSubscriptionIsSkippedNotFatal(t *testing.T) {
	bad := utcSub("19:00")
	bad.Timezone = "Not/AZone"
	d := push.Evaluate(bad, tuesdayAt(19, 5))
	assert.False(t, d.Send)
	assert.Equal(t, "error checking timing", d.Reason)

	badTime := utcSub("7pm")
	d = push.Evaluate(badTime, tuesdayAt(19, 5))
	assert.False(t, d.Send)
	assert.Equal(t, "error checking timing", d.Reason)
}
