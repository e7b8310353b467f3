package push

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultReminderTime is used when a subscription has no configured time.
	DefaultReminderTime = "19:00"
	// windowMinutes is the half-width of the send window around the reminder time.
	windowMinutes = 15
)

// Decision explains whether a reminder should fire now and why.
type Decision struct {
	Send   bool   `json:"send"`
	Reason string `json:"reason"`
}

// Evaluate decides whether a reminder should fire for sub at instant now.
// Pure function: the sweep calls it for every active subscription.
//
// The window check is a plain linear difference on minutes-since-midnight,
// not a circular (mod-1440) one. A reminder at 00:05 evaluated at 23:58 is
// ~1433 minutes away under this formula and never fires across midnight.
// Known legacy behavior, kept deliberately; see DESIGN.md.
func Evaluate(sub Subscription, now time.Time) Decision {
	tz := sub.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Decision{Send: false, Reason: "error checking timing"}
	}
	local := now.In(loc)

	day := local.Format("Mon")
	if !sub.ReminderDays[day] {
		return Decision{Send: false, Reason: fmt.Sprintf("%s not enabled", day)}
	}

	reminder := sub.ReminderTime
	if reminder == "" {
		reminder = DefaultReminderTime
	}
	reminderMinutes, err := parseClock(reminder)
	if err != nil {
		return Decision{Send: false, Reason: "error checking timing"}
	}

	currentMinutes := local.Hour()*60 + local.Minute()
	diff := currentMinutes - reminderMinutes
	if diff < 0 {
		diff = -diff
	}
	if diff <= windowMinutes {
		return Decision{Send: true, Reason: fmt.Sprintf("within window (%dmin)", diff)}
	}
	return Decision{Send: false, Reason: fmt.Sprintf("outside window (%dmin)", diff)}
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}
