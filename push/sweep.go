package push

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Summary aggregates one sweep cycle. Failures are never retried within a
// cycle; the next scheduled sweep picks them up.
type Summary struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// Sweep walks every active subscription, evaluates its reminder window at
// now and sends matching ones sequentially. Endpoints reported gone are
// deactivated as a side effect. The logger may be nil.
func Sweep(ctx context.Context, store *Store, sender Sender, now time.Time, log *zap.SugaredLogger) Summary {
	subs := store.Where(func(s Subscription) bool { return s.Active })

	summary := Summary{Total: len(subs)}
	for _, sub := range subs {
		d := Evaluate(sub, now)
		if !d.Send {
			summary.Skipped++
			if log != nil {
				log.Debugf("reminder skipped user=%d reason=%s", sub.UserID, d.Reason)
			}
			continue
		}

		err := sender.Send(ctx, sub, ReminderPayload(now))
		switch {
		case errors.Is(err, ErrGone):
			store.Deactivate(sub.UserID)
			summary.Failed++
			if log != nil {
				log.Infof("reminder endpoint gone, deactivated user=%d", sub.UserID)
			}
		case err != nil:
			summary.Failed++
			if log != nil {
				log.Warnf("reminder send failed user=%d err=%v", sub.UserID, err)
			}
		default:
			summary.Sent++
		}
	}
	return summary
}

// ReminderPayload is the daily reminder notification body.
func ReminderPayload(now time.Time) Payload {
	return Payload{
		Title:     "Gratitude Circle",
		Body:      "Take a moment to write down what you're grateful for today.",
		URL:       "/journal",
		Tag:       "daily-reminder",
		Timestamp: now.UnixMilli(),
	}
}

// StartSweeper launches a background goroutine that runs Sweep on a fixed
// interval, for deployments without an external cron hitting the sweep
// endpoint. Best-effort; it never stops the process on failure.
func StartSweeper(store *Store, sender Sender, interval time.Duration, log *zap.SugaredLogger) {
	if interval <= 0 {
		return
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			summary := Sweep(ctx, store, sender, time.Now(), log)
			cancel()
			if log != nil && summary.Total > 0 {
				log.Infof("reminder sweep sent=%d failed=%d skipped=%d total=%d",
					summary.Sent, summary.Failed, summary.Skipped, summary.Total)
			}
		}
	}()
}
