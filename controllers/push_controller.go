package controllers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rorychadbourne-alt/gratitude-sub000/config"
	"github.com/rorychadbourne-alt/gratitude-sub000/models"
	"github.com/rorychadbourne-alt/gratitude-sub000/push"
	"github.com/rorychadbourne-alt/gratitude-sub000/utils"
)

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// PushController handles Web Push subscriptions, reminder settings and the
// reminder sweep.
type PushController struct {
	db     *gorm.DB
	store  *push.Store
	sender push.Sender
}

// NewPushController creates a PushController.
func NewPushController(db *gorm.DB, store *push.Store, sender push.Sender) *PushController {
	return &PushController{db: db, store: store, sender: sender}
}

// GetPublicConfig exposes the VAPID public key frontends need to subscribe.
func (p *PushController) GetPublicConfig(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"vapid_public_key":      cfg.VAPIDPublicKey,
		"default_reminder_time": push.DefaultReminderTime,
	})
}

// Subscribe upserts the caller's push subscription and reminder settings.
func (p *PushController) Subscribe(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Subscription struct {
			Endpoint string `json:"endpoint"`
			Keys     struct {
				P256dh string `json:"p256dh"`
				Auth   string `json:"auth"`
			} `json:"keys"`
		} `json:"subscription"`
		Settings struct {
			ReminderTime string          `json:"reminder_time"`
			ReminderDays map[string]bool `json:"reminder_days"`
			Timezone     string          `json:"timezone"`
		} `json:"settings"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	if strings.TrimSpace(req.Subscription.Endpoint) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40061, "subscription endpoint is required")
		return
	}

	reminderTime := strings.TrimSpace(req.Settings.ReminderTime)
	if reminderTime == "" {
		reminderTime = push.DefaultReminderTime
	}

	days := map[string]bool{}
	if len(req.Settings.ReminderDays) == 0 {
		for _, d := range weekdayNames {
			days[d] = true
		}
	} else {
		for _, d := range weekdayNames {
			days[d] = req.Settings.ReminderDays[d]
		}
	}

	tz := strings.TrimSpace(req.Settings.Timezone)
	if tz == "" {
		// Fall back to the profile timezone, then UTC.
		var user models.User
		if err := p.db.First(&user, userID).Error; err == nil && user.Timezone != "" {
			tz = user.Timezone
		} else {
			tz = "UTC"
		}
	}

	saved := p.store.Set(userID, push.Subscription{
		Endpoint:     req.Subscription.Endpoint,
		P256dh:       req.Subscription.Keys.P256dh,
		Auth:         req.Subscription.Keys.Auth,
		ReminderTime: reminderTime,
		ReminderDays: days,
		Timezone:     tz,
		Active:       true,
	})

	// Welcome push is best-effort; a failed send never fails the opt-in.
	go func(sub push.Subscription) {
		payload := push.Payload{
			Title: "Gratitude Circle",
			Body:  "Reminders are on. We'll nudge you at " + sub.ReminderTime + ".",
			URL:   "/settings",
			Tag:   "welcome",
		}
		sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.sender.Send(sendCtx, sub, payload); err != nil {
			utils.Sugar.Debugf("welcome push failed user=%d err=%v", sub.UserID, err)
		}
	}(saved)

	utils.Success(ctx, gin.H{"settings": saved})
}

// Unsubscribe removes the caller's subscription. Succeeds even when nothing
// existed.
func (p *PushController) Unsubscribe(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	p.store.Delete(userID)
	utils.Success(ctx, gin.H{"message": "unsubscribed"})
}

// TestSend pushes one ad hoc notification to the caller.
func (p *PushController) TestSend(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	sub, ok := p.store.Get(userID)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40460, "no subscription for user")
		return
	}

	payload := push.Payload{
		Title: "Gratitude Circle",
		Body:  "Test notification: your reminders are working.",
		URL:   "/settings",
		Tag:   "test",
	}
	if err := p.sender.Send(ctx.Request.Context(), sub, payload); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to send test notification")
		return
	}
	utils.Success(ctx, gin.H{"message": "test notification sent"})
}

// RunSweep evaluates every active subscription and sends due reminders.
// Intended to be hit by an external scheduler; guarded by a static secret.
func (p *PushController) RunSweep(ctx *gin.Context) {
	if !p.sweepAuthorized(ctx) {
		utils.Error(ctx, http.StatusUnauthorized, 40160, "invalid sweep token")
		return
	}

	summary := push.Sweep(ctx.Request.Context(), p.store, p.sender, time.Now(), utils.Sugar)
	utils.Success(ctx, summary)
}

// BroadcastTest sends a test push to every active subscription.
func (p *PushController) BroadcastTest(ctx *gin.Context) {
	if !p.sweepAuthorized(ctx) {
		utils.Error(ctx, http.StatusUnauthorized, 40160, "invalid sweep token")
		return
	}

	subs := p.store.Where(func(s push.Subscription) bool { return s.Active })
	payload := push.Payload{
		Title: "Gratitude Circle",
		Body:  "Broadcast test notification.",
		Tag:   "test",
	}

	sent, failed := 0, 0
	for _, sub := range subs {
		if err := p.sender.Send(ctx.Request.Context(), sub, payload); err != nil {
			failed++
			continue
		}
		sent++
	}
	utils.Success(ctx, gin.H{"sent": sent, "failed": failed, "total": len(subs)})
}

func (p *PushController) sweepAuthorized(ctx *gin.Context) bool {
	secret := config.Get().SweepSecret
	if secret == "" {
		return false
	}
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return false
	}
	token := strings.TrimSpace(parts[1])
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
