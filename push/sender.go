package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrGone signals the transport reported the endpoint permanently gone
// (HTTP 404/410); the subscription should be deactivated, not retried.
var ErrGone = errors.New("push: subscription gone")

// Payload is the JSON body delivered to the service worker.
type Payload struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	URL       string   `json:"url"`
	Tag       string   `json:"tag"`
	Timestamp int64    `json:"timestamp"`
	Actions   []Action `json:"actions,omitempty"`
}

// Action is a notification action button.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Sender delivers a payload to one subscription.
type Sender interface {
	Send(ctx context.Context, sub Subscription, payload Payload) error
}

// WebPushSender delivers payloads over the Web Push protocol with VAPID auth.
type WebPushSender struct {
	vapidPublicKey  string
	vapidPrivateKey string
	subject         string
}

// NewWebPushSender creates a sender with the given VAPID credentials.
// Subject is the contact URI required by push services (mailto: or https:).
func NewWebPushSender(publicKey, privateKey, subject string) *WebPushSender {
	return &WebPushSender{vapidPublicKey: publicKey, vapidPrivateKey: privateKey, subject: subject}
}

// Send pushes one payload. 404/410 responses map to ErrGone; other non-2xx
// statuses are transient failures left to the next sweep cycle.
func (s *WebPushSender) Send(ctx context.Context, sub Subscription, payload Payload) error {
	if payload.Timestamp == 0 {
		payload.Timestamp = time.Now().UnixMilli()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.vapidPublicKey,
		VAPIDPrivateKey: s.vapidPrivateKey,
		TTL:             3600,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push: unexpected status %d", resp.StatusCode)
	}
	return nil
}
