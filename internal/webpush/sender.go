// Package webpush delivers notifications to browser push services using
// VAPID authentication.
package webpush

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	webpushgo "github.com/SherClockHolmes/webpush-go"
)

// ErrGone means the push service no longer knows the subscription (404 or 410)
var ErrGone = errors.New("push subscription gone")

// StatusError is returned when the push service rejects a message. For 404
// and 410 it is wrapped together with ErrGone.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("push service returned %d: %s", e.StatusCode, e.Body)
}

// Subscription is the part of a browser PushSubscription needed to deliver
type Subscription struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

// Notification is the JSON document the service worker receives
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// Sender signs and delivers push messages
type Sender struct {
	client     *http.Client
	publicKey  string
	privateKey string
	subscriber string
	ttl        time.Duration
}

// NewSender creates a sender for the given VAPID key pair. A nil client uses
// a client with a 30 second timeout.
func NewSender(publicKey, privateKey, subject string, ttl time.Duration, client *http.Client) (*Sender, error) {
	derived, err := publicKeyFor(privateKey)
	if err != nil {
		return nil, err
	}
	if publicKey != "" {
		if raw, err := decode(publicKey); err != nil || encode(raw) != derived {
			return nil, errors.New("vapid public key does not match private key")
		}
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Sender{
		client:     client,
		publicKey:  derived,
		privateKey: privateKey,
		subscriber: strings.TrimPrefix(subject, "mailto:"),
		ttl:        ttl,
	}, nil
}

// PublicKey returns the application server key browsers subscribe with
func (s *Sender) PublicKey() string {
	return s.publicKey
}

// SendNotification encodes n as JSON and sends it
func (s *Sender) SendNotification(ctx context.Context, sub Subscription, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	return s.Send(ctx, sub, payload)
}

// Send encrypts payload for sub and posts it to the subscription endpoint
func (s *Sender) Send(ctx context.Context, sub Subscription, payload []byte) error {
	resp, err := webpushgo.SendNotificationWithContext(ctx, payload, &webpushgo.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpushgo.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpushgo.Options{
		HTTPClient:      s.client,
		Subscriber:      s.subscriber,
		TTL:             int(s.ttl.Seconds()),
		Urgency:         webpushgo.UrgencyNormal,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
	})
	if err != nil {
		return fmt.Errorf("failed to deliver push message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(msg)}
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return fmt.Errorf("%w: %w", ErrGone, statusErr)
	}
	return statusErr
}
