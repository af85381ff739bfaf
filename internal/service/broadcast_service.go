package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"reporthub/internal/metrics"
	"reporthub/internal/models"
	"reporthub/internal/validation"
	"reporthub/internal/webpush"
)

const defaultBroadcastTitle = "Informe de servicio"

type notificationSender interface {
	SendNotification(ctx context.Context, sub webpush.Subscription, n webpush.Notification) error
}

type broadcastStore interface {
	ListActive(ctx context.Context) ([]models.PushSubscription, error)
	GetByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

// BroadcastRequest describes one reminder run. A nil Period targets the
// previous calendar month.
type BroadcastRequest struct {
	Message  string         `json:"message"`
	Title    string         `json:"title"`
	URL      string         `json:"url"`
	Period   *models.Period `json:"period,omitempty"`
	TestMode bool           `json:"test_mode"`
	Endpoint string         `json:"endpoint"`
}

// BroadcastResult aggregates a run. Total is always Sent + Failed + Skipped.
type BroadcastResult struct {
	Success bool          `json:"success"`
	Sent    int           `json:"sent"`
	Failed  int           `json:"failed"`
	Skipped int           `json:"skipped"`
	Total   int           `json:"total"`
	Period  models.Period `json:"period"`
}

// BroadcastService sends reminders to members who have not reported yet
type BroadcastService struct {
	store   broadcastStore
	sender  notificationSender
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewBroadcastService creates a broadcast service. A nil sender makes every
// broadcast fail with ErrPushDisabled.
func NewBroadcastService(store broadcastStore, sender notificationSender, m *metrics.Metrics) *BroadcastService {
	return &BroadcastService{
		store:   store,
		sender:  sender,
		metrics: m,
		now:     time.Now,
	}
}

// Broadcast delivers the request message one subscription at a time. A
// failed delivery never stops the run; subscriptions the push service
// reports gone are deleted.
func (s *BroadcastService) Broadcast(ctx context.Context, req BroadcastRequest) (*BroadcastResult, error) {
	if s.sender == nil {
		return nil, ErrPushDisabled
	}
	s.metrics.IncBroadcastRun()

	period := models.PreviousPeriod(s.now())
	if req.Period != nil {
		p, err := models.NewPeriod(req.Period.Month, req.Period.Year)
		if err != nil {
			return nil, validation.ValidationError{Field: "period", Message: err.Error()}
		}
		period = p
	}

	n := webpush.Notification{
		Title: strings.TrimSpace(req.Title),
		Body:  strings.TrimSpace(req.Message),
		URL:   req.URL,
	}
	if n.Title == "" {
		n.Title = defaultBroadcastTitle
	}
	if n.Body == "" {
		n.Body = fmt.Sprintf("Recuerde enviar su informe de servicio de %s", period.Month)
	}
	if n.URL == "" {
		n.URL = "/"
	}

	result := &BroadcastResult{Period: period}

	if req.TestMode {
		if strings.TrimSpace(req.Endpoint) == "" {
			return nil, validation.ValidationError{Field: "endpoint", Message: "test mode requires an endpoint"}
		}
		sub, err := s.store.GetByEndpoint(ctx, req.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		if sub == nil {
			return nil, ErrNotFound
		}
		s.deliver(ctx, *sub, n, result)
		result.Success = result.Sent == 1
		return result, nil
	}

	subs, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	for _, sub := range subs {
		if sub.ReportedFor(period) {
			result.Skipped++
			result.Total++
			s.metrics.ObservePushDelivery(metrics.PushSkipped)
			continue
		}
		s.deliver(ctx, sub, n, result)
	}

	result.Success = true
	log.Printf("Broadcast for %s: sent=%d failed=%d skipped=%d total=%d",
		period, result.Sent, result.Failed, result.Skipped, result.Total)
	return result, nil
}

func (s *BroadcastService) deliver(ctx context.Context, sub models.PushSubscription, n webpush.Notification, result *BroadcastResult) {
	result.Total++
	err := s.sender.SendNotification(ctx, webpush.Subscription{
		Endpoint: sub.Endpoint,
		P256dh:   sub.P256dhKey,
		Auth:     sub.AuthKey,
	}, n)

	switch {
	case err == nil:
		result.Sent++
		s.metrics.ObservePushDelivery(metrics.PushSent)
	case errors.Is(err, webpush.ErrGone):
		result.Failed++
		s.metrics.ObservePushDelivery(metrics.PushExpired)
		log.Printf("Push subscription expired, removing %s: %v", sub.Endpoint, ErrSubscriptionExpired)
		if err := s.store.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
			log.Printf("Error removing expired push subscription %s: %v", sub.Endpoint, err)
		}
	default:
		result.Failed++
		s.metrics.ObservePushDelivery(metrics.PushFailed)
		log.Printf("Error sending push notification to %s: %v", sub.Endpoint, err)
	}
}
