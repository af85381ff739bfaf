package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"reporthub/internal/models"
	"reporthub/internal/webpush"
)

// PermissionGranted is the only notification permission that allows subscribing
const PermissionGranted = "granted"

// PushSession identifies the browser session a push call acts for. It
// replaces any process-wide notion of a current user.
type PushSession struct {
	UserEmail string
	Endpoint  string
}

func (s PushSession) identity() string {
	if email := strings.ToLower(strings.TrimSpace(s.UserEmail)); email != "" {
		return email
	}
	return s.Endpoint
}

// PushRegistrar is the platform side of a subscription: the notification
// permission and the local push registration of one browser
type PushRegistrar interface {
	Permission(ctx context.Context) (string, error)
	// Registration returns the existing registration, or nil when there is none
	Registration(ctx context.Context) (*webpush.Subscription, error)
	Register(ctx context.Context, applicationServerKey string) (*webpush.Subscription, error)
	Unregister(ctx context.Context) error
}

type pushStore interface {
	Upsert(ctx context.Context, sub *models.PushSubscription) error
	MarkReported(ctx context.Context, sub *models.PushSubscription, p models.Period) error
	GetByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error)
	ListActiveByEmail(ctx context.Context, email string) ([]models.PushSubscription, error)
	Deactivate(ctx context.Context, endpoint string) error
}

// PushService manages the subscription lifecycle of members
type PushService struct {
	store                pushStore
	cache                *FlagCache
	applicationServerKey string
	debug                bool
}

// NewPushService creates a push lifecycle service. An empty
// applicationServerKey disables subscribing.
func NewPushService(store pushStore, cache *FlagCache, applicationServerKey string, debug bool) *PushService {
	if cache == nil {
		cache = NewFlagCache(DefaultFlagTTL)
	}
	return &PushService{
		store:                store,
		cache:                cache,
		applicationServerKey: applicationServerKey,
		debug:                debug,
	}
}

// ApplicationServerKey returns the VAPID public key browsers subscribe with
func (s *PushService) ApplicationServerKey() string {
	return s.applicationServerKey
}

// Subscribe stores the browser registration of session, creating it first
// when the browser has none. Subscribing again only refreshes the row.
func (s *PushService) Subscribe(ctx context.Context, session PushSession, reg PushRegistrar, displayName string) (*models.PushSubscription, error) {
	permission, err := reg.Permission(ctx)
	if err != nil || permission != PermissionGranted {
		return nil, ErrPermissionDenied
	}

	sub, err := reg.Registration(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read push registration: %w", err)
	}
	if sub == nil {
		if s.applicationServerKey == "" {
			return nil, ErrPushDisabled
		}
		if sub, err = reg.Register(ctx, s.applicationServerKey); err != nil {
			return nil, fmt.Errorf("failed to create push registration: %w", err)
		}
	}
	if sub == nil || sub.Endpoint == "" || sub.P256dh == "" || sub.Auth == "" {
		return nil, errors.New("push registration is incomplete")
	}

	row := &models.PushSubscription{
		Endpoint:       sub.Endpoint,
		P256dhKey:      sub.P256dh,
		AuthKey:        sub.Auth,
		SubscriberName: strings.TrimSpace(displayName),
		UserEmail:      strings.ToLower(strings.TrimSpace(session.UserEmail)),
	}
	if err := s.store.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if s.debug {
		log.Printf("[DEBUG] Push subscription stored: endpoint=%s email=%s", row.Endpoint, row.UserEmail)
	}
	return row, nil
}

// MarkAsReported records that the user of session reported for p so no
// reminder is sent. It never fails: the report submission must not depend
// on push bookkeeping.
func (s *PushService) MarkAsReported(ctx context.Context, session PushSession, p models.Period, fullName string) {
	if id := session.identity(); id != "" {
		s.cache.Set(reportedFlagKey(id, p))
	}

	subs, err := s.sessionSubscriptions(ctx, session)
	if err != nil {
		log.Printf("Error looking up push subscriptions to mark as reported: %v", err)
		return
	}

	for i := range subs {
		sub := &subs[i]
		if name := strings.TrimSpace(fullName); name != "" {
			sub.SubscriberName = name
		}
		if err := s.store.MarkReported(ctx, sub, p); err != nil {
			log.Printf("Error marking push subscription %s as reported: %v", sub.Endpoint, err)
		}
	}
	if s.debug {
		log.Printf("[DEBUG] Marked %d push subscriptions as reported for %s", len(subs), p)
	}
}

// sessionSubscriptions returns the active subscriptions of the session user,
// falling back to the session's own endpoint
func (s *PushService) sessionSubscriptions(ctx context.Context, session PushSession) ([]models.PushSubscription, error) {
	if session.UserEmail != "" {
		subs, err := s.store.ListActiveByEmail(ctx, session.UserEmail)
		if err != nil {
			return nil, err
		}
		if len(subs) > 0 {
			return subs, nil
		}
	}
	if session.Endpoint == "" {
		return nil, nil
	}
	sub, err := s.store.GetByEndpoint(ctx, session.Endpoint)
	if err != nil {
		return nil, err
	}
	if sub == nil || !sub.IsActive {
		return nil, nil
	}
	return []models.PushSubscription{*sub}, nil
}

// ShouldShowReminder reports whether the user of session still has to report
// for p. Lookup failures show the reminder.
func (s *PushService) ShouldShowReminder(ctx context.Context, session PushSession, p models.Period) bool {
	if id := session.identity(); id != "" && s.cache.Has(reportedFlagKey(id, p)) {
		return false
	}

	subs, err := s.sessionSubscriptions(ctx, session)
	if err != nil {
		log.Printf("Error checking reminder state, showing reminder: %v", err)
		return true
	}
	for _, sub := range subs {
		if sub.ReportedFor(p) {
			return false
		}
	}
	return true
}

// Unsubscribe deactivates the session's subscription and removes the local registration
func (s *PushService) Unsubscribe(ctx context.Context, session PushSession, reg PushRegistrar) error {
	endpoint := session.Endpoint
	if sub, err := reg.Registration(ctx); err == nil && sub != nil && sub.Endpoint != "" {
		endpoint = sub.Endpoint
	}
	if endpoint != "" {
		if err := s.store.Deactivate(ctx, endpoint); err != nil {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}
	if err := reg.Unregister(ctx); err != nil {
		return fmt.Errorf("failed to remove push registration: %w", err)
	}
	return nil
}

// Forget drops the cached reported flags of a session, used on logout
func (s *PushService) Forget(session PushSession) {
	if id := session.identity(); id != "" {
		s.cache.ClearIdentity(id)
	}
}
