package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"reporthub/internal/models"
	"reporthub/internal/webpush"
)

var errStoreDown = errors.New("store down")

// fakePushStore keeps subscriptions in memory keyed by endpoint
type fakePushStore struct {
	mu   sync.Mutex
	subs map[string]models.PushSubscription
	fail bool

	markCalls int
}

func newFakePushStore(subs ...models.PushSubscription) *fakePushStore {
	f := &fakePushStore{subs: make(map[string]models.PushSubscription)}
	for _, s := range subs {
		f.subs[s.Endpoint] = s
	}
	return f
}

func (f *fakePushStore) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStoreDown
	}
	existing := f.subs[sub.Endpoint]
	existing.Endpoint = sub.Endpoint
	existing.P256dhKey = sub.P256dhKey
	existing.AuthKey = sub.AuthKey
	existing.SubscriberName = sub.SubscriberName
	existing.UserEmail = sub.UserEmail
	existing.IsActive = true
	f.subs[sub.Endpoint] = existing
	sub.IsActive = true
	return nil
}

func (f *fakePushStore) MarkReported(ctx context.Context, sub *models.PushSubscription, p models.Period) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls++
	if f.fail {
		return errStoreDown
	}
	existing := f.subs[sub.Endpoint]
	existing.SubscriberName = sub.SubscriberName
	existing.LastReportMonth = p.Month
	existing.LastReportYear = p.Year
	f.subs[sub.Endpoint] = existing
	return nil
}

func (f *fakePushStore) GetByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStoreDown
	}
	sub, ok := f.subs[endpoint]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (f *fakePushStore) ListActiveByEmail(ctx context.Context, email string) ([]models.PushSubscription, error) {
	return f.filter(func(s models.PushSubscription) bool {
		return s.IsActive && strings.EqualFold(s.UserEmail, email)
	})
}

func (f *fakePushStore) ListActive(ctx context.Context) ([]models.PushSubscription, error) {
	return f.filter(func(s models.PushSubscription) bool { return s.IsActive })
}

func (f *fakePushStore) filter(keep func(models.PushSubscription) bool) ([]models.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStoreDown
	}
	var out []models.PushSubscription
	for _, s := range f.subs {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out, nil
}

func (f *fakePushStore) Deactivate(ctx context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStoreDown
	}
	if s, ok := f.subs[endpoint]; ok {
		s.IsActive = false
		f.subs[endpoint] = s
	}
	return nil
}

func (f *fakePushStore) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, endpoint)
	return nil
}

func (f *fakePushStore) get(endpoint string) (models.PushSubscription, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[endpoint]
	return s, ok
}

// fakeRegistrar plays the browser side of a subscription
type fakeRegistrar struct {
	permission   string
	existing     *webpush.Subscription
	created      *webpush.Subscription
	registerKey  string
	unregistered bool
}

func (r *fakeRegistrar) Permission(ctx context.Context) (string, error) {
	return r.permission, nil
}

func (r *fakeRegistrar) Registration(ctx context.Context) (*webpush.Subscription, error) {
	return r.existing, nil
}

func (r *fakeRegistrar) Register(ctx context.Context, key string) (*webpush.Subscription, error) {
	r.registerKey = key
	r.existing = r.created
	return r.created, nil
}

func (r *fakeRegistrar) Unregister(ctx context.Context) error {
	r.unregistered = true
	r.existing = nil
	return nil
}

// fakeSender answers each endpoint with a configured error
type fakeSender struct {
	mu        sync.Mutex
	responses map[string]error
	sent      []string
	last      webpush.Notification
}

func (s *fakeSender) SendNotification(ctx context.Context, sub webpush.Subscription, n webpush.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sub.Endpoint)
	s.last = n
	return s.responses[sub.Endpoint]
}
