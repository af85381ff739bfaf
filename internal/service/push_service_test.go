package service

import (
	"context"
	"errors"
	"testing"

	"reporthub/internal/models"
	"reporthub/internal/repository"
	"reporthub/internal/webpush"
)

var march2025 = models.Period{Month: "Marzo", Year: 2025}

func browserSub(endpoint string) *webpush.Subscription {
	return &webpush.Subscription{Endpoint: endpoint, P256dh: "p256-" + endpoint, Auth: "auth-" + endpoint}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	session := PushSession{UserEmail: "Juan@Example.com"}

	t.Run("permission denied", func(t *testing.T) {
		store := newFakePushStore()
		svc := NewPushService(store, nil, "app-key", false)
		_, err := svc.Subscribe(ctx, session, &fakeRegistrar{permission: "denied"}, "Juan")
		if !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("Subscribe() error = %v, want ErrPermissionDenied", err)
		}
	})

	t.Run("creates registration with the server key", func(t *testing.T) {
		store := newFakePushStore()
		svc := NewPushService(store, nil, "app-key", false)
		reg := &fakeRegistrar{permission: PermissionGranted, created: browserSub("https://push/1")}

		row, err := svc.Subscribe(ctx, session, reg, " Juan Perez ")
		if err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
		if reg.registerKey != "app-key" {
			t.Errorf("Register() key = %q, want app-key", reg.registerKey)
		}
		if row.UserEmail != "juan@example.com" || row.SubscriberName != "Juan Perez" {
			t.Errorf("row = %+v", row)
		}
		if s, ok := store.get("https://push/1"); !ok || !s.IsActive {
			t.Error("subscription not stored as active")
		}
	})

	t.Run("idempotent with existing registration", func(t *testing.T) {
		store := newFakePushStore()
		svc := NewPushService(store, nil, "app-key", false)
		reg := &fakeRegistrar{permission: PermissionGranted, existing: browserSub("https://push/1")}

		for i := 0; i < 2; i++ {
			if _, err := svc.Subscribe(ctx, session, reg, "Juan"); err != nil {
				t.Fatalf("Subscribe() #%d error = %v", i, err)
			}
		}
		if reg.registerKey != "" {
			t.Error("existing registration should be reused")
		}
		if len(store.subs) != 1 {
			t.Errorf("store has %d rows, want 1", len(store.subs))
		}
	})

	t.Run("no server key", func(t *testing.T) {
		svc := NewPushService(newFakePushStore(), nil, "", false)
		reg := &fakeRegistrar{permission: PermissionGranted, created: browserSub("https://push/1")}
		if _, err := svc.Subscribe(ctx, session, reg, "Juan"); !errors.Is(err, ErrPushDisabled) {
			t.Errorf("Subscribe() error = %v, want ErrPushDisabled", err)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		store := newFakePushStore()
		store.fail = true
		svc := NewPushService(store, nil, "app-key", false)
		reg := &fakeRegistrar{permission: PermissionGranted, existing: browserSub("https://push/1")}
		if _, err := svc.Subscribe(ctx, session, reg, "Juan"); !errors.Is(err, ErrBackendUnavailable) {
			t.Errorf("Subscribe() error = %v, want ErrBackendUnavailable", err)
		}
	})
}

func TestMarkAsReportedThenReminder(t *testing.T) {
	ctx := context.Background()
	store := newFakePushStore(
		models.PushSubscription{Endpoint: "https://push/phone", UserEmail: "juan@example.com", IsActive: true},
		models.PushSubscription{Endpoint: "https://push/laptop", UserEmail: "juan@example.com", IsActive: true},
		models.PushSubscription{Endpoint: "https://push/other", UserEmail: "ana@example.com", IsActive: true},
	)
	svc := NewPushService(store, nil, "app-key", false)
	session := PushSession{UserEmail: "juan@example.com"}

	if !svc.ShouldShowReminder(ctx, session, march2025) {
		t.Fatal("reminder should show before reporting")
	}

	svc.MarkAsReported(ctx, session, march2025, "Juan Perez")

	if svc.ShouldShowReminder(ctx, session, march2025) {
		t.Error("reminder should be hidden right after reporting")
	}
	for _, endpoint := range []string{"https://push/phone", "https://push/laptop"} {
		s, _ := store.get(endpoint)
		if !s.ReportedFor(march2025) || s.SubscriberName != "Juan Perez" {
			t.Errorf("%s = %+v, want reported by Juan Perez", endpoint, s)
		}
	}
	if s, _ := store.get("https://push/other"); s.ReportedFor(march2025) {
		t.Error("other users' subscriptions must not be marked")
	}

	// A fresh service has no cache and falls back to the store
	fresh := NewPushService(store, nil, "app-key", false)
	if fresh.ShouldShowReminder(ctx, session, march2025) {
		t.Error("stored period should hide the reminder")
	}
	if !fresh.ShouldShowReminder(ctx, session, models.Period{Month: "Abril", Year: 2025}) {
		t.Error("a different period should still show the reminder")
	}
}

func TestMarkAsReportedFallsBackToEndpoint(t *testing.T) {
	ctx := context.Background()
	store := newFakePushStore(
		models.PushSubscription{Endpoint: "https://push/anon", IsActive: true},
	)
	svc := NewPushService(store, nil, "app-key", false)

	svc.MarkAsReported(ctx, PushSession{Endpoint: "https://push/anon"}, march2025, "Ana")
	if s, _ := store.get("https://push/anon"); !s.ReportedFor(march2025) {
		t.Error("endpoint subscription should be marked")
	}
}

func TestMarkAsReportedSwallowsErrors(t *testing.T) {
	store := newFakePushStore()
	store.fail = true
	svc := NewPushService(store, nil, "app-key", false)
	session := PushSession{UserEmail: "juan@example.com"}

	svc.MarkAsReported(context.Background(), session, march2025, "Juan")

	// The cache flag is written before the store is touched
	if svc.ShouldShowReminder(context.Background(), session, march2025) {
		t.Error("cache flag should hide the reminder even when the store is down")
	}
}

func TestShouldShowReminderFailsOpen(t *testing.T) {
	store := newFakePushStore(
		models.PushSubscription{Endpoint: "https://push/1", UserEmail: "juan@example.com", IsActive: true,
			LastReportMonth: "Marzo", LastReportYear: 2025},
	)
	store.fail = true
	svc := NewPushService(store, nil, "app-key", false)
	if !svc.ShouldShowReminder(context.Background(), PushSession{UserEmail: "juan@example.com"}, march2025) {
		t.Error("lookup errors should show the reminder")
	}
}

func TestUnsubscribe(t *testing.T) {
	ctx := context.Background()
	store := newFakePushStore(
		models.PushSubscription{Endpoint: "https://push/1", UserEmail: "juan@example.com", IsActive: true},
	)
	svc := NewPushService(store, nil, "app-key", false)
	reg := &fakeRegistrar{permission: PermissionGranted, existing: browserSub("https://push/1")}

	if err := svc.Unsubscribe(ctx, PushSession{UserEmail: "juan@example.com"}, reg); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if s, _ := store.get("https://push/1"); s.IsActive {
		t.Error("subscription should be inactive")
	}
	if !reg.unregistered {
		t.Error("local registration should be removed")
	}
}

func TestForgetClearsCache(t *testing.T) {
	ctx := context.Background()
	svc := NewPushService(newFakePushStore(), nil, "app-key", false)
	session := PushSession{UserEmail: "juan@example.com"}

	svc.MarkAsReported(ctx, session, march2025, "Juan")
	svc.Forget(session)
	if !svc.ShouldShowReminder(ctx, session, march2025) {
		t.Error("reminder should show again after the session is forgotten")
	}
}

func TestMarkAsReportedMixedCaseEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repository.NewPushRepository(db)

	endpoint := "https://push.example/mixed"
	if err := repo.Upsert(ctx, &models.PushSubscription{
		Endpoint:  endpoint,
		P256dhKey: "p256",
		AuthKey:   "auth",
		UserEmail: "Ana@Example.com",
		IsActive:  true,
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	session := PushSession{UserEmail: "Ana@Example.com"}
	NewPushService(repo, nil, "key", false).MarkAsReported(ctx, session, march2025, "Ana")

	stored, err := repo.GetByEndpoint(ctx, endpoint)
	if err != nil || stored == nil {
		t.Fatalf("GetByEndpoint() = %v, %v", stored, err)
	}
	if stored.UserEmail != "ana@example.com" {
		t.Errorf("UserEmail = %q, want normalized", stored.UserEmail)
	}
	if !stored.ReportedFor(march2025) {
		t.Error("stored row should be marked as reported for Marzo 2025")
	}

	// A fresh service has an empty flag cache and must answer from the store.
	fresh := NewPushService(repo, nil, "key", false)
	if fresh.ShouldShowReminder(ctx, session, march2025) {
		t.Error("ShouldShowReminder() = true after reporting")
	}
}
