package service

import (
	"errors"

	"reporthub/internal/repository"
)

var (
	// ErrPermissionDenied means the browser or the user refused notification permission
	ErrPermissionDenied = errors.New("notification permission denied")
	// ErrBackendUnavailable wraps store failures and timeouts
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrSubscriptionExpired means the push service reported the subscription gone
	ErrSubscriptionExpired = errors.New("push subscription expired")
	// ErrPushDisabled means no VAPID key pair is configured
	ErrPushDisabled = errors.New("push notifications are not configured")

	ErrNotFound  = repository.ErrNotFound
	ErrForbidden = errors.New("forbidden")
)
