package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"reporthub/internal/service"
	"reporthub/internal/webpush"
)

// PushHandler serves the subscription lifecycle and reminder broadcasts
type PushHandler struct {
	push      *service.PushService
	broadcast *service.BroadcastService
	now       func() time.Time
}

// NewPushHandler creates a new push handler
func NewPushHandler(push *service.PushService, broadcast *service.BroadcastService) *PushHandler {
	return &PushHandler{push: push, broadcast: broadcast, now: time.Now}
}

type subscriptionJSON struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// subscribeRequest carries what the browser reported: its notification
// permission and its PushSubscription.toJSON()
type subscribeRequest struct {
	Permission   string            `json:"permission"`
	Subscription *subscriptionJSON `json:"subscription"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
}

var errBrowserRegistration = errors.New("the browser must create the push registration")

// httpRegistrar replays the browser state posted with a request. The server
// cannot create or remove a browser registration, so Register asks the
// client to subscribe first and Unregister leaves it to the client.
type httpRegistrar struct {
	permission string
	sub        *webpush.Subscription
}

func newHTTPRegistrar(permission string, sub *subscriptionJSON) *httpRegistrar {
	reg := &httpRegistrar{permission: permission}
	if sub != nil && sub.Endpoint != "" {
		reg.sub = &webpush.Subscription{Endpoint: sub.Endpoint, P256dh: sub.Keys.P256dh, Auth: sub.Keys.Auth}
	}
	return reg
}

func (r *httpRegistrar) Permission(ctx context.Context) (string, error) {
	return r.permission, nil
}

func (r *httpRegistrar) Registration(ctx context.Context) (*webpush.Subscription, error) {
	return r.sub, nil
}

func (r *httpRegistrar) Register(ctx context.Context, applicationServerKey string) (*webpush.Subscription, error) {
	return nil, errBrowserRegistration
}

func (r *httpRegistrar) Unregister(ctx context.Context) error {
	return nil
}

// Config returns the application-server key browsers subscribe with
func (h *PushHandler) Config(w http.ResponseWriter, r *http.Request) {
	key := h.push.ApplicationServerKey()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"enabled":                key != "",
		"application_server_key": key,
	})
}

// Subscribe stores the posted browser subscription
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reg := newHTTPRegistrar(req.Permission, req.Subscription)
	session := service.PushSession{UserEmail: req.Email}
	if reg.sub != nil {
		session.Endpoint = reg.sub.Endpoint
	}

	sub, err := h.push.Subscribe(r.Context(), session, reg, req.Name)
	if err != nil {
		if errors.Is(err, errBrowserRegistration) {
			respondWithError(w, http.StatusBadRequest, "Falta la suscripción del navegador", "", nil)
			return
		}
		respondWithServiceError(w, "Error subscribing to push", err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// Unsubscribe deactivates a browser subscription
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Endpoint == "" {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	session := service.PushSession{Endpoint: req.Endpoint}
	if err := h.push.Unsubscribe(r.Context(), session, newHTTPRegistrar("", nil)); err != nil {
		respondWithServiceError(w, "Error unsubscribing from push", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reminder tells a browser whether to show the report reminder for a period
func (h *PushHandler) Reminder(w http.ResponseWriter, r *http.Request) {
	p, err := periodOrPrevious(r, h.now())
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	q := r.URL.Query()
	session := service.PushSession{UserEmail: q.Get("email"), Endpoint: q.Get("endpoint")}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"period":        p,
		"show_reminder": h.push.ShouldShowReminder(r.Context(), session, p),
	})
}

// Broadcast sends the report reminder to every member who has not reported
func (h *PushHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req service.BroadcastRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.broadcast.Broadcast(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, "Error broadcasting reminders", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
