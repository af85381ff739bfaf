package handlers

import (
	"net/http"
)

// Router wires the handlers to their routes
type Router struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Reports    *ReportHandler
	Roster     *RosterHandler
	Push       *PushHandler
	Attendance *AttendanceHandler
	Accounts   *AccountHandler
	Realtime   http.HandlerFunc
	Metrics    http.Handler
	Static     http.Handler
}

// Mux registers every route
func (rt *Router) Mux() *http.ServeMux {
	m := rt.Middleware
	admin := func(h http.HandlerFunc) http.HandlerFunc { return m.RequireAdmin(m.CSRFProtect(h)) }
	super := func(h http.HandlerFunc) http.HandlerFunc { return m.RequireSuperAdmin(m.CSRFProtect(h)) }

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /api/superintendents", rt.Reports.Superintendents)
	mux.HandleFunc("POST /api/reports", rt.Reports.Submit)
	mux.HandleFunc("GET /api/push/config", rt.Push.Config)
	mux.HandleFunc("POST /api/push/subscribe", rt.Push.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", rt.Push.Unsubscribe)
	mux.HandleFunc("GET /api/push/reminder", rt.Push.Reminder)
	if rt.Realtime != nil {
		mux.HandleFunc("GET /api/realtime", rt.Realtime)
	}

	// Auth
	mux.HandleFunc("POST /api/auth/login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("POST /api/auth/signup", m.RateLimit(rt.Auth.Signup))
	mux.HandleFunc("POST /api/auth/logout", rt.Auth.Logout)
	mux.HandleFunc("GET /api/auth/me", m.RequireAuth(rt.Auth.Me))
	mux.HandleFunc("POST /api/auth/forgot-password", m.RateLimit(rt.Auth.ForgotPassword))
	mux.HandleFunc("POST /api/auth/reset-password", m.RateLimit(rt.Auth.ResetPassword))
	mux.HandleFunc("GET /api/auth/providers", rt.Auth.OAuthProviders)
	mux.HandleFunc("GET /auth/{provider}/start", rt.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", rt.Auth.OAuthCallback)

	// Admin
	mux.HandleFunc("GET /api/admin/reports", admin(rt.Reports.List))
	mux.HandleFunc("GET /api/admin/reports/export", admin(rt.Reports.Export))
	mux.HandleFunc("PUT /api/admin/reports/{id}", admin(rt.Reports.Update))
	mux.HandleFunc("POST /api/admin/reports/{id}/review", admin(rt.Reports.Review))
	mux.HandleFunc("DELETE /api/admin/reports/{id}", admin(rt.Reports.Delete))
	mux.HandleFunc("GET /api/admin/reconciliation", admin(rt.Roster.Reconciliation))
	mux.HandleFunc("GET /api/admin/roster/members", admin(rt.Roster.Members))
	mux.HandleFunc("POST /api/admin/roster/members", admin(rt.Roster.AddMember))
	mux.HandleFunc("DELETE /api/admin/roster/members/{id}", admin(rt.Roster.RemoveMember))
	mux.HandleFunc("GET /api/admin/mappings", admin(rt.Roster.Mappings))
	mux.HandleFunc("PUT /api/admin/mappings", admin(rt.Roster.SetMapping))
	mux.HandleFunc("DELETE /api/admin/mappings/{alias}", admin(rt.Roster.DeleteMapping))
	mux.HandleFunc("PUT /api/admin/flags/{reportId}", admin(rt.Roster.SetFlag))
	mux.HandleFunc("DELETE /api/admin/flags/{reportId}", admin(rt.Roster.DeleteFlag))
	mux.HandleFunc("GET /api/admin/attendance", admin(rt.Attendance.List))
	mux.HandleFunc("POST /api/admin/attendance", admin(rt.Attendance.Record))
	mux.HandleFunc("DELETE /api/admin/attendance/{id}", admin(rt.Attendance.Delete))
	mux.HandleFunc("GET /api/admin/attendance/stats", admin(rt.Attendance.Stats))
	mux.HandleFunc("POST /api/admin/push/broadcast", admin(rt.Push.Broadcast))

	// Super admin
	mux.HandleFunc("GET /api/admin/accounts", super(rt.Accounts.List))
	mux.HandleFunc("PUT /api/admin/accounts/{id}/role", super(rt.Accounts.SetRole))
	mux.HandleFunc("POST /api/admin/accounts/{id}/password-reset", super(rt.Accounts.SendPasswordReset))
	mux.HandleFunc("POST /api/admin/reports/clear", super(rt.Reports.Clear))

	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
	})
	if rt.Static != nil {
		mux.Handle("/", rt.Static)
	}
	return mux
}
