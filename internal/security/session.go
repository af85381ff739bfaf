package security

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateSessionID returns a random identifier. It also serves OAuth state
// values and generated secrets.
func GenerateSessionID() string {
	return uuid.NewString()
}

// IsSecureRequest reports whether the request arrived over HTTPS, directly or
// through a TLS-terminating proxy
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return r.URL.Scheme == "https"
}

func baseCookie(r *http.Request, name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateSessionCookie returns the admin session cookie, expiring with the session
func CreateSessionCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	c := baseCookie(r, name, value)
	c.Expires = expires
	return c
}

// CreateShortCookie returns a cookie that lives for ttl, such as the OAuth state
func CreateShortCookie(r *http.Request, name, value string, ttl time.Duration) *http.Cookie {
	c := baseCookie(r, name, value)
	c.Expires = time.Now().Add(ttl)
	c.MaxAge = int(ttl.Seconds())
	return c
}

// CreateDeleteCookie expires the named cookie
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	c := baseCookie(r, name, "")
	c.MaxAge = -1
	return c
}
