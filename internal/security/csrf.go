package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// csrfLabel separates CSRF MACs from anything else keyed with the same secret
const csrfLabel = "reporthub/csrf/v1:"

var errNoSession = errors.New("session ID is required")

// CSRFGenerator derives the CSRF token of an admin session with HMAC-SHA256.
// A token is valid exactly as long as its session, and any replica holding
// the same secret can check it.
type CSRFGenerator struct {
	key []byte
}

// NewCSRFGenerator creates a generator keyed by secret
func NewCSRFGenerator(secret string) *CSRFGenerator {
	key := sha256.Sum256([]byte(secret))
	return &CSRFGenerator{key: key[:]}
}

func (g *CSRFGenerator) mac(sessionID string) []byte {
	h := hmac.New(sha256.New, g.key)
	h.Write([]byte(csrfLabel))
	h.Write([]byte(sessionID))
	return h.Sum(nil)
}

// GenerateToken returns the token for sessionID, encoded for use in a header
func (g *CSRFGenerator) GenerateToken(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errNoSession
	}
	return base64.RawURLEncoding.EncodeToString(g.mac(sessionID)), nil
}

// ValidateToken reports whether token belongs to sessionID
func (g *CSRFGenerator) ValidateToken(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	got, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return false
	}
	return hmac.Equal(got, g.mac(sessionID))
}
