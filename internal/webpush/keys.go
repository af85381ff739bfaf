package webpush

import (
	"crypto/ecdh"
	"encoding/base64"
	"fmt"
	"strings"

	webpushgo "github.com/SherClockHolmes/webpush-go"
)

// GenerateVAPIDKeys creates a new P-256 application server key pair, both
// halves encoded as unpadded base64url.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpushgo.GenerateVAPIDKeys()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate vapid key: %w", err)
	}
	return publicKey, privateKey, nil
}

// publicKeyFor returns the encoded public point matching a base64url scalar
func publicKeyFor(privateKey string) (string, error) {
	raw, err := decode(privateKey)
	if err != nil {
		return "", fmt.Errorf("invalid vapid private key encoding: %w", err)
	}
	key, err := ecdh.P256().NewPrivateKey(raw)
	if err != nil {
		return "", fmt.Errorf("invalid vapid private key: %w", err)
	}
	return encode(key.PublicKey().Bytes()), nil
}

func encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// decode accepts base64url with or without padding, and standard base64
// as some browsers serialize subscription keys that way
func decode(s string) ([]byte, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	s = strings.NewReplacer("+", "-", "/", "_").Replace(s)
	return base64.RawURLEncoding.DecodeString(s)
}
