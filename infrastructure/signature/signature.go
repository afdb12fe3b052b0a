// Package signature validates the X-Hub-Signature-256 header the platform
// attaches to webhook deliveries.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const prefix = "sha256="

// Verifier checks webhook authenticity with the shared app secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify recomputes the HMAC over the exact raw bytes received. The caller
// must pass the untouched request body, captured before any JSON binding.
// Fails closed: missing secret, missing header, bad prefix, or undecodable
// hex all return false.
func (v *Verifier) Verify(rawBody []byte, signatureHeader string) bool {
	if len(v.secret) == 0 || signatureHeader == "" {
		return false
	}
	if !strings.HasPrefix(signatureHeader, prefix) {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(signatureHeader, prefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(rawBody)

	// hmac.Equal rejects unequal lengths up front and compares the rest in
	// constant time.
	return hmac.Equal(got, mac.Sum(nil))
}
