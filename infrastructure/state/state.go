// Package state implements the signed OAuth state token that carries caller
// context across the cross-site redirect to the platform and back. The token
// is self-verifying: tamper-evident via HMAC-SHA256, time-boxed, and bound to
// a per-issuance nonce that the caller stores out-of-band (HTTP-only cookie)
// for double-submit verification.
package state

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// delimiter joins token fields. Payload and subState are base64url-encoded
	// so the delimiter can never appear unescaped inside a field.
	delimiter = "."

	fieldCount = 6

	nonceBytes = 16

	minSecretLen = 32

	// DefaultTTL bounds one OAuth round trip.
	DefaultTTL = 10 * time.Minute
)

// Decode rejection reasons.
const (
	ReasonMalformed        = "malformed"
	ReasonInvalidSignature = "invalid signature"
	ReasonNonceMismatch    = "nonce mismatch"
	ReasonExpired          = "expired"
	ReasonInvalidPayload   = "invalid payload"
)

var encoding = base64.RawURLEncoding

// Codec produces and verifies state tokens. It is stateless and safe for
// concurrent use; replay protection comes from the caller's nonce handling.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// DecodeResult is the structured outcome of verifying a token. Decode never
// returns an error for attacker-controlled input; Valid=false plus Reason is
// the failure channel.
type DecodeResult struct {
	Valid    bool
	Payload  []byte
	SubState string
	Nonce    string
	Reason   string
}

// NewCodec fails when the signing secret is shorter than 32 bytes.
func NewCodec(secret []byte) (*Codec, error) {
	return NewCodecWithClock(secret, time.Now)
}

// NewCodecWithClock injects the clock; tests use it to cross the expiry
// boundary without sleeping.
func NewCodecWithClock(secret []byte, now func() time.Time) (*Codec, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("state signing secret must be at least %d bytes, got %d", minSecretLen, len(secret))
	}
	return &Codec{secret: secret, now: now}, nil
}

// Encode builds a signed token carrying payload and subState, valid for ttl.
// It returns the token and the nonce separately so the caller can store the
// nonce out-of-band for double-submit verification at decode time.
func (c *Codec) Encode(payload []byte, subState string, ttl time.Duration) (token, nonce string, err error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	raw := make([]byte, nonceBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate nonce: %w", err)
	}
	nonce = hex.EncodeToString(raw)

	issuedAt := c.now().UnixMilli()
	expiresAt := issuedAt + ttl.Milliseconds()

	signingInput := strings.Join([]string{
		encoding.EncodeToString(payload),
		encoding.EncodeToString([]byte(subState)),
		nonce,
		strconv.FormatInt(issuedAt, 10),
		strconv.FormatInt(expiresAt, 10),
	}, delimiter)

	return signingInput + delimiter + encoding.EncodeToString(c.sign(signingInput)), nonce, nil
}

// Decode verifies a token. When expectedNonce is non-empty it must match the
// token's embedded nonce exactly; this is the anti-CSRF double-submit check.
// Expiry is enforced after signature verification so an expired-but-valid
// token is indistinguishable in timing from a forged one.
func (c *Codec) Decode(token, expectedNonce string) DecodeResult {
	parts := strings.Split(token, delimiter)
	if len(parts) != fieldCount {
		return DecodeResult{Reason: ReasonMalformed}
	}

	signingInput := strings.Join(parts[:fieldCount-1], delimiter)
	got, err := encoding.DecodeString(parts[fieldCount-1])
	if err != nil {
		return DecodeResult{Reason: ReasonInvalidSignature}
	}
	// hmac.Equal treats unequal-length buffers as an immediate constant-shape
	// failure; no partial-match leak.
	if !hmac.Equal(got, c.sign(signingInput)) {
		return DecodeResult{Reason: ReasonInvalidSignature}
	}

	nonce := parts[2]
	if expectedNonce != "" && nonce != expectedNonce {
		return DecodeResult{Reason: ReasonNonceMismatch}
	}

	expiresAt, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return DecodeResult{Reason: ReasonMalformed}
	}

	payload, err := encoding.DecodeString(parts[0])
	if err != nil {
		return DecodeResult{Reason: ReasonInvalidPayload}
	}
	subState, err := encoding.DecodeString(parts[1])
	if err != nil {
		return DecodeResult{Reason: ReasonInvalidPayload}
	}

	// An expired token still exposes its payload: the signature already
	// checked out, and error redirects need the embedded callback URL.
	if c.now().UnixMilli() > expiresAt {
		return DecodeResult{Payload: payload, SubState: string(subState), Nonce: nonce, Reason: ReasonExpired}
	}

	return DecodeResult{
		Valid:    true,
		Payload:  payload,
		SubState: string(subState),
		Nonce:    nonce,
	}
}

func (c *Codec) sign(input string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(input))
	return mac.Sum(nil)
}
