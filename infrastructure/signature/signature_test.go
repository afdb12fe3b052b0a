package signature_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"instagram-relay/infrastructure/signature"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerify_ValidSignature(t *testing.T) {
	v := signature.NewVerifier("app-secret")
	body := []byte(`{"object":"instagram","entry":[]}`)
	assert.True(t, v.Verify(body, sign("app-secret", body)))
}

func TestVerify_MutatedBody(t *testing.T) {
	v := signature.NewVerifier("app-secret")
	body := []byte(`{"object":"instagram","entry":[]}`)
	header := sign("app-secret", body)

	mutated := append([]byte{}, body...)
	mutated[0] = ' '
	assert.False(t, v.Verify(mutated, header))
}

func TestVerify_WrongSecret(t *testing.T) {
	v := signature.NewVerifier("app-secret")
	body := []byte(`{}`)
	assert.False(t, v.Verify(body, sign("other-secret", body)))
}

func TestVerify_FailsClosed(t *testing.T) {
	body := []byte(`{}`)
	valid := sign("app-secret", body)

	v := signature.NewVerifier("app-secret")
	assert.False(t, v.Verify(body, ""), "missing header")
	assert.False(t, v.Verify(body, "sha1=abcdef"), "wrong prefix")
	assert.False(t, v.Verify(body, "sha256=not-hex"), "undecodable hex")
	assert.False(t, v.Verify(body, "sha256=abcd"), "truncated digest")

	empty := signature.NewVerifier("")
	assert.False(t, empty.Verify(body, valid), "missing secret")
}
