package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignatureHeader is the webhook header carrying the request signature.
const SignatureHeader = "x-line-signature"

// Sign computes the base64 HMAC-SHA256 digest of body under the channel
// secret. The digest must be computed over the raw request bytes; a
// re-serialized body would not match.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSignature reports whether signature matches the digest of body.
func ValidateSignature(secret string, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}
