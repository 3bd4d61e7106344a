package elevenlabs

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader is the request header carrying the webhook signature
const SignatureHeader = "ElevenLabs-Signature"

// DefaultSignatureTolerance bounds how old a signed delivery may be
const DefaultSignatureTolerance = 30 * time.Minute

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrBadSignature     = errors.New("webhook signature mismatch")
	ErrStaleSignature   = errors.New("webhook signature timestamp outside tolerance")
)

// VerifySignature checks a "t=<unix>,v0=<hex>" header against body, where the
// digest is HMAC-SHA256 of "<t>.<body>" keyed by secret.
func VerifySignature(secret, header string, body []byte, now time.Time, tolerance time.Duration) error {
	if secret == "" || header == "" {
		return ErrMissingSignature
	}

	var timestamp, digest string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v0":
			digest = value
		}
	}
	if timestamp == "" || digest == "" {
		return ErrMissingSignature
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	age := now.Sub(time.Unix(unix, 0))
	if age < -tolerance || age > tolerance {
		return ErrStaleSignature
	}

	signed := make([]byte, 0, len(timestamp)+1+len(body))
	signed = append(signed, timestamp...)
	signed = append(signed, '.')
	signed = append(signed, body...)
	if !verifyHMAC(secret, signed, digest) {
		return ErrBadSignature
	}
	return nil
}

// Sign produces a header value for body, used by tests and local replay tools
func Sign(secret string, body []byte, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return "t=" + timestamp + ",v0=" + hex.EncodeToString(mac.Sum(nil))
}

// verifyHMAC verifies a sha256 HMAC hex signature against payload and secret
func verifyHMAC(secret string, payload []byte, signatureHex string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signatureHex))
}
