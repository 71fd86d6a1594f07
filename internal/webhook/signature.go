package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidSignature is returned when a signature does not match the payload
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrStaleTimestamp is returned when a signature timestamp is outside the tolerance
	ErrStaleTimestamp = errors.New("stale webhook timestamp")
)

const signaturePrefix = "sha256="

// Sign computes the signature header value over {timestamp}.{event_id}.{payload}
func Sign(secret string, timestamp int64, eventID string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(fmt.Sprintf("%d.%s.", timestamp, eventID)))
	h.Write(payload)
	return signaturePrefix + hex.EncodeToString(h.Sum(nil))
}

// GenerateSignedPayload generates a signed webhook payload with HMAC-SHA256 signature
// Returns the JSON payload, signature header value, timestamp, and any error
func GenerateSignedPayload(secret string, event WebhookEvent, now time.Time) (payload []byte, signature string, timestamp int64, err error) {
	payload, err = json.Marshal(event)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	timestamp = now.Unix()
	signature = Sign(secret, timestamp, event.EventID, payload)

	return payload, signature, timestamp, nil
}

// VerifySignature checks a signature header value and rejects timestamps further
// than tolerance from now (0 disables the timestamp check)
func VerifySignature(secret, signature string, timestamp int64, eventID string, payload []byte, now time.Time, tolerance time.Duration) error {
	if !strings.HasPrefix(signature, signaturePrefix) {
		return fmt.Errorf("%w: missing %q prefix", ErrInvalidSignature, signaturePrefix)
	}

	expected := Sign(secret, timestamp, eventID, payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}

	if tolerance > 0 {
		skew := now.Sub(time.Unix(timestamp, 0))
		if skew > tolerance || skew < -tolerance {
			return fmt.Errorf("%w: skew %s", ErrStaleTimestamp, skew)
		}
	}

	return nil
}
