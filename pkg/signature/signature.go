// Package signature signs and verifies webhook payloads.
//
// The signed string is "<unix timestamp>.<raw payload>" and the signature
// header has the form "t=<unix timestamp>,v1=<hex hmac-sha256>".
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const DefaultTolerance = 300 * time.Second

type Signer struct {
	tolerance time.Duration

	now func() time.Time // overridable in tests
}

type Option func(*Signer)

func WithTolerance(tolerance time.Duration) Option {
	return func(s *Signer) {
		s.tolerance = tolerance
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

func NewSigner(opts ...Option) *Signer {
	s := &Signer{
		tolerance: DefaultTolerance,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func compute(ts time.Time, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// Sign returns the hex-encoded HMAC-SHA256 of "<ts>.<payload>".
func (s *Signer) Sign(ts time.Time, payload []byte, secret string) string {
	return hex.EncodeToString(compute(ts, payload, secret))
}

// Header returns the full signature header value for payload.
func (s *Signer) Header(ts time.Time, payload []byte, secret string) string {
	return "t=" + strconv.FormatInt(ts.Unix(), 10) + ",v1=" + s.Sign(ts, payload, secret)
}

// Verify checks a signature header against the raw payload. It fails closed:
// a malformed header, a timestamp older than the tolerance, or a signature
// mismatch all return false. The comparison is constant time.
func (s *Signer) Verify(payload []byte, header string, secret string) bool {
	var ts int64
	var provided []byte
	seen := false

	for _, field := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return false
			}
			ts = n
		case "v1":
			decoded, err := hex.DecodeString(v)
			if err != nil {
				return false
			}
			provided = decoded
			seen = true
		}
	}

	if ts == 0 || !seen {
		return false
	}

	if s.now().Unix()-ts > int64(s.tolerance/time.Second) {
		return false
	}

	expected := compute(time.Unix(ts, 0), payload, secret)
	return hmac.Equal(expected, provided)
}
