package signature

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	s := NewSigner()
	ts := time.Unix(1700000000, 0)
	signature := s.Sign(ts, []byte(`{"foo": "bar"}`), "secret")
	assert.Len(t, signature, 64)
	assert.Equal(t, signature, s.Sign(ts, []byte(`{"foo": "bar"}`), "secret"))
}

func TestRoundtrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s := NewSigner(WithClock(func() time.Time { return now }))

	payloads := []string{
		`{}`,
		`{"foo": "bar"}`,
		`plain text`,
		``,
	}
	for _, payload := range payloads {
		header := s.Header(now, []byte(payload), "whsec_1234")
		assert.True(t, s.Verify([]byte(payload), header, "whsec_1234"), payload)
	}
}

func TestVerifyMutation(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s := NewSigner(WithClock(func() time.Time { return now }))

	payload := []byte(`{"foo": "bar"}`)
	header := s.Header(now, payload, "secret")

	t.Run("mutated payload", func(t *testing.T) {
		mutated := []byte(`{"foo": "baz"}`)
		assert.False(t, s.Verify(mutated, header, "secret"))
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, s.Verify(payload, header, "secreT"))
	})

	t.Run("mutated signature", func(t *testing.T) {
		var mutated string
		if strings.HasSuffix(header, "0") {
			mutated = header[:len(header)-1] + "1"
		} else {
			mutated = header[:len(header)-1] + "0"
		}
		assert.False(t, s.Verify(payload, mutated, "secret"))
	})
}

func TestVerifyMalformedHeader(t *testing.T) {
	s := NewSigner()
	payload := []byte(`{}`)

	for _, header := range []string{
		"",
		"t=123",
		"v1=abcd",
		"t=abc,v1=abcd",
		"t=123,v1=zz",
		"garbage",
	} {
		assert.False(t, s.Verify(payload, header, "secret"), header)
	}
}

func TestReplayTolerance(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s := NewSigner(WithClock(func() time.Time { return now }))

	payload := []byte(`{"foo": "bar"}`)

	t.Run("301s old is rejected", func(t *testing.T) {
		header := s.Header(now.Add(-301*time.Second), payload, "secret")
		assert.False(t, s.Verify(payload, header, "secret"))
	})

	t.Run("299s old is accepted", func(t *testing.T) {
		header := s.Header(now.Add(-299*time.Second), payload, "secret")
		assert.True(t, s.Verify(payload, header, "secret"))
	})
}
