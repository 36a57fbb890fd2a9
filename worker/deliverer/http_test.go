package deliverer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hookrelay-io/hookrelay/config"
	"github.com/stretchr/testify/assert"
)

func TestDeliver(t *testing.T) {
	var received *http.Request
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(200)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	cfg := config.WorkerDeliverer{Timeout: 10 * 1000}
	d := NewHTTPDeliverer(&cfg)

	req := &Request{
		URL:     server.URL,
		Method:  "POST",
		Payload: []byte(`{"foo": "bar"}`),
		Headers: map[string]string{
			"X-Key": "value",
		},
	}

	res := d.Deliver(context.Background(), req)
	assert.NoError(t, res.Error)
	assert.Equal(t, 200, res.StatusCode)
	assert.True(t, res.Is2xx())
	assert.Equal(t, `{"ok":true}`, string(res.ResponseBody))
	assert.Equal(t, `{"foo": "bar"}`, string(body))
	assert.Equal(t, "value", received.Header.Get("X-Key"))
	assert.Contains(t, received.Header.Get("User-Agent"), "HookRelay/")
}

func TestDeliverTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
		w.WriteHeader(200)
	}))
	defer server.Close()

	cfg := config.WorkerDeliverer{Timeout: 10 * 1000}
	d := NewHTTPDeliverer(&cfg)

	req := &Request{
		URL:     server.URL,
		Method:  "POST",
		Timeout: time.Millisecond * 10,
	}

	res := d.Deliver(context.Background(), req)
	assert.NotNil(t, res.Error)
	assert.True(t, errors.Is(res.Error, context.DeadlineExceeded))
}

func TestDeliverConnectionError(t *testing.T) {
	cfg := config.WorkerDeliverer{Timeout: 1000}
	d := NewHTTPDeliverer(&cfg)

	req := &Request{
		URL:    "http://127.0.0.1:1", // nothing listens here
		Method: "POST",
	}

	res := d.Deliver(context.Background(), req)
	assert.NotNil(t, res.Error)
	assert.False(t, res.Is2xx())
}
