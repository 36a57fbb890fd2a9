package deliverer

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hookrelay-io/hookrelay/config"
	"github.com/hookrelay-io/hookrelay/constants"
)

// HTTPDeliverer delivers via HTTP
type HTTPDeliverer struct {
	defaultTimeout time.Duration
	client         *http.Client
}

func NewHTTPDeliverer(cfg *config.WorkerDeliverer) *HTTPDeliverer {
	return &HTTPDeliverer{
		defaultTimeout: time.Duration(cfg.Timeout) * time.Millisecond,
		client:         &http.Client{},
	}
}

func timing(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}

func (d *HTTPDeliverer) Deliver(ctx context.Context, req *Request) (res *Response) {
	timeout := req.Timeout
	if timeout == 0 {
		timeout = d.defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res = &Response{
		Request: req,
	}

	request, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewBuffer(req.Payload))
	if err != nil {
		res.Error = err
		return
	}

	req.Request = request
	for _, header := range constants.DefaultDelivererRequestHeaders {
		request.Header.Set(header.Name, header.Value)
	}
	for name, value := range req.Headers {
		request.Header.Set(name, value)
	}

	t := timing(func() {
		response, err := d.client.Do(request)
		if err != nil {
			res.Error = err
			return
		}
		defer response.Body.Close()
		res.StatusCode = response.StatusCode
		res.Header = response.Header

		body, err := io.ReadAll(response.Body)
		if err != nil {
			res.Error = err
			return
		}
		res.ResponseBody = body
	})

	res.Latency = t

	return
}
