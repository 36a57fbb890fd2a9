package deliverer

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type Deliverer interface {
	Deliver(ctx context.Context, req *Request) (res *Response)
}

// Request is an outbound delivery request
type Request struct {
	URL     string
	Method  string
	Payload []byte
	Headers map[string]string
	Timeout time.Duration

	Request *http.Request
}

// Response is the outcome of a delivery
type Response struct {
	StatusCode   int
	Header       http.Header
	ResponseBody []byte
	Latency      time.Duration
	Error        error
	Request      *Request
}

func (r *Response) Is2xx() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

func (r *Response) String() string {
	return fmt.Sprintf("%s %s %d", r.Request.Method, r.Request.URL, r.StatusCode)
}
