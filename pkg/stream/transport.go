package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Request is a fully composed HTTP call handed to a Transport.
type Request struct {
	Method   string
	URL      string
	Headers  http.Header
	Body     []byte
	Timeout  time.Duration
	Metadata map[string]interface{}
}

// Response is what a Transport returns when the server answered, whatever
// the status code.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// Failed reports whether the status code is outside the 2xx range.
func (r *Response) Failed() bool {
	return r.StatusCode < http.StatusOK || r.StatusCode >= http.StatusMultipleChoices
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v interface{}) error {
	err := json.Unmarshal(r.Body, v)
	if err != nil {
		return fmt.Errorf("parsing response body: %w", err)
	}

	return nil
}

// Transport issues a single HTTP call. A non-nil error means no status code
// was obtained (connection failure, timeout, cancellation); failing status
// codes are returned as a Response so the caller can classify them.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Do implements Transport.
func (f TransportFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
