package stream

import (
	"context"
	"fmt"
	"net/http"
)

// Request metadata keys set by the client before a request reaches the
// transport.
const (
	// MetadataEndpoint is the endpoint relative to the account's stream path,
	// e.g. "live_inputs/abc".
	MetadataEndpoint = "endpoint"
	// MetadataAccountID is the account the request is scoped to.
	MetadataAccountID = "account_id"
)

// RequestInterceptor may change a request before the default transport sends
// it. An error aborts the call before anything goes on the wire.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor sees every outcome of the default transport. When no
// status was obtained, resp.Error carries the cause and resp.StatusCode is 0.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain runs interceptors in the order they were added. A nil
// chain runs nothing.
type InterceptorChain struct {
	onRequest  []RequestInterceptor
	onResponse []ResponseInterceptor
}

// NewInterceptorChain returns an empty chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{}
}

// OnRequest appends request interceptors and returns c.
func (c *InterceptorChain) OnRequest(interceptors ...RequestInterceptor) *InterceptorChain {
	c.onRequest = append(c.onRequest, interceptors...)

	return c
}

// OnResponse appends response interceptors and returns c.
func (c *InterceptorChain) OnResponse(interceptors ...ResponseInterceptor) *InterceptorChain {
	c.onResponse = append(c.onResponse, interceptors...)

	return c
}

// Len reports how many interceptors the chain holds.
func (c *InterceptorChain) Len() int {
	if c == nil {
		return 0
	}

	return len(c.onRequest) + len(c.onResponse)
}

// BeforeSend runs the request interceptors and stops at the first error.
func (c *InterceptorChain) BeforeSend(ctx context.Context, req *Request) error {
	if c == nil {
		return nil
	}

	for i, intercept := range c.onRequest {
		err := intercept(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor %d: %w", i, err)
		}
	}

	return nil
}

// AfterReceive runs the response interceptors and stops at the first error.
func (c *InterceptorChain) AfterReceive(ctx context.Context, req *Request, resp *Response) error {
	if c == nil {
		return nil
	}

	for i, intercept := range c.onResponse {
		err := intercept(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor %d: %w", i, err)
		}
	}

	return nil
}

// endpointOf prefers the endpoint recorded by the client over the full URL,
// which embeds the account ID.
func endpointOf(req *Request) interface{} {
	if endpoint, ok := req.Metadata[MetadataEndpoint]; ok {
		return endpoint
	}

	return req.URL
}

// RequestLogger logs each outgoing call at debug level. Headers are left out
// since they carry credentials.
func RequestLogger(logger Logger) RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		logger.Debug("Stream API request", map[string]interface{}{
			"method":   req.Method,
			"endpoint": endpointOf(req),
			"bytes":    len(req.Body),
		})

		return nil
	}
}

// ResponseLogger logs each outcome: debug for 2xx, warn for failing statuses
// and for calls that never got a status.
func ResponseLogger(logger Logger) ResponseInterceptor {
	return func(_ context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"method":      req.Method,
			"endpoint":    endpointOf(req),
			"status_code": resp.StatusCode,
		}

		switch {
		case resp.Error != nil:
			fields["error"] = resp.Error.Error()
			logger.Warn("Stream API request failed", fields)
		case resp.Failed():
			logger.Warn("Stream API request rejected", fields)
		default:
			logger.Debug("Stream API response", fields)
		}

		return nil
	}
}

// credentialHeaders are owned by the client and never replaced by
// StaticHeaders.
var credentialHeaders = []string{"Authorization", "X-Auth-Email", "X-Auth-Key"}

// StaticHeaders sets fixed headers on every request. Credential headers in
// headers are ignored.
func StaticHeaders(headers map[string]string) RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header, len(headers))
		}

		for key, value := range headers {
			if isCredentialHeader(key) {
				continue
			}

			req.Headers.Set(key, value)
		}

		return nil
	}
}

func isCredentialHeader(key string) bool {
	canonical := http.CanonicalHeaderKey(key)

	for _, name := range credentialHeaders {
		if canonical == name {
			return true
		}
	}

	return false
}
