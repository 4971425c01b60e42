package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/cfstream/internal/constants"
	"github.com/fivetwenty-io/cfstream/pkg/stream"
)

// Client is the default stream.Transport. It sends each request once unless
// retries are configured explicitly with WithRetryConfig.
type Client struct {
	client       *retryablehttp.Client
	logger       stream.Logger
	debug        bool
	userAgent    string
	interceptors *stream.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output and by the retry layer.
func WithLogger(logger stream.Logger) Option {
	return func(c *Client) {
		c.logger = logger
		if logger != nil {
			c.client.Logger = &leveledLogger{logger: logger}
		}
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig opts into retries of transient failures (connection
// errors, 429 and 5xx other than 501).
func WithRetryConfig(retryMax int, retryWaitMin, retryWaitMax time.Duration) Option {
	return func(c *Client) {
		c.client.RetryMax = retryMax
		c.client.RetryWaitMin = retryWaitMin
		c.client.RetryWaitMax = retryWaitMax
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client.HTTPClient = httpClient
		}
	}
}

// WithInterceptors installs an interceptor chain. A nil chain runs nothing.
func WithInterceptors(chain *stream.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a new HTTP transport.
func NewClient(opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	// Failing responses are handed back untouched; classifying them is the
	// API client's job.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		client:    retryClient,
		userAgent: constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do implements stream.Transport.
func (c *Client) Do(ctx context.Context, req *stream.Request) (*stream.Response, error) {
	err := c.interceptors.BeforeSend(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body interface{}
	if len(req.Body) > 0 {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	if httpReq.Header.Get(constants.HeaderUserAgent) == "" && c.userAgent != "" {
		httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    req.URL,
			"bytes":  len(req.Body),
		})
	}

	start := time.Now()

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		observeRequest(req.Method, 0, time.Since(start))
		_ = c.interceptors.AfterReceive(ctx, req, &stream.Response{Error: err})

		return nil, fmt.Errorf("sending %s request: %w", req.Method, err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		observeRequest(req.Method, 0, time.Since(start))

		return nil, fmt.Errorf("reading response body: %w", err)
	}

	duration := time.Since(start)
	observeRequest(req.Method, httpResp.StatusCode, duration)

	resp := &stream.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         req.URL,
			"status_code": resp.StatusCode,
			"duration_ms": duration.Milliseconds(),
		})
	}

	err = c.interceptors.AfterReceive(ctx, req, resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// leveledLogger adapts stream.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger stream.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = "arg" + strconv.Itoa(i)
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}
