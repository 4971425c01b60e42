package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	streamhttp "github.com/fivetwenty-io/cfstream/internal/http"
	"github.com/fivetwenty-io/cfstream/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *MockLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := make([]string, 0, len(l.logs))
	for _, entry := range l.logs {
		msgs = append(msgs, entry["msg"].(string))
	}

	return msgs
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/accounts/acc/stream/live_inputs", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Equal(t, "cfstream-go", request.Header.Get("User-Agent"))

			_ = json.NewEncoder(writer).Encode(map[string]interface{}{"success": true, "result": []interface{}{}})
		}))
		defer server.Close()

		client := streamhttp.NewClient()

		resp, err := client.Do(context.Background(), &stream.Request{
			Method: "GET",
			URL:    server.URL + "/accounts/acc/stream/live_inputs",
			Headers: http.Header{
				"Authorization": []string{"Bearer test-token"},
				"Accept":        []string{"application/json"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.False(t, resp.Failed())

		var envelope stream.Envelope

		require.NoError(t, resp.Decode(&envelope))
		require.NotNil(t, envelope.Success)
		assert.True(t, *envelope.Success)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			body, _ := io.ReadAll(request.Body)
			assert.JSONEq(t, `{"meta":{"name":"test"}}`, string(body))

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := streamhttp.NewClient()

		resp, err := client.Do(context.Background(), &stream.Request{
			Method:  "POST",
			URL:     server.URL + "/live_inputs",
			Headers: http.Header{"Content-Type": []string{"application/json"}},
			Body:    []byte(`{"meta":{"name":"test"}}`),
		})
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("failing status is returned, not raised", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"success":false,"errors":[{"code":10003,"message":"Not found"}]}`))
		}))
		defer server.Close()

		client := streamhttp.NewClient()

		resp, err := client.Do(context.Background(), &stream.Request{Method: "GET", URL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.True(t, resp.Failed())
		assert.Contains(t, string(resp.Body), "Not found")
	})

	t.Run("server error is sent once and returned", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := streamhttp.NewClient()

		resp, err := client.Do(context.Background(), &stream.Request{Method: "GET", URL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})

	t.Run("custom user agent", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "my-app/1.0", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := streamhttp.NewClient(streamhttp.WithUserAgent("my-app/1.0"))

		resp, err := client.Do(context.Background(), &stream.Request{Method: "GET", URL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("timeout surfaces as transport error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-request.Context().Done():
			}
		}))
		defer server.Close()

		client := streamhttp.NewClient()

		resp, err := client.Do(context.Background(), &stream.Request{
			Method:  "GET",
			URL:     server.URL,
			Timeout: 20 * time.Millisecond,
		})
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, stream.IsTimeout(err))
	})

	t.Run("connection failure surfaces as transport error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		url := server.URL
		server.Close()

		client := streamhttp.NewClient()

		resp, err := client.Do(context.Background(), &stream.Request{Method: "GET", URL: url})
		require.Error(t, err)
		assert.Nil(t, resp)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{"success": true})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := streamhttp.NewClient(streamhttp.WithLogger(logger), streamhttp.WithDebug(true))

		_, err := client.Do(context.Background(), &stream.Request{Method: "GET", URL: server.URL})
		require.NoError(t, err)

		msgs := logger.messages()
		assert.Contains(t, msgs, "HTTP Request")
		assert.Contains(t, msgs, "HTTP Response")
	})

	t.Run("without debug nothing is logged by the transport", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := streamhttp.NewClient(streamhttp.WithLogger(logger))

		_, err := client.Do(context.Background(), &stream.Request{Method: "GET", URL: server.URL})
		require.NoError(t, err)

		assert.NotContains(t, logger.messages(), "HTTP Request")
		assert.NotContains(t, logger.messages(), "HTTP Response")
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	t.Run("request interceptor adds headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "trace-1", request.Header.Get("X-Trace-Id"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		chain := stream.NewInterceptorChain().OnRequest(stream.StaticHeaders(map[string]string{"X-Trace-Id": "trace-1"}))

		client := streamhttp.NewClient(streamhttp.WithInterceptors(chain))

		_, err := client.Do(context.Background(), &stream.Request{Method: "GET", URL: server.URL})
		require.NoError(t, err)
	})

	t.Run("request interceptor error stops the call", func(t *testing.T) {
		t.Parallel()

		var called int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&called, 1)
		}))
		defer server.Close()

		errBlocked := errors.New("blocked")
		chain := stream.NewInterceptorChain().OnRequest(func(ctx context.Context, req *stream.Request) error {
			return errBlocked
		})

		client := streamhttp.NewClient(streamhttp.WithInterceptors(chain))

		_, err := client.Do(context.Background(), &stream.Request{Method: "GET", URL: server.URL})
		require.Error(t, err)
		require.ErrorIs(t, err, errBlocked)
		assert.Equal(t, int32(0), atomic.LoadInt32(&called))
	})

	t.Run("response interceptors see status codes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		logger := &MockLogger{}
		chain := stream.NewInterceptorChain().
			OnRequest(stream.RequestLogger(logger)).
			OnResponse(stream.ResponseLogger(logger))

		client := streamhttp.NewClient(streamhttp.WithInterceptors(chain))

		resp, err := client.Do(context.Background(), &stream.Request{Method: "GET", URL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, 403, resp.StatusCode)
		assert.Equal(t, []string{"Stream API request", "Stream API request rejected"}, logger.messages())
	})

	t.Run("response interceptors see transport failures", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		url := server.URL
		server.Close()

		var seen *stream.Response

		chain := stream.NewInterceptorChain().OnResponse(func(ctx context.Context, req *stream.Request, resp *stream.Response) error {
			seen = resp

			return nil
		})

		client := streamhttp.NewClient(streamhttp.WithInterceptors(chain))

		_, err := client.Do(context.Background(), &stream.Request{
			Method:   "GET",
			URL:      url,
			Metadata: map[string]interface{}{stream.MetadataEndpoint: "live_inputs"},
		})
		require.Error(t, err)
		require.NotNil(t, seen)
		require.Error(t, seen.Error)
		assert.Equal(t, 0, seen.StatusCode)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()

	t.Run("retries on 5xx errors when enabled", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := streamhttp.NewClient(streamhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Do(context.Background(), &stream.Request{Method: "GET", URL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("returns last response when retries run out", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := streamhttp.NewClient(streamhttp.WithRetryConfig(2, 5*time.Millisecond, 10*time.Millisecond))

		resp, err := client.Do(context.Background(), &stream.Request{Method: "GET", URL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := streamhttp.NewClient(streamhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Do(context.Background(), &stream.Request{Method: "GET", URL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})
}
