package stream_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/cfstream/pkg/stream"
)

var errTestRejected = errors.New("rejected")

type recordedLog struct {
	level  string
	msg    string
	fields map[string]interface{}
}

type recordingLogger struct {
	entries []recordedLog
}

func (l *recordingLogger) record(level, msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, recordedLog{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.record("debug", msg, fields)
}

func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {
	l.record("info", msg, fields)
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.record("warn", msg, fields)
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.record("error", msg, fields)
}

func TestInterceptorChain_Order(t *testing.T) {
	t.Parallel()

	var order []string

	mark := func(name string) stream.RequestInterceptor {
		return func(context.Context, *stream.Request) error {
			order = append(order, name)

			return nil
		}
	}

	chain := stream.NewInterceptorChain().
		OnRequest(mark("first"), mark("second")).
		OnResponse(func(context.Context, *stream.Request, *stream.Response) error {
			order = append(order, "response")

			return nil
		})

	ctx := context.Background()
	req := &stream.Request{Method: http.MethodGet, URL: "https://api.example.com/x"}

	require.NoError(t, chain.BeforeSend(ctx, req))
	require.NoError(t, chain.AfterReceive(ctx, req, &stream.Response{StatusCode: 200}))
	assert.Equal(t, []string{"first", "second", "response"}, order)
	assert.Equal(t, 3, chain.Len())
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	t.Parallel()

	called := false

	chain := stream.NewInterceptorChain().OnRequest(
		func(context.Context, *stream.Request) error { return errTestRejected },
		func(context.Context, *stream.Request) error {
			called = true

			return nil
		},
	)

	err := chain.BeforeSend(context.Background(), &stream.Request{})
	require.ErrorIs(t, err, errTestRejected)
	assert.Equal(t, "request interceptor 0: rejected", err.Error())
	assert.False(t, called)
}

func TestInterceptorChain_Nil(t *testing.T) {
	t.Parallel()

	var chain *stream.InterceptorChain

	require.NoError(t, chain.BeforeSend(context.Background(), &stream.Request{}))
	require.NoError(t, chain.AfterReceive(context.Background(), &stream.Request{}, &stream.Response{}))
	assert.Zero(t, chain.Len())
}

func TestStaticHeaders(t *testing.T) {
	t.Parallel()

	req := &stream.Request{Headers: http.Header{"Authorization": []string{"Bearer real"}}}

	err := stream.StaticHeaders(map[string]string{
		"X-Trace":       "abc",
		"authorization": "Bearer other",
		"X-Auth-Key":    "k",
	})(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "abc", req.Headers.Get("X-Trace"))
	assert.Equal(t, "Bearer real", req.Headers.Get("Authorization"))
	assert.Empty(t, req.Headers.Get("X-Auth-Key"))

	bare := &stream.Request{}
	require.NoError(t, stream.StaticHeaders(map[string]string{"X-Trace": "abc"})(context.Background(), bare))
	assert.Equal(t, "abc", bare.Headers.Get("X-Trace"))
}

func TestRequestAndResponseLoggers(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	ctx := context.Background()
	req := &stream.Request{
		Method:   http.MethodGet,
		URL:      "https://api.example.com/accounts/a/stream/live_inputs",
		Headers:  http.Header{"Authorization": []string{"Bearer secret"}},
		Metadata: map[string]interface{}{stream.MetadataEndpoint: "live_inputs"},
	}

	require.NoError(t, stream.RequestLogger(logger)(ctx, req))
	require.NoError(t, stream.ResponseLogger(logger)(ctx, req, &stream.Response{StatusCode: 200}))
	require.NoError(t, stream.ResponseLogger(logger)(ctx, req, &stream.Response{StatusCode: 404}))
	require.NoError(t, stream.ResponseLogger(logger)(ctx, req, &stream.Response{Error: errTestRejected}))

	require.Len(t, logger.entries, 4)
	assert.Equal(t, "Stream API request", logger.entries[0].msg)
	assert.Equal(t, "live_inputs", logger.entries[0].fields["endpoint"])
	assert.NotContains(t, logger.entries[0].fields, "headers")
	assert.Equal(t, "Stream API response", logger.entries[1].msg)
	assert.Equal(t, 200, logger.entries[1].fields["status_code"])
	assert.Equal(t, "warn", logger.entries[2].level)
	assert.Equal(t, "Stream API request rejected", logger.entries[2].msg)
	assert.Equal(t, "warn", logger.entries[3].level)
	assert.Equal(t, "rejected", logger.entries[3].fields["error"])
}

func TestRequestLogger_FallsBackToURL(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	req := &stream.Request{Method: http.MethodDelete, URL: "https://api.example.com/x"}

	require.NoError(t, stream.RequestLogger(logger)(context.Background(), req))
	assert.Equal(t, "https://api.example.com/x", logger.entries[0].fields["endpoint"])
}
