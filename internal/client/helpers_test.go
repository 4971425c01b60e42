package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	internalhttp "github.com/fivetwenty-io/cfstream/internal/http"
	"github.com/fivetwenty-io/cfstream/pkg/stream"
)

// Test static errors.
var (
	ErrTestConnectionRefused = errors.New("connection refused")
)

// recordingTransport answers every call with a fixed response and keeps the
// requests it saw.
type recordingTransport struct {
	mu       sync.Mutex
	requests []*stream.Request
	response *stream.Response
	err      error
}

func (r *recordingTransport) Do(_ context.Context, req *stream.Request) (*stream.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, req)

	if r.err != nil {
		return nil, r.err
	}

	return r.response, nil
}

func (r *recordingTransport) calls() []*stream.Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*stream.Request(nil), r.requests...)
}

func (r *recordingTransport) last(t *testing.T) *stream.Request {
	t.Helper()

	calls := r.calls()
	require.NotEmpty(t, calls, "expected at least one transport call")

	return calls[len(calls)-1]
}

func jsonResponse(statusCode int, body string) *stream.Response {
	return &stream.Response{
		StatusCode: statusCode,
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(body),
	}
}

func testConfig() *stream.Config {
	return &stream.Config{
		AuthType:  stream.AuthTypeToken,
		APIToken:  "test-token",
		AccountID: "acc123",
		BaseURL:   "https://api.example.com/client/v4",
	}
}

// NewTestClient creates a client around a recording transport that always
// answers with the given status and body.
func NewTestClient(t *testing.T, statusCode int, body string) (*Client, *recordingTransport) {
	t.Helper()

	transport := &recordingTransport{response: jsonResponse(statusCode, body)}

	client, err := New(testConfig(), transport)
	require.NoError(t, err)

	return client, transport
}

// NewTestServerClient creates a client that talks to an httptest server
// through the default transport.
func NewTestServerClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := testConfig()
	config.BaseURL = server.URL

	client, err := New(config, internalhttp.NewClient())
	require.NoError(t, err)

	return client
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, statusCode int, envelope map[string]interface{}) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(envelope)
	if err != nil {
		t.Errorf("encoding envelope: %v", err)
	}
}
