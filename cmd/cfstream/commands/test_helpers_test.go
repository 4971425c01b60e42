package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// isolateCLI gives the test a fresh viper and an empty home directory.
func isolateCLI(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)

	for _, key := range []string{
		"CLOUDFLARE_AUTH_TYPE", "CLOUDFLARE_API_TOKEN", "CLOUDFLARE_API_KEY", "CLOUDFLARE_EMAIL",
		"CLOUDFLARE_ACCOUNT_ID", "CLOUDFLARE_API_BASE_URL", "CLOUDFLARE_API_TIMEOUT", "CLOUDFLARE_OUTPUT",
	} {
		t.Setenv(key, "")
	}

	viper.Reset()
	t.Cleanup(viper.Reset)

	return home
}

// runCLI executes the root command with args and returns its output.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand("1.2.3", "abc123", "2026-01-01")

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]interface{}
}

// fakeStreamAPI is an httptest server answering live input calls with
// canned envelopes.
type fakeStreamAPI struct {
	server   *httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	envelope map[string]interface{}
}

func newFakeStreamAPI(t *testing.T, status int, envelope map[string]interface{}) *fakeStreamAPI {
	t.Helper()

	api := &fakeStreamAPI{status: status, envelope: envelope}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded := recordedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()}

		if r.ContentLength > 0 {
			err := json.NewDecoder(r.Body).Decode(&recorded.Body)
			if err != nil {
				t.Errorf("decoding request body: %v", err)
			}
		}

		api.mu.Lock()
		api.requests = append(api.requests, recorded)
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(api.status)
		_ = json.NewEncoder(w).Encode(api.envelope)
	}))
	t.Cleanup(api.server.Close)

	return api
}

func (a *fakeStreamAPI) last(t *testing.T) recordedRequest {
	t.Helper()

	a.mu.Lock()
	defer a.mu.Unlock()

	require.NotEmpty(t, a.requests)

	return a.requests[len(a.requests)-1]
}

func (a *fakeStreamAPI) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.requests)
}

func (a *fakeStreamAPI) args(extra ...string) []string {
	return append([]string{"--account-id", "acc123", "--api-token", "token", "--base-url", a.server.URL}, extra...)
}

func sampleLiveInput() map[string]interface{} {
	return map[string]interface{}{
		"uid":      "66be4bf738797e01e1fca35a7bdecdcd",
		"meta":     map[string]interface{}{"name": "studio", "team": "video"},
		"created":  "2021-09-23T05:05:53.451415Z",
		"modified": "2021-09-23T05:05:53.451415Z",
		"rtmps": map[string]interface{}{
			"url":       "rtmps://live.cloudflare.com:443/live/",
			"streamKey": "secret-key",
		},
		"srt": map[string]interface{}{
			"url":      "srt://live.cloudflare.com:778",
			"streamId": "f256e6ea9341d51eea64c9454659e576",
		},
		"recording": map[string]interface{}{"mode": "automatic", "timeoutSeconds": 10},
	}
}
