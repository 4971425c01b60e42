package stream

import (
	"net/http"
	"time"
)

// AuthType selects how requests are authenticated.
type AuthType string

// Supported authentication types.
const (
	// AuthTypeToken authenticates with an API token sent as a Bearer token.
	AuthTypeToken AuthType = "token"
	// AuthTypeKey authenticates with the legacy global API key and account email.
	AuthTypeKey AuthType = "key"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a stream.Client.
//
// # Authentication
//
// AuthType defaults to AuthTypeToken. Token authentication needs APIToken;
// key authentication needs both APIKey and Email. AccountID is always
// required since every Stream endpoint is scoped to an account.
//
// # Timeouts and retries
//
// Timeout bounds each request and defaults to 30 seconds. Requests are sent
// exactly once unless RetryMax is raised; the client never retries on its own.
type Config struct {
	// AuthType: "token" (default) or "key".
	AuthType AuthType
	// APIToken: Cloudflare API token with Stream permissions.
	APIToken string
	// APIKey: global API key, used with Email when AuthType is "key".
	APIKey string
	// Email: account email, used with APIKey when AuthType is "key".
	Email string
	// AccountID: Cloudflare account identifier. Required.
	AccountID string
	// BaseURL: API root, defaults to https://api.cloudflare.com/client/v4.
	BaseURL string
	// Timeout: per-request timeout. Zero or negative means the default.
	Timeout time.Duration

	// RetryMax: opt-in retries for the default transport. Zero sends each
	// request once.
	RetryMax int
	// Debug: enables HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Interceptors: optional hooks run by the default transport around every
	// call, e.g. StaticHeaders or RequestLogger.
	Interceptors *InterceptorChain
	// HTTPClient: optional *http.Client for the default transport, e.g. to
	// set a proxy or TLS configuration.
	HTTPClient *http.Client
}

// ResolvedAuthType returns the configured AuthType, defaulting to token.
func (c *Config) ResolvedAuthType() AuthType {
	if c.AuthType == "" {
		return AuthTypeToken
	}

	return c.AuthType
}

// Validate checks the configuration in the order the client relies on: the
// account first, then the credentials of the selected auth type.
func (c *Config) Validate() error {
	if c == nil {
		return &Error{Kind: KindConfiguration, Message: ErrConfigRequired.Error(), Err: ErrConfigRequired}
	}

	if c.AccountID == "" {
		return NewConfigurationError(MessageAccountIDRequired)
	}

	switch c.ResolvedAuthType() {
	case AuthTypeToken:
		if c.APIToken == "" {
			return NewConfigurationError(MessageAPITokenRequired)
		}
	case AuthTypeKey:
		if c.APIKey == "" || c.Email == "" {
			return NewConfigurationError(MessageAPIKeyEmailRequired)
		}
	default:
		return NewConfigurationError(MessageInvalidAuthType)
	}

	return nil
}
