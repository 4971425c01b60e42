package cfstream

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/fivetwenty-io/cfstream/internal/client"
	"github.com/fivetwenty-io/cfstream/internal/constants"
	internalhttp "github.com/fivetwenty-io/cfstream/internal/http"
	"github.com/fivetwenty-io/cfstream/pkg/stream"
)

// EnvConfig is the environment form of stream.Config.
type EnvConfig struct {
	AuthType  string `envconfig:"AUTH_TYPE"    default:"token"`
	APIToken  string `envconfig:"API_TOKEN"`
	APIKey    string `envconfig:"API_KEY"`
	Email     string `envconfig:"EMAIL"`
	AccountID string `envconfig:"ACCOUNT_ID"`
	BaseURL   string `envconfig:"API_BASE_URL" default:"https://api.cloudflare.com/client/v4"`
	// Timeout in seconds.
	Timeout int `envconfig:"API_TIMEOUT" default:"30"`
}

// Config converts the environment values into a stream.Config.
func (e EnvConfig) Config() *stream.Config {
	return &stream.Config{
		AuthType:  stream.AuthType(e.AuthType),
		APIToken:  e.APIToken,
		APIKey:    e.APIKey,
		Email:     e.Email,
		AccountID: e.AccountID,
		BaseURL:   e.BaseURL,
		Timeout:   time.Duration(e.Timeout) * time.Second,
	}
}

// LoadEnvConfig reads CLOUDFLARE_* variables.
func LoadEnvConfig() (*EnvConfig, error) {
	var envConfig EnvConfig

	err := envconfig.Process(constants.EnvPrefix, &envConfig)
	if err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	return &envConfig, nil
}

// New creates a client that uses the default HTTP transport.
func New(config *stream.Config) (stream.Client, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	return NewWithTransport(config, NewTransport(config))
}

// NewWithTransport creates a client that sends every request through transport.
func NewWithTransport(config *stream.Config, transport stream.Transport) (stream.Client, error) {
	c, err := client.New(config, transport)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// NewWithToken creates a client authenticated with an API token.
func NewWithToken(accountID, apiToken string) (stream.Client, error) {
	return New(&stream.Config{
		AuthType:  stream.AuthTypeToken,
		APIToken:  apiToken,
		AccountID: accountID,
	})
}

// NewWithKey creates a client authenticated with the global API key.
func NewWithKey(accountID, email, apiKey string) (stream.Client, error) {
	return New(&stream.Config{
		AuthType:  stream.AuthTypeKey,
		APIKey:    apiKey,
		Email:     email,
		AccountID: accountID,
	})
}

// NewFromEnv creates a client from CLOUDFLARE_* environment variables.
func NewFromEnv() (stream.Client, error) {
	envConfig, err := LoadEnvConfig()
	if err != nil {
		return nil, stream.NewConfigurationError(err.Error())
	}

	return New(envConfig.Config())
}

// NewTransport builds the default HTTP transport for config.
func NewTransport(config *stream.Config) stream.Transport {
	opts := []internalhttp.Option{
		internalhttp.WithDebug(config.Debug),
	}

	if config.Logger != nil {
		opts = append(opts, internalhttp.WithLogger(config.Logger))
	}

	if config.UserAgent != "" {
		opts = append(opts, internalhttp.WithUserAgent(config.UserAgent))
	}

	if config.Interceptors != nil {
		opts = append(opts, internalhttp.WithInterceptors(config.Interceptors))
	}

	if config.HTTPClient != nil {
		opts = append(opts, internalhttp.WithHTTPClient(config.HTTPClient))
	}

	if config.RetryMax > 0 {
		opts = append(opts, internalhttp.WithRetryConfig(config.RetryMax, constants.DefaultRetryWaitMin, constants.DefaultRetryWaitMax))
	}

	return internalhttp.NewClient(opts...)
}
