package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// API defaults.
const (
	// DefaultBaseURL is the production Cloudflare API root.
	DefaultBaseURL = "https://api.cloudflare.com/client/v4"

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultUserAgent is sent when the config does not override it.
	DefaultUserAgent = "cfstream-go"
)

// Retry settings, used only when a caller opts into retries.
const (
	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Header names.
const (
	HeaderAccept        = "Accept"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
	HeaderAuthEmail     = "X-Auth-Email"
	HeaderAuthKey       = "X-Auth-Key"

	// ContentTypeJSON is the only media type the API speaks.
	ContentTypeJSON = "application/json"

	// BearerPrefix precedes API tokens in the Authorization header.
	BearerPrefix = "Bearer "
)

// URL segments.
const (
	// AccountsPath precedes the account identifier.
	AccountsPath = "/accounts/"

	// StreamPath follows the account identifier.
	StreamPath = "/stream/"

	// LiveInputsEndpoint is the live inputs collection, relative to StreamPath.
	LiveInputsEndpoint = "live_inputs"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// CLI settings.
const (
	// ConfigDirName is the configuration directory under the user's home.
	ConfigDirName = ".cfstream"

	// ConfigFileName is the configuration file name, without extension.
	ConfigFileName = "config"

	// ConfigFileType is the configuration file format.
	ConfigFileType = "yml"

	// EnvPrefix is the environment variable prefix read by the CLI and NewFromEnv.
	EnvPrefix = "CLOUDFLARE"

	// MinimumArgumentCount is the argument count of "config set KEY VALUE".
	MinimumArgumentCount = 2

	// TimestampFormat is used for table output.
	TimestampFormat = "2006-01-02 15:04:05"

	// NotAvailable is shown in tables for missing values.
	NotAvailable = "N/A"
)
