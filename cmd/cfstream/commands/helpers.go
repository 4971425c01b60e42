package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/cfstream/internal/constants"
	"github.com/fivetwenty-io/cfstream/pkg/cfstream"
	"github.com/fivetwenty-io/cfstream/pkg/stream"
)

// Common string constants used throughout the commands package.
const (
	Yes    = "yes"
	No     = "no"
	Masked = "***"

	// JSON formatting.
	defaultJSONIndent = 2
)

// Viper keys shared by flags, the config file and the environment.
const (
	keyAccountID = "account_id"
	keyAuthType  = "auth_type"
	keyAPIToken  = "api_token"
	keyAPIKey    = "api_key"
	keyEmail     = "email"
	keyBaseURL   = "base_url"
	keyTimeout   = "timeout"
	keyOutput    = "output"
	keyVerbose   = "verbose"
)

// flagHeader is read from the command line only, never from config or env.
const flagHeader = "header"

// clientFactory builds the API client used by commands.
var clientFactory = cfstream.New

// clientConfigFromViper assembles a stream.Config from flags, the config file
// and CLOUDFLARE_* variables, in viper's precedence order.
func clientConfigFromViper(cmd *cobra.Command) (*stream.Config, error) {
	accountID := viper.GetString(keyAccountID)
	if accountID == "" {
		return nil, constants.ErrNoAccountID
	}

	timeout := viper.GetInt(keyTimeout)
	if timeout < 0 {
		return nil, constants.ErrInvalidTimeout
	}

	config := &stream.Config{
		AuthType:  stream.AuthType(viper.GetString(keyAuthType)),
		APIToken:  viper.GetString(keyAPIToken),
		APIKey:    viper.GetString(keyAPIKey),
		Email:     viper.GetString(keyEmail),
		AccountID: accountID,
		BaseURL:   viper.GetString(keyBaseURL),
		Timeout:   time.Duration(timeout) * time.Second,
	}

	if viper.GetBool(keyVerbose) {
		config.Debug = true
		config.Logger = NewLogger(cmd.ErrOrStderr(), true)
	}

	headers, err := requestHeaders(cmd)
	if err != nil {
		return nil, err
	}

	if len(headers) > 0 {
		config.Interceptors = stream.NewInterceptorChain().OnRequest(stream.StaticHeaders(headers))
	}

	return config, nil
}

// requestHeaders parses the repeated --header flag.
func requestHeaders(cmd *cobra.Command) (map[string]string, error) {
	if cmd.Flag(flagHeader) == nil {
		return nil, nil
	}

	values, err := cmd.Flags().GetStringArray(flagHeader)
	if err != nil {
		return nil, fmt.Errorf("reading --%s: %w", flagHeader, err)
	}

	headers := make(map[string]string, len(values))

	for _, value := range values {
		name, headerValue, found := strings.Cut(value, ":")

		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidHeaderFormat, value)
		}

		headers[name] = strings.TrimSpace(headerValue)
	}

	return headers, nil
}

// createClient creates the API client for a command.
func createClient(cmd *cobra.Command) (stream.Client, error) {
	config, err := clientConfigFromViper(cmd)
	if err != nil {
		return nil, err
	}

	client, err := clientFactory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// outputFormat returns the requested output format.
func outputFormat() (string, error) {
	output := strings.ToLower(viper.GetString(keyOutput))

	switch output {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return output, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidOutput, output)
	}
}

// renderOutput writes data as JSON or YAML, or calls renderTable for the
// table format.
func renderOutput(out io.Writer, data interface{}, renderTable func(io.Writer) error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("failed to encode output as JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("failed to encode output as YAML: %w", err)
		}

		return encoder.Close()
	default:
		return renderTable(out)
	}
}

// renderPropertyTable renders two-column Property/Value rows.
func renderPropertyTable(out io.Writer, rows [][]string) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	for _, row := range rows {
		err := table.Append(row)
		if err != nil {
			return fmt.Errorf("failed to append row to table: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return constants.NotAvailable
	}

	return t.Local().Format(constants.TimestampFormat)
}

func formatValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func formatBool(value bool) string {
	if value {
		return Yes
	}

	return No
}

func maskSecret(value string) string {
	if value == "" {
		return ""
	}

	return Masked
}

func titleCase(value string) string {
	return cases.Title(language.English).String(value)
}

// homeConfigDir returns ~/.cfstream.
func homeConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName), nil
}
