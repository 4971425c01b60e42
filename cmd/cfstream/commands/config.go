package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/cfstream/internal/constants"
	"github.com/fivetwenty-io/cfstream/pkg/stream"
)

// Config represents the CLI configuration file.
type Config struct {
	AccountID string `json:"account_id,omitempty" yaml:"account_id,omitempty"`
	AuthType  string `json:"auth_type,omitempty"  yaml:"auth_type,omitempty"`
	APIToken  string `json:"api_token,omitempty"  yaml:"api_token,omitempty"`
	APIKey    string `json:"api_key,omitempty"    yaml:"api_key,omitempty"`
	Email     string `json:"email,omitempty"      yaml:"email,omitempty"`
	BaseURL   string `json:"base_url,omitempty"   yaml:"base_url,omitempty"`
	Timeout   int    `json:"timeout,omitempty"    yaml:"timeout,omitempty"`
	Output    string `json:"output,omitempty"     yaml:"output,omitempty"`
}

// masked returns a copy safe to print.
func (c Config) masked() Config {
	c.APIToken = maskSecret(c.APIToken)
	c.APIKey = maskSecret(c.APIKey)

	return c
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage cfstream CLI configuration stored in ~/.cfstream/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigPathCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration with credentials masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig().masked()

			return renderOutput(cmd.OutOrStdout(), config, func(out io.Writer) error {
				return renderPropertyTable(out, [][]string{
					{"Account ID", formatValue(config.AccountID)},
					{"Auth Type", formatValue(config.AuthType)},
					{"API Token", formatValue(config.APIToken)},
					{"API Key", formatValue(config.APIKey)},
					{"Email", formatValue(config.Email)},
					{"Base URL", formatValue(config.BaseURL)},
					{"Timeout", formatValue(formatTimeout(config.Timeout))},
					{"Output", formatValue(config.Output)},
				})
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Keys: account_id, auth_type, api_token, api_key, email, base_url, timeout, output`,
		Args: cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			config := loadConfig()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if key == keyAPIToken || key == keyAPIKey {
				value = Masked
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Set", key, value)
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			config := loadConfig()

			err := unsetConfigValue(config, key)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Unset", key, "")
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)

			return err
		},
	}
}

// loadConfig reads the effective configuration from viper.
func loadConfig() *Config {
	return &Config{
		AccountID: viper.GetString(keyAccountID),
		AuthType:  viper.GetString(keyAuthType),
		APIToken:  viper.GetString(keyAPIToken),
		APIKey:    viper.GetString(keyAPIKey),
		Email:     viper.GetString(keyEmail),
		BaseURL:   viper.GetString(keyBaseURL),
		Timeout:   viper.GetInt(keyTimeout),
		Output:    viper.GetString(keyOutput),
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case keyAccountID:
		config.AccountID = value
	case keyAuthType:
		authType := stream.AuthType(value)
		if authType != stream.AuthTypeToken && authType != stream.AuthTypeKey {
			return stream.NewConfigurationError(stream.MessageInvalidAuthType)
		}

		config.AuthType = value
	case keyAPIToken:
		config.APIToken = value
	case keyAPIKey:
		config.APIKey = value
	case keyEmail:
		config.Email = value
	case keyBaseURL:
		config.BaseURL = value
	case keyTimeout:
		timeout, err := strconv.Atoi(value)
		if err != nil || timeout <= 0 {
			return fmt.Errorf("%w: %s", constants.ErrInvalidTimeout, value)
		}

		config.Timeout = timeout
	case keyOutput:
		switch value {
		case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			config.Output = value
		default:
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutput, value)
		}
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	viper.Set(key, value)

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case keyAccountID:
		config.AccountID = ""
	case keyAuthType:
		config.AuthType = ""
	case keyAPIToken:
		config.APIToken = ""
	case keyAPIKey:
		config.APIKey = ""
	case keyEmail:
		config.Email = ""
	case keyBaseURL:
		config.BaseURL = ""
	case keyTimeout:
		config.Timeout = 0
	case keyOutput:
		config.Output = ""
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// configFilePath returns the file in use, or ~/.cfstream/config.yml.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	configDir, err := homeConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, constants.ConfigFileName+"."+constants.ConfigFileType), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func outputConfigUpdateResult(out io.Writer, action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	return renderOutput(out, result, func(out io.Writer) error {
		rows := [][]string{{"Action", action}, {"Key", key}}
		if value != "" {
			rows = append(rows, []string{"Value", value})
		}

		return renderPropertyTable(out, rows)
	})
}

func formatTimeout(seconds int) string {
	if seconds <= 0 {
		return ""
	}

	return strconv.Itoa(seconds) + "s"
}
