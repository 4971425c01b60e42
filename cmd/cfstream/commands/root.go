package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/cfstream/internal/constants"
)

// NewRootCommand builds the cfstream command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cfstream",
		Short: "Cloudflare Stream live input CLI",
		Long: `A command-line interface for managing Cloudflare Stream live inputs.

Credentials are read from flags, CLOUDFLARE_* environment variables or
~/.cfstream/config.yml, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.cfstream/config.yml)")
	flags.String("account-id", "", "Cloudflare account ID")
	flags.String("auth-type", "", "authentication type: token or key")
	flags.String("api-token", "", "API token for token authentication")
	flags.String("api-key", "", "global API key for key authentication")
	flags.String("email", "", "account email for key authentication")
	flags.String("base-url", "", "API base URL")
	flags.Int("timeout", 0, "request timeout in seconds")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.StringArrayP(flagHeader, "H", nil, "extra request header as 'Name: Value' (repeatable)")

	bindings := map[string]string{
		"config":     "config",
		keyAccountID: "account-id",
		keyAuthType:  "auth-type",
		keyAPIToken:  "api-token",
		keyAPIKey:    "api-key",
		keyEmail:     "email",
		keyBaseURL:   "base-url",
		keyTimeout:   "timeout",
		keyOutput:    "output",
		keyVerbose:   "verbose",
	}

	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewLogoutCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewLiveInputsCommand())

	return rootCmd
}

// initConfig wires the config file and CLOUDFLARE_* variables into viper.
func initConfig(cmd *cobra.Command) error {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := homeConfigDir()
		if err != nil {
			return err
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigType(constants.ConfigFileType)
		viper.SetConfigName(constants.ConfigFileName)
	}

	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.AutomaticEnv()

	// These two do not follow the CLOUDFLARE_<KEY> pattern.
	_ = viper.BindEnv(keyBaseURL, constants.EnvPrefix+"_API_BASE_URL")
	_ = viper.BindEnv(keyTimeout, constants.EnvPrefix+"_API_TIMEOUT")

	err := viper.ReadInConfig()
	if err == nil {
		if viper.GetBool(keyVerbose) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
		}

		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || os.IsNotExist(err) {
		return nil
	}

	return fmt.Errorf("failed to read config file: %w", err)
}
