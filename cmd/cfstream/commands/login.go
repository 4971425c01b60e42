package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/cfstream/internal/constants"
	"github.com/fivetwenty-io/cfstream/pkg/stream"
)

// prompter reads answers from the command's input.
type prompter struct {
	out    io.Writer
	reader *bufio.Reader
	in     io.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{
		out:    cmd.OutOrStdout(),
		reader: bufio.NewReader(cmd.InOrStdin()),
		in:     cmd.InOrStdin(),
	}
}

// ask prints label and reads one line. A last line without a newline still
// counts; input that ends before any answer is ErrNoInput.
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)

	answer, err := p.reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}

		if answer == "" {
			return "", fmt.Errorf("%w: %s", constants.ErrNoInput, label)
		}
	}

	return strings.TrimSpace(answer), nil
}

// askSecret hides the input when reading from a terminal.
func (p *prompter) askSecret(label string) (string, error) {
	file, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return p.ask(label)
	}

	fmt.Fprintf(p.out, "%s: ", label)

	secret, err := term.ReadPassword(int(file.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}

	fmt.Fprintln(p.out)

	return strings.TrimSpace(string(secret)), nil
}

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store Cloudflare credentials",
		Long: `Prompt for the account ID and credentials not given as flags, verify them
by listing live inputs, and save them to the configuration file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := newPrompter(cmd)
			config := loadConfig()

			if config.AccountID == "" {
				accountID, err := prompt.ask("Account ID")
				if err != nil {
					return err
				}

				config.AccountID = accountID
			}

			if config.AccountID == "" {
				return constants.ErrNoAccountID
			}

			authType := stream.AuthType(config.AuthType)
			if authType == "" {
				authType = stream.AuthTypeToken
			}

			switch authType {
			case stream.AuthTypeToken:
				if config.APIToken == "" {
					token, err := prompt.askSecret("API token")
					if err != nil {
						return err
					}

					config.APIToken = token
				}

				if config.APIToken == "" {
					return fmt.Errorf("%w: API token", constants.ErrCredentialRequired)
				}
			case stream.AuthTypeKey:
				if config.Email == "" {
					email, err := prompt.ask("Email")
					if err != nil {
						return err
					}

					config.Email = email
				}

				if config.APIKey == "" {
					key, err := prompt.askSecret("API key")
					if err != nil {
						return err
					}

					config.APIKey = key
				}

				if config.Email == "" || config.APIKey == "" {
					return fmt.Errorf("%w: API key and email", constants.ErrCredentialRequired)
				}
			default:
				return stream.NewConfigurationError(stream.MessageInvalidAuthType)
			}

			config.AuthType = string(authType)

			viper.Set(keyAccountID, config.AccountID)
			viper.Set(keyAuthType, config.AuthType)
			viper.Set(keyAPIToken, config.APIToken)
			viper.Set(keyAPIKey, config.APIKey)
			viper.Set(keyEmail, config.Email)

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			liveInputs, err := client.LiveInputs().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to verify credentials: %w", err)
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully logged in to account %s\n", config.AccountID)
			fmt.Fprintf(cmd.OutOrStdout(), "Live inputs: %d\n", len(liveInputs))

			return nil
		},
	}
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long:  "Clear the API token, API key and email from the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.APIToken = ""
			config.APIKey = ""
			config.Email = ""

			viper.Set(keyAPIToken, "")
			viper.Set(keyAPIKey, "")
			viper.Set(keyEmail, "")

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")

			return nil
		},
	}
}
