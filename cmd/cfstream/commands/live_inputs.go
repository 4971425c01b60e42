package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/cfstream/internal/constants"
	"github.com/fivetwenty-io/cfstream/pkg/stream"
)

// liveInputFlags holds the flags shared by create and update.
type liveInputFlags struct {
	name              string
	meta              []string
	recordingMode     string
	recordingTimeout  int
	requireSignedURLs bool
	allowedOrigins    []string
	deleteAfterDays   int
}

func (f *liveInputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "live input name (stored as meta.name)")
	cmd.Flags().StringArrayVar(&f.meta, "meta", nil, "metadata entry as key=value (repeatable)")
	cmd.Flags().StringVar(&f.recordingMode, "recording-mode", "", "recording mode, sent as given (the API documents off and automatic)")
	cmd.Flags().IntVar(&f.recordingTimeout, "recording-timeout", 0, "seconds to wait for reconnection before ending the recording")
	cmd.Flags().BoolVar(&f.requireSignedURLs, "require-signed-urls", false, "require signed URLs for recordings")
	cmd.Flags().StringArrayVar(&f.allowedOrigins, "allowed-origin", nil, "origin allowed to play recordings (repeatable)")
	cmd.Flags().IntVar(&f.deleteAfterDays, "delete-recording-after-days", 0, "delete recordings after this many days")
}

// buildMeta merges --meta entries with --name. It returns nil when neither
// flag was given.
func (f *liveInputFlags) buildMeta(cmd *cobra.Command) (map[string]interface{}, error) {
	if !cmd.Flags().Changed("meta") && !cmd.Flags().Changed("name") {
		return nil, nil
	}

	meta := make(map[string]interface{}, len(f.meta)+1)

	for _, entry := range f.meta {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %s", constants.ErrInvalidMetaFormat, entry)
		}

		meta[key] = value
	}

	if cmd.Flags().Changed("name") {
		meta["name"] = f.name
	}

	return meta, nil
}

// buildRecording returns the recording settings whose flags were set, or nil.
func (f *liveInputFlags) buildRecording(cmd *cobra.Command) (*stream.Recording, error) {
	flags := cmd.Flags()

	if !flags.Changed("recording-mode") && !flags.Changed("recording-timeout") &&
		!flags.Changed("require-signed-urls") && !flags.Changed("allowed-origin") {
		return nil, nil
	}

	recording := &stream.Recording{}

	if flags.Changed("recording-mode") {
		mode := strings.ToLower(strings.TrimSpace(f.recordingMode))
		if mode == "" {
			return nil, constants.ErrInvalidRecordMode
		}

		recording.Mode = mode
	}

	if flags.Changed("recording-timeout") {
		timeout := f.recordingTimeout
		recording.TimeoutSeconds = &timeout
	}

	if flags.Changed("require-signed-urls") {
		requireSigned := f.requireSignedURLs
		recording.RequireSignedURLs = &requireSigned
	}

	if flags.Changed("allowed-origin") {
		recording.AllowedOrigins = f.allowedOrigins
	}

	return recording, nil
}

func (f *liveInputFlags) buildDeleteAfterDays(cmd *cobra.Command) *int {
	if !cmd.Flags().Changed("delete-recording-after-days") {
		return nil
	}

	days := f.deleteAfterDays

	return &days
}

// NewLiveInputsCommand creates the live-inputs command group.
func NewLiveInputsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "live-inputs",
		Aliases: []string{"live-input", "li"},
		Short:   "Manage live inputs",
		Long:    "List, create, inspect, update and delete Cloudflare Stream live inputs",
	}

	cmd.AddCommand(newLiveInputsListCommand())
	cmd.AddCommand(newLiveInputsGetCommand())
	cmd.AddCommand(newLiveInputsCreateCommand())
	cmd.AddCommand(newLiveInputsUpdateCommand())
	cmd.AddCommand(newLiveInputsDeleteCommand())

	return cmd
}

func newLiveInputsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live inputs",
		Long:  "List all live inputs of the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			liveInputs, err := client.LiveInputs().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list live inputs: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), liveInputs, func(out io.Writer) error {
				return renderLiveInputsTable(out, liveInputs)
			})
		},
	}
}

func newLiveInputsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get LIVE_INPUT_UID",
		Short: "Get live input details",
		Long:  "Display detailed information about a specific live input, including its ingest endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			liveInput, err := client.LiveInputs().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get live input: %w", err)
			}

			return renderLiveInput(cmd.OutOrStdout(), liveInput)
		},
	}
}

func newLiveInputsCreateCommand() *cobra.Command {
	var (
		flags liveInputFlags
		uid   string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a live input",
		Long:  "Create a new live input. Metadata is always sent, empty when no --name or --meta is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := flags.buildMeta(cmd)
			if err != nil {
				return err
			}

			recording, err := flags.buildRecording(cmd)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			liveInput, err := client.LiveInputs().Create(cmd.Context(), &stream.LiveInputCreateRequest{
				Meta:                     meta,
				Recording:                recording,
				UID:                      uid,
				DeleteRecordingAfterDays: flags.buildDeleteAfterDays(cmd),
			})
			if err != nil {
				return fmt.Errorf("failed to create live input: %w", err)
			}

			return renderLiveInput(cmd.OutOrStdout(), liveInput)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&uid, "uid", "", "custom UID for the live input")

	return cmd
}

func newLiveInputsUpdateCommand() *cobra.Command {
	var flags liveInputFlags

	cmd := &cobra.Command{
		Use:   "update LIVE_INPUT_UID",
		Short: "Update a live input",
		Long:  "Update a live input. Only the flags given are sent; everything else is left untouched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := flags.buildMeta(cmd)
			if err != nil {
				return err
			}

			recording, err := flags.buildRecording(cmd)
			if err != nil {
				return err
			}

			request := &stream.LiveInputUpdateRequest{
				Meta:                     meta,
				Recording:                recording,
				DeleteRecordingAfterDays: flags.buildDeleteAfterDays(cmd),
			}

			if request.IsEmpty() {
				return constants.ErrNothingToUpdate
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			liveInput, err := client.LiveInputs().Update(cmd.Context(), args[0], request)
			if err != nil {
				return fmt.Errorf("failed to update live input: %w", err)
			}

			return renderLiveInput(cmd.OutOrStdout(), liveInput)
		},
	}

	flags.register(cmd)

	return cmd
}

func newLiveInputsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete LIVE_INPUT_UID",
		Short: "Delete a live input",
		Long:  "Delete a live input. Recordings already made are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			liveInputID := args[0]

			if !force {
				answer, err := newPrompter(cmd).ask(fmt.Sprintf("Really delete live input '%s'? (y/N)", liveInputID))
				if err != nil {
					if errors.Is(err, constants.ErrNoInput) {
						return fmt.Errorf("%w, use --force to delete without a prompt", constants.ErrConfirmationRequired)
					}

					return err
				}

				answer = strings.ToLower(answer)
				if answer != "y" && answer != Yes {
					fmt.Fprintln(cmd.OutOrStdout(), "Delete cancelled")

					return nil
				}
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			deleted, err := client.LiveInputs().Delete(cmd.Context(), liveInputID)
			if err != nil {
				return fmt.Errorf("failed to delete live input: %w", err)
			}

			result := map[string]interface{}{"uid": liveInputID, "deleted": deleted}

			return renderOutput(cmd.OutOrStdout(), result, func(out io.Writer) error {
				_, err := fmt.Fprintf(out, "Live input '%s' deleted\n", liveInputID)

				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "delete without confirmation")

	return cmd
}

func renderLiveInputsTable(out io.Writer, liveInputs []stream.LiveInput) error {
	if len(liveInputs) == 0 {
		_, err := fmt.Fprintln(out, "No live inputs found")

		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header("UID", "Name", "Recording", "Created", "Modified")

	for i := range liveInputs {
		liveInput := &liveInputs[i]

		err := table.Append([]string{
			liveInput.UID,
			formatValue(liveInput.Name()),
			recordingMode(liveInput.Recording),
			formatTime(liveInput.Created),
			formatTime(liveInput.Modified),
		})
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

func renderLiveInput(out io.Writer, liveInput *stream.LiveInput) error {
	return renderOutput(out, liveInput, func(out io.Writer) error {
		return renderPropertyTable(out, liveInputRows(liveInput))
	})
}

func liveInputRows(liveInput *stream.LiveInput) [][]string {
	rows := [][]string{
		{"UID", liveInput.UID},
		{"Name", formatValue(liveInput.Name())},
		{"Created", formatTime(liveInput.Created)},
		{"Modified", formatTime(liveInput.Modified)},
		{"Recording", recordingMode(liveInput.Recording)},
	}

	if recording := liveInput.Recording; recording != nil {
		if recording.TimeoutSeconds != nil {
			rows = append(rows, []string{"Recording Timeout", strconv.Itoa(*recording.TimeoutSeconds) + "s"})
		}

		if recording.RequireSignedURLs != nil {
			rows = append(rows, []string{"Require Signed URLs", formatBool(*recording.RequireSignedURLs)})
		}

		if len(recording.AllowedOrigins) > 0 {
			rows = append(rows, []string{"Allowed Origins", strings.Join(recording.AllowedOrigins, ", ")})
		}
	}

	if liveInput.DeleteRecordingAfterDays != nil {
		rows = append(rows, []string{"Delete Recordings After", strconv.Itoa(*liveInput.DeleteRecordingAfterDays) + " days"})
	}

	keys := make([]string, 0, len(liveInput.Meta))
	for key := range liveInput.Meta {
		if key != "name" {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	for _, key := range keys {
		rows = append(rows, []string{"Meta " + key, fmt.Sprint(liveInput.Meta[key])})
	}

	rows = appendIngestRows(rows, "RTMPS", liveInput.RTMPS)
	rows = appendIngestRows(rows, "RTMPS Playback", liveInput.RTMPSPlayback)
	rows = appendSRTRows(rows, "SRT", liveInput.SRT)
	rows = appendSRTRows(rows, "SRT Playback", liveInput.SRTPlayback)
	rows = appendIngestRows(rows, "WebRTC", liveInput.WebRTC)
	rows = appendIngestRows(rows, "WebRTC Playback", liveInput.WebRTCPlayback)

	return rows
}

func appendIngestRows(rows [][]string, label string, endpoint *stream.IngestEndpoint) [][]string {
	if endpoint == nil {
		return rows
	}

	rows = append(rows, []string{label + " URL", endpoint.URL})
	if endpoint.StreamKey != "" {
		rows = append(rows, []string{label + " Stream Key", endpoint.StreamKey})
	}

	return rows
}

func appendSRTRows(rows [][]string, label string, endpoint *stream.SRTEndpoint) [][]string {
	if endpoint == nil {
		return rows
	}

	rows = append(rows, []string{label + " URL", endpoint.URL})
	if endpoint.StreamID != "" {
		rows = append(rows, []string{label + " Stream ID", endpoint.StreamID})
	}

	if endpoint.Passphrase != "" {
		rows = append(rows, []string{label + " Passphrase", endpoint.Passphrase})
	}

	return rows
}

func recordingMode(recording *stream.Recording) string {
	if recording == nil || recording.Mode == "" {
		return constants.NotAvailable
	}

	return titleCase(recording.Mode)
}
