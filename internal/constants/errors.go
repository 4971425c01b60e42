package constants

import "errors"

// Configuration errors.
var (
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrNoAccountID         = errors.New("no account ID configured, use 'cfstream login' or set CLOUDFLARE_ACCOUNT_ID")
	ErrInvalidTimeout      = errors.New("timeout must be a positive number of seconds")
	ErrInvalidOutput       = errors.New("output must be one of table, json, yaml")
	ErrCredentialRequired  = errors.New("credential is required")
	ErrInvalidHeaderFormat = errors.New("invalid header format, expected 'Name: Value'")
)

// Live input command errors.
var (
	ErrInvalidMetaFormat   = errors.New("invalid meta format, expected key=value")
	ErrNothingToUpdate     = errors.New("nothing to update, set at least one flag")
	ErrInvalidRecordMode   = errors.New("recording mode must not be empty")
	ErrLiveInputIDRequired = errors.New("live input ID is required")
)

// Prompt errors.
var (
	ErrNoInput              = errors.New("input ended before an answer was given")
	ErrConfirmationRequired = errors.New("delete needs confirmation")
)
