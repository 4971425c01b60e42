package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrorKind classifies an Error.
type ErrorKind int

// Error kinds, in the order the client can produce them.
const (
	// KindAPI is a failing response that matched no more specific kind, a
	// 2xx envelope carrying success:false, or a transport failure (status 0).
	KindAPI ErrorKind = iota
	// KindConfiguration is raised while building a client.
	KindConfiguration
	// KindInvalidArgument is raised before any network call is made.
	KindInvalidArgument
	// KindAuthentication maps HTTP 401 and 403.
	KindAuthentication
	// KindNotFound maps HTTP 404.
	KindNotFound
	// KindValidation maps HTTP 400 and 422.
	KindValidation
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "api"
	}
}

// ErrorDetail is a single entry of the envelope's errors array. Cloudflare
// codes are integers; any other code is kept in Extra under "code", along
// with every member other than code and message.
type ErrorDetail struct {
	Code    int                    `json:"code"    yaml:"code"`
	Message string                 `json:"message" yaml:"message"`
	Extra   map[string]interface{} `json:"-"       yaml:"extra,omitempty"`
}

// UnmarshalJSON never fails on well-formed JSON. A bare string entry becomes
// the message.
func (d *ErrorDetail) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var value interface{}

	err := decoder.Decode(&value)
	if err != nil {
		return fmt.Errorf("parsing error detail: %w", err)
	}

	*d = ErrorDetail{}

	switch v := value.(type) {
	case string:
		d.Message = v
	case map[string]interface{}:
		if number, ok := v["code"].(json.Number); ok {
			if code, convErr := strconv.Atoi(number.String()); convErr == nil {
				d.Code = code
				delete(v, "code")
			}
		}

		if message, ok := v["message"].(string); ok {
			d.Message = message
			delete(v, "message")
		}

		if len(v) > 0 {
			d.Extra = v
		}
	case nil:
	default:
		d.Extra = map[string]interface{}{"value": v}
	}

	return nil
}

// MarshalJSON writes Extra back next to code and message.
func (d ErrorDetail) MarshalJSON() ([]byte, error) {
	members := make(map[string]interface{}, len(d.Extra)+2)
	for key, value := range d.Extra {
		members[key] = value
	}

	if _, ok := members["code"]; !ok || d.Code != 0 {
		members["code"] = d.Code
	}

	members["message"] = d.Message

	return json.Marshal(members)
}

// Error is the single error type returned by the client. Callers branch on
// Kind (directly or through the Is* helpers) rather than on concrete types.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Errors     []ErrorDetail
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// FirstError returns the first vendor error entry or nil.
func (e *Error) FirstError() *ErrorDetail {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// Static errors wrapped by Error for errors.Is checks.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrTransportRequired   = errors.New("transport is required")
	ErrUnsupportedMethod   = errors.New("unsupported HTTP method")
	ErrLiveInputIDRequired = errors.New("live input ID is required")
	ErrMissingResult       = errors.New("response did not contain a result")
)

// Messages produced by the client.
const (
	MessageAccountIDRequired    = "Account ID is required"
	MessageAPITokenRequired     = "API token is required when using token authentication"
	MessageAPIKeyEmailRequired  = "API key and email are required when using key authentication"
	MessageInvalidAuthType      = `Invalid authentication type. Must be "token" or "key"`
	MessageRequestNotSuccessful = "The request was not successful"
	MessageUnknownError         = "Unknown error"
	MessageRequestFailed        = "The request could not be completed"
	MessageMissingResult        = "The response did not contain a result"
)

// NewConfigurationError builds a KindConfiguration error.
func NewConfigurationError(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// NewInvalidArgumentError builds a KindInvalidArgument error wrapping cause.
func NewInvalidArgumentError(message string, cause error) *Error {
	return &Error{Kind: KindInvalidArgument, Message: message, Err: cause}
}

// NewTransportError builds the KindAPI error for a call that produced no
// HTTP status at all.
func NewTransportError(cause error) *Error {
	return &Error{
		Kind:    KindAPI,
		Message: fmt.Sprintf("%s: %v", MessageRequestFailed, cause),
		Errors:  []ErrorDetail{},
		Err:     cause,
	}
}

// NewAPIError builds a vendor error of the given kind. A nil details slice is
// normalized to an empty one so callers can range without nil checks.
func NewAPIError(kind ErrorKind, message string, statusCode int, details []ErrorDetail) *Error {
	if details == nil {
		details = []ErrorDetail{}
	}

	return &Error{Kind: kind, Message: message, StatusCode: statusCode, Errors: details}
}

// KindOf reports the kind of err and whether err is an *Error at all.
func KindOf(err error) (ErrorKind, bool) {
	var streamErr *Error
	if errors.As(err, &streamErr) {
		return streamErr.Kind, true
	}

	return KindAPI, false
}

func isKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)

	return ok && k == kind
}

// IsConfiguration checks if the error was raised while building a client.
func IsConfiguration(err error) bool {
	return isKind(err, KindConfiguration)
}

// IsInvalidArgument checks if the error was raised before dispatch.
func IsInvalidArgument(err error) bool {
	return isKind(err, KindInvalidArgument)
}

// IsAuthentication checks if the error is a 401/403.
func IsAuthentication(err error) bool {
	return isKind(err, KindAuthentication)
}

// IsNotFound checks if the error is a 404.
func IsNotFound(err error) bool {
	return isKind(err, KindNotFound)
}

// IsValidation checks if the error is a 400/422.
func IsValidation(err error) bool {
	return isKind(err, KindValidation)
}

// IsAPIError checks if the error came back from the API or the transport,
// whatever its classification.
func IsAPIError(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}

	return k != KindConfiguration && k != KindInvalidArgument
}

// IsTimeout checks if the request was abandoned because its deadline passed.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Timeout()
	}

	return false
}
