package stream

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Envelope is the wrapper shared by every Cloudflare API response.
type Envelope struct {
	// Success is nil when the body did not carry the field at all.
	Success  *bool             `json:"success,omitempty"  yaml:"success,omitempty"`
	Result   json.RawMessage   `json:"result,omitempty"   yaml:"-"`
	Errors   []ErrorDetail     `json:"errors,omitempty"   yaml:"errors,omitempty"`
	Messages []json.RawMessage `json:"messages,omitempty" yaml:"-"`
}

// UnmarshalJSON decodes each envelope member on its own so a member of an
// unexpected shape cannot hide the others. A success value that is not a
// boolean reads as absent, and errors or messages that are not arrays are
// dropped.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var wire struct {
		Success  json.RawMessage `json:"success"`
		Result   json.RawMessage `json:"result"`
		Errors   json.RawMessage `json:"errors"`
		Messages json.RawMessage `json:"messages"`
	}

	err := json.Unmarshal(data, &wire)
	if err != nil {
		return fmt.Errorf("parsing envelope: %w", err)
	}

	*e = Envelope{Result: wire.Result}

	if len(wire.Success) > 0 && json.Unmarshal(wire.Success, &e.Success) != nil {
		e.Success = nil
	}

	e.Errors = decodeErrorDetails(wire.Errors)

	if len(wire.Messages) > 0 && json.Unmarshal(wire.Messages, &e.Messages) != nil {
		e.Messages = nil
	}

	return nil
}

func decodeErrorDetails(data json.RawMessage) []ErrorDetail {
	var items []json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &items) != nil || items == nil {
		return nil
	}

	details := make([]ErrorDetail, 0, len(items))

	for _, item := range items {
		var detail ErrorDetail

		_ = json.Unmarshal(item, &detail)
		details = append(details, detail)
	}

	return details
}

// HasResult reports whether the envelope carries a non-null result.
func (e *Envelope) HasResult() bool {
	return len(e.Result) > 0 && string(e.Result) != "null"
}

// Recording mode values accepted by the API.
const (
	RecordingModeOff       = "off"
	RecordingModeAutomatic = "automatic"
)

// Recording controls whether and how a live input records broadcasts.
// Unset fields are left out of request bodies.
type Recording struct {
	Mode              string   `json:"mode,omitempty"              yaml:"mode,omitempty"`
	TimeoutSeconds    *int     `json:"timeoutSeconds,omitempty"    yaml:"timeoutSeconds,omitempty"`
	RequireSignedURLs *bool    `json:"requireSignedURLs,omitempty" yaml:"requireSignedURLs,omitempty"`
	AllowedOrigins    []string `json:"allowedOrigins,omitempty"    yaml:"allowedOrigins,omitempty"`

	// Extra holds the members the API returned that have no field above.
	Extra map[string]interface{} `json:"-" yaml:",inline"`
}

var recordingFields = jsonFieldNames(reflect.TypeOf(Recording{}))

// UnmarshalJSON implements json.Unmarshaler.
func (r *Recording) UnmarshalJSON(data []byte) error {
	type plain Recording

	var decoded plain

	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return err
	}

	decoded.Extra, err = unknownFields(data, recordingFields)
	if err != nil {
		return err
	}

	*r = Recording(decoded)

	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Recording) MarshalJSON() ([]byte, error) {
	type plain Recording

	encoded, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}

	return withExtraFields(encoded, r.Extra)
}

// IngestEndpoint is an RTMPS or WebRTC URL, optionally with its stream key.
type IngestEndpoint struct {
	URL       string `json:"url"                 yaml:"url"`
	StreamKey string `json:"streamKey,omitempty" yaml:"streamKey,omitempty"`
}

// SRTEndpoint is an SRT URL with its stream ID and passphrase.
type SRTEndpoint struct {
	URL        string `json:"url"                  yaml:"url"`
	StreamID   string `json:"streamId,omitempty"   yaml:"streamId,omitempty"`
	Passphrase string `json:"passphrase,omitempty" yaml:"passphrase,omitempty"`
}

// LiveInputStatus is the connection state reported by the API.
type LiveInputStatus struct {
	Current map[string]interface{}   `json:"current,omitempty" yaml:"current,omitempty"`
	History []map[string]interface{} `json:"history,omitempty" yaml:"history,omitempty"`
}

// LiveInput is an ingest endpoint for a live stream. Only the metadata is
// managed here; media never flows through this client.
type LiveInput struct {
	UID                      string                 `json:"uid"                                yaml:"uid"`
	Meta                     map[string]interface{} `json:"meta,omitempty"                     yaml:"meta,omitempty"`
	Recording                *Recording             `json:"recording,omitempty"                yaml:"recording,omitempty"`
	RTMPS                    *IngestEndpoint        `json:"rtmps,omitempty"                    yaml:"rtmps,omitempty"`
	RTMPSPlayback            *IngestEndpoint        `json:"rtmpsPlayback,omitempty"            yaml:"rtmpsPlayback,omitempty"`
	SRT                      *SRTEndpoint           `json:"srt,omitempty"                      yaml:"srt,omitempty"`
	SRTPlayback              *SRTEndpoint           `json:"srtPlayback,omitempty"              yaml:"srtPlayback,omitempty"`
	WebRTC                   *IngestEndpoint        `json:"webRTC,omitempty"                   yaml:"webRTC,omitempty"`
	WebRTCPlayback           *IngestEndpoint        `json:"webRTCPlayback,omitempty"           yaml:"webRTCPlayback,omitempty"`
	Status                   *LiveInputStatus       `json:"status,omitempty"                   yaml:"status,omitempty"`
	DeleteRecordingAfterDays *int                   `json:"deleteRecordingAfterDays,omitempty" yaml:"deleteRecordingAfterDays,omitempty"`
	Created                  *time.Time             `json:"created,omitempty"                  yaml:"created,omitempty"`
	Modified                 *time.Time             `json:"modified,omitempty"                 yaml:"modified,omitempty"`

	// Extra holds the members the API returned that have no field above,
	// such as enabled or preferLowLatency. They are written back on encode;
	// numbers decode as json.Number.
	Extra map[string]interface{} `json:"-" yaml:",inline"`
}

var liveInputFields = jsonFieldNames(reflect.TypeOf(LiveInput{}))

// UnmarshalJSON implements json.Unmarshaler.
func (l *LiveInput) UnmarshalJSON(data []byte) error {
	type plain LiveInput

	var decoded plain

	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return err
	}

	decoded.Extra, err = unknownFields(data, liveInputFields)
	if err != nil {
		return err
	}

	*l = LiveInput(decoded)

	return nil
}

// MarshalJSON implements json.Marshaler.
func (l LiveInput) MarshalJSON() ([]byte, error) {
	type plain LiveInput

	encoded, err := json.Marshal(plain(l))
	if err != nil {
		return nil, err
	}

	return withExtraFields(encoded, l.Extra)
}

// Name returns meta.name when it is a string.
func (l *LiveInput) Name() string {
	if name, ok := l.Meta["name"].(string); ok {
		return name
	}

	return ""
}

// LiveInputCreateRequest is the body of a create call. Meta is always sent;
// the other fields only when set.
type LiveInputCreateRequest struct {
	Meta                     map[string]interface{} `json:"meta"                               yaml:"meta"`
	Recording                *Recording             `json:"recording,omitempty"                yaml:"recording,omitempty"`
	UID                      string                 `json:"uid,omitempty"                      yaml:"uid,omitempty"`
	DeleteRecordingAfterDays *int                   `json:"deleteRecordingAfterDays,omitempty" yaml:"deleteRecordingAfterDays,omitempty"`
}

// LiveInputUpdateRequest is the body of an update call. Only non-nil fields
// are sent; a nil Meta leaves the stored metadata untouched while an empty
// one clears it.
type LiveInputUpdateRequest struct {
	Meta                     map[string]interface{} `json:"meta,omitempty"                     yaml:"meta,omitempty"`
	Recording                *Recording             `json:"recording,omitempty"                yaml:"recording,omitempty"`
	DeleteRecordingAfterDays *int                   `json:"deleteRecordingAfterDays,omitempty" yaml:"deleteRecordingAfterDays,omitempty"`
}

// MarshalJSON keys the body on presence rather than emptiness, so an empty
// Meta is still sent.
func (r LiveInputUpdateRequest) MarshalJSON() ([]byte, error) {
	body := make(map[string]interface{}, 3)

	if r.Meta != nil {
		body["meta"] = r.Meta
	}

	if r.Recording != nil {
		body["recording"] = r.Recording
	}

	if r.DeleteRecordingAfterDays != nil {
		body["deleteRecordingAfterDays"] = *r.DeleteRecordingAfterDays
	}

	return json.Marshal(body)
}

// IsEmpty reports whether the update would send no fields.
func (r *LiveInputUpdateRequest) IsEmpty() bool {
	return r == nil || (r.Meta == nil && r.Recording == nil && r.DeleteRecordingAfterDays == nil)
}
