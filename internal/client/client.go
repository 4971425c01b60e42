package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/cfstream/internal/constants"
	"github.com/fivetwenty-io/cfstream/pkg/stream"
)

// Client implements the stream.Client interface.
type Client struct {
	transport   stream.Transport
	config      stream.Config
	baseURL     string
	authHeaders http.Header

	// Resource clients
	liveInputs stream.LiveInputsClient
}

// New creates a new Stream API client. The config is validated and copied;
// the transport is used as-is for every request.
func New(config *stream.Config, transport stream.Transport) (*Client, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	if transport == nil {
		return nil, &stream.Error{
			Kind:    stream.KindConfiguration,
			Message: stream.ErrTransportRequired.Error(),
			Err:     stream.ErrTransportRequired,
		}
	}

	resolved := *config
	resolved.AuthType = config.ResolvedAuthType()

	if resolved.BaseURL == "" {
		resolved.BaseURL = constants.DefaultBaseURL
	}

	if resolved.Timeout <= 0 {
		resolved.Timeout = constants.DefaultHTTPTimeout
	}

	client := &Client{
		transport:   transport,
		config:      resolved,
		baseURL:     strings.TrimSuffix(resolved.BaseURL, "/"),
		authHeaders: buildAuthHeaders(&resolved),
	}

	client.initializeResourceClients()

	return client, nil
}

// buildAuthHeaders computes the headers that authenticate every request.
func buildAuthHeaders(config *stream.Config) http.Header {
	headers := make(http.Header)

	if config.AuthType == stream.AuthTypeKey {
		headers.Set(constants.HeaderAuthEmail, config.Email)
		headers.Set(constants.HeaderAuthKey, config.APIKey)

		return headers
	}

	headers.Set(constants.HeaderAuthorization, constants.BearerPrefix+config.APIToken)

	return headers
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.liveInputs = NewLiveInputsClient(c)
}

// LiveInputs implements stream.Client.LiveInputs.
func (c *Client) LiveInputs() stream.LiveInputsClient {
	return c.liveInputs
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AccountID returns the account every request is scoped to.
func (c *Client) AccountID() string {
	return c.config.AccountID
}

// URL returns the absolute URL of a stream endpoint.
func (c *Client) URL(endpoint string) string {
	return c.baseURL + constants.AccountsPath + c.config.AccountID + constants.StreamPath + endpoint
}

// Request implements stream.Client.Request.
func (c *Client) Request(ctx context.Context, method, endpoint string, body interface{}) (*stream.Envelope, error) {
	method = strings.ToUpper(method)

	if !isSupportedMethod(method) {
		return nil, stream.NewInvalidArgumentError(
			"Unsupported HTTP method: "+method,
			fmt.Errorf("%w: %s", stream.ErrUnsupportedMethod, method),
		)
	}

	payload, err := encodeBody(method, body)
	if err != nil {
		return nil, stream.NewInvalidArgumentError("Request body could not be encoded", err)
	}

	headers := make(http.Header, len(c.authHeaders)+2)
	headers.Set(constants.HeaderAccept, constants.ContentTypeJSON)

	for key, values := range c.authHeaders {
		headers[key] = append([]string(nil), values...)
	}

	if len(payload) > 0 {
		headers.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	resp, err := c.transport.Do(ctx, &stream.Request{
		Method:  method,
		URL:     c.URL(endpoint),
		Headers: headers,
		Body:    payload,
		Timeout: c.config.Timeout,
		Metadata: map[string]interface{}{
			stream.MetadataEndpoint:  endpoint,
			stream.MetadataAccountID: c.config.AccountID,
		},
	})
	if err != nil {
		return nil, stream.NewTransportError(err)
	}

	envelope := decodeEnvelope(resp.Body)

	if resp.Failed() {
		return nil, classifyResponse(resp.StatusCode, envelope.Errors)
	}

	if envelope.Success != nil && !*envelope.Success {
		return nil, stream.NewAPIError(stream.KindAPI, stream.MessageRequestNotSuccessful, resp.StatusCode, envelope.Errors)
	}

	return envelope, nil
}

func isSupportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// encodeBody returns the JSON payload for POST and PUT. Other methods never
// carry a body, and an empty object or array counts as no body at all.
func encodeBody(method string, body interface{}) ([]byte, error) {
	if body == nil || (method != http.MethodPost && method != http.MethodPut) {
		return nil, nil
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	switch string(bytes.TrimSpace(payload)) {
	case "null", "{}", "[]":
		return nil, nil
	}

	return payload, nil
}

// decodeEnvelope never fails: a body that is not a JSON object is treated as
// an envelope without success flag or errors. Members of an unexpected shape
// inside an object are skipped one by one by stream.Envelope.
func decodeEnvelope(body []byte) *stream.Envelope {
	envelope := &stream.Envelope{}
	if len(bytes.TrimSpace(body)) == 0 {
		return envelope
	}

	err := json.Unmarshal(body, envelope)
	if err != nil {
		return &stream.Envelope{}
	}

	return envelope
}

// classifyResponse maps a failing status code to an error kind.
func classifyResponse(statusCode int, details []stream.ErrorDetail) *stream.Error {
	message := stream.MessageUnknownError
	if len(details) > 0 && details[0].Message != "" {
		message = details[0].Message
	}

	var kind stream.ErrorKind

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = stream.KindAuthentication
	case http.StatusNotFound:
		kind = stream.KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = stream.KindValidation
	default:
		kind = stream.KindAPI
	}

	return stream.NewAPIError(kind, message, statusCode, details)
}

// decodeResult unmarshals the envelope's result into v.
func decodeResult(envelope *stream.Envelope, v interface{}) error {
	err := json.Unmarshal(envelope.Result, v)
	if err != nil {
		return &stream.Error{
			Kind:    stream.KindAPI,
			Message: "The response result could not be parsed",
			Errors:  []stream.ErrorDetail{},
			Err:     fmt.Errorf("parsing result: %w", err),
		}
	}

	return nil
}
