package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fivetwenty-io/cfstream/internal/constants"
	"github.com/fivetwenty-io/cfstream/pkg/stream"
)

// requester is the part of Client the resource clients depend on.
type requester interface {
	Request(ctx context.Context, method, endpoint string, body interface{}) (*stream.Envelope, error)
}

// LiveInputsClient implements stream.LiveInputsClient.
type LiveInputsClient struct {
	client requester
}

// NewLiveInputsClient creates a new live inputs client.
func NewLiveInputsClient(client requester) *LiveInputsClient {
	return &LiveInputsClient{
		client: client,
	}
}

func liveInputPath(liveInputID string) string {
	return constants.LiveInputsEndpoint + "/" + url.PathEscape(liveInputID)
}

func requireLiveInputID(liveInputID string) error {
	if liveInputID == "" {
		return stream.NewInvalidArgumentError("Live input ID is required", stream.ErrLiveInputIDRequired)
	}

	return nil
}

// List implements stream.LiveInputsClient.List.
func (c *LiveInputsClient) List(ctx context.Context) ([]stream.LiveInput, error) {
	envelope, err := c.client.Request(ctx, http.MethodGet, constants.LiveInputsEndpoint, nil)
	if err != nil {
		return nil, err
	}

	if !envelope.HasResult() {
		return []stream.LiveInput{}, nil
	}

	var liveInputs []stream.LiveInput

	err = decodeResult(envelope, &liveInputs)
	if err != nil {
		return nil, err
	}

	return liveInputs, nil
}

// Create implements stream.LiveInputsClient.Create.
func (c *LiveInputsClient) Create(ctx context.Context, request *stream.LiveInputCreateRequest) (*stream.LiveInput, error) {
	body := stream.LiveInputCreateRequest{}
	if request != nil {
		body = *request
	}

	if body.Meta == nil {
		body.Meta = map[string]interface{}{}
	}

	envelope, err := c.client.Request(ctx, http.MethodPost, constants.LiveInputsEndpoint, &body)
	if err != nil {
		return nil, err
	}

	return decodeLiveInput(envelope)
}

// Get implements stream.LiveInputsClient.Get.
func (c *LiveInputsClient) Get(ctx context.Context, liveInputID string) (*stream.LiveInput, error) {
	err := requireLiveInputID(liveInputID)
	if err != nil {
		return nil, err
	}

	envelope, err := c.client.Request(ctx, http.MethodGet, liveInputPath(liveInputID), nil)
	if err != nil {
		return nil, err
	}

	return decodeLiveInput(envelope)
}

// Update implements stream.LiveInputsClient.Update.
func (c *LiveInputsClient) Update(ctx context.Context, liveInputID string, request *stream.LiveInputUpdateRequest) (*stream.LiveInput, error) {
	err := requireLiveInputID(liveInputID)
	if err != nil {
		return nil, err
	}

	var body interface{}
	if !request.IsEmpty() {
		body = request
	}

	envelope, err := c.client.Request(ctx, http.MethodPut, liveInputPath(liveInputID), body)
	if err != nil {
		return nil, err
	}

	return decodeLiveInput(envelope)
}

// Delete implements stream.LiveInputsClient.Delete. The API returns no
// payload worth inspecting; reaching the end means the call succeeded.
func (c *LiveInputsClient) Delete(ctx context.Context, liveInputID string) (bool, error) {
	err := requireLiveInputID(liveInputID)
	if err != nil {
		return false, err
	}

	_, err = c.client.Request(ctx, http.MethodDelete, liveInputPath(liveInputID), nil)
	if err != nil {
		return false, err
	}

	return true, nil
}

func decodeLiveInput(envelope *stream.Envelope) (*stream.LiveInput, error) {
	if !envelope.HasResult() {
		return nil, &stream.Error{
			Kind:    stream.KindAPI,
			Message: stream.MessageMissingResult,
			Errors:  []stream.ErrorDetail{},
			Err:     stream.ErrMissingResult,
		}
	}

	var liveInput stream.LiveInput

	err := decodeResult(envelope, &liveInput)
	if err != nil {
		return nil, err
	}

	return &liveInput, nil
}
