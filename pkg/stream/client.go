package stream

import (
	"context"
)

// LiveInputsClient manages live inputs of one account.
type LiveInputsClient interface {
	List(ctx context.Context) ([]LiveInput, error)
	Create(ctx context.Context, request *LiveInputCreateRequest) (*LiveInput, error)
	Get(ctx context.Context, liveInputID string) (*LiveInput, error)
	Update(ctx context.Context, liveInputID string, request *LiveInputUpdateRequest) (*LiveInput, error)
	Delete(ctx context.Context, liveInputID string) (bool, error)
}

// Client is an authenticated binding to the Stream API of one account.
type Client interface {
	// LiveInputs returns the live input resource client.
	LiveInputs() LiveInputsClient

	// Request sends method to endpoint, relative to the account's stream
	// path, and returns the raw envelope of a successful response. body may
	// be nil.
	Request(ctx context.Context, method, endpoint string, body interface{}) (*Envelope, error)
}
