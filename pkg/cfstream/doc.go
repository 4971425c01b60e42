// Package cfstream provides the entry point for building a Cloudflare Stream
// live input client that implements the stream.Client interface.
//
// # Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/cfstream/pkg/cfstream"
//	  "github.com/fivetwenty-io/cfstream/pkg/stream"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // API token authentication.
//	  cli, err := cfstream.NewWithToken("account-id", "api-token")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or the legacy global API key with the account email.
//	  cli, err = cfstream.NewWithKey("account-id", "ops@example.com", "global-key")
//
//	  // Or everything from CLOUDFLARE_* environment variables.
//	  cli, err = cfstream.NewFromEnv()
//
//	  input, err := cli.LiveInputs().Create(ctx, &stream.LiveInputCreateRequest{
//	    Meta: map[string]interface{}{"name": "studio"},
//	  })
//	  if err != nil { log.Fatal(err) }
//	  log.Println(input.UID)
//	}
//
// # Environment variables read by NewFromEnv
//
//	CLOUDFLARE_AUTH_TYPE      token (default) or key
//	CLOUDFLARE_API_TOKEN      API token for token authentication
//	CLOUDFLARE_API_KEY        global API key for key authentication
//	CLOUDFLARE_EMAIL          account email for key authentication
//	CLOUDFLARE_ACCOUNT_ID     account identifier (required)
//	CLOUDFLARE_API_BASE_URL   API root, defaults to https://api.cloudflare.com/client/v4
//	CLOUDFLARE_API_TIMEOUT    request timeout in seconds, defaults to 30
//
// # Custom transports
//
// NewWithTransport accepts any stream.Transport, which is how tests and
// callers with their own HTTP stack plug in. The default transport sends each
// request exactly once; set Config.RetryMax to opt into retries.
package cfstream
