// Package stream defines the types shared by the Cloudflare Stream client:
// configuration, the Transport abstraction, the response envelope, live input
// resources and the error taxonomy.
//
// Errors returned by a Client are always *Error values. Branch on their Kind
// rather than on concrete types:
//
//	input, err := cli.LiveInputs().Get(ctx, id)
//	switch {
//	case stream.IsNotFound(err):
//	  // gone
//	case stream.IsAuthentication(err):
//	  // bad or under-privileged credentials
//	case err != nil:
//	  var streamErr *stream.Error
//	  if errors.As(err, &streamErr) {
//	    log.Printf("status %d: %v", streamErr.StatusCode, streamErr.Errors)
//	  }
//	}
//
// Live inputs and vendor error entries keep the members this package has no
// field for in their Extra maps, so nothing the API returns is lost.
//
// Config.Interceptors hooks into the default transport:
//
//	config.Interceptors = stream.NewInterceptorChain().
//	  OnRequest(stream.StaticHeaders(map[string]string{"X-Request-Source": "ops"})).
//	  OnResponse(stream.ResponseLogger(logger))
//
// Use package cfstream to construct a Client.
package stream
