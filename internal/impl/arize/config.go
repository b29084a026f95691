package arize

import (
	"maps"
)

// DefaultEndpoint is the Arize AX OTLP collector used when a space ID is
// configured without an explicit endpoint.
const DefaultEndpoint = "https://otlp.arize.com/v1/traces"

// Header names set by Resolve.
const (
	HeaderSpaceID       = "space_id"
	HeaderAPIKey        = "api_key"
	HeaderAuthorization = "Authorization"
)

// Config describes where traces are sent and how to authenticate. Empty
// fields are treated as unset.
type Config struct {
	// SpaceID is required when sending traces to Arize AX.
	SpaceID string

	// APIKey is required when sending traces to Arize AX, or to any other
	// collector that expects an Authorization header.
	APIKey string

	// Endpoint is the collector URL. Required for Phoenix and other
	// collectors, optional for Arize AX.
	Endpoint string

	// ProjectName is recorded on the trace resource.
	ProjectName string

	// Headers are added to every export request.
	Headers map[string]string
}

// Destination is a resolved collector endpoint along with the headers to send
// with each export request.
type Destination struct {
	// Endpoint is empty when neither the config nor Arize defaults provide
	// one, in which case the OTLP exporter falls back to its own defaults.
	Endpoint string
	Headers  map[string]string
}

// Resolve works out the endpoint and headers for the config. Space ID
// authentication takes precedence over bearer authentication, and both
// override caller supplied headers with the same name.
func (c Config) Resolve() Destination {
	headers := make(map[string]string, len(c.Headers)+2)
	maps.Copy(headers, c.Headers)

	endpoint := c.Endpoint
	switch {
	case c.SpaceID != "":
		headers[HeaderSpaceID] = c.SpaceID
		headers[HeaderAPIKey] = c.APIKey
		if endpoint == "" {
			endpoint = DefaultEndpoint
		}
	case c.APIKey != "":
		headers[HeaderAuthorization] = "Bearer " + c.APIKey
	}

	return Destination{
		Endpoint: endpoint,
		Headers:  headers,
	}
}
