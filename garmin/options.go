package garmin

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client used for requests.
// A cookie jar is attached if the client does not already carry one;
// the jar is where the SSO session cookies live. The supplied client's
// timeout takes precedence over WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(client *Client) {
		client.httpClient = hc
	}
}

// WithConnectURL overrides the Garmin Connect base URL
// ("https://connect.garmin.com"). The /modern/ and /proxy/ endpoint
// roots are derived from it. This is primarily useful for testing.
func WithConnectURL(u string) Option {
	return func(client *Client) {
		client.connectURL = u
	}
}

// WithSSOURL overrides the SSO login endpoint
// ("https://sso.garmin.com/sso/login"). Primarily useful for testing.
func WithSSOURL(u string) Option {
	return func(client *Client) {
		client.ssoURL = u
	}
}

// WithTimeout sets the per-request timeout. By default requests time
// out after 10 seconds. Ignored when WithHTTPClient supplies a client.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.timeout = d
	}
}

// WithLogger sets the logger used for request tracing. By default
// logging is disabled (zerolog.Nop()).
func WithLogger(l zerolog.Logger) Option {
	return func(client *Client) {
		client.log = l
	}
}

// WithRateLimiting enables or disables client-side rate limiting.
// This is primarily used for testing.
func WithRateLimiting(enabled bool) Option {
	return func(client *Client) {
		client.rateLimiter.SetAutoLimiting(enabled)
	}
}
