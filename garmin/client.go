package garmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultConnectURL = "https://connect.garmin.com"
	defaultSSOURL     = "https://sso.garmin.com/sso/login"

	// Garmin serves the web frontend's endpoints only to something that
	// looks like a browser.
	userAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:48.0) Gecko/20100101 Firefox/50.0"

	defaultTimeout = 10 * time.Second
)

// Client is the core Garmin Connect API client. Session cookies live
// on the underlying HTTP client's jar; the client signs in through the
// SSO portal on demand and re-runs the handshake once when a session
// expires mid-flight.
type Client struct {
	httpClient *http.Client
	connectURL string
	ssoURL     string
	timeout    time.Duration

	email    string
	password string

	session *session

	rateLimiter *rateLimiter
	log         zerolog.Logger

	// Services used for communicating with the Garmin Connect endpoints.
	User     *UserService
	Activity *ActivityService
	Device   *DeviceService
	Wellness *WellnessService
}

// NewClient creates a Garmin Connect client for the given account.
// Sign-in is lazy: the first fetch that needs a session (or hits an
// authentication failure) runs the SSO login handshake.
func NewClient(email, password string, opts ...Option) *Client {
	c := &Client{
		connectURL:  defaultConnectURL,
		ssoURL:      defaultSSOURL,
		timeout:     defaultTimeout,
		email:       email,
		password:    password,
		session:     &session{},
		rateLimiter: newRateLimiter(),
		log:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.httpClient.Jar == nil {
		// cookiejar.New cannot fail with a well-formed options struct.
		jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		c.httpClient.Jar = jar
	}

	c.User = &UserService{client: c}
	c.Activity = &ActivityService{client: c}
	c.Device = &DeviceService{client: c}
	c.Wellness = &WellnessService{client: c}

	return c
}

// Format implements fmt.Formatter so the account password never leaks
// through %v, %+v or %#v debug output.
func (c *Client) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, "garmin.Client{email:%s password:<REDACTED> connectURL:%s}", c.email, c.connectURL)
}

func (c *Client) modernURL(path string) string { return c.connectURL + "/modern/" + path }
func (c *Client) proxyURL(path string) string  { return c.connectURL + "/proxy/" + path }

// get fetches url and returns the raw body. On an authentication or
// connection failure it re-runs the SSO login once and retries the
// identical GET exactly once more; a second failure propagates
// unchanged. Rate-limit and generic API errors are returned
// immediately with no retry.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	body, err := c.fetch(ctx, url)
	if err == nil || !isSessionExpired(err) {
		return body, err
	}

	c.log.Debug().Str("url", url).Msg("session expired, trying re-login")
	if _, err := c.Login(ctx); err != nil {
		return nil, err
	}
	return c.fetch(ctx, url)
}

// getJSON is get for the JSON endpoints. Bodies pass through
// undecoded; callers that need a field unmarshal it themselves.
func (c *Client) getJSON(ctx context.Context, url string) (json.RawMessage, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// fetch performs one GET with no recovery. Login uses this directly so
// its internal lookups cannot recurse back into Login.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	c.log.Debug().Str("url", url).Msg("requesting data")

	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// do executes a single GET with the session headers and classifies the
// response status. Non-200 responses are drained, closed and converted
// via mapHTTPError.
func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("local rate limit wait interrupted: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request aborted by context: %w", ctx.Err())
		}
		return nil, fmt.Errorf("http execute request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, mapHTTPError(resp, body)
	}

	return resp, nil
}

// isSessionExpired reports whether err is one of the failure kinds
// that signal an expired or missing session (401 and 403 responses).
func isSessionExpired(err error) bool {
	var authErr *AuthError
	var connErr *ConnectionError
	return errors.As(err, &authErr) || errors.As(err, &connErr)
}
