package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/manageday-dev/manageday/internal/session"
)

// DefaultTimeout is the fixed per-call network timeout. A timed-out call
// surfaces as a network error and never touches the stored session.
const DefaultTimeout = 15 * time.Second

// Client is the API client for the ManageDay backend. Every call runs
// through the pipeline: the stored credential is attached on the way out,
// and the response status is classified on the way back. A 401 is the only
// status that mutates session state: the store is cleared and the
// session-expired hook runs, once per call.
type Client struct {
	baseURL          string
	store            *session.Store
	httpClient       *http.Client // pipeline client, credential attached
	directClient     *http.Client // bare client for the token exchange
	timeout          time.Duration
	onSessionExpired func()
	log              zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-call network timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient sets a custom base HTTP client; its transport is wrapped
// by the credential-attaching pipeline.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.directClient = httpClient
	}
}

// WithSessionExpiredHook registers the action taken when a call comes back
// 401, after the pipeline has cleared the store. The CLI uses it to reset
// its session state and point the user at the login command.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

// WithLogger sets the pipeline debug logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates an API client for the given base URL (including the API
// prefix, e.g. https://api.example.com/api/v1).
func New(baseURL string, store *session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.directClient == nil {
		c.directClient = &http.Client{Timeout: c.timeout}
	}
	base := c.directClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.httpClient = &http.Client{
		Timeout:   c.directClient.Timeout,
		Transport: &authTransport{base: base, store: store, log: c.log},
	}
	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = c.timeout
	}

	return c
}

// attemptKey carries the per-call attempt counter through the pipeline.
// The counter replaces mutating a shared request descriptor: if a token
// refresh flow is added later, it is what stops a second 401 from looping.
type attemptKey struct{}

func withAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, attemptKey{}, attempt)
}

func attemptFromContext(ctx context.Context) int {
	if attempt, ok := ctx.Value(attemptKey{}).(int); ok {
		return attempt
	}
	return 0
}

// do issues one pipeline call and decodes a 2xx response into out.
// Everything non-2xx comes back as a typed error; nothing is swallowed.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	ctx = withAttempt(ctx, attemptFromContext(ctx)+1)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response at all: connectivity or timeout. Session is untouched.
		return networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return c.expireSession(ctx)
	}
	return classifyResponse(resp.StatusCode, data)
}

// expireSession handles the one session-mutating status. The credential is
// cleared and the expiry hook runs exactly once for this call; the error
// still propagates so the caller handles the failure itself. On a repeat
// 401 for the same call the attempt counter is already set and only the
// clear and hook re-run.
func (c *Client) expireSession(ctx context.Context) error {
	attempt := attemptFromContext(ctx)
	if err := c.store.Clear(); err != nil {
		c.log.Warn().Err(err).Msg("failed to clear credential store")
	}
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
	c.log.Debug().Int("attempt", attempt).Msg("session expired, credential cleared")
	return sessionExpiredError()
}
