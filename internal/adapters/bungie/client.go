package bungie

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/slogx"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL        = "https://www.bungie.net/Platform"
	DefaultContentBaseURL = "https://www.bungie.net"

	maxEnvelopeBytes   = 16 << 20
	maxDefinitionBytes = 256 << 20

	errorCodeSuccess         = 1
	errorCodeWebAuthRequired = 99
	errorCodeTokenExpired    = 2111
)

// Credentials supplies bearer tokens. Expire forces the next call to refresh.
type Credentials interface {
	GetValidCredential(ctx context.Context) (domain.Credential, error)
	Expire()
}

type Options struct {
	BaseURL           string
	ContentBaseURL    string
	APIKey            string
	HTTPClient        *http.Client
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// Client talks to the Bungie platform API and its static content host.
type Client struct {
	baseURL        string
	contentBaseURL string
	apiKey         string
	http           *http.Client
	limiter        *rate.Limiter
	timeout        time.Duration
	credentials    Credentials
}

func NewClient(opts Options, credentials Credentials) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("bungie api key is required")
	}

	baseURL, err := normalizeBaseURL(opts.BaseURL, DefaultBaseURL)
	if err != nil {
		return nil, fmt.Errorf("bungie base url: %w", err)
	}
	contentBaseURL, err := normalizeBaseURL(opts.ContentBaseURL, DefaultContentBaseURL)
	if err != nil {
		return nil, fmt.Errorf("bungie content base url: %w", err)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:        baseURL,
		contentBaseURL: contentBaseURL,
		apiKey:         opts.APIKey,
		http:           httpClient,
		limiter:        rate.NewLimiter(limit, burst),
		timeout:        timeout,
		credentials:    credentials,
	}, nil
}

// getPlatform performs an authorized GET against the platform API and decodes
// the envelope's Response into out. A 401 or 403 expires the credential and
// the request is retried once.
func (c *Client) getPlatform(ctx context.Context, path string, query url.Values, authorized bool, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	err := c.getEnvelope(ctx, endpoint, authorized, out)
	if !authorized || !errors.Is(err, domain.ErrUnauthorized) || c.credentials == nil {
		return err
	}

	slogx.FromContext(ctx).Debug("upstream rejected credential, retrying once", "path", path)
	c.credentials.Expire()
	return c.getEnvelope(ctx, endpoint, authorized, out)
}

func (c *Client) getEnvelope(ctx context.Context, endpoint string, authorized bool, out any) error {
	resp, err := c.do(ctx, endpoint, authorized)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	requestsTotal.WithLabelValues(statusClass(resp.StatusCode)).Inc()

	var env envelope
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxEnvelopeBytes)).Decode(&env)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("get %s: status %d: %w", redact(endpoint), resp.StatusCode, domain.ErrUnauthorized)
	case decodeErr == nil && (env.ErrorCode == errorCodeWebAuthRequired || env.ErrorCode == errorCodeTokenExpired):
		return fmt.Errorf("get %s: %s: %w", redact(endpoint), env.ErrorStatus, domain.ErrUnauthorized)
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		if decodeErr == nil && env.ErrorStatus != "" {
			return fmt.Errorf("get %s: status %d %s: %w", redact(endpoint), resp.StatusCode, env.ErrorStatus, domain.ErrUpstreamUnavailable)
		}
		return fmt.Errorf("get %s: status %d: %w", redact(endpoint), resp.StatusCode, domain.ErrUpstreamUnavailable)
	case decodeErr != nil:
		return fmt.Errorf("decode %s envelope: %w: %w", redact(endpoint), domain.ErrMalformedData, decodeErr)
	case env.ErrorCode != errorCodeSuccess:
		if env.ThrottleSeconds > 0 {
			slogx.FromContext(ctx).Warn("upstream throttled request", "path", redact(endpoint), "throttle_seconds", env.ThrottleSeconds)
		}
		return fmt.Errorf("get %s: %s (%d) %s: %w", redact(endpoint), env.ErrorStatus, env.ErrorCode, env.Message, domain.ErrUpstreamUnavailable)
	}

	if out == nil {
		return nil
	}
	if len(env.Response) == 0 || string(env.Response) == "null" {
		return fmt.Errorf("get %s: empty response: %w", redact(endpoint), domain.ErrMalformedData)
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", redact(endpoint), domain.ErrMalformedData, err)
	}
	return nil
}

// getContent fetches a raw JSON document from the content host. Content paths
// are versioned and public, so no bearer token is attached.
func (c *Client) getContent(ctx context.Context, path string, out any) error {
	endpoint := c.contentBaseURL + "/" + strings.TrimLeft(path, "/")

	resp, err := c.do(ctx, endpoint, false)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	requestsTotal.WithLabelValues(statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("get %s: status %d: %w", path, resp.StatusCode, domain.ErrUpstreamUnavailable)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDefinitionBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w: %w", path, domain.ErrMalformedData, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint string, authorized bool) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	if authorized && c.credentials != nil {
		cred, err := c.credentials.GetValidCredential(ctx)
		if err != nil {
			cancel()
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		requestsTotal.WithLabelValues("transport_error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("get %s: %w: %w", redact(endpoint), domain.ErrUpstreamUnavailable, err)
	}
	resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b cancelOnClose) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}

func normalizeBaseURL(raw string, fallback string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		raw = fallback
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("host is required")
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}

// redact drops the query string so component lists do not bloat error text.
func redact(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}
