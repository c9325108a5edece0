package disk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/tonimelisma/yadisk-go/internal/config"
)

const defaultUserAgent = "yadisk-go/0.1"

// Client is an HTTP client for the Yandex Disk REST API.
// It handles request construction and authentication. It never retries,
// polls, or interprets status codes; see internal/retry and internal/poll.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      oauth2.TokenSource
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a Disk API client.
// baseURL is typically "https://cloud-api.yandex.net/v1/disk". The request
// timeout is whatever httpClient carries.
func NewClient(baseURL string, httpClient *http.Client, token oauth2.TokenSource, logger *slog.Logger, userAgent string) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		token:      token,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// NewFromConfig builds a Client from resolved configuration: base URL,
// token, per-request timeout and user agent all come from cfg.
func NewFromConfig(cfg *config.Resolved, logger *slog.Logger) *Client {
	return NewClient(
		cfg.APIURL,
		&http.Client{Timeout: cfg.Timeout},
		cfg.TokenSource(),
		logger,
		cfg.UserAgent,
	)
}

// Do executes one authenticated request against the API and returns the
// response with its body fully read. Only transport failures and missing
// credentials produce an error; every HTTP status is returned as data.
// Content-Type is set for POST, PUT and PATCH regardless of body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values) (*Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("disk: creating request: %w", err)
	}

	tok, err := c.token.Token()
	if err != nil {
		return nil, fmt.Errorf("disk: obtaining token: %w", err)
	}

	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if hasBody(method) {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("disk: %s %s: %w", method, path, err)
	}

	c.logger.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("resource", query.Get("path")),
		slog.Int("status", resp.StatusCode),
	)

	return resp, nil
}

// doTransfer executes a request against a pre-authenticated transfer URL.
// No Authorization header is sent: the link itself carries the grant and
// the storage host rejects foreign credentials.
func (c *Client) doTransfer(ctx context.Context, method, href string, body io.Reader, size int64) (*http.Response, error) {
	if body == nil {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, href, body)
	if err != nil {
		return nil, fmt.Errorf("disk: creating transfer request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	if size >= 0 && method == http.MethodPut {
		req.ContentLength = size

		// A zero length with a non-nil body would be sent chunked.
		if size == 0 {
			req.Body = http.NoBody
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("disk: %s transfer: %w", method, err)
	}

	return resp, nil
}

// send performs req and reads the full body into a Response.
func (c *Client) send(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		logger:     c.logger,
	}, nil
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

// snippet trims a response body for inclusion in error messages.
func snippet(b []byte) string {
	const maxLen = 512

	b = bytes.TrimSpace(b)
	if len(b) > maxLen {
		return string(b[:maxLen]) + "..."
	}

	return string(b)
}
