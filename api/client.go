// Package api wraps the remote BrainBin backend's REST contract. One
// method per endpoint, uniform error extraction, no client-side state:
// callers own interpreting every result.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brainbin/go-web-gateway/internal/config"
	apierrors "github.com/brainbin/go-web-gateway/internal/errors"
)

// Client talks to the BrainBin backend. Safe for concurrent use.
type Client struct {
	baseURL        string
	pathPrefix     string
	httpClient     *http.Client
	queryTimeout   time.Duration
	requestTimeout time.Duration
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying transport (primarily for
// testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithQueryTimeout overrides the query deadline.
func WithQueryTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.queryTimeout = d
	}
}

// New creates a backend client from configuration.
func New(cfg config.APIConfig, options ...ClientOption) *Client {
	// Deadlines are applied per request via context rather than on
	// the http.Client: the query budget and the synchronous ingest
	// (which legitimately blocks for as long as processing takes)
	// both need to exceed the default request timeout.
	c := &Client{
		baseURL:        strings.TrimSuffix(cfg.GetBackendURL(), "/"),
		pathPrefix:     cfg.GetBackendPathPrefix(),
		httpClient:     &http.Client{},
		queryTimeout:   cfg.GetQueryTimeout(),
		requestTimeout: cfg.GetRequestTimeout(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + c.pathPrefix + path
}

// doJSON issues a JSON request and decodes a JSON response into out
// (which may be nil). Errors follow the gateway taxonomy: transport
// failures become *NetworkError, expired deadlines *TimeoutError, and
// non-2xx responses *RemoteError with the backend's own message.
func (c *Client) doJSON(ctx context.Context, method, path string, accessToken string, body any, out any) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apierrors.Wrapf(err, "[api] marshal %s %s", method, path)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reqBody)
	if err != nil {
		return apierrors.Wrapf(err, "[api] build %s %s", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, accessToken, path, out)
}

func (c *Client) send(req *http.Request, accessToken, operation string, out any) error {
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr == context.DeadlineExceeded {
			return &apierrors.TimeoutError{Operation: operation}
		}
		return &apierrors.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apierrors.NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apierrors.RemoteError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(raw, resp.StatusCode),
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return apierrors.Wrapf(err, "[api] decode %s response", operation)
		}
	}
	return nil
}

// extractErrorMessage pulls a human-readable message out of an error
// body. The backend is inconsistent about the field name across
// endpoints (FastAPI uses "detail", older handlers "error" or
// "message"), so all three are tried before falling back to the HTTP
// status text.
func extractErrorMessage(raw []byte, statusCode int) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, field := range []string{"detail", "error", "message"} {
			if v, ok := body[field].(string); ok && v != "" {
				return v
			}
		}
	}
	if text := http.StatusText(statusCode); text != "" {
		return fmt.Sprintf("%s (HTTP %d)", text, statusCode)
	}
	return fmt.Sprintf("request failed (HTTP %d)", statusCode)
}

// ErrorClass buckets a client error for metrics labels.
func ErrorClass(err error) string {
	switch {
	case apierrors.IsTimeout(err):
		return "timeout"
	case apierrors.IsNetwork(err):
		return "network"
	case apierrors.IsRemote(err):
		return "remote"
	default:
		return "other"
	}
}
