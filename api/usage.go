package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	apierrors "github.com/brainbin/go-web-gateway/internal/errors"
)

// Usage fetches the user's trial-limit counters.
func (c *Client) Usage(ctx context.Context, accessToken, userID string) (*Usage, error) {
	resp := &usageResponse{}
	path := fmt.Sprintf("/usage/%s", url.PathEscape(userID))
	if err := c.doJSON(ctx, http.MethodGet, path, accessToken, nil, resp); err != nil {
		return nil, err
	}
	return &resp.Usage, nil
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) error {
	resp := &healthResponse{}
	if err := c.doJSON(ctx, http.MethodGet, "/health", "", nil, resp); err != nil {
		return err
	}
	if resp.Status != "" && resp.Status != StatusSuccess && resp.Status != "ok" && resp.Status != "healthy" {
		return &apierrors.RemoteError{StatusCode: http.StatusOK, Message: fmt.Sprintf("backend unhealthy: %s", resp.Status)}
	}
	return nil
}
