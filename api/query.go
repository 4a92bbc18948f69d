package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type queryRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
}

// Query asks a natural-language question against the user's documents.
// It is the only operation with its own client-side deadline: the
// request is aborted once the configured query timeout elapses and the
// caller gets a timeout-classified error instead of a remote one.
func (c *Client) Query(ctx context.Context, accessToken, userID, question string) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	result := &QueryResult{}
	if err := c.doJSON(ctx, http.MethodPost, "/query", accessToken, queryRequest{Question: question, UserID: userID}, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ClearContext drops the backend's conversational context for the user.
func (c *Client) ClearContext(ctx context.Context, accessToken, userID string) error {
	path := fmt.Sprintf("/query/clear-context/%s", url.PathEscape(userID))
	return c.doJSON(ctx, http.MethodPost, path, accessToken, nil, nil)
}
