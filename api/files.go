package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	apierrors "github.com/brainbin/go-web-gateway/internal/errors"
)

// IngestFile uploads a document through the synchronous endpoint,
// blocking until the backend has finished processing it.
func (c *Client) IngestFile(ctx context.Context, accessToken, filename string, content io.Reader) (*IngestResult, error) {
	return c.ingest(ctx, "/ingest", accessToken, filename, content)
}

// IngestFileBackground uploads a document for asynchronous processing.
// The backend answers immediately with a task id; progress is observed
// via TaskStatus.
func (c *Client) IngestFileBackground(ctx context.Context, accessToken, filename string, content io.Reader) (*IngestResult, error) {
	return c.ingest(ctx, "/ingest/background", accessToken, filename, content)
}

func (c *Client) ingest(ctx context.Context, path, accessToken, filename string, content io.Reader) (*IngestResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, apierrors.Wrapf(err, "[api] multipart form")
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, apierrors.Wrapf(err, "[api] read upload content")
	}
	if err := mw.Close(); err != nil {
		return nil, apierrors.Wrapf(err, "[api] finalize multipart form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), &buf)
	if err != nil {
		return nil, apierrors.Wrapf(err, "[api] build ingest request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	result := &IngestResult{}
	if err := c.send(req, accessToken, path, result); err != nil {
		return nil, err
	}
	return result, nil
}

// TaskStatus fetches the current state of one background task.
func (c *Client) TaskStatus(ctx context.Context, accessToken, taskID string) (*TaskStatus, error) {
	status := &TaskStatus{}
	path := fmt.Sprintf("/tasks/%s", url.PathEscape(taskID))
	if err := c.doJSON(ctx, http.MethodGet, path, accessToken, nil, status); err != nil {
		return nil, err
	}
	if status.TaskID == "" {
		status.TaskID = taskID
	}
	return status, nil
}

// ListFiles returns the user's ingested documents.
func (c *Client) ListFiles(ctx context.Context, accessToken, userID string) ([]FileInfo, error) {
	resp := &listFilesResponse{}
	path := fmt.Sprintf("/files/%s", url.PathEscape(userID))
	if err := c.doJSON(ctx, http.MethodGet, path, accessToken, nil, resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// DeleteFile removes one ingested document.
func (c *Client) DeleteFile(ctx context.Context, accessToken, userID, filename string) error {
	path := fmt.Sprintf("/files/%s/%s", url.PathEscape(userID), url.PathEscape(filename))
	return c.doJSON(ctx, http.MethodDelete, path, accessToken, nil, nil)
}
