package api

import "time"

// Backend envelope statuses.
const (
	StatusSuccess    = "success"
	StatusError      = "error"
	StatusProcessing = "processing"
)

// TokenPair is what the auth endpoints return: the access token, its
// refresh counterpart and the expiry, plus the identity the backend
// already resolved.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    int64  `json:"expires_in,omitempty"` // seconds until expiry
	ExpiresAt    int64  `json:"expires_at,omitempty"` // unix seconds
	UserID       string `json:"user_id,omitempty"`
	Email        string `json:"email,omitempty"`
}

// Expiry resolves the token pair's expiration as a time. The absolute
// expires_at wins over the relative expires_in.
func (tp *TokenPair) Expiry(now time.Time) time.Time {
	if tp.ExpiresAt > 0 {
		return time.Unix(tp.ExpiresAt, 0)
	}
	if tp.ExpiresIn > 0 {
		return now.Add(time.Duration(tp.ExpiresIn) * time.Second)
	}
	return time.Time{}
}

// RegisterResult is the outcome of a registration request. Either the
// backend issued tokens right away, or it wants an email confirmation
// first and nothing about authentication state changes.
type RegisterResult struct {
	TokenPair
	Status               string `json:"status"`
	Message              string `json:"message,omitempty"`
	RequiresConfirmation bool   `json:"requires_confirmation,omitempty"`
}

// IngestResult is returned by both ingestion endpoints. The background
// variant reports processing plus a task id; the synchronous one
// blocks and reports the final status directly.
type IngestResult struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	TaskID   string `json:"task_id,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// TaskStatus is one poll of a background ingestion task.
type TaskStatus struct {
	TaskID   string  `json:"task_id"`
	Status   string  `json:"status"` // queued | processing | completed | failed
	Progress float64 `json:"progress,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// FileInfo describes one ingested document.
type FileInfo struct {
	Filename   string `json:"filename"`
	SizeBytes  int64  `json:"size_bytes,omitempty"`
	UploadedAt string `json:"uploaded_at,omitempty"`
}

type listFilesResponse struct {
	Status string     `json:"status"`
	Files  []FileInfo `json:"files"`
}

// QueryResult is the answer to a natural-language question.
type QueryResult struct {
	Status  string   `json:"status"`
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}

// Usage is a read-only snapshot of trial-limit counters. The gateway
// never mutates it; it only gates and displays.
type Usage struct {
	FilesUsed    int `json:"files_used"`
	QueriesUsed  int `json:"queries_used"`
	FilesLimit   int `json:"files_limit"`
	QueriesLimit int `json:"queries_limit"`
}

type usageResponse struct {
	Status string `json:"status"`
	Usage  Usage  `json:"usage"`
}

type healthResponse struct {
	Status string `json:"status"`
}
