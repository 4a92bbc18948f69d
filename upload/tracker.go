package upload

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/brainbin/go-web-gateway/api"
	apierrors "github.com/brainbin/go-web-gateway/internal/errors"
)

// API is the slice of the backend client the tracker needs.
type API interface {
	IngestFile(ctx context.Context, accessToken, filename string, content io.Reader) (*api.IngestResult, error)
	IngestFileBackground(ctx context.Context, accessToken, filename string, content io.Reader) (*api.IngestResult, error)
	TaskStatus(ctx context.Context, accessToken, taskID string) (*api.TaskStatus, error)
}

// Metrics records task transitions. Optional.
type Metrics interface {
	RecordTaskTransition(status string)
}

// TrackerConfig provides the poll period.
type TrackerConfig interface {
	GetTaskPollInterval() time.Duration
}

// CompletionFunc runs when a tracked task reaches completed.
type CompletionFunc func(task Task)

// Tracker submits ingestion jobs and runs one cancellable poller per
// task id. Each poller stops itself the moment its task reaches a
// terminal state; the per-task design avoids a single loop rescanning
// every task on every tick.
type Tracker struct {
	api        API
	config     TrackerConfig
	metrics    Metrics
	onComplete CompletionFunc

	mu      sync.Mutex
	tasks   map[string]*Task
	cancels map[string]context.CancelFunc

	baseCtx context.Context
	cancel  context.CancelFunc
}

// TrackerOption defines a function type to modify the Tracker instance.
type TrackerOption func(*Tracker)

// WithCompletionCallback sets the callback invoked for each task that
// completes successfully.
func WithCompletionCallback(fn CompletionFunc) TrackerOption {
	return func(t *Tracker) {
		t.onComplete = fn
	}
}

// WithTrackerMetrics attaches a transition recorder.
func WithTrackerMetrics(metrics Metrics) TrackerOption {
	return func(t *Tracker) {
		t.metrics = metrics
	}
}

// NewTracker initializes a Tracker.
func NewTracker(apiClient API, cfg TrackerConfig, options ...TrackerOption) (*Tracker, error) {
	if apiClient == nil {
		return nil, errors.New("[NewTracker] api client is required")
	}
	if cfg == nil {
		return nil, errors.New("[NewTracker] config is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &Tracker{
		api:     apiClient,
		config:  cfg,
		tasks:   make(map[string]*Task),
		cancels: make(map[string]context.CancelFunc),
		baseCtx: ctx,
		cancel:  cancel,
	}
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

// Stop cancels every running poller. Tasks stay listed so terminal
// results remain visible after teardown of the polling machinery.
func (t *Tracker) Stop() {
	t.cancel()
}

// Submit validates nothing - callers run Validate first. It tries the
// background ingestion endpoint and, when the backend does not serve
// it, falls back to the synchronous call that blocks until processing
// is done. The returned task is already terminal on the fallback path.
func (t *Tracker) Submit(ctx context.Context, accessToken, filename string, content []byte) (*Task, error) {
	result, err := t.api.IngestFileBackground(ctx, accessToken, filename, bytes.NewReader(content))
	if err != nil {
		if !backgroundUnavailable(err) {
			return nil, err
		}
		log.Debug().Str("filename", filename).Msg("background ingestion unavailable, using synchronous fallback")
		return t.submitSync(ctx, accessToken, filename, content)
	}

	task := &Task{
		ID:        result.TaskID,
		Filename:  filename,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	pollCtx, cancel := context.WithCancel(t.baseCtx)
	t.mu.Lock()
	t.tasks[task.ID] = task
	t.cancels[task.ID] = cancel
	t.mu.Unlock()

	t.record(string(StatusQueued))
	go t.poll(pollCtx, accessToken, task.ID)

	cp := *task
	return &cp, nil
}

// submitSync runs the blocking ingestion call and records the outcome
// as an already-terminal task, with no poller.
func (t *Tracker) submitSync(ctx context.Context, accessToken, filename string, content []byte) (*Task, error) {
	task := &Task{
		ID:        uuid.New().String(),
		Filename:  filename,
		CreatedAt: time.Now(),
	}

	result, err := t.api.IngestFile(ctx, accessToken, filename, bytes.NewReader(content))
	if err != nil {
		task.Status = StatusFailed
		task.Error = err.Error()
	} else if result.Status == api.StatusError {
		task.Status = StatusFailed
		task.Error = result.Message
	} else {
		task.Status = StatusCompleted
	}

	t.mu.Lock()
	t.tasks[task.ID] = task
	t.mu.Unlock()
	t.record(string(task.Status))

	if task.Status == StatusCompleted && t.onComplete != nil {
		t.onComplete(*task)
	}

	cp := *task
	return &cp, nil
}

// backgroundUnavailable decides whether the backend simply does not
// serve the background endpoint, as opposed to rejecting this upload.
func backgroundUnavailable(err error) bool {
	var re *apierrors.RemoteError
	if errors.As(err, &re) {
		return re.StatusCode == http.StatusNotFound ||
			re.StatusCode == http.StatusMethodNotAllowed ||
			re.StatusCode == http.StatusNotImplemented
	}
	return false
}

func (t *Tracker) poll(ctx context.Context, accessToken, taskID string) {
	ticker := time.NewTicker(t.config.GetTaskPollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := t.pollOnce(ctx, accessToken, taskID); done {
				t.stopPolling(taskID)
				return
			}
		}
	}
}

// pollOnce fetches the task's status and applies it. Returns true when
// the task reached a terminal state.
func (t *Tracker) pollOnce(ctx context.Context, accessToken, taskID string) bool {
	status, err := t.api.TaskStatus(ctx, accessToken, taskID)
	if err != nil {
		// A vanished task will never terminate on its own; transient
		// errors just skip the tick.
		var re *apierrors.RemoteError
		if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
			t.applyStatus(taskID, string(StatusFailed), 0, "task no longer exists")
			return true
		}
		log.Debug().Err(err).Str("task_id", taskID).Msg("task status poll failed")
		return false
	}

	t.applyStatus(taskID, status.Status, status.Progress, status.Error)
	return Status(status.Status).Terminal()
}

func (t *Tracker) applyStatus(taskID, status string, progress float64, errMsg string) {
	t.mu.Lock()
	task, ok := t.tasks[taskID]
	if !ok {
		t.mu.Unlock()
		return
	}

	changed := task.Status != Status(status)
	task.Status = Status(status)
	if progress > 0 {
		task.Progress = progress
	}
	if errMsg != "" {
		task.Error = errMsg
	}
	completed := changed && task.Status == StatusCompleted
	cp := *task
	t.mu.Unlock()

	if changed {
		t.record(status)
		log.Info().Str("task_id", taskID).Str("status", status).Msg("ingestion task transition")
	}
	if completed && t.onComplete != nil {
		t.onComplete(cp)
	}
}

func (t *Tracker) stopPolling(taskID string) {
	t.mu.Lock()
	cancel, ok := t.cancels[taskID]
	delete(t.cancels, taskID)
	t.mu.Unlock()
	if ok {
		cancel()
	}
}

// Dismiss removes a terminal task from the visible list.
func (t *Tracker) Dismiss(taskID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, ok := t.tasks[taskID]
	if !ok {
		return apierrors.ErrTaskNotFound
	}
	if !task.Status.Terminal() {
		return apierrors.ErrTaskNotTerminal
	}
	delete(t.tasks, taskID)
	return nil
}

// Tasks returns a snapshot of all tracked tasks, oldest first.
func (t *Tracker) Tasks() []Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Task, 0, len(t.tasks))
	for _, task := range t.tasks {
		out = append(out, *task)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Get returns a snapshot of one task.
func (t *Tracker) Get(taskID string) (*Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, ok := t.tasks[taskID]
	if !ok {
		return nil, apierrors.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (t *Tracker) record(status string) {
	if t.metrics != nil {
		t.metrics.RecordTaskTransition(status)
	}
}
