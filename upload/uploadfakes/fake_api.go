package uploadfakes

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/brainbin/go-web-gateway/api"
	"github.com/brainbin/go-web-gateway/upload"
)

var _ upload.API = (*FakeIngestAPI)(nil)

// FakeIngestAPI scripts ingestion responses. TaskStatus walks through
// StatusSequence one entry per poll and then repeats the last entry.
type FakeIngestAPI struct {
	lock sync.Mutex

	BackgroundResult *api.IngestResult
	BackgroundErr    error
	SyncResult       *api.IngestResult
	SyncErr          error
	StatusSequence   []*api.TaskStatus
	StatusErr        error

	BackgroundCalls int
	SyncCalls       int
	StatusCalls     int
}

func NewFakeIngestAPI() *FakeIngestAPI {
	return &FakeIngestAPI{}
}

func (f *FakeIngestAPI) IngestFile(_ context.Context, accessToken, filename string, content io.Reader) (*api.IngestResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.SyncCalls++
	if f.SyncErr != nil {
		return nil, f.SyncErr
	}
	if f.SyncResult == nil {
		return nil, errors.New("no sync result configured")
	}
	return f.SyncResult, nil
}

func (f *FakeIngestAPI) IngestFileBackground(_ context.Context, accessToken, filename string, content io.Reader) (*api.IngestResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.BackgroundCalls++
	if f.BackgroundErr != nil {
		return nil, f.BackgroundErr
	}
	if f.BackgroundResult == nil {
		return nil, errors.New("no background result configured")
	}
	return f.BackgroundResult, nil
}

func (f *FakeIngestAPI) TaskStatus(_ context.Context, accessToken, taskID string) (*api.TaskStatus, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.StatusCalls++
	if f.StatusErr != nil {
		return nil, f.StatusErr
	}
	if len(f.StatusSequence) == 0 {
		return nil, errors.New("no status sequence configured")
	}
	status := f.StatusSequence[0]
	if len(f.StatusSequence) > 1 {
		f.StatusSequence = f.StatusSequence[1:]
	}
	return status, nil
}

// Calls returns the current call counters.
func (f *FakeIngestAPI) Calls() (background, sync, status int) {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.BackgroundCalls, f.SyncCalls, f.StatusCalls
}
