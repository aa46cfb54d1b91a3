package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

type recordingRunner struct {
	mu   sync.Mutex
	reqs []Request
	err  error
}

func (r *recordingRunner) Run(_ context.Context, req Request) (Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return Report{RunID: "tick"}, r.err
}

func TestSchedulerForcesRefetch(t *testing.T) {
	t.Parallel()

	driver := &manualDriver{}
	runner := &recordingRunner{err: errors.New("boom")}
	s := NewScheduler(driver, runner, nil)

	require.NoError(t, s.Start(context.Background(), Request{Keyword: "go", Count: 5, Resume: true}))
	require.NotNil(t, driver.job)

	driver.job(time.Now())
	runner.err = nil
	driver.job(time.Now())

	require.Len(t, runner.reqs, 2)
	for _, req := range runner.reqs {
		assert.True(t, req.ForceRefetch)
		assert.False(t, req.Resume)
		assert.Equal(t, "go", req.Keyword)
	}

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerNotConfigured(t *testing.T) {
	t.Parallel()

	assert.Error(t, NewScheduler(nil, &recordingRunner{}, nil).Start(context.Background(), Request{}))
	assert.NoError(t, NewScheduler(nil, nil, nil).Stop(context.Background()))
}
