package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-assets/internal/pipeline"
)

type countingProcessor struct {
	calls atomic.Int32
	fail  uuid.UUID
	delay time.Duration
}

func (p *countingProcessor) ProcessFile(ctx context.Context, fileID uuid.UUID) (pipeline.Result, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return pipeline.Result{}, ctx.Err()
		}
	}
	if fileID == p.fail {
		return pipeline.Result{}, errors.New("boom")
	}
	return pipeline.Result{Assets: 1}, nil
}

func TestProcessorQueue_DrainsOnShutdown(t *testing.T) {
	proc := &countingProcessor{fail: uuid.New()}
	var (
		mu     sync.Mutex
		failed int
	)
	q := NewProcessorQueue(proc, nil,
		WithWorkers(3),
		WithQueueSize(4),
		WithResultHook(func(_ Job, _ pipeline.Result, err error) {
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}),
	)

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{FileID: uuid.New()}))
	}
	require.NoError(t, q.Enqueue(context.Background(), Job{FileID: proc.fail}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.EqualValues(t, 11, proc.calls.Load())
	assert.Equal(t, 1, failed)
	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{FileID: uuid.New()}), ErrQueueClosed)
}

func TestProcessorQueue_EnqueueHonorsContext(t *testing.T) {
	proc := &countingProcessor{delay: time.Second}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithQueueSize(1))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		q.Shutdown(ctx)
	}()

	require.NoError(t, q.Enqueue(context.Background(), Job{FileID: uuid.New()}))
	require.Eventually(t, func() bool { return proc.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{FileID: uuid.New()}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(ctx, Job{FileID: uuid.New()}), context.DeadlineExceeded)
}

func TestProcessorQueue_JobTimeout(t *testing.T) {
	proc := &countingProcessor{delay: time.Second}
	errs := make(chan error, 1)
	q := NewProcessorQueue(proc, nil,
		WithWorkers(1),
		WithProcessTimeout(20*time.Millisecond),
		WithResultHook(func(_ Job, _ pipeline.Result, err error) { errs <- err }),
	)
	require.NoError(t, q.Enqueue(context.Background(), Job{FileID: uuid.New()}))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not time out")
	}
	q.Shutdown(context.Background())
}

func TestProcessorQueue_StampsQueuedAt(t *testing.T) {
	jobs := make(chan Job, 1)
	q := NewProcessorQueue(&countingProcessor{}, nil,
		WithWorkers(1),
		WithResultHook(func(job Job, _ pipeline.Result, _ error) { jobs <- job }),
	)
	defer q.Shutdown(context.Background())

	before := time.Now().UTC()
	require.NoError(t, q.Enqueue(context.Background(), Job{FileID: uuid.New(), Path: "/inbox/bill.pdf"}))

	select {
	case job := <-jobs:
		assert.Equal(t, "/inbox/bill.pdf", job.Path)
		assert.False(t, job.QueuedAt.Before(before))
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
}
