// Package parallel runs independent experiment instances on a fixed pool of
// goroutines.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/dd0wney/ftroute/pkg/logging"
)

var (
	// ErrTooManyWorkers is returned when the worker count exceeds MaxWorkers.
	ErrTooManyWorkers = errors.New("parallel: worker count exceeds maximum")
	// ErrPoolClosed is returned by ForEach on a closed pool.
	ErrPoolClosed = errors.New("parallel: pool is closed")
	// ErrTaskPanic wraps a panic raised inside a ForEach task.
	ErrTaskPanic = errors.New("parallel: task panicked")
)

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// WorkerPool manages a pool of worker goroutines
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
	logger    logging.Logger
	panics    atomic.Int64
}

// Option configures a WorkerPool.
type Option func(*WorkerPool)

// WithLogger reports recovered panics to logger.
func WithLogger(logger logging.Logger) Option {
	return func(wp *WorkerPool) { wp.logger = logger }
}

// NewWorkerPool creates a pool of workers goroutines. workers <= 0 means one.
func NewWorkerPool(workers int, opts ...Option) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}
	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(pool)
	}

	pool.start()
	return pool, nil
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					wp.panics.Add(1)
					wp.logger.Error("worker recovered from panic",
						logging.Component("parallel"),
						logging.Int("worker", id),
						logging.Any("panic", fmt.Sprint(r)))
				}
			}()
			task()
		}()
	}
}

// Workers returns the pool size.
func (wp *WorkerPool) Workers() int { return wp.workers }

// Panics returns how many submitted tasks panicked.
func (wp *WorkerPool) Panics() int64 { return wp.panics.Load() }

// Submit queues a task. It returns false if the pool is closed.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}
	// Safe to send because we hold the lock and pool is not closed
	wp.taskQueue <- task
	return true
}

// ForEach runs fn for every index in [0, n) on the pool and waits for all of
// them. The first error cancels the context handed to the remaining calls and
// is returned; a panicking call counts as an error wrapping ErrTaskPanic.
func (wp *WorkerPool) ForEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel(err)
		})
	}

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		ok := wp.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					fail(fmt.Errorf("%w: index %d: %v", ErrTaskPanic, i, r))
				}
			}()
			if ctx.Err() != nil {
				return
			}
			if err := fn(ctx, i); err != nil {
				fail(err)
			}
		})
		if !ok {
			wg.Done()
			fail(ErrPoolClosed)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return context.Cause(ctx)
}

// Close stops accepting tasks and waits for queued ones to finish. It is safe
// to call more than once.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Wait is Close under the name callers of a batch expect.
func (wp *WorkerPool) Wait() {
	wp.Close()
}
