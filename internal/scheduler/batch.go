package scheduler

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Task is one independently runnable unit of work. A task's failure is
// recorded in its Outcome and never affects its siblings.
type Task[T any] func(ctx context.Context) (T, error)

// Outcome is the per-task result: a value or an already-handled failure.
type Outcome[T any] struct {
	Value T
	Err   error
	Index int
}

// DelayPolicy pauses between batches. Implementations return promptly once
// ctx is done.
type DelayPolicy interface {
	Pause(ctx context.Context)
}

// DelayFunc adapts a function to a DelayPolicy.
type DelayFunc func(ctx context.Context)

func (f DelayFunc) Pause(ctx context.Context) { f(ctx) }

// NoDelay runs batches back to back.
var NoDelay = DelayFunc(func(context.Context) {})

// RandomDelay pauses for a duration drawn uniformly from [min, max], to keep
// request bursts from landing at a fixed cadence.
func RandomDelay(min, max time.Duration) DelayPolicy {
	return DelayFunc(func(ctx context.Context) {
		d := min
		if max > min {
			d = min + time.Duration(rand.Int63n(int64(max-min)))
		}
		if d <= 0 {
			return
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	})
}

// Config controls a Run.
type Config struct {
	// BatchSize is the number of tasks executed concurrently per group.
	BatchSize int
	// Delay is applied between consecutive groups, never before the first.
	Delay DelayPolicy
	// OnBatch, when set, is called before each group starts (1-based).
	OnBatch func(batch, totalBatches int)
}

// Run partitions tasks into consecutive groups of cfg.BatchSize, runs every
// task within a group concurrently, and waits for the whole group to settle
// before starting the next. Cancelling ctx lets the in-flight group finish
// but starts no further groups; unstarted tasks get the context error as
// their outcome.
func Run[T any](ctx context.Context, tasks []Task[T], cfg Config) []Outcome[T] {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	delay := cfg.Delay
	if delay == nil {
		delay = NoDelay
	}

	totalBatches := (len(tasks) + batchSize - 1) / batchSize
	outcomes := make([]Outcome[T], len(tasks))

	for start := 0; start < len(tasks); start += batchSize {
		if start > 0 {
			delay.Pause(ctx)
		}
		if err := ctx.Err(); err != nil {
			for i := start; i < len(tasks); i++ {
				outcomes[i] = Outcome[T]{Index: i, Err: err}
			}
			return outcomes
		}

		if cfg.OnBatch != nil {
			cfg.OnBatch(start/batchSize+1, totalBatches)
		}

		end := min(start+batchSize, len(tasks))
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				v, err := tasks[i](ctx)
				outcomes[i] = Outcome[T]{Value: v, Err: err, Index: i}
			}(i)
		}
		wg.Wait()
	}

	return outcomes
}
