package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunPartitionsIntoBatches(t *testing.T) {
	// 25 tasks with batch size 10 must run as exactly three groups of
	// 10, 10 and 5.
	ctx := context.Background()

	var batchSizes []int
	started := make(chan int, 25)
	release := make(chan struct{})

	tasks := make([]Task[int], 25)
	for i := range tasks {
		i := i
		tasks[i] = func(ctx context.Context) (int, error) {
			started <- i
			<-release
			return i, nil
		}
	}

	done := make(chan []Outcome[int], 1)
	go func() {
		done <- Run(ctx, tasks, Config{
			BatchSize: 10,
			Delay:     NoDelay,
			OnBatch: func(batch, total int) {
				if total != 3 {
					t.Errorf("expected 3 total batches, got %d", total)
				}
			},
		})
	}()

	drain := func(n int) map[int]bool {
		seen := make(map[int]bool)
		for j := 0; j < n; j++ {
			select {
			case i := <-started:
				seen[i] = true
			case <-time.After(5 * time.Second):
				t.Fatalf("timed out waiting for task %d of batch", j)
			}
		}
		return seen
	}

	// First group: tasks 0..9 and nothing else until released.
	first := drain(10)
	for i := 0; i < 10; i++ {
		if !first[i] {
			t.Errorf("task %d should be in first batch", i)
		}
	}
	select {
	case i := <-started:
		t.Fatalf("task %d started before the first batch settled", i)
	case <-time.After(100 * time.Millisecond):
	}
	batchSizes = append(batchSizes, len(first))

	close(release)
	batchSizes = append(batchSizes, len(drain(15)))

	outcomes := <-done
	if len(outcomes) != 25 {
		t.Fatalf("expected 25 outcomes, got %d", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Err != nil {
			t.Errorf("task %d: unexpected error %v", i, o.Err)
		}
		if o.Value != i {
			t.Errorf("task %d: expected value %d, got %d", i, i, o.Value)
		}
	}
	if batchSizes[0] != 10 || batchSizes[1] != 15 {
		t.Errorf("unexpected batch progression: %v", batchSizes)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	tasks := []Task[string]{
		func(ctx context.Context) (string, error) { return "a", nil },
		func(ctx context.Context) (string, error) { return "", boom },
		func(ctx context.Context) (string, error) { return "c", nil },
	}

	outcomes := Run(ctx, tasks, Config{BatchSize: 3, Delay: NoDelay})

	if outcomes[0].Err != nil || outcomes[0].Value != "a" {
		t.Errorf("task 0 should succeed, got %+v", outcomes[0])
	}
	if !errors.Is(outcomes[1].Err, boom) {
		t.Errorf("task 1 should fail with boom, got %v", outcomes[1].Err)
	}
	if outcomes[2].Err != nil || outcomes[2].Value != "c" {
		t.Errorf("task 2 should succeed despite sibling failure, got %+v", outcomes[2])
	}
}

func TestRunStopsSchedulingAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ran atomic.Int32
	tasks := make([]Task[int], 6)
	for i := range tasks {
		i := i
		tasks[i] = func(ctx context.Context) (int, error) {
			ran.Add(1)
			if i == 1 {
				cancel()
			}
			return i, nil
		}
	}

	outcomes := Run(ctx, tasks, Config{BatchSize: 2, Delay: NoDelay})

	// The first group finishes; later groups never start.
	if ran.Load() != 2 {
		t.Errorf("expected only the first batch to run, ran %d tasks", ran.Load())
	}
	for i := 2; i < 6; i++ {
		if !errors.Is(outcomes[i].Err, context.Canceled) {
			t.Errorf("task %d should carry the context error, got %v", i, outcomes[i].Err)
		}
	}
}

func TestRandomDelayStaysInRange(t *testing.T) {
	p := RandomDelay(10*time.Millisecond, 30*time.Millisecond)

	startAt := time.Now()
	p.Pause(context.Background())
	elapsed := time.Since(startAt)

	if elapsed < 10*time.Millisecond {
		t.Errorf("pause too short: %v", elapsed)
	}
	if elapsed > time.Second {
		t.Errorf("pause too long: %v", elapsed)
	}
}

func TestRandomDelayRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := RandomDelay(time.Hour, 2*time.Hour)
	startAt := time.Now()
	p.Pause(ctx)
	if time.Since(startAt) > time.Second {
		t.Error("pause ignored cancelled context")
	}
}
