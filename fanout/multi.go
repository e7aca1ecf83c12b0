// Package fanout implements the concurrent many-exchange invocation of
// §4.8, one goroutine per task with no cap on how many run at once
// (Options.Limiter only paces dispatch): Multi (parallel_call and its result helpers) and Health (ping/
// latency/status composed from fetch_time). Neither type retries; a crashed
// or timed-out task becomes an Err entry, never an aborted batch.
package fanout

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ccxtgo/unified/errs"
)

// Task is one unit of fan-out work: a key (the "module handle" results are
// keyed by, per §4.8's ordering note) and the function to run.
type Task struct {
	Key string
	Run func(ctx context.Context) (any, error)
}

// Outcome is one task's normalised result: exactly one of Value or Err is
// meaningful.
type Outcome struct {
	Value any
	Err   error
}

// Ok reports whether this task succeeded.
func (o Outcome) Ok() bool { return o.Err == nil }

// Options configures ParallelCall. The zero value is a valid, if
// unpaced and unbounded, configuration; DefaultOptions returns the
// recommended production defaults.
type Options struct {
	// PerTaskTimeout bounds each individual task; zero means no per-task
	// timeout beyond ctx's own deadline.
	PerTaskTimeout time.Duration
	// Limiter paces task dispatch so many-exchange fan-out doesn't open a
	// burst of connections all at once; nil means unpaced.
	Limiter *rate.Limiter
}

// DefaultOptions returns §4.8's stated per-task default (10s) with no
// dispatch pacing; callers wanting pacing supply their own Limiter.
func DefaultOptions() Options {
	return Options{PerTaskTimeout: 10 * time.Second}
}

// ParallelCall runs every task concurrently, keyed by Task.Key, and returns
// once all have completed or been cancelled. A panicking task is recovered
// and reported as an Err entry rather than crashing the batch (§4.8
// "crashes become Err(exit{reason})"). No task is retried.
func ParallelCall(ctx context.Context, tasks []Task, opts Options) map[string]Outcome {
	out := make(map[string]Outcome, len(tasks))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, task := range tasks {
		task := task
		wg.Add(1)
		go func() {
			defer wg.Done()

			if opts.Limiter != nil {
				if err := opts.Limiter.Wait(ctx); err != nil {
					mu.Lock()
					out[task.Key] = Outcome{Err: errs.New(errs.TypeNetworkError, task.Key, "rate limiter wait cancelled", err)}
					mu.Unlock()
					return
				}
			}

			taskCtx := ctx
			var cancel context.CancelFunc
			if opts.PerTaskTimeout > 0 {
				taskCtx, cancel = context.WithTimeout(ctx, opts.PerTaskTimeout)
				defer cancel()
			}

			value, err := runRecovered(taskCtx, task)

			mu.Lock()
			out[task.Key] = Outcome{Value: value, Err: err}
			mu.Unlock()
		}()
	}

	wg.Wait()
	return out
}

// runRecovered isolates one task's panic so it cannot take down peers or
// the caller's goroutine.
func runRecovered(ctx context.Context, task Task) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.New(errs.TypeExchangeError, task.Key, "task panicked", panicError{r})
		}
	}()
	return task.Run(ctx)
}

type panicError struct{ recovered any }

func (p panicError) Error() string {
	if e, ok := p.recovered.(error); ok {
		return e.Error()
	}
	return "panic"
}

// Successes returns only the Ok entries' values, keyed the same as the
// input.
func Successes(results map[string]Outcome) map[string]any {
	out := make(map[string]any, len(results))
	for k, o := range results {
		if o.Ok() {
			out[k] = o.Value
		}
	}
	return out
}

// Failures returns only the Err entries, keyed the same as the input.
func Failures(results map[string]Outcome) map[string]error {
	out := make(map[string]error, len(results))
	for k, o := range results {
		if !o.Ok() {
			out[k] = o.Err
		}
	}
	return out
}

// SuccessCount counts Ok entries.
func SuccessCount(results map[string]Outcome) int {
	n := 0
	for _, o := range results {
		if o.Ok() {
			n++
		}
	}
	return n
}

// FailureCount counts Err entries.
func FailureCount(results map[string]Outcome) int {
	return len(results) - SuccessCount(results)
}

// AllSucceeded reports whether every task in results succeeded (vacuously
// true for an empty map).
func AllSucceeded(results map[string]Outcome) bool {
	return FailureCount(results) == 0
}

// AnySucceeded reports whether at least one task succeeded.
func AnySucceeded(results map[string]Outcome) bool {
	return SuccessCount(results) > 0
}
