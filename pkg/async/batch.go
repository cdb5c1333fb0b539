package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/nextcommerce/storedash/pkg/observability"
)

// ItemError ties a failure to the index of the item that produced it
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Batch calls fn for every item using at most workers goroutines. Each call
// gets its own timeout derived from ctx. Items not yet started when ctx is
// done fail with the context error. Errors are returned in item order.
func Batch[T any](ctx context.Context, items []T, workers int, taskName string, timeout time.Duration,
	fn func(context.Context, T) error) []error {
	if workers <= 0 {
		workers = 1
	}

	results := make([]error, len(items))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, item := range items {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i] = ctx.Err()
			continue
		}

		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = run(ctx, taskName, timeout, func(ctx context.Context) error {
				return fn(ctx, item)
			})
		}(i, item)
	}
	wg.Wait()

	var errs []error
	for i, err := range results {
		if err != nil {
			errs = append(errs, &ItemError{Index: i, Err: err})
		}
	}
	return errs
}

func run(parent context.Context, taskName string, timeout time.Duration, fn func(context.Context) error) (err error) {
	ctx := parent
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			observability.FromContext(parent).WithFields(map[string]interface{}{
				"task":  taskName,
				"stack": string(debug.Stack()),
			}).Errorf("panic in background task: %v", r)
			err = fmt.Errorf("%s: panic: %v", taskName, r)
		}
	}()

	return fn(ctx)
}
