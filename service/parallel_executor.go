package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/config"
)

// DefaultLoadTimeout bounds a concurrent load of every scheme
const DefaultLoadTimeout = 10 * time.Minute

// ParallelExecutorImpl runs scheme loads side by side
type ParallelExecutorImpl struct {
	maxConcurrency int
	timeout        time.Duration
}

// NewParallelExecutor creates an executor with no concurrency limit
func NewParallelExecutor() domain.ParallelExecutor {
	return &ParallelExecutorImpl{
		timeout: DefaultLoadTimeout,
	}
}

// NewLoadExecutor creates the executor of LoadAll, limited by source.load_concurrency
func NewLoadExecutor(source config.SourceConfig) domain.ParallelExecutor {
	pe := NewParallelExecutor()
	pe.SetMaxConcurrency(source.LoadConcurrency)
	return pe
}

// Execute runs every enabled task and waits for all of them. Failures are
// joined in task order so the first failing task's error is reported first.
func (pe *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	if len(tasks) == 0 {
		return nil
	}

	if pe.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pe.timeout)
		defer cancel()
	}

	var semaphore chan struct{}
	if pe.maxConcurrency > 0 {
		semaphore = make(chan struct{}, pe.maxConcurrency)
	}

	var wg sync.WaitGroup
	failures := make([]error, len(tasks))

	for i, task := range tasks {
		if !task.IsEnabled() {
			continue
		}

		wg.Add(1)
		go func(i int, t domain.ExecutableTask) {
			defer wg.Done()

			if semaphore != nil {
				select {
				case semaphore <- struct{}{}:
					defer func() { <-semaphore }()
				case <-ctx.Done():
					failures[i] = fmt.Errorf("%s: %w", t.Name(), ctx.Err())
					return
				}
			}

			if err := ctx.Err(); err != nil {
				failures[i] = fmt.Errorf("%s: %w", t.Name(), err)
				return
			}
			if _, err := t.Execute(ctx); err != nil {
				failures[i] = fmt.Errorf("%s: %w", t.Name(), err)
			}
		}(i, task)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return errors.Join(failures...)
	case <-ctx.Done():
		// tasks observe ctx themselves; wait so failures is not read while written
		<-done
		if err := errors.Join(failures...); err != nil {
			return err
		}
		return fmt.Errorf("parallel load timed out after %v: %w", pe.timeout, ctx.Err())
	}
}

// SetMaxConcurrency limits the number of tasks running at once; 0 means no limit
func (pe *ParallelExecutorImpl) SetMaxConcurrency(max int) {
	pe.maxConcurrency = max
}

// SetTimeout sets the deadline of a whole Execute call; 0 disables it
func (pe *ParallelExecutorImpl) SetTimeout(timeout time.Duration) {
	pe.timeout = timeout
}

// FuncTask adapts a function to domain.ExecutableTask
type FuncTask struct {
	name    string
	enabled bool
	run     func(context.Context) (interface{}, error)
}

// NewFuncTask creates a task running fn
func NewFuncTask(name string, enabled bool, fn func(context.Context) (interface{}, error)) domain.ExecutableTask {
	return &FuncTask{name: name, enabled: enabled, run: fn}
}

// Name returns the task name
func (t *FuncTask) Name() string {
	return t.name
}

// Execute runs the task function
func (t *FuncTask) Execute(ctx context.Context) (interface{}, error) {
	if t.run == nil {
		return nil, fmt.Errorf("task %s has nothing to run", t.name)
	}
	return t.run(ctx)
}

// IsEnabled reports whether the task should run
func (t *FuncTask) IsEnabled() bool {
	return t.enabled
}
