// Package workerpool fans a fixed set of tasks out to a bounded number of
// concurrent workers and streams back one result per task. The pool does
// no logging and no file I/O; it only moves tasks and results.
package workerpool

import (
	"context"
	"fmt"
	"sync"

	"github.com/aliskhannn/background-replacer/internal/model"
)

// RunFunc executes one task and returns its result. It must capture its
// own errors; a returned result is the only way a task reports failure.
type RunFunc func(ctx context.Context, t model.Task) model.TaskResult

// Pool runs tasks with bounded concurrency.
type Pool struct {
	workers int
}

// New creates a Pool with the given worker count. Counts below one are
// raised to one.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run submits every task and returns a channel that yields exactly one
// TaskResult per submitted task, in completion order. The channel is
// closed once all tasks have finished. Tasks beyond the worker count
// queue until a worker frees up; no task is retried or cancelled because
// another task failed.
func (p *Pool) Run(ctx context.Context, tasks []model.Task, run RunFunc) <-chan model.TaskResult {
	taskCh := make(chan model.Task)
	results := make(chan model.TaskResult, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range taskCh {
				results <- p.runOne(ctx, t, run)
			}
		}()
	}

	go func() {
		for _, t := range tasks {
			taskCh <- t
		}
		close(taskCh)
		wg.Wait()
		close(results)
	}()

	return results
}

// runOne executes a single task, converting a panic into a failure result
// so a crashing task cannot take its worker down with it.
func (p *Pool) runOne(ctx context.Context, t model.Task, run RunFunc) (res model.TaskResult) {
	defer func() {
		if r := recover(); r != nil {
			res = model.TaskResult{Task: t, Err: fmt.Errorf("task panicked: %v", r)}
		}
	}()
	return run(ctx, t)
}
