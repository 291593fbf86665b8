package model

import "github.com/google/uuid"

// Task represents one background-replacement job: a single image file
// identified by its path relative to the input root.
type Task struct {
	ID      uuid.UUID // correlation ID for logging
	RelPath string    // path relative to the input root, never absolute
}

// NewTask creates a Task for the given relative path with a fresh ID.
func NewTask(relPath string) Task {
	return Task{ID: uuid.New(), RelPath: relPath}
}

// TaskResult is the outcome of exactly one Task. It is produced by the
// worker that ran the task and consumed once by the batch reporter.
type TaskResult struct {
	Task
	OutputRelPath string // path of the produced file relative to the output root, empty on failure
	Err           error  // nil on success
}

// Failed reports whether the task ended in failure.
func (r TaskResult) Failed() bool {
	return r.Err != nil
}
