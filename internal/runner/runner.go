// Package runner orchestrates a full batch: validate preconditions,
// discover inputs, drive the worker pool, and report results as they
// complete.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/background-replacer/internal/background"
	"github.com/aliskhannn/background-replacer/internal/catalog"
	"github.com/aliskhannn/background-replacer/internal/compositor"
	"github.com/aliskhannn/background-replacer/internal/config"
	"github.com/aliskhannn/background-replacer/internal/extract"
	"github.com/aliskhannn/background-replacer/internal/model"
	"github.com/aliskhannn/background-replacer/internal/task"
	"github.com/aliskhannn/background-replacer/internal/workerpool"
)

// ErrNoInputs is returned when the input tree holds no supported images.
// An empty batch is surfaced as an error so a mistyped input path does
// not silently succeed.
var ErrNoInputs = errors.New("no input images found")

// Uploader mirrors a produced output file to remote storage.
type Uploader interface {
	Upload(ctx context.Context, relPath, localPath string) error
}

// Summary aggregates the per-task outcomes of one batch run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Runner wires the pipeline components together for one batch run.
type Runner struct {
	cfg       *config.Config
	extractor extract.Extractor
	mirror    Uploader // nil when mirroring is disabled
}

// New creates a Runner. mirror may be nil.
func New(cfg *config.Config, e extract.Extractor, mirror Uploader) *Runner {
	return &Runner{cfg: cfg, extractor: e, mirror: mirror}
}

// Run executes the batch. It returns an error only for precondition
// failures detected before any task is submitted; individual task
// failures are counted in the Summary and never abort the batch.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if err := checkDir(r.cfg.Paths.InputDir); err != nil {
		return Summary{}, fmt.Errorf("input dir: %w", err)
	}
	if err := checkDir(r.cfg.Paths.BackgroundDir); err != nil {
		return Summary{}, fmt.Errorf("background dir: %w", err)
	}

	set, err := background.Load(r.cfg.Paths.BackgroundDir)
	if err != nil {
		return Summary{}, err
	}

	relPaths, err := catalog.Discover(r.cfg.Paths.InputDir)
	if err != nil {
		return Summary{}, err
	}
	if len(relPaths) == 0 {
		return Summary{}, fmt.Errorf("%w in %s", ErrNoInputs, r.cfg.Paths.InputDir)
	}

	tasks := make([]model.Task, 0, len(relPaths))
	for _, rel := range relPaths {
		tasks = append(tasks, model.NewTask(rel))
	}

	zlog.Logger.Info().
		Int("inputs", len(tasks)).
		Int("backgrounds", set.Len()).
		Int("workers", r.cfg.Workers.Max).
		Str("output_dir", r.cfg.Paths.OutputDir).
		Msg("starting batch")

	unit := &task.Unit{
		InputRoot:   r.cfg.Paths.InputDir,
		OutputRoot:  r.cfg.Paths.OutputDir,
		Backgrounds: set,
		Compositor:  compositor.New(r.extractor),
	}

	pool := workerpool.New(r.cfg.Workers.Max)
	results := pool.Run(ctx, tasks, unit.Run)

	summary := Summary{Total: len(tasks)}
	for res := range results {
		r.report(ctx, res, &summary)
	}

	zlog.Logger.Info().
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("batch finished")

	return summary, nil
}

// report logs one completed task and mirrors successful outputs.
func (r *Runner) report(ctx context.Context, res model.TaskResult, summary *Summary) {
	if res.Failed() {
		summary.Failed++
		zlog.Logger.Error().
			Err(res.Err).
			Str("task_id", res.ID.String()).
			Str("input", res.RelPath).
			Msg("task failed")
		return
	}

	summary.Succeeded++
	zlog.Logger.Info().
		Str("task_id", res.ID.String()).
		Str("input", res.RelPath).
		Str("output", res.OutputRelPath).
		Msg("task completed")

	if r.mirror == nil {
		return
	}
	localPath := filepath.Join(r.cfg.Paths.OutputDir, res.OutputRelPath)
	if err := r.mirror.Upload(ctx, res.OutputRelPath, localPath); err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("output", res.OutputRelPath).
			Msg("failed to mirror output")
	}
}

// checkDir verifies that path exists and is a directory.
func checkDir(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
