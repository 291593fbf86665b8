// Package task executes a single background-replacement unit of work.
package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/background-replacer/internal/background"
	"github.com/aliskhannn/background-replacer/internal/compositor"
	"github.com/aliskhannn/background-replacer/internal/model"
)

// Unit holds the shared, read-only context every task runs against: the
// two roots, the background set, and the compositor. A single Unit is
// shared by all workers; nothing in it is mutated after construction.
type Unit struct {
	InputRoot   string
	OutputRoot  string
	Backgrounds *background.Set
	Compositor  *compositor.Compositor
}

// Run executes one task to completion. Every error from path resolution
// through compositing is captured on the returned TaskResult; Run never
// lets a failure escape to the pool or to sibling tasks.
func (u *Unit) Run(ctx context.Context, t model.Task) model.TaskResult {
	outputRel, err := u.run(ctx, t)
	return model.TaskResult{Task: t, OutputRelPath: outputRel, Err: err}
}

func (u *Unit) run(ctx context.Context, t model.Task) (string, error) {
	if !filepath.IsLocal(t.RelPath) {
		return "", fmt.Errorf("path %q escapes the input root", t.RelPath)
	}

	inputPath := filepath.Join(u.InputRoot, t.RelPath)

	// Mirror the input's subdirectory under the output root. Sibling
	// tasks may create the same directory concurrently; MkdirAll treats
	// an existing directory as success.
	relDir := filepath.Dir(t.RelPath)
	outputDir := filepath.Join(u.OutputRoot, relDir)
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		zlog.Logger.Info().Str("dir", outputDir).Msg("creating output directory")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	outputRel := filepath.Join(relDir, compositor.OutputName(filepath.Base(t.RelPath)))
	outputPath := filepath.Join(u.OutputRoot, outputRel)

	name := u.Backgrounds.Pick()
	if err := u.Compositor.Replace(ctx, inputPath, u.Backgrounds.Path(name), outputPath); err != nil {
		return "", err
	}

	return outputRel, nil
}
