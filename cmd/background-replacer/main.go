package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/background-replacer/internal/config"
	"github.com/aliskhannn/background-replacer/internal/extract"
	"github.com/aliskhannn/background-replacer/internal/runner"
	"github.com/aliskhannn/background-replacer/internal/storage/object"
)

func main() {
	// Context & signals: lets an interrupt stop the extraction subprocesses.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad("./config")

	extractor := extract.NewCommand(cfg.Extract.Command)

	// Optional S3-compatible mirror of the output tree.
	var mirror *object.Mirror
	if cfg.Storage.Enabled {
		var err error
		mirror, err = object.NewMirror(ctx, cfg.Storage)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to storage")
		}
	}

	r := runner.New(cfg, extractor, mirrorOrNil(mirror))

	// Precondition failures abort before any task runs; per-task failures
	// are reported in the summary and still exit 0.
	if _, err := r.Run(ctx); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("batch aborted")
	}
}

// mirrorOrNil keeps a typed nil *object.Mirror from turning into a
// non-nil uploader interface inside the runner.
func mirrorOrNil(m *object.Mirror) runner.Uploader {
	if m == nil {
		return nil
	}
	return m
}
