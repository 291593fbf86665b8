package main

import (
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/background-replacer/internal/config"
	"github.com/aliskhannn/background-replacer/internal/scaler"
)

// background-resizer downsizes the images in the background pool so the
// batch does not stretch multi-megapixel files on every task. Run it once
// before a batch when new backgrounds are added.
func main() {
	zlog.Init()
	cfg := config.MustLoad("./config")

	if _, err := scaler.ScanAndResize(cfg.Paths.BackgroundDir, cfg.Scaler); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("background resize aborted")
	}
}
