// Package scaler shrinks oversized background images ahead of a batch
// run. Large backgrounds cost memory in every task that picks them; a
// modest downscale before compositing removes that cost once.
package scaler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/background-replacer/internal/catalog"
	"github.com/aliskhannn/background-replacer/internal/config"
)

// Stats counts per-file outcomes of one scan.
type Stats struct {
	Resized int
	Copied  int
	Failed  int
}

// ScanAndResize processes every image directly under root: images whose
// smallest dimension exceeds cfg.MinDimension are scaled down so that
// dimension equals it exactly (aspect ratio preserved); smaller and
// exact-fit images are copied unchanged. Results land in the
// cfg.OutputSubdir subdirectory of root. Per-file failures are logged
// and skipped; only a failure to read root or create the output
// directory aborts the scan.
func ScanAndResize(root string, cfg config.Scaler) (Stats, error) {
	var stats Stats

	outputDir := filepath.Join(root, cfg.OutputSubdir)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return stats, fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return stats, fmt.Errorf("read dir %s: %w", root, err)
	}

	zlog.Logger.Info().
		Str("dir", root).
		Int("min_dimension", cfg.MinDimension).
		Msg("scanning backgrounds")

	for _, e := range entries {
		if e.IsDir() || !catalog.IsImageFile(e.Name()) {
			continue
		}

		src := filepath.Join(root, e.Name())
		dst := filepath.Join(outputDir, e.Name())

		resized, err := resizeToMin(src, dst, cfg.MinDimension, cfg.JPEGQuality)
		if err != nil {
			stats.Failed++
			zlog.Logger.Error().Err(err).Str("file", e.Name()).Msg("failed to process background")
			continue
		}
		if resized {
			stats.Resized++
		} else {
			stats.Copied++
		}
	}

	zlog.Logger.Info().
		Int("resized", stats.Resized).
		Int("copied", stats.Copied).
		Int("failed", stats.Failed).
		Msg("background scan finished")

	return stats, nil
}

// resizeToMin writes src to dst, downscaled so its smallest dimension
// equals minDim when it started out larger. Images at or below minDim
// are re-encoded as-is; upscaling would only hurt quality.
func resizeToMin(src, dst string, minDim, quality int) (resized bool, err error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return false, fmt.Errorf("load %s: %w", src, err)
	}

	size := img.Bounds().Size()
	smallest := size.X
	if size.Y < smallest {
		smallest = size.Y
	}

	if smallest > minDim {
		scale := float64(minDim) / float64(smallest)
		width := int(float64(size.X) * scale)
		height := int(float64(size.Y) * scale)
		img = imaging.Resize(img, width, height, imaging.Lanczos)
		resized = true
	}

	if err := imaging.Save(img, dst, imaging.JPEGQuality(quality)); err != nil {
		return false, fmt.Errorf("save %s: %w", dst, err)
	}
	return resized, nil
}
