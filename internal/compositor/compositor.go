// Package compositor produces the final image: subject extracted from the
// foreground, layered over a background stretched to the same dimensions.
package compositor

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/aliskhannn/background-replacer/internal/extract"
)

// Compositor loads a foreground and a background image, asks the
// extractor for a subject mask, and writes the flattened composite.
type Compositor struct {
	extractor extract.Extractor
}

// New creates a Compositor backed by the given extractor.
func New(e extract.Extractor) *Compositor {
	return &Compositor{extractor: e}
}

// Replace composites the subject of inputPath over the image at
// backgroundPath and saves the result to outputPath. The background is
// stretched, never cropped, to the foreground's exact dimensions so it
// always covers the full frame. The write is atomic: on any failure the
// destination file does not exist.
func (c *Compositor) Replace(ctx context.Context, inputPath, backgroundPath, outputPath string) error {
	// AutoOrientation applies EXIF rotation at decode time so portrait
	// photos do not come out sideways.
	fg, err := imaging.Open(inputPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("load foreground %s: %w", inputPath, err)
	}

	bg, err := imaging.Open(backgroundPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("load background %s: %w", backgroundPath, err)
	}

	subject, err := c.extractor.Extract(ctx, fg)
	if err != nil {
		return fmt.Errorf("extract subject from %s: %w", inputPath, err)
	}

	size := fg.Bounds().Size()
	if !subject.Bounds().Size().Eq(size) {
		return fmt.Errorf("subject mask is %v, foreground is %v", subject.Bounds().Size(), size)
	}

	resized := imaging.Resize(bg, size.X, size.Y, imaging.Lanczos)

	dc := gg.NewContext(size.X, size.Y)
	dc.DrawImage(resized, 0, 0)
	dc.DrawImage(subject, 0, 0)

	return save(flatten(dc.Image()), outputPath)
}

// flatten forces every pixel fully opaque. Transparency carries no
// meaning in the final output once the background fills the frame.
func flatten(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// save encodes img to a temp file next to dst and renames it into place,
// so a failed encode never leaves a partial file at dst. The codec is
// chosen by dst's extension.
func save(img *image.NRGBA, dst string) error {
	format, err := imaging.FormatFromFilename(dst)
	if err != nil {
		return fmt.Errorf("save %s: %w", dst, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("save %s: %w", dst, err)
	}

	if err := imaging.Encode(tmp, img, format); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", dst, err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", dst, err)
	}
	return nil
}

// OutputExt is the extension every composited file is written with.
// PNG keeps the pipeline lossless regardless of the source codec.
const OutputExt = ".png"

// OutputName maps a source filename to its composited output filename.
func OutputName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + OutputExt
}
