// Package extract defines the subject-extraction boundary. Extraction
// itself is an external capability; this package only shapes its contract
// and hosts the subprocess-backed default implementation.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Extractor produces a subject mask: given an image with an alpha channel
// it returns an image of identical pixel dimensions where alpha isolates
// the foreground subject. Implementations are assumed expensive and are
// invoked at most once per task.
type Extractor interface {
	Extract(ctx context.Context, img image.Image) (image.Image, error)
}

// Command runs subject extraction in a separate process, one invocation
// per call. The subprocess boundary gives every inference full memory
// isolation, so a crashing model run cannot take sibling tasks down.
type Command struct {
	// Binary is the extraction executable, invoked as
	// "<binary> i <input.png> <output.png>".
	Binary string
}

// NewCommand returns a Command extractor for the given binary name.
func NewCommand(binary string) *Command {
	return &Command{Binary: binary}
}

// Extract encodes img to a temporary PNG, runs the extraction subprocess
// on it, and decodes the result. The returned image keeps the input's
// pixel dimensions; a size mismatch from the subprocess is an error.
func (c *Command) Extract(ctx context.Context, img image.Image) (image.Image, error) {
	dir, err := os.MkdirTemp("", "extract-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")

	if err := imaging.Save(img, in); err != nil {
		return nil, fmt.Errorf("write extraction input: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.Binary, "i", in, out)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", c.Binary, err, lastLine(msg))
		}
		return nil, fmt.Errorf("%s: %w", c.Binary, err)
	}

	subject, err := imaging.Open(out)
	if err != nil {
		return nil, fmt.Errorf("decode extraction output: %w", err)
	}

	if !subject.Bounds().Size().Eq(img.Bounds().Size()) {
		return nil, fmt.Errorf("extraction changed dimensions: got %v, want %v",
			subject.Bounds().Size(), img.Bounds().Size())
	}

	return subject, nil
}

// lastLine trims subprocess stderr to its final line, which is where
// Python tracebacks put the actual error.
func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
