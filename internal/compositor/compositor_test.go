package compositor

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// stubExtractor returns a canned subject image or error, standing in for
// the external inference subprocess.
type stubExtractor struct {
	subject func(img image.Image) image.Image
	err     error
}

func (s stubExtractor) Extract(_ context.Context, img image.Image) (image.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.subject != nil {
		return s.subject(img), nil
	}
	// Fully transparent mask of the same size: no subject at all.
	size := img.Bounds().Size()
	return image.NewNRGBA(image.Rect(0, 0, size.X, size.Y)), nil
}

func savePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	if err := imaging.Save(imaging.New(w, h, c), path); err != nil {
		t.Fatal(err)
	}
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
)

func TestReplaceMatchesForegroundDimensions(t *testing.T) {
	dir := t.TempDir()
	fgPath := filepath.Join(dir, "fg.png")
	bgPath := filepath.Join(dir, "bg.png")
	outPath := filepath.Join(dir, "out.png")
	savePNG(t, fgPath, 20, 10, green)
	savePNG(t, bgPath, 50, 50, red)

	c := New(stubExtractor{})
	if err := c.Replace(context.Background(), fgPath, bgPath, outPath); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	out, err := imaging.Open(outPath)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	if size := out.Bounds().Size(); size.X != 20 || size.Y != 10 {
		t.Fatalf("output is %v, want 20x10 (foreground size, not background)", size)
	}
}

func TestReplaceLayersSubjectOverBackground(t *testing.T) {
	dir := t.TempDir()
	fgPath := filepath.Join(dir, "fg.png")
	bgPath := filepath.Join(dir, "bg.png")
	outPath := filepath.Join(dir, "out.png")
	savePNG(t, fgPath, 4, 4, green)
	savePNG(t, bgPath, 8, 8, red)

	// Subject mask: a single opaque green pixel at the origin.
	c := New(stubExtractor{subject: func(img image.Image) image.Image {
		size := img.Bounds().Size()
		mask := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
		mask.SetNRGBA(0, 0, green)
		return mask
	}})
	if err := c.Replace(context.Background(), fgPath, bgPath, outPath); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	out, err := imaging.Open(outPath)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	nrgba := imaging.Clone(out)
	if got := nrgba.NRGBAAt(0, 0); got != green {
		t.Errorf("subject pixel = %v, want %v", got, green)
	}
	if got := nrgba.NRGBAAt(2, 2); got != red {
		t.Errorf("background pixel = %v, want %v", got, red)
	}
}

func TestReplaceOutputIsOpaque(t *testing.T) {
	dir := t.TempDir()
	fgPath := filepath.Join(dir, "fg.png")
	bgPath := filepath.Join(dir, "bg.png")
	outPath := filepath.Join(dir, "out.png")
	savePNG(t, fgPath, 6, 6, green)
	// Background with a semi-transparent fill.
	if err := imaging.Save(imaging.New(6, 6, color.NRGBA{R: 255, A: 128}), bgPath); err != nil {
		t.Fatal(err)
	}

	c := New(stubExtractor{})
	if err := c.Replace(context.Background(), fgPath, bgPath, outPath); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	out, err := imaging.Open(outPath)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	nrgba := imaging.Clone(out)
	for i := 3; i < len(nrgba.Pix); i += 4 {
		if nrgba.Pix[i] != 0xff {
			t.Fatalf("pixel %d has alpha %d, want fully opaque", i/4, nrgba.Pix[i])
		}
	}
}

func TestReplaceExtractionFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	fgPath := filepath.Join(dir, "fg.png")
	bgPath := filepath.Join(dir, "bg.png")
	outPath := filepath.Join(dir, "out.png")
	savePNG(t, fgPath, 4, 4, green)
	savePNG(t, bgPath, 4, 4, red)

	wantErr := errors.New("model exploded")
	c := New(stubExtractor{err: wantErr})
	err := c.Replace(context.Background(), fgPath, bgPath, outPath)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Replace = %v, want wrapped %v", err, wantErr)
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Fatal("destination file exists after a failed replace")
	}
}

func TestReplaceRejectsResizedMask(t *testing.T) {
	dir := t.TempDir()
	fgPath := filepath.Join(dir, "fg.png")
	bgPath := filepath.Join(dir, "bg.png")
	savePNG(t, fgPath, 4, 4, green)
	savePNG(t, bgPath, 4, 4, red)

	c := New(stubExtractor{subject: func(image.Image) image.Image {
		return image.NewNRGBA(image.Rect(0, 0, 2, 2))
	}})
	if err := c.Replace(context.Background(), fgPath, bgPath, filepath.Join(dir, "out.png")); err == nil {
		t.Fatal("expected error for mismatched mask dimensions")
	}
}

func TestReplaceCorruptForeground(t *testing.T) {
	dir := t.TempDir()
	fgPath := filepath.Join(dir, "broken.png")
	bgPath := filepath.Join(dir, "bg.png")
	if err := os.WriteFile(fgPath, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	savePNG(t, bgPath, 4, 4, red)

	c := New(stubExtractor{})
	if err := c.Replace(context.Background(), fgPath, bgPath, filepath.Join(dir, "out.png")); err == nil {
		t.Fatal("expected error for corrupt foreground")
	}
}

func TestOutputName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a.jpg", "a.png"},
		{"b.jpeg", "b.png"},
		{"c.png", "c.png"},
		{"photo.final.JPG", "photo.final.png"},
	}
	for _, c := range cases {
		if got := OutputName(c.in); got != c.want {
			t.Errorf("OutputName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
