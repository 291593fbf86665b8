// Package background manages the pool of candidate background images.
package background

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/aliskhannn/background-replacer/internal/catalog"
)

// ErrEmptyPool is returned when the background directory holds no
// supported images. A batch cannot run without backgrounds.
var ErrEmptyPool = errors.New("no background images found")

// Set is the fixed pool of background filenames for one batch run. It is
// read-only after Load and safe to share across workers.
type Set struct {
	root  string
	names []string
	intn  func(n int) int // uniform [0, n)
}

// Load gathers the supported image files directly under backgroundRoot.
// Subdirectories are not descended into. Returns ErrEmptyPool when no
// candidates are found.
func Load(backgroundRoot string) (*Set, error) {
	entries, err := os.ReadDir(backgroundRoot)
	if err != nil {
		return nil, fmt.Errorf("read background dir %s: %w", backgroundRoot, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !catalog.IsImageFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrEmptyPool, backgroundRoot)
	}

	return NewSet(backgroundRoot, names), nil
}

// NewSet builds a Set from an already-gathered list of filenames.
func NewSet(root string, names []string) *Set {
	return &Set{
		root:  root,
		names: names,
		intn:  rand.IntN,
	}
}

// Len returns the number of candidate backgrounds.
func (s *Set) Len() int {
	return len(s.names)
}

// Pick returns a uniformly chosen background filename, with replacement.
// Picks are independent; concurrent callers may draw the same name.
func (s *Set) Pick() string {
	return s.names[s.intn(len(s.names))]
}

// Path resolves a filename from this set to its full path.
func (s *Set) Path(name string) string {
	return filepath.Join(s.root, name)
}
