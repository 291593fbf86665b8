// Package catalog discovers the image files a batch run will process.
package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Supported image extensions (lowercase, with leading dot).
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// IsImageFile reports whether the filename carries a supported image
// extension. The check is case-insensitive.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Discover walks inputRoot recursively and returns the paths of all
// supported image files relative to inputRoot, preserving intermediate
// directory segments. An input tree with no images yields an empty slice,
// not an error; the caller decides whether that is fatal. Order is
// traversal order and nothing downstream may depend on it.
func Discover(inputRoot string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(inputRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsImageFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(inputRoot, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover inputs in %s: %w", inputRoot, err)
	}
	return paths, nil
}
