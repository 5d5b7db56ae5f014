// Package pathutil converts between the paths the scanner walks and the
// root-relative, slash-separated keys used in indexes, patterns and output.
package pathutil

import (
	"path/filepath"
	"strings"
)

// Rel returns path relative to root in slash form. ok is false when path
// lies outside root or the two cannot be related (different volumes, one
// absolute and one relative).
//
// Examples:
//   - Rel("/proj", "/proj/assets/a.meta") → "assets/a.meta", true
//   - Rel("/proj", "/proj") → ".", true
//   - Rel("/proj", "/other/a.meta") → "", false
func Rel(root, path string) (string, bool) {
	if root == "" || path == "" {
		return "", false
	}
	r, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return "", false
	}
	if r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(r), true
}

// ToRelative is Rel with a fallback: paths outside root come back in slash
// form but otherwise unchanged.
func ToRelative(path, root string) string {
	if r, ok := Rel(root, path); ok {
		return r
	}
	return filepath.ToSlash(path)
}

// Within joins a slash-separated dir onto root and returns the result, or
// false when dir escapes root through ".." or an absolute path.
func Within(root, dir string) (string, bool) {
	if filepath.IsAbs(dir) || strings.HasPrefix(dir, "/") {
		if _, ok := Rel(root, dir); !ok {
			return "", false
		}
		return filepath.Clean(dir), true
	}
	joined := filepath.Join(root, filepath.FromSlash(dir))
	if _, ok := Rel(root, joined); !ok {
		return "", false
	}
	return joined, true
}
