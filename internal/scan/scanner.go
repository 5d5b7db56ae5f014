// Package scan finds asset identifiers in project files and keeps a
// deduplicated index of them, optionally following file changes.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/assetid/internal/config"
	"github.com/standardbeagle/assetid/internal/debug"
	errs "github.com/standardbeagle/assetid/internal/errors"
	"github.com/standardbeagle/assetid/internal/security"
	"github.com/standardbeagle/assetid/pkg/pathutil"
)

// Scanner walks a directory tree and extracts identifiers from files that
// match the include patterns and none of the exclude patterns.
type Scanner struct {
	cfg       config.Scan
	validator *security.FileValidator
}

// Report is the outcome of a full scan.
type Report struct {
	Root    string  `json:"root"`
	Files   int     `json:"files"`
	Skipped int     `json:"skipped"`
	Entries []Entry `json:"entries"`
}

// New creates a Scanner. Zero values in cfg fall back to the defaults.
func New(cfg config.Scan) *Scanner {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if len(cfg.Include) == 0 {
		cfg.Include = config.DefaultIncludes()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 4
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	return &Scanner{cfg: cfg, validator: security.NewFileValidator()}
}

// Root returns the directory being scanned.
func (s *Scanner) Root() string {
	return s.cfg.Root
}

// Matches reports whether a slash-separated path relative to the root
// should be scanned.
func (s *Scanner) Matches(rel string) bool {
	if s.excluded(rel) {
		return false
	}
	for _, p := range s.cfg.Include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) excluded(rel string) bool {
	for _, p := range s.cfg.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// rel converts an absolute or root-joined path to the form patterns match.
func (s *Scanner) rel(path string) (string, bool) {
	return pathutil.Rel(s.cfg.Root, path)
}

// Files lists the files a scan would read, in walk order.
func (s *Scanner) Files(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			debug.LogScan("skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, ok := s.rel(path)
		if !ok || rel == "." {
			return nil
		}
		if d.IsDir() {
			if s.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 && !s.cfg.FollowSymlinks {
			return nil
		}
		if s.Matches(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ScanFile extracts identifiers from a single file. Files over the size
// limit yield no occurrences and no error; binary content is an error.
func (s *Scanner) ScanFile(path string) ([]Occurrence, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errs.NewFileError("stat", path, err)
	}
	if info.IsDir() {
		return nil, nil
	}
	if info.Size() > s.cfg.MaxFileSize {
		debug.LogScan("skipping oversized file %s (%d bytes > %d limit)", path, info.Size(), s.cfg.MaxFileSize)
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewFileError("read", path, err)
	}
	if err := s.validator.Validate(s.key(path), content); err != nil {
		return nil, errs.NewFileError("validate", path, err)
	}
	return Extract(s.key(path), content), nil
}

// Scan reads every matching file into ix and returns a report over the
// whole index. Unreadable files are counted as skipped.
func (s *Scanner) Scan(ctx context.Context, ix *Index) (*Report, error) {
	files, err := s.Files(ctx)
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	var skipped atomic.Int64
	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			occ, err := s.ScanFile(path)
			if err != nil {
				debug.LogScan("%v", err)
				skipped.Add(1)
				return nil
			}
			ix.Set(s.key(path), occ)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	debug.LogScan("scanned %d files under %s, %d unique ids", len(files), s.cfg.Root, ix.Len())
	return &Report{
		Root:    s.cfg.Root,
		Files:   len(files),
		Skipped: int(skipped.Load()),
		Entries: ix.Entries(),
	}, nil
}

// key is the index key for a file: its slash path relative to the root.
func (s *Scanner) key(path string) string {
	return pathutil.ToRelative(path, s.cfg.Root)
}
