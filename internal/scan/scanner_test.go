package scan

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/assetid/internal/config"
	"github.com/standardbeagle/assetid/internal/security"
)

// writeTree creates files under root; keys are slash-separated paths.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func newTestScanner(root string) *Scanner {
	return New(config.Scan{
		Root:    root,
		Include: config.DefaultIncludes(),
		Exclude: config.DefaultExclusions(),
		Workers: 4,
	})
}

func TestScanner_Matches(t *testing.T) {
	s := newTestScanner(".")

	assert.True(t, s.Matches("assets/hero.png.meta"))
	assert.True(t, s.Matches("assets/scenes/main.scene"))
	assert.True(t, s.Matches("hero.prefab"))
	assert.False(t, s.Matches("assets/readme.md"))
	assert.False(t, s.Matches("library/imports/fc/x.meta"))
	assert.False(t, s.Matches("assets/.cache/x.meta"))
	assert.False(t, s.Matches("node_modules/pkg/x.prefab"))
}

func TestScanner_Files(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"assets/hero.png.meta":       sampleMeta,
		"assets/prefabs/hero.prefab": samplePrefab,
		"assets/readme.md":           sampleStandard,
		"library/imports/fc/a.meta":  sampleMeta,
		"temp/x.scene":               sampleMeta,
		"assets/.hidden/secret.meta": sampleMeta,
	})

	files, err := newTestScanner(root).Files(context.Background())
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f)
		rels = append(rels, filepath.ToSlash(rel))
	}
	assert.ElementsMatch(t, []string{"assets/hero.png.meta", "assets/prefabs/hero.prefab"}, rels)
}

func TestScanner_Scan(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"assets/hero.png.meta":       sampleMeta,
		"assets/copy.png.meta":       sampleMeta,
		"assets/prefabs/hero.prefab": samplePrefab,
	})

	ix := NewIndex()
	report, err := newTestScanner(root).Scan(context.Background(), ix)
	require.NoError(t, err)

	assert.Equal(t, root, report.Root)
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 0, report.Skipped)

	ids := make([]string, len(report.Entries))
	for i, e := range report.Entries {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{
		samplePacked,
		sampleStandard,
		sampleStandard + "@6c48a",
		sampleShort + "@f9941",
	}, ids)

	e, ok := ix.Lookup(sampleStandard)
	require.True(t, ok)
	assert.Equal(t, 2, e.Count, "one per meta file")
	assert.Equal(t, []string{"assets/copy.png.meta", "assets/hero.png.meta"}, e.Files)

	short, ok := ix.Lookup(sampleShort + "@f9941")
	require.True(t, ok)
	assert.Equal(t, sampleStandard+"@f9941", short.Standard)
}

func TestScanner_SkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"big.meta": sampleMeta + strings.Repeat(" ", 4096),
	})

	s := New(config.Scan{Root: root, MaxFileSize: 1024})
	ix := NewIndex()
	report, err := s.Scan(context.Background(), ix)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Files)
	assert.Empty(t, report.Entries)
}

func TestScanner_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.meta": sampleMeta})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScanner(root).Scan(ctx, NewIndex())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanner_MissingRoot(t *testing.T) {
	files, err := newTestScanner(filepath.Join(t.TempDir(), "nope")).Files(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScanFile_Missing(t *testing.T) {
	_, err := newTestScanner(".").ScanFile(filepath.Join(t.TempDir(), "gone.meta"))
	assert.Error(t, err)
}

func TestScanner_SkipsBinaryContent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"assets/hero.png.meta": sampleMeta,
		"assets/icon.meta":     "\x89PNG\r\n\x1a\n" + sampleStandard,
		"assets/notes.scene":   "todo: " + sampleStandard,
	})

	ix := NewIndex()
	report, err := newTestScanner(root).Scan(context.Background(), ix)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 2, report.Skipped)

	e, ok := ix.Lookup(sampleStandard)
	require.True(t, ok)
	assert.Equal(t, []string{"assets/hero.png.meta"}, e.Files)
}

func TestScanFile_BinaryIsError(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.meta": "\x1f\x8b\x08\x00"})

	_, err := newTestScanner(root).ScanFile(filepath.Join(root, "a.meta"))
	assert.ErrorIs(t, err, security.ErrBinaryContent)
}
