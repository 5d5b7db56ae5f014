package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// One asset id in each of its forms.
const (
	SampleStandard = "fc991dd7-0033-4b80-9d41-c8a86a702e59"
	SampleShort    = "fcmR3XADNLgJ1ByKhqcC5Z"
	SamplePacked   = "fc9913XADNLgJ1ByKhqcC5Z"
)

// SampleMeta is an image .meta file with a main id and one sub-asset.
const SampleMeta = `{
  "ver": "1.0.27",
  "importer": "image",
  "uuid": "` + SampleStandard + `",
  "subMetas": {
    "f9941": {
      "uuid": "` + SampleStandard + `@f9941",
      "importer": "sprite-frame"
    }
  }
}
`

// SampleScene references the same asset by its short id.
const SampleScene = `[
  {
    "__type__": "cc.SceneAsset",
    "scene": {
      "__uuid__": "` + SampleShort + `@f9941"
    }
  },
  {
    "_parent": "` + SampleStandard + `"
  }
]
`

// WriteTree creates files under root; keys are slash-separated paths.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// IsolateHome points the home directory at an empty temp dir so a developer's
// own ~/.assetid.kdl does not leak into tests.
func IsolateHome(t testing.TB) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

// WaitFor waits for a condition to become true with timeout
// Usage:
//
//	testhelpers.WaitFor(t, func() bool {
//	    return index.Len() > 0
//	}, 5*time.Second)
func WaitFor(t testing.TB, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if condition() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Condition not met within %v", timeout)
			return
		}
	}
}
