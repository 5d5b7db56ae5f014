package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullInfo(t *testing.T) {
	assert.Contains(t, FullInfo(), "assetid "+Version)
	assert.Contains(t, FullInfo(), "commit: "+GitCommit)
	assert.Equal(t, Version, Info())
}

func TestBuildID_Stable(t *testing.T) {
	assert.Equal(t, BuildID(), BuildID())
	assert.NotEmpty(t, BuildID())
}

func TestComputeBuildID(t *testing.T) {
	assert.Equal(t, Version+"-"+GitCommit, computeBuildID(nil, false))

	a := &debug.BuildInfo{GoVersion: "go1.24.0", Main: debug.Module{Path: "m", Version: "v1"}}
	b := &debug.BuildInfo{GoVersion: "go1.24.0", Main: debug.Module{Path: "m", Version: "v1"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}}}
	ignored := &debug.BuildInfo{GoVersion: "go1.24.0", Main: debug.Module{Path: "m", Version: "v1"},
		Settings: []debug.BuildSetting{{Key: "GOOS", Value: "linux"}}}

	assert.Len(t, computeBuildID(a, true), 16)
	assert.NotEqual(t, computeBuildID(a, true), computeBuildID(b, true))
	assert.Equal(t, computeBuildID(a, true), computeBuildID(ignored, true))
}
