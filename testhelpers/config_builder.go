// Package testhelpers provides shared fixtures for assetid tests.
package testhelpers

import (
	"github.com/standardbeagle/assetid/internal/config"
)

// TestConfigBuilder provides a fluent API for building test configs with safe defaults
// Usage:
//
//	cfg := testhelpers.NewTestConfigBuilder(projectPath).
//		WithExclusions("**/vendor/**").
//		WithIncludePatterns("**/*.meta").
//		Build()
type TestConfigBuilder struct {
	projectRoot string
	exclusions  []string
	inclusions  []string
	format      string
	op          string
}

// NewTestConfigBuilder creates a config builder for a project path with the
// default include and exclude patterns.
func NewTestConfigBuilder(projectRoot string) *TestConfigBuilder {
	return &TestConfigBuilder{
		projectRoot: projectRoot,
		exclusions:  config.DefaultExclusions(),
		inclusions:  config.DefaultIncludes(),
		format:      config.FormatText,
		op:          config.OpNormalize,
	}
}

// WithExclusions adds additional exclusion patterns
func (b *TestConfigBuilder) WithExclusions(patterns ...string) *TestConfigBuilder {
	b.exclusions = append(b.exclusions, patterns...)
	return b
}

// WithIncludePatterns sets the include patterns (replaces defaults)
func (b *TestConfigBuilder) WithIncludePatterns(patterns ...string) *TestConfigBuilder {
	b.inclusions = patterns
	return b
}

// WithJSON switches output to JSON.
func (b *TestConfigBuilder) WithJSON() *TestConfigBuilder {
	b.format = config.FormatJSON
	return b
}

// WithOp sets the batch operation.
func (b *TestConfigBuilder) WithOp(op string) *TestConfigBuilder {
	b.op = op
	return b
}

// Build creates the final test config with all settings
func (b *TestConfigBuilder) Build() *config.Config {
	return &config.Config{
		Version: 1,
		Output:  config.Output{Format: b.format},
		Batch: config.Batch{
			Workers:      4, // Limited for predictable behavior
			Op:           b.op,
			MaxLineBytes: 64 * 1024,
		},
		Scan: config.Scan{
			Root:        b.projectRoot,
			Include:     append([]string(nil), b.inclusions...),
			Exclude:     append([]string(nil), b.exclusions...),
			DebounceMs:  10, // Fast debounce for tests
			MaxFileSize: 1024 * 1024,
			Workers:     4,
		},
	}
}
