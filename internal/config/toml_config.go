package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	errs "github.com/standardbeagle/assetid/internal/errors"
)

// tomlConfig mirrors Config but keeps size fields as raw values so both
// max_file_size = 1048576 and max_file_size = "1MB" are accepted.
type tomlConfig struct {
	Version int `toml:"version"`
	Output  struct {
		Format string `toml:"format"`
	} `toml:"output"`
	Batch struct {
		Workers      int    `toml:"workers"`
		Op           string `toml:"op"`
		MaxLineBytes any    `toml:"max_line_bytes"`
	} `toml:"batch"`
	Scan struct {
		Root           string   `toml:"root"`
		Include        []string `toml:"include"`
		Exclude        []string `toml:"exclude"`
		Watch          bool     `toml:"watch"`
		DebounceMs     int      `toml:"debounce_ms"`
		MaxFileSize    any      `toml:"max_file_size"`
		Workers        int      `toml:"workers"`
		FollowSymlinks bool     `toml:"follow_symlinks"`
	} `toml:"scan"`
}

// parseTOML reads an .assetid.toml document with the same sections as the
// KDL form.
func parseTOML(content []byte) (*Config, error) {
	var raw tomlConfig
	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, errs.NewConfigError("toml", "", fmt.Errorf("failed to parse TOML config: %w", err))
	}

	cfg := &Config{
		Version: raw.Version,
		Output:  Output{Format: strings.ToLower(raw.Output.Format)},
		Batch: Batch{
			Workers: raw.Batch.Workers,
			Op:      strings.ToLower(raw.Batch.Op),
		},
		Scan: Scan{
			Root:           raw.Scan.Root,
			Include:        raw.Scan.Include,
			Exclude:        raw.Scan.Exclude,
			Watch:          raw.Scan.Watch,
			DebounceMs:     raw.Scan.DebounceMs,
			Workers:        raw.Scan.Workers,
			FollowSymlinks: raw.Scan.FollowSymlinks,
		},
	}

	var err error
	if cfg.Batch.MaxLineBytes, err = tomlSize(raw.Batch.MaxLineBytes); err != nil {
		return nil, errs.NewConfigError("batch.max_line_bytes", fmt.Sprint(raw.Batch.MaxLineBytes), err)
	}
	if cfg.Scan.MaxFileSize, err = tomlSize(raw.Scan.MaxFileSize); err != nil {
		return nil, errs.NewConfigError("scan.max_file_size", fmt.Sprint(raw.Scan.MaxFileSize), err)
	}
	return cfg, nil
}

func tomlSize(v any) (int64, error) {
	switch s := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return s, nil
	case float64:
		return int64(s), nil
	case string:
		return parseSize(s)
	}
	return 0, fmt.Errorf("expected a number or size string, got %T", v)
}

// MarshalTOML renders cfg in the .assetid.toml format.
func MarshalTOML(cfg *Config) ([]byte, error) {
	return toml.Marshal(cfg)
}
