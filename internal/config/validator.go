package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	errs "github.com/standardbeagle/assetid/internal/errors"
)

const maxWorkers = 256

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and fills in values that
// depend on the machine, such as worker counts.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg == nil {
		return errs.NewConfigError("config", "", errors.New("configuration is nil"))
	}

	if err := v.validateOutput(&cfg.Output); err != nil {
		return errs.NewConfigError("output.format", cfg.Output.Format, err)
	}

	if err := v.validateBatch(&cfg.Batch); err != nil {
		return errs.NewConfigError("batch", "", err)
	}

	if err := v.validateScan(&cfg.Scan); err != nil {
		return errs.NewConfigError("scan", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateOutput(out *Output) error {
	switch out.Format {
	case "", FormatText, FormatJSON:
		return nil
	}
	return fmt.Errorf("unknown output format %q, expected %q or %q", out.Format, FormatText, FormatJSON)
}

func (v *Validator) validateBatch(b *Batch) error {
	if b.Op != "" && !slices.Contains(BatchOps, b.Op) {
		return fmt.Errorf("unknown op %q, expected one of %v", b.Op, BatchOps)
	}
	if b.Workers < 0 || b.Workers > maxWorkers {
		return fmt.Errorf("workers must be between 0 and %d, got %d", maxWorkers, b.Workers)
	}
	if b.MaxLineBytes < 0 {
		return fmt.Errorf("max_line_bytes must not be negative, got %d", b.MaxLineBytes)
	}
	return nil
}

func (v *Validator) validateScan(s *Scan) error {
	if s.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must not be negative, got %d", s.DebounceMs)
	}
	if s.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must not be negative, got %d", s.MaxFileSize)
	}
	if s.MaxFileSize > 1024*1024*1024 {
		return fmt.Errorf("max_file_size should not exceed 1GB, got %d", s.MaxFileSize)
	}
	if s.Workers < 0 || s.Workers > maxWorkers {
		return fmt.Errorf("workers must be between 0 and %d, got %d", maxWorkers, s.Workers)
	}
	for _, p := range append(slices.Clone(s.Include), s.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatText
	}
	if cfg.Batch.Op == "" {
		cfg.Batch.Op = OpNormalize
	}
	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = runtime.NumCPU()
	}
	if cfg.Batch.MaxLineBytes == 0 {
		cfg.Batch.MaxLineBytes = 1024 * 1024
	}
	if cfg.Scan.Root == "" {
		cfg.Scan.Root = "."
	}
	if len(cfg.Scan.Include) == 0 {
		cfg.Scan.Include = DefaultIncludes()
	}
	if cfg.Scan.DebounceMs == 0 {
		cfg.Scan.DebounceMs = 200
	}
	if cfg.Scan.MaxFileSize == 0 {
		cfg.Scan.MaxFileSize = 10 * 1024 * 1024
	}
	if cfg.Scan.Workers == 0 {
		cfg.Scan.Workers = runtime.NumCPU()
	}
}
