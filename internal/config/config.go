package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/assetid/internal/debug"
	errs "github.com/standardbeagle/assetid/internal/errors"
)

const (
	// KDLFileName is the project configuration file looked up in the root.
	KDLFileName = ".assetid.kdl"
	// TOMLFileName is the TOML alternative, used when no KDL file exists.
	TOMLFileName = ".assetid.toml"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Batch operations
const (
	OpDecode      = "decode"
	OpCompress    = "compress"
	OpDecompress  = "decompress"
	OpReconstruct = "reconstruct"
	OpNormalize   = "normalize"
)

// BatchOps lists the operation names accepted by the batch section.
var BatchOps = []string{OpDecode, OpCompress, OpDecompress, OpReconstruct, OpNormalize}

type Config struct {
	Version int    `toml:"version"`
	Output  Output `toml:"output"`
	Batch   Batch  `toml:"batch"`
	Scan    Scan   `toml:"scan"`
}

type Output struct {
	Format string `toml:"format"` // text | json
}

type Batch struct {
	Workers      int    `toml:"workers"` // 0 means one per CPU
	Op           string `toml:"op"`
	MaxLineBytes int64  `toml:"max_line_bytes"`
}

type Scan struct {
	Root           string   `toml:"root"`
	Include        []string `toml:"include"`
	Exclude        []string `toml:"exclude"`
	Watch          bool     `toml:"watch"`
	DebounceMs     int      `toml:"debounce_ms"`
	MaxFileSize    int64    `toml:"max_file_size"`
	Workers        int      `toml:"workers"`
	FollowSymlinks bool     `toml:"follow_symlinks"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version: 1,
		Output:  Output{Format: FormatText},
		Batch: Batch{
			Op:           OpNormalize,
			MaxLineBytes: 1024 * 1024,
		},
		Scan: Scan{
			Root:        ".",
			Include:     DefaultIncludes(),
			Exclude:     DefaultExclusions(),
			DebounceMs:  200,
			MaxFileSize: 10 * 1024 * 1024,
		},
	}
}

// DefaultIncludes are the asset file patterns that carry identifiers.
func DefaultIncludes() []string {
	return []string{
		"**/*.meta",
		"**/*.scene",
		"**/*.prefab",
		"**/*.anim",
		"**/*.mtl",
		"**/*.pmtl",
		"**/*.physics-material",
		"**/*.effect",
	}
}

// DefaultExclusions skips the editor's generated directories.
func DefaultExclusions() []string {
	return []string{
		"**/.*/**",
		"**/library/**",
		"**/temp/**",
		"**/local/**",
		"**/build/**",
		"**/node_modules/**",
	}
}

// Load reads configuration from an explicit file path. The format is chosen
// by extension; anything that is not .toml is parsed as KDL. Relative scan
// roots resolve against the file's directory.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewFileError("read config", path, err)
	}

	parsed, err := parseByExtension(path, content)
	if err != nil {
		return nil, err
	}

	cfg := mergeConfigs(Default(), parsed)
	cfg.Scan.Root = resolveRoot(filepath.Dir(path), parsed.Scan.Root)

	if err := NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	debug.Log("CONFIG", "loaded %s", path)
	return cfg, nil
}

// LoadWithRoot layers the user's global config under the project config
// found in root. Either file may be missing.
func LoadWithRoot(root string) (*Config, error) {
	if root == "" {
		root = "."
	}

	cfg := Default()
	cfg.Scan.Root = resolveRoot(root, "")

	if home, err := os.UserHomeDir(); err == nil {
		global, err := loadFromDir(home)
		if err != nil {
			return nil, fmt.Errorf("global config: %w", err)
		}
		if global != nil {
			cfg = mergeConfigs(cfg, global)
			// A global scan root makes no sense for every project
			cfg.Scan.Root = resolveRoot(root, "")
		}
	}

	project, err := loadFromDir(root)
	if err != nil {
		return nil, err
	}
	if project != nil {
		cfg = mergeConfigs(cfg, project)
		cfg.Scan.Root = resolveRoot(root, project.Scan.Root)
	}

	if err := NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromDir parses the KDL or TOML file in dir. It returns nil, nil when
// neither exists. Fields absent from the file are left at their zero value.
func loadFromDir(dir string) (*Config, error) {
	for _, name := range []string{KDLFileName, TOMLFileName} {
		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errs.NewFileError("read config", path, err)
		}
		debug.Log("CONFIG", "found %s", path)
		return parseByExtension(path, content)
	}
	return nil, nil
}

func parseByExtension(path string, content []byte) (*Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return parseTOML(content)
	}
	return parseKDL(string(content))
}

func resolveRoot(base, root string) string {
	if root == "" {
		root = base
	} else if !filepath.IsAbs(root) {
		root = filepath.Join(base, root)
	}
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return filepath.Clean(root)
}

// mergeConfigs overlays the fields set in over onto base. Exclusions are
// combined; inclusions from over replace those of base.
func mergeConfigs(base, over *Config) *Config {
	merged := *base
	merged.Scan.Include = append([]string(nil), base.Scan.Include...)
	merged.Scan.Exclude = append([]string(nil), base.Scan.Exclude...)

	if over.Version != 0 {
		merged.Version = over.Version
	}
	if over.Output.Format != "" {
		merged.Output.Format = over.Output.Format
	}
	if over.Batch.Workers != 0 {
		merged.Batch.Workers = over.Batch.Workers
	}
	if over.Batch.Op != "" {
		merged.Batch.Op = over.Batch.Op
	}
	if over.Batch.MaxLineBytes != 0 {
		merged.Batch.MaxLineBytes = over.Batch.MaxLineBytes
	}
	if over.Scan.Root != "" {
		merged.Scan.Root = over.Scan.Root
	}
	if len(over.Scan.Include) > 0 {
		merged.Scan.Include = append([]string(nil), over.Scan.Include...)
	}
	if len(over.Scan.Exclude) > 0 {
		merged.Scan.Exclude = DeduplicatePatterns(append(merged.Scan.Exclude, over.Scan.Exclude...))
	}
	if over.Scan.Watch {
		merged.Scan.Watch = true
	}
	if over.Scan.DebounceMs != 0 {
		merged.Scan.DebounceMs = over.Scan.DebounceMs
	}
	if over.Scan.MaxFileSize != 0 {
		merged.Scan.MaxFileSize = over.Scan.MaxFileSize
	}
	if over.Scan.Workers != 0 {
		merged.Scan.Workers = over.Scan.Workers
	}
	if over.Scan.FollowSymlinks {
		merged.Scan.FollowSymlinks = true
	}
	return &merged
}

// DeduplicatePatterns removes repeated patterns, keeping first occurrences.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]struct{}, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
