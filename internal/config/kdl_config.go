package config

import (
	"fmt"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/assetid/internal/debug"
	errs "github.com/standardbeagle/assetid/internal/errors"
)

// parseKDL reads an .assetid.kdl document. Only nodes present in the
// document are set; callers merge the result over Default().
//
//	output { format "json" }
//	batch { workers 8; op "decode" }
//	scan {
//	    root "assets"
//	    include "**/*.meta" "**/*.prefab"
//	    exclude { "**/library/**" }
//	    watch true
//	    debounce_ms 250
//	}
func parseKDL(content string) (*Config, error) {
	cfg := &Config{}

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, errs.NewConfigError("kdl", "", fmt.Errorf("failed to parse KDL config: %w", err))
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "output":
			for _, cn := range n.Children {
				assignSimpleString(cn, "format", func(v string) { cfg.Output.Format = strings.ToLower(v) })
			}
		case "batch":
			if err := parseBatchNode(cfg, n); err != nil {
				return nil, err
			}
		case "scan":
			if err := parseScanNode(cfg, n); err != nil {
				return nil, err
			}
		default:
			debug.Log("CONFIG", "ignoring unknown KDL node %q", nodeName(n))
		}
	}

	return cfg, nil
}

func parseBatchNode(cfg *Config, n *document.Node) error {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "workers":
			if v, ok := firstIntArg(cn); ok {
				cfg.Batch.Workers = v
			}
		case "op":
			if s, ok := firstStringArg(cn); ok {
				cfg.Batch.Op = strings.ToLower(s)
			}
		case "max_line_bytes":
			size, err := sizeArg(cn)
			if err != nil {
				return errs.NewConfigError("batch.max_line_bytes", argString(cn), err)
			}
			cfg.Batch.MaxLineBytes = size
		}
	}
	return nil
}

func parseScanNode(cfg *Config, n *document.Node) error {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "root":
			if s, ok := firstStringArg(cn); ok {
				cfg.Scan.Root = s
			}
		case "include":
			cfg.Scan.Include = append(cfg.Scan.Include, collectStringArgs(cn)...)
		case "exclude":
			cfg.Scan.Exclude = append(cfg.Scan.Exclude, collectStringArgs(cn)...)
		case "watch":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Scan.Watch = b
			}
		case "debounce_ms":
			if v, ok := firstIntArg(cn); ok {
				cfg.Scan.DebounceMs = v
			}
		case "workers":
			if v, ok := firstIntArg(cn); ok {
				cfg.Scan.Workers = v
			}
		case "follow_symlinks":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Scan.FollowSymlinks = b
			}
		case "max_file_size":
			size, err := sizeArg(cn)
			if err != nil {
				return errs.NewConfigError("scan.max_file_size", argString(cn), err)
			}
			cfg.Scan.MaxFileSize = size
		}
	}
	return nil
}

// Helpers over the kdl-go document model

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case bool:
		return v, true
	case string:
		return parseBool(v), true
	}
	return false, false
}

// collectStringArgs accepts both inline arguments (include "a" "b") and the
// block form (include { "a"; "b" }) where each child node name is a value.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// sizeArg reads either a plain byte count or a size string like "10MB".
func sizeArg(n *document.Node) (int64, error) {
	if v, ok := firstIntArg(n); ok {
		return int64(v), nil
	}
	if s, ok := firstStringArg(n); ok {
		return parseSize(s)
	}
	return 0, fmt.Errorf("expected a number or size string")
}

func argString(n *document.Node) string {
	if len(n.Arguments) == 0 {
		return ""
	}
	return fmt.Sprint(n.Arguments[0].Value)
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	numStr := s

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}
