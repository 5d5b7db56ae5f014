package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/assetid/internal/batch"
	"github.com/standardbeagle/assetid/internal/config"
	"github.com/standardbeagle/assetid/internal/idcodec"
	"github.com/standardbeagle/assetid/internal/scan"
	"github.com/standardbeagle/assetid/internal/version"
	"github.com/standardbeagle/assetid/pkg/pathutil"
)

const maxGenerate = 1000

// decodeArgs unmarshals tool arguments; a missing argument object is
// treated as empty.
func decodeArgs(req *mcp.CallToolRequest, v any) error {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func (s *Server) transformHandler(tool string) toolHandler {
	op := toolOps[tool]
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		var params IDParams
		if err := decodeArgs(req, &params); err != nil {
			return nil, err
		}
		ids, err := params.values()
		if err != nil {
			return nil, err
		}

		p, err := batch.New(op, batch.WithWorkers(s.cfg.Batch.Workers))
		if err != nil {
			return nil, err
		}
		results, err := p.ProcessLines(ctx, ids)
		if err != nil {
			return nil, err
		}

		resp := TransformResponse{Operation: op, Results: make([]TransformResult, len(results))}
		for i, r := range results {
			tr := TransformResult{Input: r.Input, Output: r.Output, Changed: r.Changed()}
			if r.Err != nil {
				tr.Error = r.Err.Error()
			}
			if tr.Changed {
				resp.Changed++
			} else {
				resp.Unchanged++
			}
			resp.Results[i] = tr
		}

		s.diagnosticLogger.Tool(tool, len(ids), time.Since(start), nil)
		return createJSONResponse(resp)
	}
}

func (s *Server) handleGenerate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params GenerateParams
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	count := params.Count
	if count == 0 {
		count = 1
	}
	if count < 0 || count > maxGenerate {
		return nil, fmt.Errorf("count must be between 1 and %d, got %d", maxGenerate, params.Count)
	}

	kind := strings.ToLower(strings.TrimSpace(params.Kind))
	var gen func() string
	switch kind {
	case "", "short":
		kind, gen = "short", idcodec.GenerateShortID
	case "standard", "uuid":
		kind, gen = "standard", idcodec.GenerateStandardID
	default:
		return nil, fmt.Errorf("unknown kind %q, expected \"short\" or \"standard\"", params.Kind)
	}

	ids := make([]string, count)
	for i := range ids {
		ids[i] = gen()
	}
	return createJSONResponse(GenerateResponse{Kind: kind, IDs: ids})
}

func (s *Server) handleValidate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params IDParams
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	ids, err := params.values()
	if err != nil {
		return nil, err
	}

	resp := ValidateResponse{Results: make([]ValidateResult, len(ids)), AllValid: true}
	for i, id := range ids {
		valid := idcodec.IsValidStandardID(id)
		resp.Results[i] = ValidateResult{Input: id, Valid: valid}
		resp.AllValid = resp.AllValid && valid
	}
	return createJSONResponse(resp)
}

func (s *Server) handleClassify(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params IDParams
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	ids, err := params.values()
	if err != nil {
		return nil, err
	}

	resp := ClassifyResponse{Results: make([]ClassifyResult, len(ids))}
	for i, id := range ids {
		res := ClassifyResult{Input: id, Kind: idcodec.Classify(id).String()}
		if n := idcodec.Normalize(id); n != id || idcodec.Classify(id) == idcodec.KindStandard {
			res.Standard = n
		}
		resp.Results[i] = res
	}
	return createJSONResponse(resp)
}

func (s *Server) handleScan(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	var params ScanParams
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	cfg := s.cfg.Scan
	if params.Root != "" {
		root, err := s.scopedRoot(params.Root)
		if err != nil {
			return nil, err
		}
		cfg.Root = root
	}
	if len(params.Include) > 0 {
		cfg.Include = params.Include
	}
	if len(params.Exclude) > 0 {
		cfg.Exclude = append(slices.Clone(cfg.Exclude), params.Exclude...)
	}
	if err := config.NewValidator().ValidateAndSetDefaults(&config.Config{Scan: cfg}); err != nil {
		return nil, err
	}

	report, err := scan.New(cfg).Scan(ctx, scan.NewIndex())
	if err != nil {
		return nil, err
	}

	total := len(report.Entries)
	if params.MaxEntries > 0 && total > params.MaxEntries {
		report.Entries = report.Entries[:params.MaxEntries]
	}

	s.diagnosticLogger.Tool(toolScan, total, time.Since(start), nil)
	return createJSONResponse(map[string]interface{}{
		"root":      report.Root,
		"files":     report.Files,
		"skipped":   report.Skipped,
		"total":     total,
		"truncated": total > len(report.Entries),
		"entries":   report.Entries,
	})
}

// scopedRoot resolves a client supplied directory against the configured
// scan root and refuses anything outside it.
func (s *Server) scopedRoot(dir string) (string, error) {
	base, err := filepath.Abs(s.cfg.Scan.Root)
	if err != nil {
		return "", err
	}
	root, ok := pathutil.Within(base, dir)
	if !ok {
		return "", fmt.Errorf("root %q is outside the project", dir)
	}
	return root, nil
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params InfoParams
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	tool := strings.ToLower(strings.TrimSpace(params.Tool))
	switch tool {
	case "":
		tools := make([]map[string]string, 0, len(s.descriptions))
		for name, desc := range s.descriptions {
			tools = append(tools, map[string]string{"name": name, "description": desc})
		}
		sort.Slice(tools, func(i, j int) bool { return tools[i]["name"] < tools[j]["name"] })
		return createJSONResponse(map[string]interface{}{
			"server":  "assetid",
			"version": version.Version,
			"forms": map[string]string{
				"standard": "36 characters, 8-4-4-4-12 hex, e.g. fc991dd7-0033-4b80-9d41-c8a86a702e59",
				"short":    "22 characters, 2 hex + 20 base64, e.g. fcmR3XADNLgJ1ByKhqcC5Z",
				"packed":   "23 characters, 5 hex + 18 base64, e.g. fc9913XADNLgJ1ByKhqcC5Z",
				"suffix":   "anything after the first @ is carried through unchanged",
			},
			"tools": tools,
		})

	case "version":
		return createJSONResponse(map[string]interface{}{
			"server_version": version.FullInfo(),
			"build_id":       version.BuildID(),
			"go_version":     runtime.Version(),
			"platform":       runtime.GOOS + "/" + runtime.GOARCH,
		})
	}

	name := s.resolveToolName(tool)
	desc, ok := s.descriptions[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", params.Tool)
	}
	return createJSONResponse(map[string]interface{}{
		"name":        name,
		"description": desc,
		"usage":       getOperationHelp(name),
	})
}
