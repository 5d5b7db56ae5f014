// Package mcp exposes the identifier codec as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/assetid/internal/config"
	"github.com/standardbeagle/assetid/internal/debug"
	"github.com/standardbeagle/assetid/internal/version"
)

const (
	toolInfo        = "info"
	toolDecode      = "decode_id"
	toolCompress    = "compress_id"
	toolDecompress  = "decompress_id"
	toolReconstruct = "reconstruct_id"
	toolGenerate    = "generate_id"
	toolValidate    = "validate_id"
	toolClassify    = "classify_id"
	toolScan        = "scan_assets"
)

// toolOps maps transform tools to batch operation names.
var toolOps = map[string]string{
	toolDecode:      config.OpDecode,
	toolCompress:    config.OpCompress,
	toolDecompress:  config.OpDecompress,
	toolReconstruct: config.OpReconstruct,
}

type toolHandler = func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Server wraps the MCP server with the tool handlers.
type Server struct {
	server           *mcp.Server
	cfg              *config.Config
	diagnosticLogger *DiagnosticLogger
	handlers         map[string]toolHandler
	descriptions     map[string]string
}

// NewServer creates the server and registers every tool. A nil cfg uses
// the defaults.
func NewServer(cfg *config.Config) (*Server, error) {
	return newServer(cfg, NewDiagnosticLogger(true))
}

func newServer(cfg *config.Config, logger *DiagnosticLogger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
		if err := config.NewValidator().ValidateAndSetDefaults(cfg); err != nil {
			return nil, err
		}
	}

	s := &Server{
		cfg:              cfg,
		diagnosticLogger: logger,
		handlers:         make(map[string]toolHandler),
		descriptions:     make(map[string]string),
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "assetid-mcp-server",
			Version: version.Version,
		}, nil),
	}
	s.registerTools()
	logger.Printf("MCP server initialized, scan root %s", cfg.Scan.Root)
	return s, nil
}

func idSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id": {
				Type:        "string",
				Description: "A single identifier, optionally with an @suffix",
			},
			"ids": {
				Description: "Several identifiers as an array or a comma separated string",
				AnyOf: []*jsonschema.Schema{
					{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
					{Type: "string"},
				},
			},
		},
	}
}

func (s *Server) addTool(tool *mcp.Tool, h toolHandler) {
	name := tool.Name
	wrapped := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.recoverFromPanic(name, func() (*mcp.CallToolResult, error) { return h(ctx, req) })
	}
	s.handlers[name] = wrapped
	s.descriptions[name] = tool.Description
	s.server.AddTool(tool, wrapped)
}

func (s *Server) registerTools() {
	s.addTool(&mcp.Tool{
		Name:        toolInfo,
		Description: "Overview of the identifier tools. Use {\"tool\": \"decode_id\"} for one tool or {\"tool\": \"version\"} for build info.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": {Type: "string", Description: "Tool name to describe"},
			},
		},
	}, s.handleInfo)

	s.addTool(&mcp.Tool{
		Name:        toolDecode,
		Description: "Expand 22-character short asset ids to the 36-character standard form. Values of any other length come back unchanged. @suffixes are preserved.",
		InputSchema: idSchema(),
	}, s.transformHandler(toolDecode))

	s.addTool(&mcp.Tool{
		Name:        toolCompress,
		Description: "Pack standard asset ids into the 23-character packed form (5-character header + base64).",
		InputSchema: idSchema(),
	}, s.transformHandler(toolCompress))

	s.addTool(&mcp.Tool{
		Name:        toolDecompress,
		Description: "Render the hex content of an id as dot-separated decimal bytes after a 2-character header. Not the inverse of compress_id.",
		InputSchema: idSchema(),
	}, s.transformHandler(toolDecompress))

	s.addTool(&mcp.Tool{
		Name:        toolReconstruct,
		Description: "Recover a 22-character value from a packed id. Not a lossless inverse of compress_id.",
		InputSchema: idSchema(),
	}, s.transformHandler(toolReconstruct))

	s.addTool(&mcp.Tool{
		Name:        toolGenerate,
		Description: "Generate random identifiers: 22-character short ids (default) or RFC 4122 standard ids.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"kind":  {Type: "string", Enum: []any{"short", "standard"}, Description: "Identifier kind"},
				"count": {Type: "integer", Description: "How many to generate (1-1000)"},
			},
		},
	}, s.handleGenerate)

	s.addTool(&mcp.Tool{
		Name:        toolValidate,
		Description: "Check whether values are canonical 8-4-4-4-12 standard ids (case-insensitive, no suffix).",
		InputSchema: idSchema(),
	}, s.handleValidate)

	s.addTool(&mcp.Tool{
		Name:        toolClassify,
		Description: "Report whether each value is a standard, short or packed id, with its standard form when one is recoverable.",
		InputSchema: idSchema(),
	}, s.handleClassify)

	s.addTool(&mcp.Tool{
		Name:        toolScan,
		Description: "Find asset ids in project files (.meta, .scene, .prefab, ...) under the configured root and list each unique id once.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root":        {Type: "string", Description: "Directory relative to the configured scan root"},
				"include":     {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "Glob patterns to scan"},
				"exclude":     {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "Additional glob patterns to skip"},
				"max_entries": {Type: "integer", Description: "Truncate the entry list"},
			},
		},
	}, s.handleScan)
}

// Start serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.diagnosticLogger.Printf("Starting MCP server with stdio transport")
	return s.serve(ctx, &mcp.StdioTransport{})
}

func (s *Server) serve(ctx context.Context, transport mcp.Transport) error {
	debug.SetMCPMode(true)
	err := s.server.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Shutdown flushes and closes the diagnostic log.
func (s *Server) Shutdown(ctx context.Context) error {
	s.diagnosticLogger.Printf("MCP server shutdown complete")
	return s.diagnosticLogger.Close()
}

// GetHandlerForTesting returns a registered handler by tool name. Short
// names such as "decode" resolve to "decode_id".
func (s *Server) GetHandlerForTesting(toolName string) toolHandler {
	if h, ok := s.handlers[s.resolveToolName(toolName)]; ok {
		return h
	}
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return createErrorResponse("GetHandlerForTesting", fmt.Errorf("unknown tool: %s", toolName))
	}
}

// resolveToolName accepts "decode", "Decode-ID" and "decode_id" alike.
func (s *Server) resolveToolName(name string) string {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if _, ok := s.handlers[name]; ok {
		return name
	}
	if _, ok := s.handlers[name+"_id"]; ok {
		return name + "_id"
	}
	if name == "scan" {
		return toolScan
	}
	return name
}
