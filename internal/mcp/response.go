package mcp

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse reports a tool failure inside the result with IsError
// set, so the client sees it instead of a protocol error.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}
	if help := getOperationHelp(operation); help != "" {
		errorData["help"] = help
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

// getOperationHelp returns a one-line usage hint for a tool.
func getOperationHelp(operation string) string {
	switch operation {
	case toolDecode, toolCompress, toolDecompress, toolReconstruct, toolValidate, toolClassify:
		return fmt.Sprintf(`Use: {"id": "..."} or {"ids": ["...", "..."]}; see {"tool": %q} in info`, operation)
	case toolGenerate:
		return `Use: {"kind": "short"|"standard", "count": 1}`
	case toolScan:
		return `Use: {"root": "assets", "include": ["**/*.meta"]}`
	case toolInfo:
		return `Use: {} for an overview or {"tool": "decode_id"}`
	}
	return ""
}

// recoverFromPanic runs handler and turns a panic into an error result.
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.diagnosticLogger.Errorf("PANIC RECOVERED in %s: %v\n%s", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err = handler()
	if err != nil {
		s.diagnosticLogger.Tool(operation, 0, time.Since(start), err)
		return createErrorResponse(operation, err)
	}
	return result, nil
}
