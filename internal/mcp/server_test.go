package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/assetid/internal/config"
	"github.com/standardbeagle/assetid/internal/idcodec"
	"github.com/standardbeagle/assetid/testhelpers"
)

const (
	sampleStandard = testhelpers.SampleStandard
	sampleShort    = testhelpers.SampleShort
	samplePacked   = testhelpers.SamplePacked
)

func newTestServer(t *testing.T, root string) (*Server, *bytes.Buffer) {
	t.Helper()
	cfg := testhelpers.NewTestConfigBuilder(root).Build()
	require.NoError(t, config.NewValidator().ValidateAndSetDefaults(cfg))

	var logs bytes.Buffer
	s, err := newServer(cfg, NewDiagnosticLoggerTo(&logs))
	require.NoError(t, err)
	return s, &logs
}

func call(t *testing.T, s *Server, tool string, args any) *mcp.CallToolResult {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)

	result, err := s.GetHandlerForTesting(tool)(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Name: tool, Arguments: raw},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func decodeResult[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")

	var out T
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out), text.Text)
	return out
}

func TestTransformTools(t *testing.T) {
	s, logs := newTestServer(t, t.TempDir())

	tests := []struct {
		tool     string
		input    string
		expected string
	}{
		{toolDecode, sampleShort + "@f9941", sampleStandard + "@f9941"},
		{toolCompress, sampleStandard, samplePacked},
		{toolDecompress, sampleStandard, "fc153.29.215.0.51.75.128.157.65.200.168.106.112.46.89"},
		{toolReconstruct, samplePacked, "fc153XADNLgJ1ByKhqcC5Z"},
	}

	for _, tc := range tests {
		t.Run(tc.tool, func(t *testing.T) {
			result := call(t, s, tc.tool, map[string]any{"id": tc.input})
			assert.False(t, result.IsError)

			resp := decodeResult[TransformResponse](t, result)
			require.Len(t, resp.Results, 1)
			assert.Equal(t, tc.expected, resp.Results[0].Output)
			assert.True(t, resp.Results[0].Changed)
			assert.Equal(t, 1, resp.Changed)
		})
	}

	assert.Contains(t, logs.String(), `"tool":"decode_id"`)
}

func TestTransformTools_ManyIDsKeepOrder(t *testing.T) {
	s, _ := newTestServer(t, t.TempDir())

	result := call(t, s, toolDecode, map[string]any{"ids": []string{sampleShort, "bogus", sampleShort + "@x"}})
	resp := decodeResult[TransformResponse](t, result)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, sampleStandard, resp.Results[0].Output)
	assert.Equal(t, "bogus", resp.Results[1].Output)
	assert.NotEmpty(t, resp.Results[1].Error)
	assert.False(t, resp.Results[1].Changed)
	assert.Equal(t, sampleStandard+"@x", resp.Results[2].Output)
	assert.Equal(t, 2, resp.Changed)
	assert.Equal(t, 1, resp.Unchanged)
}

func TestTransformTools_IDsAsString(t *testing.T) {
	s, _ := newTestServer(t, t.TempDir())

	result := call(t, s, "decode", map[string]any{"ids": sampleShort + ", " + sampleShort})
	resp := decodeResult[TransformResponse](t, result)
	assert.Len(t, resp.Results, 2)
}

func TestTransformTools_MissingIDs(t *testing.T) {
	s, _ := newTestServer(t, t.TempDir())

	result := call(t, s, toolCompress, map[string]any{})
	assert.True(t, result.IsError)

	body := decodeResult[map[string]any](t, result)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "id or ids is required")
	assert.Contains(t, body["help"], `"ids"`)
}

func TestTransformTools_BadArguments(t *testing.T) {
	s, _ := newTestServer(t, t.TempDir())

	result := call(t, s, toolDecode, map[string]any{"ids": 42})
	assert.True(t, result.IsError)
}

func TestGenerateTool(t *testing.T) {
	s, _ := newTestServer(t, t.TempDir())

	resp := decodeResult[GenerateResponse](t, call(t, s, toolGenerate, map[string]any{}))
	assert.Equal(t, "short", resp.Kind)
	require.Len(t, resp.IDs, 1)
	assert.Len(t, resp.IDs[0], idcodec.ShortLength)

	resp = decodeResult[GenerateResponse](t, call(t, s, toolGenerate, map[string]any{"kind": "standard", "count": 5}))
	assert.Equal(t, "standard", resp.Kind)
	require.Len(t, resp.IDs, 5)
	for _, id := range resp.IDs {
		assert.True(t, idcodec.IsValidStandardID(id), id)
	}

	assert.True(t, call(t, s, toolGenerate, map[string]any{"count": maxGenerate + 1}).IsError)
	assert.True(t, call(t, s, toolGenerate, map[string]any{"kind": "snowflake"}).IsError)
}

func TestValidateTool(t *testing.T) {
	s, _ := newTestServer(t, t.TempDir())

	resp := decodeResult[ValidateResponse](t, call(t, s, toolValidate, map[string]any{
		"ids": []string{sampleStandard, "not-a-uuid"},
	}))
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Valid)
	assert.False(t, resp.Results[1].Valid)
	assert.False(t, resp.AllValid)
}

func TestClassifyTool(t *testing.T) {
	s, _ := newTestServer(t, t.TempDir())

	resp := decodeResult[ClassifyResponse](t, call(t, s, toolClassify, map[string]any{
		"ids": []string{sampleShort, samplePacked, "FC991DD7-0033-4B80-9D41-C8A86A702E59", "cc.Node"},
	}))
	require.Len(t, resp.Results, 4)
	assert.Equal(t, ClassifyResult{Input: sampleShort, Kind: "short", Standard: sampleStandard}, resp.Results[0])
	assert.Equal(t, ClassifyResult{Input: samplePacked, Kind: "packed"}, resp.Results[1])
	assert.Equal(t, sampleStandard, resp.Results[2].Standard)
	assert.Equal(t, "unknown", resp.Results[3].Kind)
}

func TestScanTool(t *testing.T) {
	root := t.TempDir()
	testhelpers.WriteTree(t, root, map[string]string{
		"assets/hero.png.meta": `{"uuid": "` + sampleStandard + `"}`,
		"assets/icon.meta":     "\x89PNG\r\n\x1a\n",
	})

	s, _ := newTestServer(t, root)

	body := decodeResult[map[string]any](t, call(t, s, toolScan, map[string]any{"root": "assets"}))
	assert.EqualValues(t, 2, body["files"])
	assert.EqualValues(t, 1, body["skipped"])
	assert.EqualValues(t, 1, body["total"])

	entries, ok := body["entries"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, sampleStandard, entries[0].(map[string]any)["id"])

	result := call(t, s, toolScan, map[string]any{"root": "../outside"})
	assert.True(t, result.IsError)
}

func TestInfoTool(t *testing.T) {
	s, _ := newTestServer(t, t.TempDir())

	overview := decodeResult[map[string]any](t, call(t, s, toolInfo, map[string]any{}))
	tools, ok := overview["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, tools, 9)

	detail := decodeResult[map[string]any](t, call(t, s, toolInfo, map[string]any{"tool": "decode"}))
	assert.Equal(t, toolDecode, detail["name"])

	ver := decodeResult[map[string]any](t, call(t, s, toolInfo, map[string]any{"tool": "version"}))
	assert.Contains(t, ver["server_version"], "assetid")

	assert.True(t, call(t, s, toolInfo, map[string]any{"tool": "teleport"}).IsError)
}

func TestUnknownToolHandler(t *testing.T) {
	s, _ := newTestServer(t, t.TempDir())
	assert.True(t, call(t, s, "teleport", map[string]any{}).IsError)
}

func TestRecoverFromPanic(t *testing.T) {
	s, logs := newTestServer(t, t.TempDir())

	result, err := s.recoverFromPanic("boom", func() (*mcp.CallToolResult, error) {
		panic("kaboom")
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, logs.String(), "PANIC RECOVERED in boom")
}

func TestServeOverInMemoryTransport(t *testing.T) {
	s, _ := newTestServer(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.serve(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, len(tools.Tools))
	for i, tool := range tools.Tools {
		names[i] = tool.Name
	}
	assert.ElementsMatch(t, []string{
		toolInfo, toolDecode, toolCompress, toolDecompress, toolReconstruct,
		toolGenerate, toolValidate, toolClassify, toolScan,
	}, names)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolDecode,
		Arguments: map[string]any{"id": sampleShort},
	})
	require.NoError(t, err)
	resp := decodeResult[TransformResponse](t, result)
	assert.Equal(t, sampleStandard, resp.Results[0].Output)

	cancel()

	select {
	case err := <-serveErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
