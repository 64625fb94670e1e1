package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	clipA = "https://example.com/a.mp4"
	clipB = "https://example.com/b.mp4"
)

type stubEngine struct {
	rendered  domain.Node
	renderErr error
}

func (e *stubEngine) Render(_ context.Context, root domain.Node) (string, error) {
	e.rendered = root
	if e.renderErr != nil {
		return "", e.renderErr
	}
	return "/tmp/out/final.mp4", nil
}

func (e *stubEngine) Probe(_ context.Context, ref string) (*domain.MediaInfo, error) {
	if ref == "missing.mp4" {
		return nil, domain.ErrResolution
	}
	return &domain.MediaInfo{Path: ref, Duration: 4, Width: 640, Height: 360, Format: "mov,mp4", HasVideo: true, HasAudio: true}, nil
}

func decodeToken(t *testing.T, tok string) *domain.ActionNode {
	t.Helper()
	n, err := schema.DecodeToken(tok)
	require.NoError(t, err)
	action, ok := n.(*domain.ActionNode)
	require.True(t, ok, "expected action node, got %T", n)
	return action
}

func TestAddAction_Unary(t *testing.T) {
	s := NewServer(&stubEngine{})

	res, err := s.addAction(domain.ActionTrim)(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"input_stream": clipA,
		"start":        1.0,
		"duration":     2.5,
	})
	require.NoError(t, err)

	node := decodeToken(t, res.ResultStream)
	assert.Equal(t, domain.ActionTrim, node.Kind)
	assert.Equal(t, domain.Leaf{Reference: clipA}, node.Input)
	assert.Equal(t, domain.TrimParams{Start: 1, Duration: 2.5}, node.Params)
}

func TestAddAction_ChainsTokens(t *testing.T) {
	s := NewServer(&stubEngine{})
	ctx := context.Background()

	trimmed, err := s.addAction(domain.ActionTrim)(ctx, mcp.CallToolRequest{}, map[string]any{
		"input_stream": clipA, "start": 0.0, "duration": 1.0,
	})
	require.NoError(t, err)

	joined, err := s.addAction(domain.ActionConcat)(ctx, mcp.CallToolRequest{}, map[string]any{
		"input_streams": []any{trimmed.ResultStream, clipB},
	})
	require.NoError(t, err)

	node := decodeToken(t, joined.ResultStream)
	assert.Equal(t, domain.ActionConcat, node.Kind)
	require.Len(t, node.Inputs, 2)
	first, ok := node.Inputs[0].(*domain.ActionNode)
	require.True(t, ok)
	assert.Equal(t, domain.ActionTrim, first.Kind)
	assert.Equal(t, domain.Leaf{Reference: clipB}, node.Inputs[1])
}

func TestAddAction_Defaults(t *testing.T) {
	s := NewServer(&stubEngine{})

	res, err := s.addAction(domain.ActionScale)(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"input_stream": clipA,
		"width":        1280.0,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ScaleParams{Width: 1280, Height: -1}, decodeToken(t, res.ResultStream).Params)
}

func TestAddAction_Errors(t *testing.T) {
	s := NewServer(&stubEngine{})
	ctx := context.Background()

	tests := []struct {
		name string
		kind domain.ActionKind
		args map[string]any
		want error
	}{
		{"invalid param", domain.ActionTrim, map[string]any{"input_stream": clipA, "start": 0.0, "duration": 0.0}, domain.ErrValidation},
		{"unknown param", domain.ActionTrim, map[string]any{"input_stream": clipA, "duration": 1.0, "speed": 2.0}, domain.ErrValidation},
		{"missing input", domain.ActionBlur, map[string]any{"radius": 2.0}, domain.ErrInvalidNode},
		{"streams not a list", domain.ActionConcat, map[string]any{"input_streams": clipA}, domain.ErrInvalidNode},
		{"garbage token", domain.ActionRotate, map[string]any{"input_stream": "not a stream", "angle": 90.0}, domain.ErrInvalidNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.addAction(tt.kind)(ctx, mcp.CallToolRequest{}, tt.args)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParamFields(t *testing.T) {
	byName := func(kind domain.ActionKind) map[string]paramField {
		out := map[string]paramField{}
		for _, f := range paramFields(kind) {
			out[f.name] = f
		}
		return out
	}

	scale := byName(domain.ActionScale)
	assert.True(t, scale["width"].required)
	assert.False(t, scale["height"].required)

	overlay := byName(domain.ActionOverlay)
	assert.False(t, overlay["x"].required)
	assert.False(t, overlay["y"].required)

	cut := byName(domain.ActionCut)
	assert.True(t, cut["x"].required)

	fade := byName(domain.ActionFade)
	assert.True(t, fade["type"].isString)
	assert.False(t, fade["type"].required)
	assert.True(t, fade["duration"].required)

	assert.Empty(t, paramFields(domain.ActionConcat))
}

func TestRenderWorkflow(t *testing.T) {
	engine := &stubEngine{}
	s := NewServer(engine)

	tok, err := schema.EncodeToken(&domain.ActionNode{
		Kind:   domain.ActionBlur,
		Input:  domain.Leaf{Reference: clipA},
		Params: domain.BlurParams{Radius: 3},
	})
	require.NoError(t, err)

	res, err := s.handleRender(context.Background(), mcp.CallToolRequest{}, map[string]any{"workflow": tok})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out/final.mp4", res.ResultPath)
	require.IsType(t, &domain.ActionNode{}, engine.rendered)

	engine.renderErr = domain.ErrEngine
	_, err = s.handleRender(context.Background(), mcp.CallToolRequest{}, map[string]any{"workflow": tok})
	assert.True(t, errors.Is(err, domain.ErrEngine))
}

func TestMediaInfo(t *testing.T) {
	s := NewServer(&stubEngine{})
	ctx := context.Background()

	info, err := s.handleMediaInfo(ctx, mcp.CallToolRequest{}, map[string]any{"input_source": clipA})
	require.NoError(t, err)
	assert.Equal(t, 640, info.Width)
	assert.InDelta(t, 4.0, info.Duration, 1e-9)

	_, err = s.handleMediaInfo(ctx, mcp.CallToolRequest{}, map[string]any{"input_source": "missing.mp4"})
	assert.ErrorIs(t, err, domain.ErrResolution)

	_, err = s.handleMediaInfo(ctx, mcp.CallToolRequest{}, map[string]any{})
	assert.Error(t, err)
}

func TestToolsList(t *testing.T) {
	s := NewServer(&stubEngine{})
	ctx := context.Background()

	s.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))
	resp := s.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded struct {
		Result struct {
			Tools []struct {
				Name        string `json:"name"`
				InputSchema struct {
					Required []string `json:"required"`
				} `json:"inputSchema"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	required := map[string][]string{}
	for _, tool := range decoded.Result.Tools {
		required[tool.Name] = tool.InputSchema.Required
	}
	assert.Len(t, required, len(domain.Kinds())+2)
	assert.Contains(t, required, "get_media_info")
	assert.Contains(t, required, "render_workflow")
	assert.ElementsMatch(t, []string{"input_streams"}, required["add_concat_action"])
	assert.ElementsMatch(t, []string{"input_stream", "start", "duration"}, required["add_trim_action"])
}
