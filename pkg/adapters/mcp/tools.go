package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/dsl"
	"github.com/ofekfell/mediaflow/pkg/schema"
)

const (
	argInputStream  = "input_stream"
	argInputStreams = "input_streams"
	argInputSource  = "input_source"
	argWorkflow     = "workflow"

	actionsURI = "mediaflow://actions"
)

// TokenResponse is returned by every add_<action>_action tool.
type TokenResponse struct {
	ResultStream string `json:"result_stream" jsonschema_description:"Base64 workflow tree to pass to the next tool or to render_workflow"`
}

// RenderResponse is returned by render_workflow.
type RenderResponse struct {
	ResultPath string `json:"result_path" jsonschema_description:"Absolute path of the rendered file"`
}

var paramDocs = map[string]string{
	"start":            "Start offset in seconds",
	"duration":         "Duration in seconds",
	"x":                "Horizontal offset in pixels",
	"y":                "Vertical offset in pixels",
	"width":            "Width in pixels",
	"height":           "Height in pixels (-1 keeps the aspect ratio for scale)",
	"volume":           "Volume multiplier (1.0 = unchanged)",
	"type":             "Fade direction: in or out",
	"start_time":       "Fade start in seconds",
	"angle":            "Rotation in degrees",
	"factor":           "Speed factor (2 = twice as fast)",
	"radius":           "Blur radius",
	"stream1_duration": "Duration of the first input in seconds",
	"transition":       "xfade transition name (default fade)",
	"weights":          "Space separated mix weights, e.g. \"1 0.5\"",
	"fps":              "Frames per second",
	"format":           "Pixel format, e.g. yuv420p",
	"sample_rate":      "Audio sample rate in Hz",
}

// optionalParams lists parameters that may be omitted even though their
// default is the zero value.
var optionalParams = map[string]bool{
	"overlay.x":         true,
	"overlay.y":         true,
	"audio_mix.weights": true,
}

var actionDocs = map[domain.ActionKind]string{
	domain.ActionTrim:            "Keep a time window of the input.",
	domain.ActionCut:             "Crop a rectangle out of the video.",
	domain.ActionChangeVolume:    "Scale the audio volume.",
	domain.ActionConcat:          "Play the inputs one after another.",
	domain.ActionScale:           "Resize the video.",
	domain.ActionOverlay:         "Draw the second input on top of the first.",
	domain.ActionFade:            "Fade video and audio in or out.",
	domain.ActionRotate:          "Rotate the video.",
	domain.ActionSpeed:           "Change playback speed without shifting pitch.",
	domain.ActionBlur:            "Apply a gaussian blur.",
	domain.ActionCrossfade:       "Blend the end of the first input into the second.",
	domain.ActionAudioMix:        "Mix the audio of all inputs.",
	domain.ActionSetFPS:          "Set the video frame rate.",
	domain.ActionSetFormat:       "Set the video pixel format.",
	domain.ActionAudioResample:   "Resample the audio.",
	domain.ActionResetVideoPTS:   "Reset video timestamps to start at zero.",
	domain.ActionResetAudioPTS:   "Reset audio timestamps to start at zero.",
	domain.ActionAudioDynaudnorm: "Normalize audio loudness dynamically.",
}

// ToolName is the MCP tool name for an action kind.
func ToolName(kind domain.ActionKind) string {
	return "add_" + string(kind) + "_action"
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_media_info",
		mcp.WithDescription("Probe a local file or URL for duration, dimensions, codecs and format."),
		mcp.WithString(argInputSource, mcp.Required(), mcp.Description("Local path or http(s) URL")),
		mcp.WithOutputSchema[domain.MediaInfo](),
	), mcp.NewStructuredToolHandler(s.handleMediaInfo))

	s.mcpServer.AddTool(mcp.NewTool("render_workflow",
		mcp.WithDescription("Render a workflow and return the path of the produced file."),
		mcp.WithString(argWorkflow, mcp.Required(), mcp.Description("result_stream token, inline JSON tree, or a single media reference")),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleRender))

	for _, kind := range domain.Kinds() {
		s.mcpServer.AddTool(actionTool(kind), mcp.NewStructuredToolHandler(s.addAction(kind)))
	}
}

// actionTool derives the tool schema from the kind's parameter block.
func actionTool(kind domain.ActionKind) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(actionDocs[kind] + " Returns a result_stream for chaining."),
		mcp.WithOutputSchema[TokenResponse](),
	}
	if kind.MultiInput() {
		opts = append(opts, mcp.WithArray(argInputStreams,
			mcp.Required(),
			mcp.Description("Ordered inputs: media references or result_stream tokens"),
			mcp.Items(map[string]any{"type": "string"}),
		))
	} else {
		opts = append(opts, mcp.WithString(argInputStream,
			mcp.Required(),
			mcp.Description("Media reference or result_stream token"),
		))
	}

	for _, f := range paramFields(kind) {
		propOpts := []mcp.PropertyOption{mcp.Description(paramDocs[f.name])}
		if f.required {
			propOpts = append(propOpts, mcp.Required())
		}
		if f.isString {
			opts = append(opts, mcp.WithString(f.name, propOpts...))
		} else {
			opts = append(opts, mcp.WithNumber(f.name, propOpts...))
		}
	}
	return mcp.NewTool(ToolName(kind), opts...)
}

type paramField struct {
	name     string
	isString bool
	required bool
}

func paramFields(kind domain.ActionKind) []paramField {
	p, err := domain.NewParams(kind)
	if err != nil {
		return nil
	}
	v := reflect.ValueOf(p).Elem()
	t := v.Type()

	fields := make([]paramField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("mapstructure")
		fields = append(fields, paramField{
			name:     name,
			isString: t.Field(i).Type.Kind() == reflect.String,
			required: v.Field(i).IsZero() && !optionalParams[string(kind)+"."+name],
		})
	}
	return fields
}

func (s *Server) handleMediaInfo(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (domain.MediaInfo, error) {
	source, _ := args[argInputSource].(string)
	if source == "" {
		return domain.MediaInfo{}, fmt.Errorf("%s is required", argInputSource)
	}
	info, err := s.engine.Probe(ctx, source)
	if err != nil {
		return domain.MediaInfo{}, err
	}
	return *info, nil
}

func (s *Server) handleRender(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (RenderResponse, error) {
	raw, _ := args[argWorkflow].(string)
	root, err := schema.DecodeInput(raw)
	if err != nil {
		return RenderResponse{}, err
	}
	path, err := s.engine.Render(ctx, root)
	if err != nil {
		s.logger.Error("render_workflow failed", "err", err)
		return RenderResponse{}, err
	}
	return RenderResponse{ResultPath: path}, nil
}

func (s *Server) addAction(kind domain.ActionKind) func(context.Context, mcp.CallToolRequest, map[string]any) (TokenResponse, error) {
	return func(_ context.Context, _ mcp.CallToolRequest, args map[string]any) (TokenResponse, error) {
		input, err := decodeToolInput(kind, args)
		if err != nil {
			return TokenResponse{}, err
		}

		raw := make(map[string]any, len(args))
		for k, v := range args {
			if k != argInputStream && k != argInputStreams {
				raw[k] = v
			}
		}
		params, err := schema.DecodeParams(kind, raw)
		if err != nil {
			return TokenResponse{}, err
		}

		node, err := dsl.Build(kind, input, params)
		if err != nil {
			return TokenResponse{}, err
		}
		tok, err := schema.EncodeToken(node)
		if err != nil {
			return TokenResponse{}, err
		}
		return TokenResponse{ResultStream: tok}, nil
	}
}

// decodeToolInput reads input_stream (unary) or input_streams (n-ary).
// Items may be strings or already-structured wire nodes.
func decodeToolInput(kind domain.ActionKind, args map[string]any) (any, error) {
	if !kind.MultiInput() {
		return decodeItem(args[argInputStream])
	}

	list, ok := args[argInputStreams].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: %s must be a list", domain.ErrInvalidNode, kind, argInputStreams)
	}
	nodes := make([]domain.Node, 0, len(list))
	for i, item := range list {
		n, err := decodeItem(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", argInputStreams, i, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func decodeItem(v any) (domain.Node, error) {
	switch t := v.(type) {
	case string:
		return schema.DecodeInput(t)
	case map[string]any:
		return schema.Decode(t)
	case nil:
		return nil, fmt.Errorf("%w: missing input", domain.ErrInvalidNode)
	}
	return nil, fmt.Errorf("%w: unexpected input %T", domain.ErrInvalidNode, v)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(actionsURI, "Available actions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		type action struct {
			Name        string   `json:"name"`
			Tool        string   `json:"tool"`
			Description string   `json:"description"`
			MultiInput  bool     `json:"multi_input"`
			Params      []string `json:"params"`
		}
		var out []action
		for _, k := range domain.Kinds() {
			a := action{Name: string(k), Tool: ToolName(k), Description: actionDocs[k], MultiInput: k.MultiInput(), Params: []string{}}
			for _, f := range paramFields(k) {
				a.Params = append(a.Params, f.name)
			}
			out = append(out, a)
		}
		data, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      actionsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
