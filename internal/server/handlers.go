package server

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"

	"github.com/ironsheep/scan-highlights/internal/geometry"
	"github.com/ironsheep/scan-highlights/internal/highlight"
	"github.com/ironsheep/scan-highlights/internal/hittest"
	"github.com/ironsheep/scan-highlights/internal/render"
	"github.com/ironsheep/scan-highlights/internal/session"
	"github.com/ironsheep/scan-highlights/internal/transform"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "highlights_build", "session_tap").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Debugw("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Falls back to the server configuration for omitted settings
//  3. Calls into the geometry, highlight, hittest, render or session packages
//  4. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Geometry
	case "transform_point":
		return s.handleTransformPoint(args)
	case "bounding_box":
		return s.handleBoundingBox(args)

	// Highlights
	case "highlights_build":
		return s.handleHighlightsBuild(args)
	case "highlights_hit_test":
		return s.handleHighlightsHitTest(args)
	case "highlights_render":
		return s.handleHighlightsRender(args)

	// Session
	case "session_publish_frame":
		return s.handleSessionPublishFrame(args)
	case "session_set_viewport":
		return s.handleSessionSetViewport(args)
	case "session_tap":
		return s.handleSessionTap(args)
	case "session_snapshot":
		return s.handleSessionSnapshot(args)

	default:
		return nil, errors.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// builder returns the configured builder with per-call overrides applied.
func (s *Server) builder(mode, platform string) (highlight.Builder, error) {
	b := builderFor(s.cfg)
	b.Logger = s.logger.Named("highlight")
	if mode != "" {
		m, err := transform.ParseResizeMode(mode)
		if err != nil {
			return b, err
		}
		b.ResizeMode = m
	}
	if platform != "" {
		p, err := transform.ParsePlatform(platform)
		if err != nil {
			return b, err
		}
		b.Platform = p
	}
	if b.Platform == "" {
		b.Platform = transform.DefaultPlatform
	}
	return b, nil
}

func (s *Server) fuzzy(override *float64) float64 {
	if override != nil {
		return *override
	}
	return s.cfg.FuzzyDistance
}

// === Geometry Handlers ===

type transformPointArgs struct {
	Points     []geometry.Point    `json:"points"`
	Frame      highlight.FrameInfo `json:"frame"`
	Viewport   geometry.Size       `json:"viewport"`
	ResizeMode string              `json:"resize_mode"`
	Platform   string              `json:"platform"`
}

// TransformPointResult reports mapped points and how they were mapped.
type TransformPointResult struct {
	Points  []geometry.Point        `json:"points"`
	Scale   transform.Scale         `json:"scale"`
	Axis    transform.AxisTransform `json:"axis"`
	Space   geometry.Size           `json:"space"`
	Warning string                  `json:"warning,omitempty"`
}

func (s *Server) handleTransformPoint(args json.RawMessage) (interface{}, error) {
	var a transformPointArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	b, err := s.builder(a.ResizeMode, a.Platform)
	if err != nil {
		return nil, err
	}

	tr, err := transform.New(a.Frame.Size(), a.Viewport, b.ResizeMode, b.Platform, a.Frame.Orientation,
		transform.WithAxisTable(b.AxisTable), transform.WithLayoutTable(b.LayoutTable))
	if err != nil {
		return nil, err
	}

	res := &TransformPointResult{
		Points: tr.ApplyAll(a.Points),
		Scale:  tr.Scale(),
		Axis:   tr.Axis(),
		Space:  tr.Space(),
	}
	if w := tr.Warning(); w != nil {
		res.Warning = w.Error()
	}
	return res, nil
}

type boundingBoxArgs struct {
	Points []geometry.Point `json:"points"`
}

func (s *Server) handleBoundingBox(args json.RawMessage) (interface{}, error) {
	var a boundingBoxArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return geometry.BoundingBoxOf(a.Points)
}

// === Highlight Handlers ===

type highlightsBuildArgs struct {
	Frame      highlight.FrameInfo   `json:"frame"`
	Viewport   geometry.Size         `json:"viewport"`
	Barcodes   []highlight.Detection `json:"barcodes"`
	ResizeMode string                `json:"resize_mode"`
	Platform   string                `json:"platform"`
}

func (s *Server) handleHighlightsBuild(args json.RawMessage) (interface{}, error) {
	var a highlightsBuildArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	b, err := s.builder(a.ResizeMode, a.Platform)
	if err != nil {
		return nil, err
	}
	return b.Build(a.Barcodes, a.Frame, a.Viewport)
}

type highlightsHitTestArgs struct {
	Tap           geometry.Point        `json:"tap"`
	Highlights    []highlight.Highlight `json:"highlights"`
	FuzzyDistance *float64              `json:"fuzzy_distance"`
}

// HitResult is the outcome of a hit test. Only Hit is set on a miss; the
// other fields are present on every hit, including index 0 and distance 0.
type HitResult struct {
	Hit      bool     `json:"hit"`
	Index    *int     `json:"index,omitempty"`
	Key      string   `json:"key,omitempty"`
	Value    *string  `json:"value,omitempty"`
	Inside   *bool    `json:"inside,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

func hitResult(hit hittest.Hit, ok bool) *HitResult {
	if !ok {
		return &HitResult{}
	}
	return &HitResult{
		Hit:      true,
		Index:    &hit.Index,
		Key:      hit.Highlight.Key,
		Value:    hit.Highlight.Value,
		Inside:   &hit.Inside,
		Distance: &hit.Distance,
	}
}

func (s *Server) handleHighlightsHitTest(args json.RawMessage) (interface{}, error) {
	var a highlightsHitTestArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !a.Tap.IsFinite() {
		return nil, errors.New("tap must be finite")
	}
	return hitResult(hittest.Resolve(a.Tap, a.Highlights, s.fuzzy(a.FuzzyDistance))), nil
}

type highlightsRenderArgs struct {
	Path          string                `json:"path"`
	Orientation   transform.Orientation `json:"orientation"`
	Viewport      geometry.Size         `json:"viewport"`
	Barcodes      []highlight.Detection `json:"barcodes"`
	ResizeMode    string                `json:"resize_mode"`
	Platform      string                `json:"platform"`
	StrokeColor   string                `json:"stroke_color"`
	StrokeWidth   float64               `json:"stroke_width"`
	Dim           float64               `json:"dim"`
	Labels        *bool                 `json:"labels"`
	Tap           *geometry.Point       `json:"tap"`
	FuzzyDistance *float64              `json:"fuzzy_distance"`
	GridSpacing   int                   `json:"grid_spacing"`
}

// RenderResult is an overlay plus the warnings raised building it.
type RenderResult struct {
	*render.OverlayResult
	Warnings []highlight.Warning `json:"warnings,omitempty"`
	Hit      *HitResult          `json:"hit,omitempty"`
}

func (s *Server) handleHighlightsRender(args json.RawMessage) (interface{}, error) {
	var a highlightsRenderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	b, err := s.builder(a.ResizeMode, a.Platform)
	if err != nil {
		return nil, err
	}
	img, err := s.frames.Load(a.Path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	info := highlight.FrameInfo{
		Width:       float64(bounds.Dx()),
		Height:      float64(bounds.Dy()),
		Orientation: a.Orientation,
	}
	built, err := b.Build(a.Barcodes, info, a.Viewport)
	if err != nil {
		return nil, err
	}

	labels := true
	if a.Labels != nil {
		labels = *a.Labels
	}
	fuzzy := s.fuzzy(a.FuzzyDistance)

	overlay, err := render.Overlay(img, built.Highlights, render.OverlayOptions{
		Viewport:      a.Viewport,
		ResizeMode:    b.ResizeMode,
		Platform:      b.Platform,
		Orientation:   a.Orientation,
		AxisTable:     b.AxisTable,
		LayoutTable:   b.LayoutTable,
		StrokeColor:   a.StrokeColor,
		StrokeWidth:   a.StrokeWidth,
		Dim:           a.Dim,
		Labels:        labels,
		Tap:           a.Tap,
		FuzzyDistance: fuzzy,
		GridSpacing:   a.GridSpacing,
	})
	if err != nil {
		return nil, err
	}

	res := &RenderResult{OverlayResult: overlay, Warnings: built.Warnings}
	if a.Tap != nil {
		res.Hit = hitResult(hittest.Resolve(*a.Tap, built.Highlights, fuzzy))
	}
	return res, nil
}

// === Session Handlers ===

// SnapshotResult summarises a published snapshot.
type SnapshotResult struct {
	Seq        uint64                `json:"seq"`
	Frame      highlight.FrameInfo   `json:"frame"`
	Viewport   geometry.Size         `json:"viewport"`
	Highlights []highlight.Highlight `json:"highlights"`
	Warnings   []highlight.Warning   `json:"warnings,omitempty"`
	BuildTime  string                `json:"build_time"`
}

func snapshotResult(snap *session.Snapshot) *SnapshotResult {
	if snap == nil {
		return &SnapshotResult{Highlights: []highlight.Highlight{}}
	}
	return &SnapshotResult{
		Seq:        snap.Seq,
		Frame:      snap.Frame,
		Viewport:   snap.Viewport,
		Highlights: snap.Highlights,
		Warnings:   snap.Warnings,
		BuildTime:  snap.BuildTime.String(),
	}
}

func (s *Server) handleSessionPublishFrame(args json.RawMessage) (interface{}, error) {
	var f session.Frame
	if err := json.Unmarshal(args, &f); err != nil {
		return nil, err
	}
	snap, err := s.pipeline.ProcessFrame(f)
	if err != nil {
		return nil, err
	}
	return snapshotResult(snap), nil
}

type sessionSetViewportArgs struct {
	Width         float64  `json:"width"`
	Height        float64  `json:"height"`
	FuzzyDistance *float64 `json:"fuzzy_distance"`
}

func (s *Server) handleSessionSetViewport(args json.RawMessage) (interface{}, error) {
	var a sessionSetViewportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	viewport := geometry.Size{Width: a.Width, Height: a.Height}
	if err := viewport.Validate(); err != nil {
		return nil, errors.Wrap(err, "viewport")
	}
	if f := a.FuzzyDistance; f != nil && (math.IsNaN(*f) || *f < 0) {
		return nil, errors.Errorf("fuzzy_distance must be >= 0, got %g", *f)
	}

	if err := s.pipeline.SetViewport(viewport); err != nil {
		return nil, err
	}
	if a.FuzzyDistance != nil {
		s.pipeline.SetFuzzyDistance(*a.FuzzyDistance)
	}
	return map[string]interface{}{
		"viewport":       s.pipeline.Viewport(),
		"fuzzy_distance": s.pipeline.FuzzyDistance(),
	}, nil
}

func (s *Server) handleSessionTap(args json.RawMessage) (interface{}, error) {
	var p geometry.Point
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, err
	}
	if !p.IsFinite() {
		return nil, errors.New("tap must be finite")
	}
	return hitResult(s.pipeline.Tap(p)), nil
}

func (s *Server) handleSessionSnapshot(args json.RawMessage) (interface{}, error) {
	return snapshotResult(s.pipeline.Store().Latest()), nil
}
