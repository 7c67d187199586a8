package server

import (
	"encoding/json"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/scan-highlights/internal/geometry"
	"github.com/ironsheep/scan-highlights/internal/highlight"
)

// callTool runs a tools/call request and decodes the text content into out.
func callTool(t *testing.T, s *Server, name string, args interface{}, out interface{}) {
	t.Helper()

	resp := rawCall(t, s, name, args)
	if resp.Error != nil {
		t.Fatalf("%s: unexpected error: %v (%v)", name, resp.Error.Message, resp.Error.Data)
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	text := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("%s: failed to decode result %q: %v", name, text, err)
	}
}

func rawCall(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

func square(value string, x, y, size float64) map[string]interface{} {
	return map[string]interface{}{
		"value": value,
		"type":  "qr",
		"cornerPoints": []map[string]float64{
			{"x": x, "y": y},
			{"x": x + size, "y": y},
			{"x": x + size, "y": y + size},
			{"x": x, "y": y + size},
		},
	}
}

var portraitFrame = map[string]interface{}{"width": 200, "height": 100, "orientation": "portrait"}

func TestHandleToolsCall_TransformPoint(t *testing.T) {
	s := New(nil, nil, nil)

	var got TransformPointResult
	callTool(t, s, "transform_point", map[string]interface{}{
		"points":      []map[string]float64{{"x": 100, "y": 50}, {"x": 50, "y": 0}},
		"frame":       portraitFrame,
		"viewport":    map[string]float64{"width": 100, "height": 100},
		"resize_mode": "cover",
		"platform":    "android",
	}, &got)

	want := []geometry.Point{{X: 50, Y: 50}, {X: 0, Y: 0}}
	if diff := cmp.Diff(want, got.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	if got.Scale.X != 1 || got.Scale.OffsetX != -50 {
		t.Errorf("scale: got %+v", got.Scale)
	}
	if got.Warning != "" {
		t.Errorf("unexpected warning %q", got.Warning)
	}
}

func TestHandleToolsCall_TransformPointUnknownOrientation(t *testing.T) {
	s := New(nil, nil, nil)

	var got TransformPointResult
	callTool(t, s, "transform_point", map[string]interface{}{
		"points":   []map[string]float64{{"x": 10, "y": 20}},
		"frame":    map[string]interface{}{"width": 100, "height": 100, "orientation": "face-up"},
		"viewport": map[string]float64{"width": 100, "height": 100},
	}, &got)

	if got.Warning == "" {
		t.Error("expected an orientation warning")
	}
	if got.Points[0] != geometry.Pt(10, 20) {
		t.Errorf("identity fallback: got %v", got.Points[0])
	}
}

func TestHandleToolsCall_BoundingBox(t *testing.T) {
	s := New(nil, nil, nil)

	var got geometry.BoundingBox
	callTool(t, s, "bounding_box", map[string]interface{}{
		"points": []map[string]float64{{"x": 3, "y": 7}, {"x": -1, "y": 2}, {"x": 5, "y": 4}},
	}, &got)

	want := geometry.BoundingBox{Origin: geometry.Pt(-1, 2), Width: 6, Height: 5}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	resp := rawCall(t, s, "bounding_box", map[string]interface{}{"points": []interface{}{}})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("empty points: expected tool error, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_HighlightsBuild(t *testing.T) {
	s := New(nil, nil, nil)

	short := map[string]interface{}{
		"value":        "short",
		"cornerPoints": []map[string]float64{{"x": 0, "y": 0}, {"x": 1, "y": 1}},
	}

	var got highlight.Result
	callTool(t, s, "highlights_build", map[string]interface{}{
		"frame":    portraitFrame,
		"viewport": map[string]float64{"width": 100, "height": 100},
		"barcodes": []interface{}{square("abc", 60, 10, 20), short, square("def", 100, 50, 20)},
	}, &got)

	if len(got.Highlights) != 2 {
		t.Fatalf("highlights: got %d, want 2", len(got.Highlights))
	}
	if got.Highlights[0].Key != "abc.0" || got.Highlights[1].Key != "def.2" {
		t.Errorf("keys: got %q, %q", got.Highlights[0].Key, got.Highlights[1].Key)
	}
	if got.Highlights[0].CornerPoints[0] != geometry.Pt(10, 10) {
		t.Errorf("first corner: got %v", got.Highlights[0].CornerPoints[0])
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Kind != highlight.WarnTooFewCorners || got.Warnings[0].Index != 1 {
		t.Errorf("warnings: got %+v", got.Warnings)
	}
}

func TestHandleToolsCall_HighlightsBuildZeroViewport(t *testing.T) {
	s := New(nil, nil, nil)

	var got highlight.Result
	callTool(t, s, "highlights_build", map[string]interface{}{
		"frame":    portraitFrame,
		"viewport": map[string]float64{"width": 0, "height": 0},
		"barcodes": []interface{}{square("abc", 60, 10, 20)},
	}, &got)

	if len(got.Highlights) != 0 {
		t.Errorf("expected no highlights, got %d", len(got.Highlights))
	}
}

func TestHandleToolsCall_HighlightsHitTest(t *testing.T) {
	s := New(nil, nil, nil)
	highlights := []interface{}{
		map[string]interface{}{
			"key":   "a.0",
			"value": "a",
			"cornerPoints": []map[string]float64{
				{"x": 0, "y": 0}, {"x": 1, "y": 0}, {"x": 1, "y": 1}, {"x": 0, "y": 1},
			},
		},
	}

	tests := []struct {
		name   string
		tap    map[string]float64
		fuzzy  float64
		hit    bool
		inside bool
	}{
		{"inside", map[string]float64{"x": 0.5, "y": 0.5}, 0, true, true},
		{"near", map[string]float64{"x": 1.5, "y": 0.5}, 1, true, false},
		{"miss", map[string]float64{"x": 3, "y": 3}, 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got HitResult
			callTool(t, s, "highlights_hit_test", map[string]interface{}{
				"tap":            tt.tap,
				"highlights":     highlights,
				"fuzzy_distance": tt.fuzzy,
			}, &got)

			if got.Hit != tt.hit {
				t.Fatalf("hit: got %v, want %v", got.Hit, tt.hit)
			}
			if !tt.hit {
				if got.Index != nil || got.Inside != nil || got.Distance != nil {
					t.Errorf("miss should carry only hit: %+v", got)
				}
				return
			}
			if got.Key != "a.0" {
				t.Errorf("key: got %q", got.Key)
			}
			if got.Index == nil || *got.Index != 0 {
				t.Errorf("index: got %v, want 0", got.Index)
			}
			if got.Inside == nil || *got.Inside != tt.inside {
				t.Errorf("inside: got %v, want %v", got.Inside, tt.inside)
			}
			if got.Distance == nil {
				t.Error("distance missing")
			}
		})
	}
}

func TestHandleToolsCall_HitOnEdgeKeepsZeroFields(t *testing.T) {
	s := New(nil, nil, nil)

	resp := rawCall(t, s, "highlights_hit_test", map[string]interface{}{
		"tap": map[string]float64{"x": 0, "y": 5},
		"highlights": []interface{}{
			map[string]interface{}{
				"key": "a.0",
				"cornerPoints": []map[string]float64{
					{"x": 0, "y": 0}, {"x": 10, "y": 0}, {"x": 10, "y": 10}, {"x": 0, "y": 10},
				},
			},
		},
		"fuzzy_distance": 1,
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	text := resp.Result.(map[string]interface{})["content"].([]map[string]interface{})[0]["text"].(string)
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, field := range []string{"hit", "index", "inside", "distance"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("field %q missing from %s", field, text)
		}
	}
	if raw["index"] != 0.0 || raw["distance"] != 0.0 {
		t.Errorf("got index=%v distance=%v, want 0 and 0", raw["index"], raw["distance"])
	}
}

func TestHandleToolsCall_SetViewportIsAtomic(t *testing.T) {
	s := New(nil, nil, nil)

	var vp map[string]interface{}
	callTool(t, s, "session_set_viewport", map[string]interface{}{
		"width": 100, "height": 50, "fuzzy_distance": 3,
	}, &vp)

	resp := rawCall(t, s, "session_set_viewport", map[string]interface{}{
		"width": 300, "height": 200, "fuzzy_distance": -1,
	})
	if resp.Error == nil {
		t.Fatal("expected error for negative fuzzy_distance")
	}

	if got := s.Pipeline().Viewport(); got != (geometry.Size{Width: 100, Height: 50}) {
		t.Errorf("viewport changed by rejected call: %v", got)
	}
	if got := s.Pipeline().FuzzyDistance(); got != 3 {
		t.Errorf("fuzzy distance: got %v, want 3", got)
	}
}

func TestHandleToolsCall_HighlightsRender(t *testing.T) {
	s := New(nil, nil, nil)
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := imaging.Save(imaging.New(200, 100, color.Black), path); err != nil {
		t.Fatalf("save frame: %v", err)
	}

	var got RenderResult
	callTool(t, s, "highlights_render", map[string]interface{}{
		"path":         path,
		"orientation":  "portrait",
		"viewport":     map[string]float64{"width": 100, "height": 100},
		"barcodes":     []interface{}{square("abc", 60, 10, 40)},
		"stroke_color": "#00ff00",
		"tap":          map[string]float64{"x": 30, "y": 30},
	}, &got)

	if got.OverlayResult == nil {
		t.Fatal("missing overlay")
	}
	if got.Width != 100 || got.Height != 100 || got.Highlights != 1 {
		t.Errorf("overlay: got %dx%d with %d highlights", got.Width, got.Height, got.Highlights)
	}
	if got.ImageBase64 == "" || got.MimeType != "image/png" {
		t.Error("expected a PNG payload")
	}
	if got.Hit == nil || !got.Hit.Hit || got.Hit.Inside == nil || !*got.Hit.Inside {
		t.Errorf("tap at (30,30) should land inside: %+v", got.Hit)
	}
}

func TestHandleToolsCall_HighlightsRenderMissingFile(t *testing.T) {
	s := New(nil, nil, nil)
	resp := rawCall(t, s, "highlights_render", map[string]interface{}{
		"path":        filepath.Join(t.TempDir(), "missing.png"),
		"orientation": "portrait",
		"viewport":    map[string]float64{"width": 100, "height": 100},
		"barcodes":    []interface{}{},
	})
	if resp.Error == nil {
		t.Fatal("expected error for missing frame")
	}
}

func TestHandleToolsCall_Session(t *testing.T) {
	s := New(nil, nil, nil)

	var snap SnapshotResult
	callTool(t, s, "session_snapshot", map[string]interface{}{}, &snap)
	if snap.Seq != 0 || len(snap.Highlights) != 0 {
		t.Errorf("empty session: got %+v", snap)
	}

	var vp map[string]interface{}
	callTool(t, s, "session_set_viewport", map[string]interface{}{
		"width": 100, "height": 100, "fuzzy_distance": 5,
	}, &vp)
	if vp["fuzzy_distance"] != 5.0 {
		t.Errorf("fuzzy_distance: got %v", vp["fuzzy_distance"])
	}

	callTool(t, s, "session_publish_frame", map[string]interface{}{
		"frame":    portraitFrame,
		"barcodes": []interface{}{square("abc", 60, 10, 40)},
	}, &snap)
	if snap.Seq != 1 || len(snap.Highlights) != 1 {
		t.Fatalf("publish: got seq=%d highlights=%d", snap.Seq, len(snap.Highlights))
	}

	var hit HitResult
	callTool(t, s, "session_tap", map[string]float64{"x": 30, "y": 30}, &hit)
	if !hit.Hit || hit.Key != "abc.0" || hit.Value == nil || *hit.Value != "abc" {
		t.Errorf("tap inside: got %+v", hit)
	}

	callTool(t, s, "session_tap", map[string]float64{"x": 95, "y": 95}, &hit)
	if hit.Hit {
		t.Errorf("tap far away: got %+v", hit)
	}

	callTool(t, s, "session_snapshot", map[string]interface{}{}, &snap)
	if snap.Seq != 1 {
		t.Errorf("snapshot seq: got %d", snap.Seq)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := New(nil, nil, nil)

	tests := []struct {
		name string
		tool string
		args interface{}
	}{
		{"unknown tool", "image_load", map[string]interface{}{}},
		{"bad resize mode", "highlights_build", map[string]interface{}{
			"frame": portraitFrame, "viewport": map[string]float64{"width": 1, "height": 1},
			"barcodes": []interface{}{}, "resize_mode": "zoom",
		}},
		{"bad platform", "transform_point", map[string]interface{}{
			"points": []interface{}{}, "frame": portraitFrame,
			"viewport": map[string]float64{"width": 1, "height": 1}, "platform": "symbian",
		}},
		{"negative viewport", "session_set_viewport", map[string]float64{"width": -1, "height": 10}},
		{"negative fuzzy", "session_set_viewport", map[string]float64{"width": 1, "height": 1, "fuzzy_distance": -2}},
		{"wrong argument type", "session_tap", map[string]string{"x": "one"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := rawCall(t, s, tt.tool, tt.args)
			if resp.Error == nil {
				t.Fatal("expected error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(nil, nil, nil)
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      7,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("expected -32602, got %+v", resp.Error)
	}
}
