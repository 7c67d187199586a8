package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pointSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "number"},
			"y": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x", "y"},
	}
}

func pointListSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items":       pointSchema("A point"),
	}
}

func sizeSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"width":  map[string]interface{}{"type": "number"},
			"height": map[string]interface{}{"type": "number"},
		},
		"required": []string{"width", "height"},
	}
}

func frameSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Camera frame the detections came from",
		"properties": map[string]interface{}{
			"width":       map[string]interface{}{"type": "number"},
			"height":      map[string]interface{}{"type": "number"},
			"orientation": orientationSchema,
		},
		"required": []string{"width", "height", "orientation"},
	}
}

func barcodesSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Detector output in frame coordinates",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"value":        map[string]interface{}{"type": []string{"string", "null"}},
				"type":         map[string]interface{}{"type": "string", "description": "Symbology, e.g. qr, ean-13"},
				"cornerPoints": pointListSchema("Polygon corners in detector order"),
				"native":       map[string]interface{}{"description": "Opaque platform data, passed through"},
			},
			"required": []string{"cornerPoints"},
		},
	}
}

func highlightsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Highlights in display coordinates, as returned by highlights_build",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"key":          map[string]interface{}{"type": "string"},
				"value":        map[string]interface{}{"type": []string{"string", "null"}},
				"cornerPoints": pointListSchema("Polygon corners"),
			},
			"required": []string{"cornerPoints"},
		},
	}
}

var (
	orientationSchema = map[string]interface{}{
		"type": "string",
		"enum": []string{"portrait", "portrait-upside-down", "landscape-left", "landscape-right"},
	}
	resizeModeSchema = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"cover", "contain", "stretch"},
		"description": "How the frame is fitted to the viewport. Defaults to the server setting",
	}
	platformSchema = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"ios", "android"},
		"description": "Axis convention of the detector. Defaults to the server setting",
	}
	fuzzySchema = map[string]interface{}{
		"type":        "number",
		"description": "Near-miss tolerance in display units. Defaults to the server setting",
	}
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Geometry
		{
			Name:        "transform_point",
			Description: "Map points from camera frame coordinates to display coordinates for a given viewport, orientation and resize mode.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points":      pointListSchema("Points in frame coordinates"),
					"frame":       frameSchema(),
					"viewport":    sizeSchema("Display layout size"),
					"resize_mode": resizeModeSchema,
					"platform":    platformSchema,
				},
				"required": []string{"points", "frame", "viewport"},
			},
		},
		{
			Name:        "bounding_box",
			Description: "Compute the axis-aligned bounding box of a set of points.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points": pointListSchema("At least one point"),
				},
				"required": []string{"points"},
			},
		},

		// Highlights
		{
			Name:        "highlights_build",
			Description: "Convert detector output into display-space highlights. Detections with fewer than three corners or non-finite coordinates are dropped and reported as warnings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"frame":       frameSchema(),
					"viewport":    sizeSchema("Display layout size; 0x0 yields no highlights"),
					"barcodes":    barcodesSchema(),
					"resize_mode": resizeModeSchema,
					"platform":    platformSchema,
				},
				"required": []string{"frame", "viewport", "barcodes"},
			},
		},
		{
			Name:        "highlights_hit_test",
			Description: "Find the highlight a tap selects. A tap inside a polygon wins; otherwise the nearest outline within the fuzzy distance is chosen.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tap":            pointSchema("Tap in display coordinates"),
					"highlights":     highlightsSchema(),
					"fuzzy_distance": fuzzySchema,
				},
				"required": []string{"tap", "highlights"},
			},
		},
		{
			Name:        "highlights_render",
			Description: "Render a camera frame as it appears in the viewport with the highlights outlined, returned as base64-encoded PNG. Use this to check visually that outlines line up with the codes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        map[string]interface{}{"type": "string", "description": "Absolute path to the frame image"},
					"orientation": orientationSchema,
					"viewport":    sizeSchema("Display layout size"),
					"barcodes":    barcodesSchema(),
					"resize_mode": resizeModeSchema,
					"platform":    platformSchema,
					"stroke_color": map[string]interface{}{
						"type":        "string",
						"description": "Outline colour as #RRGGBB. Omit to colour each highlight differently",
					},
					"stroke_width": map[string]interface{}{"type": "number", "default": 4},
					"dim": map[string]interface{}{
						"type":        "number",
						"description": "Darken the frame, 0 to 1",
						"default":     0,
					},
					"labels":         map[string]interface{}{"type": "boolean", "default": true},
					"tap":            pointSchema("Optional tap to mark"),
					"fuzzy_distance": fuzzySchema,
					"grid_spacing":   map[string]interface{}{"type": "integer", "description": "Draw a grid every N display units"},
				},
				"required": []string{"path", "orientation", "viewport", "barcodes"},
			},
		},

		// Session
		{
			Name:        "session_publish_frame",
			Description: "Feed one detector frame into the live session. The highlights replace the previous frame's.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"frame":    frameSchema(),
					"viewport": sizeSchema("Optional layout override for this frame"),
					"barcodes": barcodesSchema(),
				},
				"required": []string{"frame", "barcodes"},
			},
		},
		{
			Name:        "session_set_viewport",
			Description: "Set the live session's display layout and, optionally, its tap tolerance.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width":          map[string]interface{}{"type": "number"},
					"height":         map[string]interface{}{"type": "number"},
					"fuzzy_distance": fuzzySchema,
				},
				"required": []string{"width", "height"},
			},
		},
		{
			Name:        "session_tap",
			Description: "Hit-test a tap against the most recent published highlights.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{"type": "number"},
					"y": map[string]interface{}{"type": "number"},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "session_snapshot",
			Description: "Return the most recent published snapshot.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
