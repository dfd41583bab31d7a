package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Inspection
		{
			Name:        "image_info",
			Description: "Decode an image or PSD file and return its dimensions, format and whether it carries an alpha channel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "template_analyze",
			Description: "Infer the safe band of a template: the vertical space between its printed header and footer where a product may be placed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the template image"),
					"strategy": map[string]interface{}{
						"type":        "string",
						"description": "Analysis strategy. Defaults to the configured one.",
						"enum":        []string{"luminance", "text"},
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "profiles_list",
			Description: "List the configured compositing profiles and the default profile name.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "ocr_status",
			Description: "Report whether Tesseract OCR is available for the text analysis strategy.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Processing
		{
			Name:        "product_convert",
			Description: "Flatten a PSD or raster product image to a PNG, optionally making its near-white background transparent.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":       stringProp("Absolute path to the source file"),
					"output_dir": stringProp("Directory for the PNG. Defaults to the configured convert directory."),
					"matte": map[string]interface{}{
						"type":        "boolean",
						"description": "Make near-white pixels transparent. Default true",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "composite_apply",
			Description: "Composite one product onto a template using a profile and write the result. Returns the placement, any warnings and optionally a base64 preview.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"product_path":  stringProp("Absolute path to the product image or PSD"),
					"template_path": stringProp("Absolute path to the template image"),
					"profile":       stringProp("Profile name. Defaults to the configured default profile."),
					"output_dir":    stringProp("Output directory. Defaults to the configured output directory."),
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Override the profile's output format",
						"enum":        []string{"jpeg", "png"},
					},
					"matte": map[string]interface{}{
						"type":        "boolean",
						"description": "Override the profile's matte setting",
					},
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the encoded output as base64. Default false",
						"default":     false,
					},
				},
				"required": []string{"product_path", "template_path"},
			},
		},
		{
			Name:        "composite_batch",
			Description: "Composite many products onto one template concurrently. A failing product does not stop the others; the report lists every outcome.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"product_paths": map[string]interface{}{
						"type":        "array",
						"description": "Absolute paths to the product images",
						"items":       map[string]interface{}{"type": "string"},
					},
					"template_path": stringProp("Absolute path to the template image"),
					"profile":       stringProp("Profile name. Defaults to the configured default profile."),
					"output_dir":    stringProp("Output directory. Defaults to the configured output directory."),
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Concurrent jobs. Default from configuration, 0 means one per CPU",
						"minimum":     0,
					},
				},
				"required": []string{"product_paths", "template_path"},
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
