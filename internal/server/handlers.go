package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/product-compositor/internal/compose"
	"github.com/ironsheep/product-compositor/internal/config"
	"github.com/ironsheep/product-compositor/internal/imaging"
	"github.com/ironsheep/product-compositor/internal/layout"
	"github.com/ironsheep/product-compositor/internal/ocr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "composite_apply").
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
// The error message is the short compositing failure summary; data holds
// the full error.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		var argErr argumentError
		if errors.As(err, &argErr) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		s.log.Warn("mcp: tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed: "+compose.Summary(err), err.Error())
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Inspection
	case "image_info":
		return s.handleImageInfo(args)
	case "template_analyze":
		return s.handleTemplateAnalyze(args)
	case "profiles_list":
		return s.handleProfilesList()
	case "ocr_status":
		return ocr.GetInfo(), nil

	// Processing
	case "product_convert":
		return s.handleProductConvert(args)
	case "composite_apply":
		return s.handleCompositeApply(args)
	case "composite_batch":
		return s.handleCompositeBatch(ctx, args)

	default:
		return nil, argumentError(fmt.Sprintf("unknown tool: %s", name))
	}
}

// argumentError marks a malformed tool call, reported as -32602.
type argumentError string

func (e argumentError) Error() string { return string(e) }

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return argumentError(err.Error())
	}
	return nil
}

func required(name, value string) error {
	if value == "" {
		return argumentError(name + " is required")
	}
	return nil
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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Inspection Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := required("path", a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(a.Path)
}

type templateAnalyzeArgs struct {
	Path     string `json:"path"`
	Strategy string `json:"strategy"`
}

// TemplateAnalysis is the template_analyze result.
type TemplateAnalysis struct {
	Path     string          `json:"path"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Analysis layout.Analysis `json:"analysis"`
	Degraded bool            `json:"degraded"`
}

func (s *Server) handleTemplateAnalyze(args json.RawMessage) (interface{}, error) {
	var a templateAnalyzeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := required("path", a.Path); err != nil {
		return nil, err
	}

	comp := s.comp
	if a.Strategy != "" && a.Strategy != s.cfg.Analyze.Strategy {
		cfg := *s.cfg
		cfg.Analyze.Strategy = a.Strategy
		opts, err := cfg.CompositorOptions(s.log, s.cache)
		if err != nil {
			return nil, argumentError(err.Error())
		}
		comp = compose.New(opts)
	}

	analysis, size, err := comp.AnalyzeTemplate(a.Path)
	if err != nil {
		return nil, err
	}
	return &TemplateAnalysis{
		Path:     a.Path,
		Width:    size.X,
		Height:   size.Y,
		Analysis: analysis,
		Degraded: analysis.Degraded(),
	}, nil
}

// ProfileList is the profiles_list result.
type ProfileList struct {
	Default  string                    `json:"default"`
	Profiles map[string]config.Profile `json:"profiles"`
}

func (s *Server) handleProfilesList() (interface{}, error) {
	return &ProfileList{
		Default:  s.cfg.DefaultProfile,
		Profiles: s.cfg.Profiles,
	}, nil
}

// === Processing Handlers ===

type productConvertArgs struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir"`
	Matte     *bool  `json:"matte"`
}

func (s *Server) handleProductConvert(args json.RawMessage) (interface{}, error) {
	var a productConvertArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := required("path", a.Path); err != nil {
		return nil, err
	}
	if a.OutputDir == "" {
		a.OutputDir = s.cfg.Output.ConvertDir
	}

	job := compose.ConvertJob{
		SourcePath: a.Path,
		OutputDir:  a.OutputDir,
		Matte:      true,
	}
	if a.Matte != nil {
		job.Matte = *a.Matte
	}
	return s.comp.Convert(job)
}

type compositeApplyArgs struct {
	ProductPath  string `json:"product_path"`
	TemplatePath string `json:"template_path"`
	Profile      string `json:"profile"`
	OutputDir    string `json:"output_dir"`
	Format       string `json:"format"`
	Matte        *bool  `json:"matte"`
	Preview      bool   `json:"preview"`
}

// CompositeResult is the composite_apply result.
type CompositeResult struct {
	*compose.Result
	Preview *imaging.Preview `json:"preview,omitempty"`
}

func (s *Server) handleCompositeApply(args json.RawMessage) (interface{}, error) {
	var a compositeApplyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := required("product_path", a.ProductPath); err != nil {
		return nil, err
	}
	if err := required("template_path", a.TemplatePath); err != nil {
		return nil, err
	}

	job, err := s.job(a.Profile, a.ProductPath, a.TemplatePath, a.OutputDir)
	if err != nil {
		return nil, err
	}
	if a.Format != "" {
		f, err := imaging.ParseFormat(a.Format)
		if err != nil {
			return nil, argumentError(err.Error())
		}
		job.Format = f
	}
	if a.Matte != nil {
		job.Matte = *a.Matte
	}
	job.KeepBytes = a.Preview

	res, err := s.comp.Composite(job)
	if err != nil {
		return nil, err
	}
	return &CompositeResult{Result: res, Preview: res.Preview()}, nil
}

type compositeBatchArgs struct {
	ProductPaths []string `json:"product_paths"`
	TemplatePath string   `json:"template_path"`
	Profile      string   `json:"profile"`
	OutputDir    string   `json:"output_dir"`
	Workers      *int     `json:"workers"`
}

func (s *Server) handleCompositeBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a compositeBatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.ProductPaths) == 0 {
		return nil, argumentError("product_paths must list at least one product")
	}
	if err := required("template_path", a.TemplatePath); err != nil {
		return nil, err
	}

	workers := s.cfg.Batch.Workers
	if a.Workers != nil {
		if *a.Workers < 0 {
			return nil, argumentError("workers must be >= 0")
		}
		workers = *a.Workers
	}

	jobs := make([]compose.Job, 0, len(a.ProductPaths))
	for _, product := range a.ProductPaths {
		job, err := s.job(a.Profile, product, a.TemplatePath, a.OutputDir)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return s.comp.RunBatch(ctx, jobs, workers), nil
}

// job builds a composite job from a profile name, falling back to the
// configured default profile and output directory.
func (s *Server) job(profile, product, template, outputDir string) (compose.Job, error) {
	if profile == "" {
		profile = s.cfg.DefaultProfile
	}
	p, err := s.cfg.Lookup(profile)
	if err != nil {
		return compose.Job{}, argumentError(err.Error())
	}
	if outputDir == "" {
		outputDir = s.cfg.Output.Dir
	}
	return p.Job(product, template, outputDir), nil
}
