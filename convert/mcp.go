package convert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/h1n054ur/pdf-docx-convertor/kit"
)

// RegisterMCP registers conversion tools on an MCP server.
func (b *Batch) RegisterMCP(srv *mcp.Server) {
	b.registerConvertFileTool(srv)
	b.registerConvertDirTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- convert_file ---

type convertFileReq struct {
	Source string `json:"source"`
	Output string `json:"output"`
}

func (b *Batch) registerConvertFileTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "convert_file",
		Description: "Convert one PDF to an editable DOCX, escalating to OCR when the text layer is unusable.",
		InputSchema: inputSchema(map[string]any{
			"source": map[string]any{"type": "string", "description": "Path of the source PDF"},
			"output": map[string]any{"type": "string", "description": "Path of the DOCX artifact to write"},
		}, []string{"source", "output"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*convertFileReq)
		return b.ConvertFile(ctx, r.Source, r.Output)
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r convertFileReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.Source == "" || r.Output == "" {
			return nil, fmt.Errorf("source and output are required")
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- convert_dir ---

type convertDirReq struct {
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
}

func (b *Batch) registerConvertDirTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "convert_dir",
		Description: "Convert every PDF in a directory to DOCX over a bounded worker pool, then audit the artifacts.",
		InputSchema: inputSchema(map[string]any{
			"input_dir":  map[string]any{"type": "string", "description": "Directory of source PDFs"},
			"output_dir": map[string]any{"type": "string", "description": "Directory for DOCX artifacts"},
		}, []string{"input_dir", "output_dir"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*convertDirReq)
		results, err := b.Run(ctx, r.InputDir, r.OutputDir)
		if err != nil {
			return nil, err
		}
		b.Audit(ctx, results)
		return map[string]any{"converted": len(results), "results": results}, nil
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r convertDirReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.InputDir == "" || r.OutputDir == "" {
			return nil, fmt.Errorf("input_dir and output_dir are required")
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
