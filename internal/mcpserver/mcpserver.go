// Package mcpserver exposes docxmark conversions as Model Context Protocol
// tools over stdio.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tsawler/docxmark"
	"github.com/tsawler/docxmark/internal/config"
	"github.com/tsawler/docxmark/result"
)

// Server identity.
const serverName = "docxmark"

// MCP tool parameter keys, shared between schema definitions and argument
// extraction.
const (
	argPath     = "path"
	argStyleMap = "style_map"
)

// Server wraps an MCP server with the docxmark tools registered.
type Server struct {
	mcp *server.MCPServer
	cfg config.Config
	log *slog.Logger
}

// New creates a server whose tools convert with cfg.
func New(cfg config.Config, log *slog.Logger, version string) *Server {
	s := &Server{
		mcp: server.NewMCPServer(serverName, version),
		cfg: cfg,
		log: log,
	}
	s.registerTools()
	return s
}

// ServeStdio serves MCP requests on stdin and stdout until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// registerTools binds MCP tool definitions to their handlers.
func (s *Server) registerTools() {
	s.mcp.AddTool(conversionTool("docx_to_html",
		"Convert a Word document (.docx) to HTML. Paragraph and run styles are mapped to HTML with a style map."),
		s.handleToHTML)
	s.mcp.AddTool(conversionTool("docx_to_markdown",
		"Convert a Word document (.docx) to Markdown, keeping headings, lists, tables, links and notes."),
		s.handleToMarkdown)
	s.mcp.AddTool(conversionTool("docx_extract_text",
		"Extract the plain text of a Word document (.docx), one blank line between paragraphs."),
		s.handleExtractText)
}

func conversionTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString(argPath,
			mcp.Required(),
			mcp.Description("Absolute path to the .docx file"),
		),
		mcp.WithString(argStyleMap,
			mcp.Description("Optional style-map rules, one per line, e.g. p[style-name='Aside'] => aside:fresh"),
		),
	)
}

func (s *Server) handleToHTML(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, req, (*docxmark.Converter).ToHTML)
}

func (s *Server) handleToMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, req, (*docxmark.Converter).ToMarkdown)
}

func (s *Server) handleExtractText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, req, (*docxmark.Converter).RawText)
}

// run converts the document named in req. Conversion failures are tool
// errors, not protocol errors. Warnings follow the value as a second text
// block.
func (s *Server) run(ctx context.Context, req mcp.CallToolRequest,
	convert func(*docxmark.Converter, context.Context) (string, []result.Message, error)) (*mcp.CallToolResult, error) {
	path, ok := req.Params.Arguments[argPath].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError(argPath + " is required"), nil
	}

	conv := docxmark.Open(path)
	if styleMap, _ := req.Params.Arguments[argStyleMap].(string); styleMap != "" {
		conv = conv.StyleMap(styleMap)
	}
	conv = s.cfg.Apply(conv).Logger(s.log)

	value, messages, err := convert(conv, ctx)
	if err != nil {
		s.log.Warn("conversion failed", "tool", req.Params.Name, "path", path, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := mcp.NewToolResultText(value)
	if len(messages) > 0 {
		res.Content = append(res.Content, mcp.NewTextContent("Messages:\n"+docxmark.FormatMessages(messages)))
	}
	return res, nil
}
