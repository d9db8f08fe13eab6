package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tsawler/docxmark/internal/mcpserver"
	"github.com/tsawler/docxmark/internal/server"
)

type ServeCmd struct {
	Port string `help:"Port to listen on; overrides config and DOCXMARK_PORT"`
}

func (c *ServeCmd) Run(ctx context.Context, root *RootFlags, std streams) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if c.Port != "" {
		cfg.Port = c.Port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if root.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(std.Err, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.NewServer(log, cfg).ListenAndServe(ctx)
}

// MCPCmd serves the conversion tools to an MCP client over stdin and
// stdout. Logs go to stderr.
type MCPCmd struct{}

func (c *MCPCmd) Run(root *RootFlags) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return mcpserver.New(cfg, slog.Default(), version).ServeStdio()
}
