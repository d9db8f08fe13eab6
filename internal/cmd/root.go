// Package cmd implements the docxmark command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/tsawler/docxmark/internal/config"
)

type RootFlags struct {
	Config  string `help:"Config file (.toml, .yaml or .yml); defaults to ./docxmark.toml when present" default:"${config}"`
	Verbose bool   `help:"Enable verbose logging" short:"v"`
}

type CLI struct {
	RootFlags `embed:""`

	HTML          HTMLCmd          `cmd:"" name:"html" help:"Convert a .docx file to HTML"`
	Markdown      MarkdownCmd      `cmd:"" name:"markdown" aliases:"md" help:"Convert a .docx file to Markdown"`
	Text          TextCmd          `cmd:"" name:"text" aliases:"txt" help:"Extract the raw text of a .docx file"`
	EmbedStyleMap EmbedStyleMapCmd `cmd:"" name:"embed-style-map" help:"Store a style map inside a .docx file"`
	ReadStyleMap  ReadStyleMapCmd  `cmd:"" name:"read-style-map" help:"Print the style map stored inside a .docx file"`
	Serve         ServeCmd         `cmd:"" help:"Run the HTTP conversion service"`
	MCP           MCPCmd           `cmd:"" name:"mcp" help:"Serve conversion tools over MCP on stdio"`
	VersionCmd    VersionCmd       `cmd:"" name:"version" help:"Print version"`
}

// streams holds the writers commands print to.
type streams struct {
	Out io.Writer
	Err io.Writer
}

type exitPanic struct{ code int }

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the exit code for err: 0 for nil, the code of an
// ExitError, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}

// Execute parses args and runs the selected command.
func Execute(args []string) error {
	return execute(context.Background(), args, streams{Out: os.Stdout, Err: os.Stderr})
}

func execute(ctx context.Context, args []string, std streams) (err error) {
	parser, cli, err := newParser(std)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			if ep, ok := r.(exitPanic); ok {
				if ep.code == 0 {
					err = nil
					return
				}
				err = &ExitError{Code: ep.code, Err: errors.New("exited")}
				return
			}
			panic(r)
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintln(std.Err, "error:", err)
		return &ExitError{Code: 2, Err: err}
	}

	logLevel := slog.LevelWarn
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(std.Err, &slog.HandlerOptions{
		Level: logLevel,
	})))

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(&cli.RootFlags)
	kctx.Bind(std)

	err = kctx.Run()
	if err == nil {
		return nil
	}
	_, _ = fmt.Fprintln(std.Err, "error:", err)
	return err
}

func newParser(std streams) (*kong.Kong, *CLI, error) {
	vars := kong.Vars{
		"config": os.Getenv("DOCXMARK_CONFIG"),
	}

	cli := &CLI{}
	parser, err := kong.New(
		cli,
		kong.Name("docxmark"),
		kong.Description("Convert Word documents (.docx) to HTML, Markdown and plain text"),
		kong.Vars(vars),
		kong.Writers(std.Out, std.Err),
		kong.Exit(func(code int) { panic(exitPanic{code: code}) }),
	)
	if err != nil {
		return nil, nil, err
	}
	return parser, cli, nil
}

// loadConfig reads the config named by the root flags.
func loadConfig(flags *RootFlags) (config.Config, error) {
	return config.Load(flags.Config)
}
