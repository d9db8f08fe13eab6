package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tsawler/docxmark"
)

// EmbedStyleMapCmd writes a copy of a document with a style map stored in
// it.
type EmbedStyleMapCmd struct {
	File     string `arg:"" help:"Path to the .docx file" type:"existingfile"`
	StyleMap string `arg:"" help:"File of style mapping rules to embed" type:"existingfile" name:"style-map"`
	Output   string `short:"o" required:"" help:"Path of the .docx file to write" type:"path"`
}

func (c *EmbedStyleMapCmd) Run(ctx context.Context, std streams) error {
	rules, err := os.ReadFile(c.StyleMap)
	if err != nil {
		return fmt.Errorf("reading style map: %w", err)
	}
	data, err := docxmark.Open(c.File).EmbedStyleMap(ctx, string(rules))
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", c.Output, err)
	}
	_, _ = fmt.Fprintf(std.Err, "wrote %s\n", c.Output)
	return nil
}

var errNoStyleMap = errors.New("document has no embedded style map")

// ReadStyleMapCmd prints the style map stored in a document.
type ReadStyleMapCmd struct {
	File string `arg:"" help:"Path to the .docx file" type:"existingfile"`
}

func (c *ReadStyleMapCmd) Run(ctx context.Context, std streams) error {
	styleMap, err := docxmark.Open(c.File).EmbeddedStyleMap(ctx)
	if err != nil {
		return err
	}
	if styleMap == "" {
		return &ExitError{Code: 3, Err: errNoStyleMap}
	}
	_, err = fmt.Fprintln(std.Out, styleMap)
	return err
}
