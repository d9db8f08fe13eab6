package cmd

import (
	"context"
	"fmt"
	"strings"
)

var (
	version = "0.1.0-dev"
	commit  = ""
	date    = ""
)

func VersionString() string {
	v := strings.TrimSpace(version)
	if v == "" {
		v = "dev"
	}

	metadata := make([]string, 0, 2)
	if c := strings.TrimSpace(commit); c != "" {
		metadata = append(metadata, c)
	}
	if d := strings.TrimSpace(date); d != "" {
		metadata = append(metadata, d)
	}

	if len(metadata) == 0 {
		return "docxmark " + v
	}
	return fmt.Sprintf("docxmark %s (%s)", v, strings.Join(metadata, " "))
}

type VersionCmd struct{}

func (c *VersionCmd) Run(ctx context.Context, std streams) error {
	_, err := fmt.Fprintln(std.Out, VersionString())
	return err
}
