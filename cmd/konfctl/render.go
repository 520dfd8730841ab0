package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/konflabs/konf-server/internal/encode"
	"github.com/konflabs/konf-server/internal/graph"
	"github.com/konflabs/konf-server/internal/resolver"
	"github.com/konflabs/konf-server/internal/source"
)

func newRenderCmd() *cobra.Command {
	var folder, name, format string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one document from a local folder of configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, folder, name, format)
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", ".", "root folder to load documents from")
	cmd.Flags().StringVarP(&name, "name", "n", "", "logical name of the document to render")
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "output format: yaml|json|env|properties|toml|docker_env")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runRender(cmd *cobra.Command, folder, name, format string) error {
	ctx := context.Background()
	src := source.NewFilesystemSource(folder)

	g, warnings, err := graph.Load(ctx, src, "", 0)
	if err != nil {
		return fmt.Errorf("load documents from %s: %w", folder, err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Name, w.Message)
	}

	val, diag, err := resolver.Resolve(g, name)
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	for _, w := range diag.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Kind, w.Path)
	}

	body, err := encode.Encode(encode.Format(format), val)
	if err != nil {
		return fmt.Errorf("encode as %s: %w", format, err)
	}

	_, err = cmd.OutOrStdout().Write(body)
	return err
}
