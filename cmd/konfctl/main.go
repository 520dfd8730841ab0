// Package main implements konfctl, a local CLI for rendering a single
// configuration document without starting the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "konfctl",
		Short: "Render and inspect konf configuration documents locally",
	}
	root.AddCommand(newRenderCmd())
	return root
}
