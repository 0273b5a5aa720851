package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taigrr/strand/pkg/passes"
	"github.com/taigrr/strand/pkg/shading"
)

func passesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passes",
		Short: "List the pass names accepted by --passes and scene files",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			for _, p := range shading.AllPasses() {
				fmt.Fprintf(out, "%-28s %s\n", p, passes.FileName(p))
			}
		},
	}
}
