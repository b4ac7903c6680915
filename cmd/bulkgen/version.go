package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bulkgen %s (manifest format %s)\n", bulkgen.Version, bulkgen.ManifestFormatVersion)
		},
	}
}
