package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pkg.jsn.cam/bulkgen/internal/verify"
	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
)

var errVerificationFailed = errors.New("verification failed")

func newVerifyCmd(a *app) *cobra.Command {
	var (
		authors int
		tables  []string
	)

	cmd := &cobra.Command{
		Use:   "verify [dir]",
		Short: "Check generated files for structural consistency",
		Long: `Re-reads the CSV files of a run and checks headers, row counts against the
manifest, id bijections between users, addresses and cards, role
assignments, congress date order, distinct authors and id ranges.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := outputDir(args)
			if err != nil {
				return err
			}

			opts := verify.Options{AuthorsPerArticle: authors, Logger: a.log}
			for _, name := range tables {
				t, err := bulkgen.LookupTable(name)
				if err != nil {
					return err
				}
				opts.Tables = append(opts.Tables, t)
			}

			report, err := verify.Dir(dir, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, v := range report.Violations {
				fmt.Fprintln(out, v)
			}
			if hidden := report.ViolationCount - len(report.Violations); hidden > 0 {
				fmt.Fprintf(out, "... and %d more\n", hidden)
			}
			if !report.OK() {
				return fmt.Errorf("%w: %d violations in %s", errVerificationFailed, report.ViolationCount, dir)
			}
			fmt.Fprintf(out, "%s: ok (%d tables)\n", dir, len(report.Rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&authors, "authors-per-article", 0, "Expected authors per article (default: from manifest)")
	cmd.Flags().StringSliceVar(&tables, "table", nil, "Report only violations in these tables (repeatable)")
	return cmd
}
