package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pkg.jsn.cam/bulkgen/internal/config"
	"pkg.jsn.cam/bulkgen/internal/manifest"
	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
)

func newInspectCmd(a *app) *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "inspect [dir]",
		Short: "Show the manifest of a previous run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := outputDir(args)
			if err != nil {
				return err
			}

			m, err := manifest.Open(dir)
			if err != nil {
				return err
			}
			defer m.Close()
			a.log.Debug("opened manifest", zap.String("dir", dir))

			run, err := m.Run()
			if err != nil {
				return err
			}
			tables, err := manifestTables(m, table)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			status := "complete"
			if !run.Complete() {
				status = "incomplete"
			}
			fmt.Fprintf(out, "Run in %s (%s)\n", dir, status)
			fmt.Fprintf(out, "  Format:    %s (written by bulkgen %s)\n", run.FormatVersion, run.BinaryVersion)
			fmt.Fprintf(out, "  Seed:      %d\n", run.Config.Seed)
			fmt.Fprintf(out, "  Reference: %s\n", run.ReferenceTime.Format(time.RFC3339))
			fmt.Fprintf(out, "  Started:   %s (%s)\n", run.StartedAt.Format(time.RFC3339), humanize.Time(run.StartedAt))
			if run.Complete() {
				fmt.Fprintf(out, "  Took:      %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
			}

			var rows, size int64
			fmt.Fprintln(out)
			for _, t := range tables {
				fmt.Fprintf(out, "  %-22s %12s rows %10s  max id %s\n",
					t.File, humanize.Comma(t.Rows), humanize.Bytes(uint64(t.Bytes)), humanize.Comma(t.MaxID))
				rows += t.Rows
				size += t.Bytes
			}
			if table == "" {
				fmt.Fprintf(out, "  %-22s %12s rows %10s\n", "total", humanize.Comma(rows), humanize.Bytes(uint64(size)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "Show only this table (e.g. tb_review)")
	return cmd
}

// manifestTables returns every recorded table, or just the named one.
func manifestTables(m *manifest.Manifest, name string) ([]manifest.TableStats, error) {
	if name == "" {
		return m.Tables()
	}
	t, err := bulkgen.LookupTable(name)
	if err != nil {
		return nil, err
	}
	stats, ok, err := m.Table(t.Name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s was not written by this run", t.File())
	}
	return []manifest.TableStats{stats}, nil
}

// outputDir returns the directory argument or the configured output directory.
func outputDir(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.OutDir, nil
}
