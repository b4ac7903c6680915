package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"pkg.jsn.cam/bulkgen/internal/config"
	"pkg.jsn.cam/bulkgen/internal/pipeline"
)

type generateFlags struct {
	cfg      config.Config
	now      string
	progress bool
	dryRun   bool
}

func newGenerateCmd(a *app) *cobra.Command {
	flags := generateFlags{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate every table into the output directory",
		Long: `Generates the ten CSV files and a run manifest. Defaults are compiled in;
BULKGEN_* environment variables (or a .env file) override them, and flags
override both. Existing output in the directory is overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, &flags)
		},
	}

	f := cmd.Flags()
	d := &flags.cfg
	f.StringVarP(&d.OutDir, "out", "o", d.OutDir, "Output directory")
	f.IntVar(&d.Users, "users", d.Users, "Number of users (also addresses and cards)")
	f.IntVar(&d.Congresses, "congresses", d.Congresses, "Number of congresses")
	f.IntVar(&d.Articles, "articles", d.Articles, "Number of articles")
	f.IntVar(&d.ReviewsPerArticle, "reviews-per-article", d.ReviewsPerArticle, "Reviews generated for each article")
	f.IntVar(&d.AuthorsPerArticle, "authors-per-article", d.AuthorsPerArticle, "Distinct authors per article (capped at the user count)")
	f.Float64Var(&d.EvaluationRatio, "evaluation-ratio", d.EvaluationRatio, "Fraction of articles that get an evaluation")
	f.Float64Var(&d.ArticleBodyKB, "body-kb", d.ArticleBodyKB, "Article body size in KB (fractions allowed)")
	f.Uint64Var(&d.Seed, "seed", d.Seed, "Random seed")
	f.IntVar(&d.LookbackDays, "lookback-days", d.LookbackDays, "How far back random dates may fall")
	f.Int64Var(&d.ProgressEvery, "progress-every", d.ProgressEvery, "Log progress every N rows")
	f.StringVar(&flags.now, "now", "", "Reference time for generated dates (RFC3339, default current time)")
	f.BoolVar(&flags.progress, "progress", false, "Draw a progress bar per table")
	f.BoolVar(&flags.dryRun, "dry-run", false, "Print the plan without writing anything")

	return cmd
}

// applyFlags copies the flags the user actually set onto cfg.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config, set config.Config) {
	overrides := map[string]func(){
		"out":                 func() { cfg.OutDir = set.OutDir },
		"users":               func() { cfg.Users = set.Users },
		"congresses":          func() { cfg.Congresses = set.Congresses },
		"articles":            func() { cfg.Articles = set.Articles },
		"reviews-per-article": func() { cfg.ReviewsPerArticle = set.ReviewsPerArticle },
		"authors-per-article": func() { cfg.AuthorsPerArticle = set.AuthorsPerArticle },
		"evaluation-ratio":    func() { cfg.EvaluationRatio = set.EvaluationRatio },
		"body-kb":             func() { cfg.ArticleBodyKB = set.ArticleBodyKB },
		"seed":                func() { cfg.Seed = set.Seed },
		"lookback-days":       func() { cfg.LookbackDays = set.LookbackDays },
		"progress-every":      func() { cfg.ProgressEvery = set.ProgressEvery },
	}
	for name, apply := range overrides {
		if fs.Changed(name) {
			apply()
		}
	}
}

func runGenerate(cmd *cobra.Command, a *app, flags *generateFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd.Flags(), &cfg, flags.cfg)

	opts := []pipeline.Option{pipeline.WithLogger(a.log)}
	if flags.now != "" {
		now, err := time.Parse(time.RFC3339, flags.now)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
		opts = append(opts, pipeline.WithNow(now))
	}
	if flags.progress {
		opts = append(opts, pipeline.WithReporter(
			pipeline.NewBarReporter(cmd.ErrOrStderr(), pipeline.NewLogReporter(a.log)),
		))
	}

	p, err := pipeline.New(cfg, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.dryRun {
		printPlan(out, cfg, p.Plan())
		return nil
	}

	summary, err := p.Run()
	if err != nil {
		a.log.Error("generation failed", zap.Error(err))
		return err
	}

	fmt.Fprintf(out, "Wrote %d tables to %s\n", len(summary.Tables), summary.OutDir)
	fmt.Fprintf(out, "  Rows:    %s\n", humanize.Comma(summary.Rows))
	fmt.Fprintf(out, "  Size:    %s\n", humanize.Bytes(uint64(summary.Bytes)))
	fmt.Fprintf(out, "  Elapsed: %s\n", summary.Elapsed.Round(time.Millisecond))
	return nil
}

func printPlan(w io.Writer, cfg config.Config, plan []pipeline.PlannedTable) {
	fmt.Fprintf(w, "Output directory: %s (seed %d)\n", cfg.OutDir, cfg.Seed)
	for i, step := range plan {
		rows := "varies"
		if step.ExpectedRows != pipeline.UnknownRows {
			rows = humanize.Comma(step.ExpectedRows)
		}
		fmt.Fprintf(w, "  %2d. %-22s %12s rows\n", i+1, step.Table.File(), rows)
	}
}
