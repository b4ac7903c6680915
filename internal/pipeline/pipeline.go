// Package pipeline generates every table of the schema in dependency order.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/zap"

	"pkg.jsn.cam/bulkgen/internal/config"
	"pkg.jsn.cam/bulkgen/internal/manifest"
	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
	"pkg.jsn.cam/bulkgen/pkg/csvout"
	"pkg.jsn.cam/bulkgen/pkg/generator"
)

// Pipeline runs one generation pass. It is not safe to Run twice
// concurrently on the same output directory.
type Pipeline struct {
	cfg      config.Config
	log      *zap.Logger
	reporter Reporter
	vocab    *generator.Vocabulary
	now      time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithReporter replaces the default log reporter.
func WithReporter(r Reporter) Option {
	return func(p *Pipeline) {
		p.reporter = r
	}
}

// WithVocabulary replaces the default word lists.
func WithVocabulary(v *generator.Vocabulary) Option {
	return func(p *Pipeline) {
		p.vocab = v
	}
}

// WithNow fixes the reference time dates are generated from. Together with
// the seed it makes a run reproducible.
func WithNow(now time.Time) Option {
	return func(p *Pipeline) {
		p.now = now.UTC()
	}
}

// New validates cfg and creates a Pipeline.
func New(cfg config.Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:   cfg,
		log:   zap.NewNop(),
		vocab: generator.DefaultVocabulary(),
		now:   time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.reporter == nil {
		p.reporter = NewLogReporter(p.log)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := p.vocab.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", bulkgen.ErrInvalidConfig, err)
	}
	return p, nil
}

// PlannedTable is one step of the plan.
type PlannedTable struct {
	Table        bulkgen.Table
	ExpectedRows int64 // UnknownRows when decided by coin flips
}

// Plan lists the tables in generation order with their expected row counts.
func (p *Pipeline) Plan() []PlannedTable {
	c := p.cfg
	expected := map[string]int64{
		bulkgen.AddressTable.Name:       int64(c.Users),
		bulkgen.CardTable.Name:          int64(c.Users),
		bulkgen.RoleTable.Name:          int64(len(p.vocab.Authorities)),
		bulkgen.CongressTable.Name:      int64(c.Congresses),
		bulkgen.UserTable.Name:          int64(c.Users),
		bulkgen.UserRoleTable.Name:      UnknownRows,
		bulkgen.ArticleTable.Name:       int64(c.Articles),
		bulkgen.ArticlesUsersTable.Name: int64(c.Articles) * int64(min(c.AuthorsPerArticle, c.Users)),
		bulkgen.EvaluationTable.Name:    int64(generator.EvaluationCount(c.Articles, c.EvaluationRatio)),
		bulkgen.ReviewTable.Name:        int64(c.Articles) * int64(c.ReviewsPerArticle),
	}

	plan := make([]PlannedTable, 0, len(bulkgen.Tables))
	for _, t := range bulkgen.Tables {
		plan = append(plan, PlannedTable{Table: t, ExpectedRows: expected[t.Name]})
	}
	return plan
}

// Summary describes a finished run.
type Summary struct {
	OutDir  string
	Tables  []manifest.TableStats
	Rows    int64
	Bytes   int64
	Elapsed time.Duration
}

// step produces the rows of one table and the highest id it assigns.
type step func(r *run) (rows bulkgen.Rows, maxID int64)

// steps pairs with bulkgen.Tables: each step only reads ids recorded by the
// steps before it.
var steps = map[string]step{
	bulkgen.AddressTable.Name: func(r *run) (bulkgen.Rows, int64) {
		return r.gen.Addresses(r.cfg.Users), int64(r.cfg.Users)
	},
	bulkgen.CardTable.Name: func(r *run) (bulkgen.Rows, int64) {
		return r.gen.Cards(r.cfg.Users), int64(r.cfg.Users)
	},
	bulkgen.RoleTable.Name: func(r *run) (bulkgen.Rows, int64) {
		return r.gen.Roles(), int64(len(r.gen.Vocabulary().Authorities))
	},
	bulkgen.CongressTable.Name: func(r *run) (bulkgen.Rows, int64) {
		return r.gen.Congresses(r.cfg.Congresses), int64(r.cfg.Congresses)
	},
	bulkgen.UserTable.Name: func(r *run) (bulkgen.Rows, int64) {
		return r.gen.Users(r.cfg.Users, r.maxID(bulkgen.CongressTable)), int64(r.cfg.Users)
	},
	bulkgen.UserRoleTable.Name: func(r *run) (bulkgen.Rows, int64) {
		return r.gen.UserRoles(r.maxID(bulkgen.UserTable)), 0
	},
	bulkgen.ArticleTable.Name: func(r *run) (bulkgen.Rows, int64) {
		return r.gen.Articles(r.cfg.Articles, r.maxID(bulkgen.CongressTable)), int64(r.cfg.Articles)
	},
	bulkgen.ArticlesUsersTable.Name: func(r *run) (bulkgen.Rows, int64) {
		return r.gen.ArticlesUsers(r.maxID(bulkgen.ArticleTable), r.maxID(bulkgen.UserTable), r.cfg.AuthorsPerArticle), 0
	},
	bulkgen.EvaluationTable.Name: func(r *run) (bulkgen.Rows, int64) {
		evals := r.gen.Evaluations(r.maxID(bulkgen.ArticleTable), r.cfg.EvaluationRatio)
		return slices.Values(evals), int64(len(evals))
	},
	bulkgen.ReviewTable.Name: func(r *run) (bulkgen.Rows, int64) {
		articles := r.maxID(bulkgen.ArticleTable)
		rows := r.gen.Reviews(articles, r.cfg.ReviewsPerArticle, r.maxID(bulkgen.UserTable), r.maxID(bulkgen.EvaluationTable))
		return rows, int64(articles) * int64(r.cfg.ReviewsPerArticle)
	},
}

// run is the state of one Run call.
type run struct {
	*Pipeline
	gen      *generator.Generator
	manifest *manifest.Manifest
	maxIDs   map[string]int64
}

func (r *run) maxID(t bulkgen.Table) int {
	return int(r.maxIDs[t.Name])
}

// Run writes every table into the output directory, overwriting previous
// output. The first error aborts the run; tables finished before it stay on
// disk and in the manifest.
func (p *Pipeline) Run() (*Summary, error) {
	started := time.Now()
	dir := p.cfg.OutDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", bulkgen.ErrCreateOutputDir, dir, err)
	}

	m, err := manifest.Create(dir)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	info := manifest.RunInfo{
		BinaryVersion: bulkgen.Version,
		ReferenceTime: p.now,
		StartedAt:     started.UTC(),
		Config:        p.cfg,
	}
	if err := m.PutRun(info); err != nil {
		return nil, err
	}

	r := &run{
		Pipeline: p,
		gen: generator.NewSeeded(p.cfg.Seed,
			generator.WithNow(p.now),
			generator.WithVocabulary(p.vocab),
			generator.WithLookbackDays(p.cfg.LookbackDays),
			generator.WithBodyKB(p.cfg.ArticleBodyKB),
		),
		manifest: m,
		maxIDs:   make(map[string]int64, len(bulkgen.Tables)),
	}

	p.log.Info("starting generation",
		zap.String("out_dir", dir),
		zap.Uint64("seed", p.cfg.Seed),
		zap.Time("reference_time", p.now),
	)

	summary := &Summary{OutDir: dir}
	for order, planned := range p.Plan() {
		stats, err := r.writeTable(order, planned)
		if err != nil {
			return summary, err
		}
		summary.Tables = append(summary.Tables, stats)
		summary.Rows += stats.Rows
		summary.Bytes += stats.Bytes
	}

	info.FinishedAt = time.Now().UTC()
	if err := m.PutRun(info); err != nil {
		return summary, err
	}
	summary.Elapsed = time.Since(started)
	return summary, nil
}

func (r *run) writeTable(order int, planned PlannedTable) (manifest.TableStats, error) {
	t := planned.Table
	rows, maxID := steps[t.Name](r)

	r.reporter.TableStarted(t, planned.ExpectedRows)
	res, err := csvout.WriteTable(filepath.Join(r.cfg.OutDir, t.File()), t.Header, rows,
		csvout.WithProgressInterval(r.cfg.ProgressEvery),
		csvout.WithProgress(func(n int64) { r.reporter.TableProgress(t, n) }),
	)
	if err != nil {
		return manifest.TableStats{}, fmt.Errorf("%s: %w", t.Name, err)
	}
	if planned.ExpectedRows != UnknownRows && res.Rows != planned.ExpectedRows {
		r.log.Warn("row count differs from plan",
			zap.String("table", t.Name),
			zap.Int64("rows", res.Rows),
			zap.Int64("expected", planned.ExpectedRows),
		)
	}

	r.maxIDs[t.Name] = maxID
	stats := manifest.TableStats{
		Order: order,
		Name:  t.Name,
		File:  t.File(),
		Rows:  res.Rows,
		Bytes: res.Bytes,
		MaxID: maxID,
	}
	if err := r.manifest.PutTable(stats); err != nil {
		return stats, err
	}
	r.reporter.TableFinished(t, stats)
	return stats, nil
}
