package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
)

// Defaults sized for roughly 1 GB of output. Article bodies dominate; tune
// DefaultArticleBodyKB to move the total.
const (
	DefaultOutDir            = "./out"
	DefaultUsers             = 900_000
	DefaultCongresses        = 10_000
	DefaultArticles          = 800_000
	DefaultReviewsPerArticle = 2
	DefaultAuthorsPerArticle = 2
	DefaultEvaluationRatio   = 0.70
	DefaultArticleBodyKB     = 6.21 * 5
	DefaultSeed              = 42
	DefaultLookbackDays      = 3650
	DefaultProgressEvery     = 100_000
)

// EnvPrefix is prepended to every environment variable, e.g. BULKGEN_USERS.
const EnvPrefix = "BULKGEN"

// Config holds the parameters of a generation run.
type Config struct {
	OutDir            string  `envconfig:"OUT_DIR" json:"out_dir"`
	Users             int     `envconfig:"USERS" json:"users"`
	Congresses        int     `envconfig:"CONGRESSES" json:"congresses"`
	Articles          int     `envconfig:"ARTICLES" json:"articles"`
	ReviewsPerArticle int     `envconfig:"REVIEWS_PER_ARTICLE" json:"reviews_per_article"`
	AuthorsPerArticle int     `envconfig:"AUTHORS_PER_ARTICLE" json:"authors_per_article"`
	EvaluationRatio   float64 `envconfig:"EVALUATION_RATIO" json:"evaluation_ratio"`
	ArticleBodyKB     float64 `envconfig:"ARTICLE_BODY_KB" json:"article_body_kb"`
	Seed              uint64  `envconfig:"SEED" json:"seed"`
	LookbackDays      int     `envconfig:"LOOKBACK_DAYS" json:"lookback_days"`
	ProgressEvery     int64   `envconfig:"PROGRESS_EVERY" json:"progress_every"`
}

// Default returns the compile-time configuration.
func Default() Config {
	return Config{
		OutDir:            DefaultOutDir,
		Users:             DefaultUsers,
		Congresses:        DefaultCongresses,
		Articles:          DefaultArticles,
		ReviewsPerArticle: DefaultReviewsPerArticle,
		AuthorsPerArticle: DefaultAuthorsPerArticle,
		EvaluationRatio:   DefaultEvaluationRatio,
		ArticleBodyKB:     DefaultArticleBodyKB,
		Seed:              DefaultSeed,
		LookbackDays:      DefaultLookbackDays,
		ProgressEvery:     DefaultProgressEvery,
	}
}

// Load returns Default() overlaid with any BULKGEN_* environment variables.
// A .env file in the working directory is read first if present. Only
// malformed values fail here; call Validate once every override is applied.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: .env: %w", bulkgen.ErrInvalidConfig, err)
	}

	c := Default()
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", bulkgen.ErrInvalidConfig, err)
	}
	return c, nil
}

// Validate rejects values the generators cannot honor. Asking for more
// authors than there are users is not an error; the sample is capped.
func (c Config) Validate() error {
	var errs []error
	if c.OutDir == "" {
		errs = append(errs, errors.New("output directory is empty"))
	}
	counts := []struct {
		name  string
		value int
	}{
		{"users", c.Users},
		{"congresses", c.Congresses},
		{"articles", c.Articles},
		{"reviews per article", c.ReviewsPerArticle},
		{"authors per article", c.AuthorsPerArticle},
		{"lookback days", c.LookbackDays},
	}
	for _, n := range counts {
		if n.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", n.name, n.value))
		}
	}
	switch {
	case !isFinite(c.EvaluationRatio):
		errs = append(errs, fmt.Errorf("evaluation ratio must be a finite number, got %v", c.EvaluationRatio))
	case c.EvaluationRatio < 0 || c.EvaluationRatio > 1:
		errs = append(errs, fmt.Errorf("evaluation ratio must be within [0, 1], got %v", c.EvaluationRatio))
	}
	switch {
	case !isFinite(c.ArticleBodyKB):
		errs = append(errs, fmt.Errorf("article body size must be a finite number, got %v", c.ArticleBodyKB))
	case c.ArticleBodyKB < 0:
		errs = append(errs, fmt.Errorf("article body size must not be negative, got %v", c.ArticleBodyKB))
	}
	if c.ProgressEvery <= 0 {
		errs = append(errs, fmt.Errorf("progress interval must be positive, got %d", c.ProgressEvery))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", bulkgen.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
