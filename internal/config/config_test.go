package config

import (
	"errors"
	"math"
	"testing"

	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
)

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if c.Users != 900_000 || c.Articles != 800_000 || c.Congresses != 10_000 {
		t.Errorf("unexpected default counts: %+v", c)
	}
	if c.Seed != 42 {
		t.Errorf("default seed = %d, want 42", c.Seed)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir()) // keep a developer's .env out of the test
	t.Setenv("BULKGEN_USERS", "10")
	t.Setenv("BULKGEN_EVALUATION_RATIO", "0.5")
	t.Setenv("BULKGEN_SEED", "7")
	t.Setenv("BULKGEN_OUT_DIR", "/tmp/elsewhere")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Users != 10 || c.EvaluationRatio != 0.5 || c.Seed != 7 || c.OutDir != "/tmp/elsewhere" {
		t.Errorf("env overrides not applied: %+v", c)
	}
	if c.Articles != DefaultArticles {
		t.Errorf("unset variable changed Articles to %d", c.Articles)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BULKGEN_USERS", "lots")

	if _, err := Load(); !errors.Is(err, bulkgen.ErrInvalidConfig) {
		t.Errorf("Load error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_DefersRangeChecks(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BULKGEN_USERS", "-5")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := c.Validate(); !errors.Is(err, bulkgen.ErrInvalidConfig) {
		t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
	}

	c.Users = 3
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() after override = %v, want nil", err)
	}
}

func TestLoad_NonFiniteEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BULKGEN_EVALUATION_RATIO", "NaN")
	t.Setenv("BULKGEN_ARTICLE_BODY_KB", "+Inf")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := c.Validate(); !errors.Is(err, bulkgen.ErrInvalidConfig) {
		t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"default", func(*Config) {}, true},
		{"zero everything", func(c *Config) { c.Users, c.Articles, c.Congresses = 0, 0, 0 }, true},
		{"authors above users", func(c *Config) { c.Users, c.AuthorsPerArticle = 1, 5 }, true},
		{"negative users", func(c *Config) { c.Users = -1 }, false},
		{"ratio above one", func(c *Config) { c.EvaluationRatio = 1.5 }, false},
		{"negative ratio", func(c *Config) { c.EvaluationRatio = -0.1 }, false},
		{"negative body", func(c *Config) { c.ArticleBodyKB = -2 }, false},
		{"NaN ratio", func(c *Config) { c.EvaluationRatio = math.NaN() }, false},
		{"infinite ratio", func(c *Config) { c.EvaluationRatio = math.Inf(1) }, false},
		{"NaN body", func(c *Config) { c.ArticleBodyKB = math.NaN() }, false},
		{"infinite body", func(c *Config) { c.ArticleBodyKB = math.Inf(1) }, false},
		{"negative infinite body", func(c *Config) { c.ArticleBodyKB = math.Inf(-1) }, false},
		{"empty out dir", func(c *Config) { c.OutDir = "" }, false},
		{"zero progress interval", func(c *Config) { c.ProgressEvery = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.valid && !errors.Is(err, bulkgen.ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
