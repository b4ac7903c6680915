package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&app{log: zap.NewNop()})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateInspectVerify(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := filepath.Join(t.TempDir(), "out")

	out, err := execute(t, "generate",
		"--out", dir,
		"--users", "10",
		"--congresses", "2",
		"--articles", "5",
		"--reviews-per-article", "2",
		"--body-kb", "0.5",
		"--now", "2025-01-01T00:00:00Z",
	)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Wrote 10 tables")

	for _, tbl := range bulkgen.Tables {
		assert.FileExists(t, filepath.Join(dir, tbl.File()))
	}

	out, err = execute(t, "inspect", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "tb_review.csv")

	out, err = execute(t, "verify", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "ok (10 tables)")
}

func TestVerify_ReportsViolations(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, "generate", "--out", dir, "--users", "5", "--congresses", "1", "--articles", "3", "--body-kb", "0.1")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "tb_card.csv")))

	out, err := execute(t, "verify", dir)
	assert.ErrorIs(t, err, errVerificationFailed)
	assert.Contains(t, out, "tb_card.csv: file is missing")
}

func TestGenerate_DryRun(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := filepath.Join(t.TempDir(), "out")

	out, err := execute(t, "generate", "--dry-run", "--out", dir, "--users", "7", "--articles", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "tb_user_role.csv")
	assert.Contains(t, out, "varies")
	assert.NoDirExists(t, dir)
}

func TestGenerate_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := filepath.Join(t.TempDir(), "env-out")
	t.Setenv("BULKGEN_OUT_DIR", dir)
	t.Setenv("BULKGEN_USERS", "3")
	t.Setenv("BULKGEN_ARTICLES", "2")
	t.Setenv("BULKGEN_CONGRESSES", "1")
	t.Setenv("BULKGEN_ARTICLE_BODY_KB", "0.1")

	_, err := execute(t, "generate")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "tb_user.csv"))
	require.NoError(t, err)
	assert.Equal(t, 4, bytes.Count(data, []byte("\n")), "header plus three users")
}

func TestGenerate_InvalidNow(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := execute(t, "generate", "--dry-run", "--now", "yesterday")
	assert.ErrorContains(t, err, "invalid --now")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, bulkgen.Version)
}

func TestGenerate_FlagOverridesInvalidEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BULKGEN_USERS", "-5")

	_, err := execute(t, "generate", "--dry-run", "--out", filepath.Join(t.TempDir(), "out"))
	assert.ErrorIs(t, err, bulkgen.ErrInvalidConfig)

	out, err := execute(t, "generate", "--dry-run", "--users", "3", "--out", filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "tb_user.csv")
}

func TestGenerate_RejectsNonFiniteEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BULKGEN_EVALUATION_RATIO", "NaN")

	_, err := execute(t, "generate", "--dry-run")
	assert.ErrorIs(t, err, bulkgen.ErrInvalidConfig)
}

func TestTableFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, "generate", "--out", dir, "--users", "5", "--congresses", "1", "--articles", "3", "--body-kb", "0.1")
	require.NoError(t, err)

	out, err := execute(t, "inspect", dir, "--table", "tb_card")
	require.NoError(t, err, out)
	assert.Contains(t, out, "tb_card.csv")
	assert.NotContains(t, out, "tb_review.csv")
	assert.NotContains(t, out, "total")

	_, err = execute(t, "inspect", dir, "--table", "tb_nope")
	assert.ErrorIs(t, err, bulkgen.ErrUnknownTable)

	require.NoError(t, os.Remove(filepath.Join(dir, "tb_card.csv")))

	out, err = execute(t, "verify", dir, "--table", "tb_review")
	require.NoError(t, err, out)

	out, err = execute(t, "verify", dir, "--table", "tb_user", "--table", "tb_card")
	assert.ErrorIs(t, err, errVerificationFailed)
	assert.Contains(t, out, "tb_card.csv: file is missing")

	_, err = execute(t, "verify", dir, "--table", "tb_nope")
	assert.ErrorIs(t, err, bulkgen.ErrUnknownTable)
}
