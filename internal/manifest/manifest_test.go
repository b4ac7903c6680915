package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pkg.jsn.cam/bulkgen/internal/config"
	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
)

func TestManifest_RunRoundTrip(t *testing.T) {
	t.Parallel()

	m, err := New(NewMemoryBackend())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := m.Run(); !errors.Is(err, bulkgen.ErrInvalidManifestRecord) {
		t.Errorf("Run on empty manifest error = %v, want ErrInvalidManifestRecord", err)
	}

	cfg := config.Default()
	cfg.Users = 10
	started := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := m.PutRun(RunInfo{StartedAt: started, Config: cfg}); err != nil {
		t.Fatalf("PutRun failed: %v", err)
	}

	run, err := m.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if run.FormatVersion != bulkgen.ManifestFormatVersion {
		t.Errorf("FormatVersion = %q, want %q", run.FormatVersion, bulkgen.ManifestFormatVersion)
	}
	if !run.StartedAt.Equal(started) || run.Config.Users != 10 {
		t.Errorf("Run returned %+v", run)
	}
	if run.Complete() {
		t.Error("run without FinishedAt should not be complete")
	}
}

func TestManifest_TablesInOrder(t *testing.T) {
	t.Parallel()

	m, err := New(NewMemoryBackend())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Stored out of order on purpose; names sort differently from Order too.
	stats := []TableStats{
		{Order: 2, Name: "tb_role", Rows: 3, MaxID: 3},
		{Order: 0, Name: "tb_address", Rows: 10, MaxID: 10},
		{Order: 1, Name: "tb_card", Rows: 10, MaxID: 10},
	}
	for _, s := range stats {
		if err := m.PutTable(s); err != nil {
			t.Fatalf("PutTable failed: %v", err)
		}
	}

	tables, err := m.Tables()
	if err != nil {
		t.Fatalf("Tables failed: %v", err)
	}
	want := []string{"tb_address", "tb_card", "tb_role"}
	if len(tables) != len(want) {
		t.Fatalf("got %d tables, want %d", len(tables), len(want))
	}
	for i, name := range want {
		if tables[i].Name != name {
			t.Errorf("tables[%d] = %s, want %s", i, tables[i].Name, name)
		}
	}

	role, ok, err := m.Table("tb_role")
	if err != nil || !ok || role.Rows != 3 {
		t.Errorf("Table(tb_role) = %+v, %v, %v", role, ok, err)
	}
	if _, ok, _ := m.Table("tb_review"); ok {
		t.Error("Table(tb_review) should not be found")
	}

	if err := m.PutTable(TableStats{}); !errors.Is(err, bulkgen.ErrInvalidManifestRecord) {
		t.Errorf("PutTable without name error = %v", err)
	}
}

func TestCreateAndOpen(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	m, err := Create(dir)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := m.PutRun(RunInfo{StartedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("PutRun failed: %v", err)
	}
	if err := m.PutTable(TableStats{Name: "tb_role", Rows: 3}); err != nil {
		t.Fatalf("PutTable failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	tables, err := reopened.Tables()
	if err != nil || len(tables) != 1 {
		t.Errorf("Tables after reopen = %v, %v", tables, err)
	}
	reopened.Close()

	// Create discards the previous run.
	fresh, err := Create(dir)
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	defer fresh.Close()
	tables, err = fresh.Tables()
	if err != nil || len(tables) != 0 {
		t.Errorf("fresh manifest has tables %v, %v", tables, err)
	}
}

func TestOpen_Missing(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir())
	if !errors.Is(err, bulkgen.ErrManifestNotFound) {
		t.Errorf("Open error = %v, want ErrManifestNotFound", err)
	}
}

func TestOpen_IncompatibleVersion(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	m, err := Create(dir)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := m.PutRun(RunInfo{FormatVersion: "v0.1.0"}); err != nil {
		t.Fatalf("PutRun failed: %v", err)
	}
	m.Close()

	if _, err := Open(dir); !errors.Is(err, bulkgen.ErrIncompatibleManifest) {
		t.Errorf("Open error = %v, want ErrIncompatibleManifest", err)
	}
	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Errorf("Open should leave the manifest in place: %v", err)
	}
}
