// Package manifest records what a generation run produced. The manifest
// sits next to the CSV files and is rewritten on every run.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	jsoniter "github.com/json-iterator/go"

	"pkg.jsn.cam/bulkgen/internal/config"
	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileName is the manifest file inside the output directory.
const FileName = "manifest.db"

var (
	runBucket    = []byte("run")
	tablesBucket = []byte("tables")
	runInfoKey   = []byte("info")
)

// RunInfo describes one generation run.
type RunInfo struct {
	FormatVersion string        `json:"format_version"`
	BinaryVersion string        `json:"binary_version"`
	ReferenceTime time.Time     `json:"reference_time"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	Config        config.Config `json:"config"`
}

// Complete reports whether the run finished every table.
func (r RunInfo) Complete() bool {
	return !r.FinishedAt.IsZero()
}

// TableStats is what the run wrote for one table.
type TableStats struct {
	Order int    `json:"order"`
	Name  string `json:"name"`
	File  string `json:"file"`
	Rows  int64  `json:"rows"`
	Bytes int64  `json:"bytes"`
	// MaxID is the highest primary key written, 0 for join tables.
	MaxID int64 `json:"max_id"`
}

// Manifest reads and writes run records on a Backend.
type Manifest struct {
	backend Backend
}

// New wraps backend, creating the manifest buckets if needed.
func New(backend Backend) (*Manifest, error) {
	for _, name := range [][]byte{runBucket, tablesBucket} {
		if err := backend.CreateBucket(name); err != nil {
			return nil, fmt.Errorf("%w: create bucket %s: %w", bulkgen.ErrManifest, name, err)
		}
	}
	return &Manifest{backend: backend}, nil
}

// Create starts a fresh manifest in dir, discarding any previous one.
func Create(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: remove old manifest: %w", bulkgen.ErrManifest, err)
	}

	backend, err := NewBboltBackend(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bulkgen.ErrManifest, err)
	}
	m, err := New(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return m, nil
}

// Open reads the manifest in dir. It fails with ErrManifestNotFound when the
// directory has none and ErrIncompatibleManifest when it was written by an
// incompatible format version.
func Open(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", bulkgen.ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", bulkgen.ErrManifest, err)
	}

	backend, err := NewBboltBackend(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bulkgen.ErrManifest, err)
	}
	m, err := New(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	if err := m.checkVersion(); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

func (m *Manifest) checkVersion() error {
	run, err := m.Run()
	if err != nil {
		return err
	}
	ok, err := bulkgen.IsCompatibleVersion(run.FormatVersion, bulkgen.ManifestFormatVersion)
	if err != nil {
		return fmt.Errorf("%w: %w", bulkgen.ErrIncompatibleManifest, err)
	}
	if !ok {
		return bulkgen.CompatibilityError(run.FormatVersion, bulkgen.ManifestFormatVersion)
	}
	return nil
}

// PutRun stores the run record, replacing any previous one.
func (m *Manifest) PutRun(run RunInfo) error {
	if run.FormatVersion == "" {
		run.FormatVersion = bulkgen.ManifestFormatVersion
	}
	return m.put(runBucket, runInfoKey, run)
}

// Run returns the stored run record.
func (m *Manifest) Run() (RunInfo, error) {
	var run RunInfo
	found, err := m.get(runBucket, runInfoKey, &run)
	if err != nil {
		return RunInfo{}, err
	}
	if !found {
		return RunInfo{}, fmt.Errorf("%w: no run record", bulkgen.ErrInvalidManifestRecord)
	}
	return run, nil
}

// PutTable records the stats of a finished table.
func (m *Manifest) PutTable(stats TableStats) error {
	if stats.Name == "" {
		return fmt.Errorf("%w: table stats without name", bulkgen.ErrInvalidManifestRecord)
	}
	return m.put(tablesBucket, []byte(stats.Name), stats)
}

// Table returns the stats of one table; ok is false if it was never written.
func (m *Manifest) Table(name string) (stats TableStats, ok bool, err error) {
	ok, err = m.get(tablesBucket, []byte(name), &stats)
	return stats, ok, err
}

// Tables returns every recorded table in generation order.
func (m *Manifest) Tables() ([]TableStats, error) {
	var tables []TableStats
	err := m.backend.ForEach(tablesBucket, func(k, v []byte) error {
		var stats TableStats
		if err := json.Unmarshal(v, &stats); err != nil {
			return fmt.Errorf("%w: table %s: %w", bulkgen.ErrInvalidManifestRecord, k, err)
		}
		tables = append(tables, stats)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bulkgen.ErrManifest, err)
	}

	slices.SortFunc(tables, func(a, b TableStats) int {
		return a.Order - b.Order
	})
	return tables, nil
}

// Close closes the underlying backend
func (m *Manifest) Close() error {
	return m.backend.Close()
}

func (m *Manifest) put(bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", bulkgen.ErrManifest, key, err)
	}
	if err := m.backend.Put(bucket, key, data); err != nil {
		return fmt.Errorf("%w: %w", bulkgen.ErrManifest, err)
	}
	return nil
}

func (m *Manifest) get(bucket, key []byte, v any) (bool, error) {
	data, err := m.backend.Get(bucket, key)
	if err != nil {
		return false, fmt.Errorf("%w: %w", bulkgen.ErrManifest, err)
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: decode %s: %w", bulkgen.ErrInvalidManifestRecord, key, err)
	}
	return true, nil
}
