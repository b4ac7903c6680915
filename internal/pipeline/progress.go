package pipeline

import (
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"pkg.jsn.cam/bulkgen/internal/manifest"
	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
)

// UnknownRows marks a table whose row count is only known once it is written.
const UnknownRows = -1

// Reporter receives table lifecycle events during a run.
type Reporter interface {
	TableStarted(t bulkgen.Table, expectedRows int64)
	TableProgress(t bulkgen.Table, rows int64)
	TableFinished(t bulkgen.Table, stats manifest.TableStats)
}

// LogReporter writes one log line per event.
type LogReporter struct {
	log *zap.Logger
}

// NewLogReporter creates a reporter logging to log.
func NewLogReporter(log *zap.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) TableStarted(t bulkgen.Table, expectedRows int64) {
	expected := "unknown"
	if expectedRows != UnknownRows {
		expected = humanize.Comma(expectedRows)
	}
	r.log.Info("generating table", zap.String("file", t.File()), zap.String("expected_rows", expected))
}

func (r *LogReporter) TableProgress(t bulkgen.Table, rows int64) {
	r.log.Info("rows generated", zap.String("file", t.File()), zap.String("rows", humanize.Comma(rows)))
}

func (r *LogReporter) TableFinished(t bulkgen.Table, stats manifest.TableStats) {
	r.log.Info("table written",
		zap.String("file", t.File()),
		zap.String("rows", humanize.Comma(stats.Rows)),
		zap.String("size", humanize.Bytes(uint64(stats.Bytes))),
	)
}

// BarReporter draws a terminal progress bar per table and hands the finished
// event to next, if any.
type BarReporter struct {
	w    io.Writer
	next Reporter
	bar  *progressbar.ProgressBar
}

// NewBarReporter creates a bar reporter drawing on w.
func NewBarReporter(w io.Writer, next Reporter) *BarReporter {
	return &BarReporter{w: w, next: next}
}

func (r *BarReporter) TableStarted(t bulkgen.Table, expectedRows int64) {
	r.bar = progressbar.NewOptions64(expectedRows,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(t.File()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	if r.next != nil {
		r.next.TableStarted(t, expectedRows)
	}
}

func (r *BarReporter) TableProgress(_ bulkgen.Table, rows int64) {
	if r.bar != nil {
		_ = r.bar.Set64(rows)
	}
}

func (r *BarReporter) TableFinished(t bulkgen.Table, stats manifest.TableStats) {
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}
	if r.next != nil {
		r.next.TableFinished(t, stats)
	}
}
