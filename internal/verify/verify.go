// Package verify re-reads a generated output directory and checks the
// structural properties every run must satisfy.
package verify

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"pkg.jsn.cam/bulkgen/internal/manifest"
	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
	"pkg.jsn.cam/bulkgen/pkg/generator"
)

// maxRecorded caps how many violations a report keeps; the count is exact.
const maxRecorded = 200

// Violation is one broken property.
type Violation struct {
	File    string
	Line    int // 1-based line in the file, 0 for file-level problems
	Message string
}

func (v Violation) String() string {
	if v.Line == 0 {
		return fmt.Sprintf("%s: %s", v.File, v.Message)
	}
	return fmt.Sprintf("%s:%d: %s", v.File, v.Line, v.Message)
}

// Report is the outcome of a verification.
type Report struct {
	Rows           map[string]int64 // data rows per table
	Violations     []Violation
	ViolationCount int
	UsedManifest   bool
}

// OK reports whether no violation was found.
func (r *Report) OK() bool {
	return r.ViolationCount == 0
}

// Options tune a verification.
type Options struct {
	// AuthorsPerArticle is the expected number of authors per article before
	// capping; 0 takes it from the manifest, or skips the count check.
	AuthorsPerArticle int

	// Authorities are the expected role names in id order. Defaults to the
	// default vocabulary.
	Authorities []string

	// Tables limits the report to violations in these tables. Every file is
	// still read, since later tables are checked against earlier ones.
	Tables []bulkgen.Table

	Logger *zap.Logger
}

type checker struct {
	dir    string
	opts   Options
	report *Report
	log    *zap.Logger

	users      map[int]struct{}
	nArticles  int
	maxEvalID  int
	expectRows map[string]int64
	deferred   []func() // checks that need every file read first
}

// Dir verifies the CSV files in dir. The manifest, when present, supplies the
// expected row counts. An error is returned only when the directory cannot be
// read; broken data is reported through Report.
func Dir(dir string, opts Options) (*Report, error) {
	c := &checker{
		dir:        dir,
		opts:       opts,
		report:     &Report{Rows: make(map[string]int64)},
		log:        opts.Logger,
		users:      make(map[int]struct{}),
		expectRows: make(map[string]int64),
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.opts.Authorities == nil {
		c.opts.Authorities = generator.DefaultVocabulary().Authorities
	}
	if err := c.loadManifest(); err != nil {
		return nil, err
	}

	checks := []struct {
		table bulkgen.Table
		fn    func(line int, row []string)
	}{
		{bulkgen.UserTable, c.checkUser},
		{bulkgen.AddressTable, c.sharedIDCheck(bulkgen.AddressTable)},
		{bulkgen.CardTable, c.sharedIDCheck(bulkgen.CardTable)},
		{bulkgen.RoleTable, c.roleCheck()},
		{bulkgen.CongressTable, c.checkCongress},
		{bulkgen.UserRoleTable, c.userRoleCheck()},
		{bulkgen.ArticleTable, c.checkArticle},
		{bulkgen.ArticlesUsersTable, c.authorsCheck()},
		{bulkgen.EvaluationTable, c.evaluationCheck()},
		{bulkgen.ReviewTable, c.checkReview},
	}
	for _, ch := range checks {
		if err := c.scan(ch.table, ch.fn); err != nil {
			return nil, err
		}
	}
	c.finishDeferred()

	for _, t := range bulkgen.Tables {
		want, ok := c.expectRows[t.Name]
		if got, read := c.report.Rows[t.Name]; ok && read && got != want {
			c.fail(t, 0, "has %d rows, manifest recorded %d", got, want)
		}
	}
	c.log.Info("verification finished",
		zap.String("dir", dir),
		zap.Int("violations", c.report.ViolationCount),
	)
	return c.report, nil
}

func (c *checker) finishDeferred() {
	for _, fn := range c.deferred {
		fn()
	}
}

func (c *checker) loadManifest() error {
	m, err := manifest.Open(c.dir)
	if errors.Is(err, bulkgen.ErrManifestNotFound) {
		c.log.Warn("no manifest, skipping row count checks", zap.String("dir", c.dir))
		return nil
	}
	if err != nil {
		return err
	}
	defer m.Close()

	tables, err := m.Tables()
	if err != nil {
		return err
	}
	for _, s := range tables {
		c.expectRows[s.Name] = s.Rows
	}
	if c.opts.AuthorsPerArticle == 0 {
		if run, err := m.Run(); err == nil {
			c.opts.AuthorsPerArticle = run.Config.AuthorsPerArticle
		}
	}
	c.report.UsedManifest = true
	return nil
}

func (c *checker) fail(t bulkgen.Table, line int, format string, args ...any) {
	if len(c.opts.Tables) > 0 && !slices.ContainsFunc(c.opts.Tables, func(s bulkgen.Table) bool {
		return s.Name == t.Name
	}) {
		return
	}
	c.report.ViolationCount++
	if len(c.report.Violations) < maxRecorded {
		c.report.Violations = append(c.report.Violations, Violation{
			File:    t.File(),
			Line:    line,
			Message: fmt.Sprintf(format, args...),
		})
	}
}

// scan streams a table file, checks its header and row width, and hands
// every well-formed row to fn. A missing file is a violation, not an error.
func (c *checker) scan(t bulkgen.Table, fn func(line int, row []string)) error {
	f, err := os.Open(filepath.Join(c.dir, t.File()))
	if errors.Is(err, os.ErrNotExist) {
		c.fail(t, 0, "file is missing")
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", t.File(), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		c.fail(t, 1, "cannot read header: %v", err)
		return nil
	}
	if !slices.Equal(header, t.Header) {
		c.fail(t, 1, "header %v, want %v", header, t.Header)
		return nil
	}

	var rows int64
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.fail(t, line, "malformed record: %v", err)
			break
		}
		rows++
		if len(row) != len(t.Header) {
			c.fail(t, line, "%d fields, want %d", len(row), len(t.Header))
			continue
		}
		fn(line, row)
	}
	c.report.Rows[t.Name] = rows
	return nil
}

// id parses a positive integer field; it records a violation and returns
// false when the field is not one.
func (c *checker) id(t bulkgen.Table, line int, column, value string) (int, bool) {
	v, err := strconv.Atoi(value)
	if err != nil || v < 1 {
		c.fail(t, line, "%s %q is not a positive id", column, value)
		return 0, false
	}
	return v, true
}

func (c *checker) inRange(t bulkgen.Table, line int, column, value string, maxID int) {
	if v, ok := c.id(t, line, column, value); ok && v > maxID {
		c.fail(t, line, "%s %d exceeds %d", column, v, maxID)
	}
}

func (c *checker) checkUser(line int, row []string) {
	t := bulkgen.UserTable
	id, ok := c.id(t, line, "id", row[0])
	if !ok {
		return
	}
	if _, dup := c.users[id]; dup {
		c.fail(t, line, "duplicate user id %d", id)
	}
	c.users[id] = struct{}{}
	if row[2] != row[0] || row[3] != row[0] {
		c.fail(t, line, "address_id %s and card_id %s must equal id %s", row[2], row[3], row[0])
	}
}

// sharedIDCheck checks a table whose ids must be a bijection onto user ids.
func (c *checker) sharedIDCheck(t bulkgen.Table) func(int, []string) {
	seen := make(map[int]struct{})
	c.deferred = append(c.deferred, func() {
		if len(seen) != len(c.users) {
			c.fail(t, 0, "%d distinct ids for %d users", len(seen), len(c.users))
		}
	})
	return func(line int, row []string) {
		id, ok := c.id(t, line, "id", row[0])
		if !ok {
			return
		}
		if _, dup := seen[id]; dup {
			c.fail(t, line, "duplicate id %d", id)
		}
		seen[id] = struct{}{}
		if _, isUser := c.users[id]; !isUser {
			c.fail(t, line, "id %d has no user", id)
		}
	}
}

// roleCheck expects exactly one row per authority, with ids in order.
func (c *checker) roleCheck() func(int, []string) {
	t := bulkgen.RoleTable
	want := c.opts.Authorities
	var rows int
	c.deferred = append(c.deferred, func() {
		if _, read := c.report.Rows[t.Name]; read && rows != len(want) {
			c.fail(t, 0, "%d roles, want %d", rows, len(want))
		}
	})
	return func(line int, row []string) {
		rows++
		id, ok := c.id(t, line, "id", row[0])
		if !ok {
			return
		}
		if id > len(want) {
			c.fail(t, line, "id %d exceeds %d", id, len(want))
			return
		}
		if id != rows {
			c.fail(t, line, "id %d out of order, want %d", id, rows)
		}
		if row[1] != want[id-1] {
			c.fail(t, line, "authority %q for id %d, want %q", row[1], id, want[id-1])
		}
	}
}

func (c *checker) checkCongress(line int, row []string) {
	t := bulkgen.CongressTable
	times := make([]time.Time, 4)
	for i, col := range []int{3, 4, 5, 6} {
		v, err := time.Parse(time.DateTime, row[col])
		if err != nil {
			c.fail(t, line, "%s %q is not a timestamp", t.Header[col], row[col])
			return
		}
		times[i] = v
	}
	end, reviewDeadline, start, submission := times[0], times[1], times[2], times[3]
	if !end.After(start) {
		c.fail(t, line, "end_date not after start_date")
	}
	if !reviewDeadline.After(end) {
		c.fail(t, line, "review_deadline not after end_date")
	}
	if !submission.Before(start) {
		c.fail(t, line, "submission_deadline not before start_date")
	}
}

func (c *checker) userRoleCheck() func(int, []string) {
	t := bulkgen.UserRoleTable
	withRoleOne := make(map[int]struct{})
	c.deferred = append(c.deferred, func() {
		for u := range c.users {
			if _, ok := withRoleOne[u]; !ok {
				c.fail(t, 0, "user %d has no role 1", u)
			}
		}
	})
	return func(line int, row []string) {
		role, ok := c.id(t, line, "role_id", row[0])
		if !ok {
			return
		}
		if role > len(c.opts.Authorities) {
			c.fail(t, line, "role_id %d exceeds %d", role, len(c.opts.Authorities))
		}
		user, ok := c.id(t, line, "user_id", row[1])
		if !ok {
			return
		}
		if _, isUser := c.users[user]; !isUser {
			c.fail(t, line, "user_id %d has no user", user)
		}
		if role == 1 {
			withRoleOne[user] = struct{}{}
		}
	}
}

func (c *checker) checkArticle(line int, row []string) {
	if id, ok := c.id(bulkgen.ArticleTable, line, "id", row[0]); ok {
		c.nArticles = max(c.nArticles, id)
	}
}

// authorsCheck expects rows grouped by article, as the generator writes them.
func (c *checker) authorsCheck() func(int, []string) {
	t := bulkgen.ArticlesUsersTable
	current := ""
	var authors []int
	flush := func(line int) {
		if current == "" {
			return
		}
		sorted := slices.Clone(authors)
		slices.Sort(sorted)
		if len(slices.Compact(sorted)) != len(authors) {
			c.fail(t, line, "article %s has duplicate authors", current)
		}
		if want := min(c.opts.AuthorsPerArticle, len(c.users)); c.opts.AuthorsPerArticle > 0 && len(authors) != want {
			c.fail(t, line, "article %s has %d authors, want %d", current, len(authors), want)
		}
	}
	c.deferred = append(c.deferred, func() { flush(0) })

	return func(line int, row []string) {
		if row[0] != current {
			flush(line - 1)
			current = row[0]
			authors = authors[:0]
		}
		c.inRange(t, line, "article_id", row[0], c.nArticles)
		if u, ok := c.id(t, line, "user_id", row[1]); ok {
			authors = append(authors, u)
		}
	}
}

func (c *checker) evaluationCheck() func(int, []string) {
	t := bulkgen.EvaluationTable
	prevArticle := 0
	return func(line int, row []string) {
		id, ok := c.id(t, line, "id", row[0])
		if ok && id != c.maxEvalID+1 {
			c.fail(t, line, "id %d breaks the sequence after %d", id, c.maxEvalID)
		}
		c.maxEvalID++

		article, ok := c.id(t, line, "article_id", row[3])
		if !ok {
			return
		}
		if article <= prevArticle {
			c.fail(t, line, "article_id %d repeats or is out of order", article)
		}
		if article > c.nArticles {
			c.fail(t, line, "article_id %d exceeds %d", article, c.nArticles)
		}
		prevArticle = article
	}
}

func (c *checker) checkReview(line int, row []string) {
	t := bulkgen.ReviewTable
	c.inRange(t, line, "article_id", row[2], c.nArticles)
	if row[4] != "" {
		c.inRange(t, line, "evaluation_id", row[4], c.maxEvalID)
	}
	if row[5] != "" {
		c.inRange(t, line, "reviewer_id", row[5], len(c.users))
	}
}
