package generator

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Defaults used when no option overrides them.
const (
	DefaultLookbackDays = 3650
	DefaultBodyKB       = 6.0
)

// Timestamp layouts written to the CSV files. The fraction is written with
// all six digits, and only when the microseconds are non-zero.
const (
	TimestampLayout   = "2006-01-02 15:04:05.000000"
	WholeSecondLayout = "2006-01-02 15:04:05"
	DateLayout        = "2006-01-02"
)

// Generator produces the rows of every table from one random source.
// Row sequences share that source, so they are consumed in order and
// cannot be replayed; a fresh Generator with the same seed and reference
// time reproduces the same output.
type Generator struct {
	rand     *rand.Rand
	vocab    *Vocabulary
	now      time.Time
	lookback int
	bodyKB   float64
	body     string // built lazily, identical for every article
	uuids    *randReader
}

// Option configures a Generator.
type Option func(*Generator)

// WithVocabulary replaces the default word lists.
func WithVocabulary(v *Vocabulary) Option {
	return func(g *Generator) {
		if v != nil {
			g.vocab = v
		}
	}
}

// WithNow sets the reference time random dates are drawn back from.
func WithNow(now time.Time) Option {
	return func(g *Generator) {
		g.now = now.UTC()
	}
}

// WithLookbackDays bounds how far in the past random dates can fall.
func WithLookbackDays(days int) Option {
	return func(g *Generator) {
		g.lookback = max(days, 0)
	}
}

// WithBodyKB sets the article body size in kilobytes.
func WithBodyKB(kb float64) Option {
	return func(g *Generator) {
		g.bodyKB = kb
	}
}

// New creates a Generator drawing from r.
func New(r *rand.Rand, opts ...Option) *Generator {
	g := &Generator{
		rand:     r,
		vocab:    DefaultVocabulary(),
		now:      time.Now().UTC(),
		lookback: DefaultLookbackDays,
		bodyKB:   DefaultBodyKB,
		uuids:    &randReader{r: r},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewSeeded creates a Generator with a PCG source seeded from seed.
func NewSeeded(seed uint64, opts ...Option) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed)), opts...)
}

// Vocabulary returns the word lists in use.
func (g *Generator) Vocabulary() *Vocabulary {
	return g.vocab
}

// intIn returns a uniform int in [lo, hi].
func (g *Generator) intIn(lo, hi int) int {
	return lo + g.rand.IntN(hi-lo+1)
}

func (g *Generator) chance(p float64) bool {
	return g.rand.Float64() < p
}

func pick[T any](r *rand.Rand, list []T) T {
	return list[r.IntN(len(list))]
}

// pastTime returns now minus up to lookback days and up to one extra day of seconds.
func (g *Generator) pastTime() time.Time {
	days := g.intIn(0, g.lookback)
	secs := g.intIn(0, 86400)
	return g.now.AddDate(0, 0, -days).Add(-time.Duration(secs) * time.Second)
}

func (g *Generator) newUUID() string {
	return uuid.Must(uuid.NewRandomFromReader(g.uuids)).String()
}

// optionalID returns a random id in [1, maxID] with probability p, or "".
func (g *Generator) optionalID(maxID int, p float64) string {
	if maxID <= 0 || !g.chance(p) {
		return ""
	}
	return strconv.Itoa(g.intIn(1, maxID))
}

// randReader feeds uuid generation from the seeded source so membership
// numbers are reproducible.
type randReader struct {
	r *rand.Rand
}

func (rr *randReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(rr.r.Uint32())
	}
	return len(p), nil
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func formatTime(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(WholeSecondLayout)
	}
	return t.Format(TimestampLayout)
}
