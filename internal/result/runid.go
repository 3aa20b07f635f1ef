package result

import (
	"sync"

	"github.com/google/uuid"
)

// RunIDGenerator produces the opaque unique identifier assigned to each
// invocation. Implemented by UUIDv7Generator (production) and
// FixedGenerator (tests).
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so artifact
// directories keyed by run ID sort by creation time.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined run IDs for testing, enabling
// deterministic artifact paths and golden comparison.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
// Once exhausted it keeps returning the last id rather than panicking,
// since daemon tests may dispatch an unbounded number of requests.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id. Thread-safe.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.ids) == 0 {
		return "fixed-run-id"
	}
	id := g.ids[g.idx]
	if g.idx < len(g.ids)-1 {
		g.idx++
	}
	return id
}

// PinnedGenerator hands out one predetermined id first, then falls back
// to UUIDv7. Used when an invocation's run id must be known before the
// run starts: artifact directories are keyed by the top-level id, while
// nested results (scenario steps) still get fresh ids.
type PinnedGenerator struct {
	mu    sync.Mutex
	first string
	used  bool
}

// NewPinnedGenerator creates a generator whose first id is fixed.
func NewPinnedGenerator(first string) *PinnedGenerator {
	return &PinnedGenerator{first: first}
}

// Generate returns the pinned id once, then UUIDv7 ids. Thread-safe.
func (g *PinnedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.used {
		g.used = true
		return g.first
	}
	return UUIDv7Generator{}.Generate()
}
