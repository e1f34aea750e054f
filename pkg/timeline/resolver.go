package timeline

import (
	"sync"
	"time"

	"github.com/ccollicutt/logsync/pkg/timestamp"
)

// DefaultLocalityWindow is how many positions either side of the previous
// match are rescanned by Resolver.
const DefaultLocalityWindow = 600

// Match is a resolved lookup.
type Match struct {
	// Line is the 1-based line number in the target log.
	Line int

	// Time is the indexed timestamp of the matched line.
	Time time.Time

	// Query is the resolved query timestamp.
	Query time.Time

	// Position is the entry position within the index.
	Position int

	// Exact is true when Time equals Query.
	Exact bool
}

// Nearest returns the position in ix whose time is closest to query.
//
// An exact hit is returned directly. Otherwise the binary-search neighbours
// are compared, and when last is a valid position the window around it is
// scanned as well. Locality override: a position in that window replaces
// the binary-search candidate when it is strictly closer to query, or equally
// close and nearer last. Equal distances therefore keep the lookup beside
// the previous match rather than at the global binary-search position.
func Nearest(ix *Index, query time.Time, last, window int) (pos int, exact bool, ok bool) {
	n := ix.Len()
	if n == 0 {
		return 0, false, false
	}

	p := ix.search(query)
	if p < n && ix.entries[p].Time.Equal(query) {
		return p, true, true
	}

	best := p
	if best >= n {
		best = n - 1
	}
	if p > 0 && p < n {
		if timestamp.AbsDiff(ix.entries[p-1].Time, query) <= timestamp.AbsDiff(ix.entries[p].Time, query) {
			best = p - 1
		}
	}
	bestDiff := timestamp.AbsDiff(ix.entries[best].Time, query)

	if last >= 0 && last < n && window > 0 {
		lo := max(0, last-window)
		hi := min(n-1, last+window)
		for i := lo; i <= hi; i++ {
			d := timestamp.AbsDiff(ix.entries[i].Time, query)
			if d < bestDiff || (d == bestDiff && distance(i, last) < distance(best, last)) {
				best, bestDiff = i, d
			}
		}
	}

	return best, false, true
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLocalityWindow sets the refinement window around the previous match.
// Zero disables the refinement.
func WithLocalityWindow(n int) ResolverOption {
	return func(r *Resolver) {
		if n >= 0 {
			r.window = n
		}
	}
}

// WithResolverClock sets the clock used when no better reference exists.
func WithResolverClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithQueryParser sets the parser used for query text.
func WithQueryParser(p *timestamp.Parser) ResolverOption {
	return func(r *Resolver) {
		if p != nil {
			r.parser = p
		}
	}
}

// Resolver maps query timestamps to lines for one interactive session. It
// remembers the previous match position and query time, which steer the
// next lookup. Safe for concurrent use.
type Resolver struct {
	window int
	now    func() time.Time
	parser *timestamp.Parser

	mu        sync.Mutex
	index     *Index
	last      int
	reference time.Time
}

// NewResolver creates a resolver with no previous match.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		window: DefaultLocalityWindow,
		now:    time.Now,
		parser: timestamp.NewParser(),
		last:   -1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve parses query and returns the nearest line in ix. It reports false
// when the query is unparsable or the index is empty. The only error is
// ErrNotBuilt for a nil index.
//
// The query's missing year or date is inferred from the previous query, or
// from the newest indexed time on the first lookup, or from the clock.
func (r *Resolver) Resolve(ix *Index, query string) (Match, bool, error) {
	if ix == nil {
		return Match{}, false, ErrNotBuilt
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.switchIndex(ix)

	reference := r.reference
	if reference.IsZero() {
		if e, ok := ix.Last(); ok {
			reference = e.Time
		} else {
			reference = r.now()
		}
	}

	t, ok := r.parser.Parse(query, reference)
	if !ok {
		return Match{}, false, nil
	}
	r.reference = t

	m, ok := r.resolveLocked(ix, t)
	return m, ok, nil
}

// ResolveTime returns the nearest line in ix for an already resolved time.
func (r *Resolver) ResolveTime(ix *Index, t time.Time) (Match, bool, error) {
	if ix == nil {
		return Match{}, false, ErrNotBuilt
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.switchIndex(ix)
	r.reference = t

	m, ok := r.resolveLocked(ix, t)
	return m, ok, nil
}

// Last returns the previous match position, or -1.
func (r *Resolver) Last() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Reset forgets the previous match and reference time.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = -1
	r.reference = time.Time{}
}

func (r *Resolver) switchIndex(ix *Index) {
	if r.index != ix {
		r.index = ix
		r.last = -1
		r.reference = time.Time{}
	}
}

func (r *Resolver) resolveLocked(ix *Index, t time.Time) (Match, bool) {
	pos, exact, ok := Nearest(ix, t, r.last, r.window)
	if !ok {
		return Match{}, false
	}
	r.last = pos

	e := ix.entries[pos]
	return Match{
		Line:     e.Line,
		Time:     e.Time,
		Query:    t,
		Position: pos,
		Exact:    exact,
	}, true
}
