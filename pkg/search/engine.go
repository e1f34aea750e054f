// Package search runs debounced, cancellable incremental searches over an
// in-memory line buffer.
package search

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ccollicutt/logsync/pkg/matcher"
)

// Defaults for New.
const (
	DefaultDebounce  = 250 * time.Millisecond
	DefaultChunkSize = 2000
)

// State is the engine's position in its scan lifecycle.
type State int

const (
	Idle State = iota
	Debouncing
	Scanning
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case Scanning:
		return "scanning"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Query is the user's search input.
type Query struct {
	Text          string
	CaseSensitive bool
	WholeWord     bool
	UseRegex      bool
}

// Update reports the outcome of a scan or a cursor move.
type Update struct {
	Query Query

	// Count is the number of matching lines.
	Count int

	// Cursor is the 0-based index into the matches, or -1.
	Cursor int

	// Line is the 0-based buffer position of the current match, or -1.
	Line int

	// Reveal is set when a finished scan selected the first match.
	Reveal bool

	// Err carries a pattern error; the scan then matched nothing.
	Err error
}

// Position returns the 1-based cursor position, or 0 with no matches.
func (u Update) Position() int {
	return u.Cursor + 1
}

// Snapshot is a copy of the engine's visible search state.
type Snapshot struct {
	Query   Query
	Matches []int
	Cursor  int
	State   State
}

// Option configures an Engine.
type Option func(*Engine)

// WithDebounce sets the quiet period before a rescan starts.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.debounce = d
		}
	}
}

// WithChunkSize sets how many lines are scanned between yields.
func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunk = n
		}
	}
}

// WithRegexTimeout sets the per-line regex timeout.
func WithRegexTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.regexTimeout = d
	}
}

// WithListener registers a callback for finished scans. It runs on the scan
// goroutine after the new state is visible and must not block for long.
func WithListener(fn func(Update)) Option {
	return func(e *Engine) {
		e.listener = fn
	}
}

// WithLogger sets the logger for scan diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// Engine owns a line buffer and the search state over it. A change to the
// query arms a debounce timer and cancels any running scan; when the timer
// fires a fresh scan walks the buffer in chunks, and only a scan that was
// not superseded publishes its matches. Safe for concurrent use.
type Engine struct {
	debounce     time.Duration
	chunk        int
	regexTimeout time.Duration
	listener     func(Update)
	log          zerolog.Logger

	// onChunk runs after each scanned chunk; tests use it to pause a scan.
	onChunk func(q Query, chunk int)

	mu      sync.Mutex
	lines   []string
	query   Query
	state   State
	timer   *time.Timer
	armed   uint64
	scanID  uint64
	cancel  context.CancelFunc
	done    chan struct{}
	matches []int
	cursor  int
	closed  bool
}

// New creates an idle engine with an empty buffer.
func New(opts ...Option) *Engine {
	e := &Engine{
		debounce:     DefaultDebounce,
		chunk:        DefaultChunkSize,
		regexTimeout: matcher.DefaultRegexTimeout,
		log:          zerolog.Nop(),
		cursor:       -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetLines replaces the buffer and schedules a rescan.
func (e *Engine) SetLines(lines []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = append([]string(nil), lines...)
	e.cancelScanLocked()
	e.armLocked()
}

// Append adds lines to the buffer and re-arms the debounce timer, so a
// burst of appends leads to one rescan. A running scan keeps its snapshot
// and never sees the new lines.
func (e *Engine) Append(lines ...string) {
	if len(lines) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = append(e.lines, lines...)
	e.armLocked()
}

// SetQuery changes the search input. The running scan, if any, is
// cancelled at once and a rescan is scheduled after the debounce period.
func (e *Engine) SetQuery(q Query) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if q == e.query && e.state != Idle {
		return
	}
	e.query = q
	e.cancelScanLocked()
	e.armLocked()
}

// Next moves to the following match, wrapping to the first.
func (e *Engine) Next() (Update, bool) {
	return e.step(1)
}

// Prev moves to the preceding match, wrapping to the last.
func (e *Engine) Prev() (Update, bool) {
	return e.step(-1)
}

func (e *Engine) step(delta int) (Update, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.matches)
	if n == 0 {
		return e.updateLocked(false, nil), false
	}
	e.cursor = ((e.cursor+delta)%n + n) % n
	return e.updateLocked(false, nil), true
}

// Current returns the visible state as an Update.
func (e *Engine) Current() Update {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.updateLocked(false, nil)
}

// Snapshot returns a copy of the visible search state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Query:   e.query,
		Matches: append([]int(nil), e.matches...),
		Cursor:  e.cursor,
		State:   e.state,
	}
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Len returns the number of buffered lines.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.lines)
}

// Line returns the buffered line at 0-based position i.
func (e *Engine) Line(i int) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.lines) {
		return "", false
	}
	return e.lines[i], true
}

// Close stops the timer, cancels any scan and waits for it to exit.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
	}
	e.cancelScanLocked()
	done := e.done
	e.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (e *Engine) armLocked() {
	if e.closed {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.armed++
	gen := e.armed
	e.state = Debouncing
	e.timer = time.AfterFunc(e.debounce, func() { e.fire(gen) })
}

func (e *Engine) cancelScanLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// fire starts a scan unless a newer change re-armed the timer.
func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.armed {
		e.mu.Unlock()
		return
	}

	e.cancelScanLocked()
	prev := e.done

	ctx, cancel := context.WithCancel(context.Background())
	e.scanID++
	id := e.scanID
	e.cancel = cancel
	done := make(chan struct{})
	e.done = done

	cleared := len(e.matches) > 0
	e.matches = nil
	e.cursor = -1
	e.state = Scanning

	q := e.query
	lines := e.lines[:len(e.lines):len(e.lines)]

	// An empty query needs no scan; listeners only hear about it when it
	// clears earlier matches.
	if q.Text == "" {
		e.state = Ready
		e.cancel = nil
		u := e.updateLocked(false, nil)
		e.mu.Unlock()
		cancel()
		go func() {
			defer close(done)
			if prev != nil {
				<-prev
			}
		}()
		if cleared {
			e.notify(u)
		}
		return
	}

	pred, err := matcher.Compile(matcher.Options{
		Query:         q.Text,
		CaseSensitive: q.CaseSensitive,
		WholeWord:     q.WholeWord,
		UseRegex:      q.UseRegex,
		RegexTimeout:  e.regexTimeout,
	})
	if err != nil {
		e.log.Debug().Err(err).Msg("search pattern rejected")
	}
	e.mu.Unlock()

	go e.scan(ctx, scanJob{
		id:      id,
		gen:     gen,
		query:   q,
		lines:   lines,
		pred:    pred,
		err:     err,
		prev:    prev,
		done:    done,
		started: time.Now(),
	})
}

type scanJob struct {
	id      uint64
	gen     uint64
	query   Query
	lines   []string
	pred    matcher.Predicate
	err     error
	prev    <-chan struct{}
	done    chan struct{}
	started time.Time
}

func (e *Engine) scan(ctx context.Context, job scanJob) {
	defer close(job.done)

	// One scan at a time: the superseded scan exits at its next chunk.
	if job.prev != nil {
		<-job.prev
	}

	var found []int
	for start, chunk := 0, 0; start < len(job.lines); start, chunk = start+e.chunk, chunk+1 {
		if ctx.Err() != nil {
			e.log.Debug().Str("query", job.query.Text).Int("line", start).Msg("search scan cancelled")
			return
		}

		end := min(start+e.chunk, len(job.lines))
		for i := start; i < end; i++ {
			if job.pred(job.lines[i]) {
				found = append(found, i)
			}
		}

		if e.onChunk != nil {
			e.onChunk(job.query, chunk)
		}
		runtime.Gosched()
	}

	e.mu.Lock()
	if ctx.Err() != nil || job.id != e.scanID {
		e.mu.Unlock()
		return
	}
	e.matches = found
	e.cursor = -1
	if len(found) > 0 {
		e.cursor = 0
	}
	if job.gen == e.armed {
		e.state = Ready
	}
	e.cancel = nil
	u := e.updateLocked(len(found) > 0, job.err)
	e.mu.Unlock()

	e.log.Debug().
		Str("query", job.query.Text).
		Int("lines", len(job.lines)).
		Int("matches", len(found)).
		Dur("took", time.Since(job.started)).
		Msg("search scan finished")

	e.notify(u)
}

func (e *Engine) notify(u Update) {
	if e.listener != nil {
		e.listener(u)
	}
}

func (e *Engine) updateLocked(reveal bool, err error) Update {
	u := Update{
		Query:  e.query,
		Count:  len(e.matches),
		Cursor: e.cursor,
		Line:   -1,
		Reveal: reveal,
		Err:    err,
	}
	if e.cursor >= 0 && e.cursor < len(e.matches) {
		u.Line = e.matches[e.cursor]
	}
	return u
}
