package timeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ccollicutt/logsync/pkg/timestamp"
)

// cancelCheckInterval is how many lines are read between cancellation checks.
const cancelCheckInterval = 4096

// BuildOption configures Build.
type BuildOption func(*builder)

type builder struct {
	now    func() time.Time
	parser *timestamp.Parser
	log    zerolog.Logger
}

// WithClock sets the clock that seeds the reference time before the first
// line is resolved.
func WithClock(now func() time.Time) BuildOption {
	return func(b *builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithParser sets the timestamp parser used for each line.
func WithParser(p *timestamp.Parser) BuildOption {
	return func(b *builder) {
		if p != nil {
			b.parser = p
		}
	}
}

// WithLogger sets the logger for build diagnostics.
func WithLogger(l zerolog.Logger) BuildOption {
	return func(b *builder) {
		b.log = l
	}
}

func newBuilder(opts []BuildOption) *builder {
	b := &builder{
		now:    time.Now,
		parser: timestamp.NewParser(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build streams the file at path once and returns its timeline index.
// A missing file yields ErrFileNotFound; cancellation yields ctx.Err().
func Build(ctx context.Context, path string, opts ...BuildOption) (*Index, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	defer f.Close()

	return BuildFrom(ctx, path, f, opts...)
}

// BuildFrom builds an index from r, recording name as the index path.
func BuildFrom(ctx context.Context, name string, r io.Reader, opts ...BuildOption) (*Index, error) {
	b := newBuilder(opts)
	start := time.Now()

	ix := &Index{path: name}
	reference := b.now()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size

	for scanner.Scan() {
		ix.lines++
		if ix.lines%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				b.log.Debug().Str("path", name).Int("lines", ix.lines).Msg("index build cancelled")
				return nil, err
			}
		}

		t, ok := b.parser.Parse(scanner.Text(), reference)
		if !ok {
			continue
		}
		reference = t
		ix.append(ix.lines, t)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.log.Debug().
		Str("path", name).
		Int("lines", ix.lines).
		Int("entries", ix.Len()).
		Int("bumped", ix.bumped).
		Dur("took", time.Since(start)).
		Msg("timeline index built")

	return ix, nil
}
