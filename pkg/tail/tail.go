// Package tail follows a growing log file and hands newly completed lines
// to a sink.
package tail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultPollInterval is how often the file is re-read when no filesystem
// event arrives.
const DefaultPollInterval = time.Second

// Sink receives complete lines in file order.
type Sink func(lines []string)

// Follower reads lines appended to a file after a starting offset.
type Follower struct {
	mu      sync.Mutex
	path    string
	offset  int64
	partial []byte

	sink   Sink
	poll   time.Duration
	logger zerolog.Logger
}

// Option configures a Follower.
type Option func(*Follower)

// WithPollInterval sets the fallback re-read interval.
func WithPollInterval(d time.Duration) Option {
	return func(f *Follower) {
		if d > 0 {
			f.poll = d
		}
	}
}

// WithLogger sets the logger for watch errors and truncation notices.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Follower) {
		f.logger = l
	}
}

// New creates a Follower for path that skips the first offset bytes.
func New(path string, offset int64, sink Sink, opts ...Option) (*Follower, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	f := &Follower{
		path:   abs,
		offset: offset,
		sink:   sink,
		poll:   DefaultPollInterval,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Offset returns the byte offset up to which the file has been consumed.
func (f *Follower) Offset() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offset
}

// ReadNew reads from the current offset to EOF and returns the complete
// lines. A trailing line without a newline is held until it completes.
// When the file shrank it is read again from the start. A missing file
// yields no lines.
func (f *Follower) ReadNew() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path) // #nosec G304 -- user-provided paths are expected
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", f.path, err)
	}
	if info.Size() < f.offset {
		f.logger.Info().Str("path", f.path).Int64("offset", f.offset).Int64("size", info.Size()).
			Msg("file truncated, reading from start")
		f.offset = 0
		f.partial = nil
	}
	if info.Size() == f.offset {
		return nil, nil
	}

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking %s: %w", f.path, err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	f.offset += int64(len(data))

	return f.split(data), nil
}

func (f *Follower) split(data []byte) []string {
	if len(f.partial) > 0 {
		data = append(f.partial, data...)
		f.partial = nil
	}

	var lines []string
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(bytes.TrimSuffix(data[:i], []byte{'\r'})))
		data = data[i+1:]
	}
	if len(data) > 0 {
		f.partial = append([]byte(nil), data...)
	}
	return lines
}

// reset starts over at the beginning of a replacement file.
func (f *Follower) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offset = 0
	f.partial = nil
}

// Run watches the file's directory and feeds new lines to the sink until
// ctx is cancelled. Removing or renaming the file makes the follower read
// the next file created under the same name from its start.
func (f *Follower) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(f.path), err)
	}

	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	f.drain()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			switch {
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
				f.drain()
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				f.logger.Info().Str("path", f.path).Str("op", ev.Op.String()).Msg("file replaced")
				f.reset()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn().Err(err).Str("path", f.path).Msg("watch error")

		case <-ticker.C:
			f.drain()
		}
	}
}

func (f *Follower) drain() {
	lines, err := f.ReadNew()
	if err != nil {
		f.logger.Warn().Err(err).Msg("reading appended lines")
		return
	}
	if len(lines) > 0 && f.sink != nil {
		f.sink(lines)
	}
}
