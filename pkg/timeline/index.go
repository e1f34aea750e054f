// Package timeline builds a time-ordered index over a target log and resolves
// query timestamps to the nearest indexed line.
package timeline

import (
	"errors"
	"sort"
	"time"
)

var (
	// ErrFileNotFound is returned when the target log does not exist.
	ErrFileNotFound = errors.New("log file not found")

	// ErrNotBuilt is returned when a lookup is made without a built index.
	ErrNotBuilt = errors.New("timeline index not built")
)

// Entry is one indexed line.
type Entry struct {
	// Line is the 1-based physical line number in the source file.
	Line int

	// Time is the resolved timestamp, possibly bumped to keep the index
	// strictly increasing.
	Time time.Time
}

// Index is an ordered sequence of entries with strictly increasing times.
// It is immutable once built and safe for concurrent reads.
type Index struct {
	path    string
	entries []Entry
	lines   int
	bumped  int
}

// Path returns the file the index was built from.
func (ix *Index) Path() string {
	return ix.path
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// At returns the entry at position i.
func (ix *Index) At(i int) Entry {
	return ix.entries[i]
}

// Lines returns the number of physical lines scanned.
func (ix *Index) Lines() int {
	return ix.lines
}

// Skipped returns the number of lines that carried no recognized timestamp.
func (ix *Index) Skipped() int {
	return ix.lines - len(ix.entries)
}

// Bumped returns how many timestamps were moved forward to keep order.
func (ix *Index) Bumped() int {
	return ix.bumped
}

// First returns the oldest entry.
func (ix *Index) First() (Entry, bool) {
	if len(ix.entries) == 0 {
		return Entry{}, false
	}
	return ix.entries[0], true
}

// Last returns the newest entry.
func (ix *Index) Last() (Entry, bool) {
	if len(ix.entries) == 0 {
		return Entry{}, false
	}
	return ix.entries[len(ix.entries)-1], true
}

// search returns the first position whose time is not before t.
func (ix *Index) search(t time.Time) int {
	return sort.Search(len(ix.entries), func(i int) bool {
		return !ix.entries[i].Time.Before(t)
	})
}

// append adds a resolved timestamp, bumping it to last+1ms when it does not
// advance the index.
func (ix *Index) append(line int, t time.Time) {
	if n := len(ix.entries); n > 0 {
		last := ix.entries[n-1].Time
		if !t.After(last) {
			t = last.Add(time.Millisecond)
			ix.bumped++
		}
	}
	ix.entries = append(ix.entries, Entry{Line: line, Time: t})
}
