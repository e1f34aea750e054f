// Package matcher compiles search options into single-line predicates.
package matcher

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// DefaultRegexTimeout bounds a single regex evaluation.
const DefaultRegexTimeout = time.Second

// ErrInvalidPattern is returned by Compile for a regex that does not compile.
var ErrInvalidPattern = errors.New("invalid search pattern")

// Options describes a search.
type Options struct {
	Query         string
	CaseSensitive bool
	WholeWord     bool
	UseRegex      bool

	// RegexTimeout bounds each regex evaluation; zero means DefaultRegexTimeout.
	RegexTimeout time.Duration
}

// Predicate reports whether a line matches.
type Predicate func(line string) bool

// Never matches nothing.
func Never(string) bool { return false }

// Compile builds the predicate for opts. An empty query never matches.
// An invalid regex yields Never together with an ErrInvalidPattern error;
// callers may report the error and keep scanning with the returned predicate.
func Compile(opts Options) (Predicate, error) {
	if opts.Query == "" {
		return Never, nil
	}
	if opts.UseRegex {
		return compileRegex(opts)
	}
	return compilePlain(opts), nil
}

func compileRegex(opts Options) (Predicate, error) {
	pattern := opts.Query
	if opts.WholeWord {
		pattern = `\b(?:` + pattern + `)\b`
	}

	flags := regexp2.None
	if !opts.CaseSensitive {
		flags |= regexp2.IgnoreCase
	}

	re, err := regexp2.Compile(pattern, flags)
	if err != nil {
		return Never, fmt.Errorf("%w %q: %v", ErrInvalidPattern, opts.Query, err)
	}

	timeout := opts.RegexTimeout
	if timeout <= 0 {
		timeout = DefaultRegexTimeout
	}
	re.MatchTimeout = timeout

	return func(line string) bool {
		ok, err := re.MatchString(line)
		// A timeout counts as no match.
		return err == nil && ok
	}, nil
}

func compilePlain(opts Options) Predicate {
	query := opts.Query
	fold := func(s string) string { return s }
	if !opts.CaseSensitive {
		fold = strings.ToLower
		query = strings.ToLower(query)
	}

	if !opts.WholeWord {
		return func(line string) bool {
			return strings.Contains(fold(line), query)
		}
	}

	return func(line string) bool {
		return containsWord(fold(line), query)
	}
}

// containsWord reports whether word occurs in s with no letter or digit
// immediately before or after it.
func containsWord(s, word string) bool {
	offset := 0
	for {
		i := strings.Index(s[offset:], word)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(word)
		if !wordRuneBefore(s, start) && !wordRuneAfter(s, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		offset = start + size
	}
}

func wordRuneBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordRune(r)
}

func wordRuneAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
