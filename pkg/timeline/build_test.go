package timeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func writeLog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func assertStrictlyIncreasing(t *testing.T, ix *Index) {
	t.Helper()
	for i := 1; i < ix.Len(); i++ {
		if !ix.At(i - 1).Time.Before(ix.At(i).Time) {
			t.Fatalf("times[%d]=%v not before times[%d]=%v", i-1, ix.At(i-1).Time, i, ix.At(i).Time)
		}
	}
}

func TestBuild_MixedFormats(t *testing.T) {
	content := `2024/01/09 23:59:58 start
header without time
01/09 23:59:59 month-day line
00:00:01 time only after midnight

00:00:02 PROC detail
`
	path := writeLog(t, "target.log", content)

	ix, err := Build(context.Background(), path, WithClock(clock))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if ix.Path() != path {
		t.Errorf("Path() = %q, want %q", ix.Path(), path)
	}
	if ix.Lines() != 6 {
		t.Errorf("Lines() = %d, want 6", ix.Lines())
	}
	if ix.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", ix.Len())
	}
	if ix.Skipped() != 2 {
		t.Errorf("Skipped() = %d, want 2", ix.Skipped())
	}

	want := []Entry{
		{Line: 1, Time: time.Date(2024, 1, 9, 23, 59, 58, 0, time.UTC)},
		{Line: 3, Time: time.Date(2024, 1, 9, 23, 59, 59, 0, time.UTC)},
		{Line: 4, Time: time.Date(2024, 1, 10, 0, 0, 1, 0, time.UTC)},
		{Line: 6, Time: time.Date(2024, 1, 10, 0, 0, 2, 0, time.UTC)},
	}
	for i, w := range want {
		got := ix.At(i)
		if got.Line != w.Line || !got.Time.Equal(w.Time) {
			t.Errorf("At(%d) = %+v, want %+v", i, got, w)
		}
	}
	assertStrictlyIncreasing(t, ix)
}

func TestBuild_BumpsDuplicatesAndRegressions(t *testing.T) {
	content := `2024/01/10 10:00:00 a
2024/01/10 10:00:00 b
2024/01/10 10:00:00 c
2024/01/10 09:59:00 out of order
2024/01/10 10:00:05 d
`
	path := writeLog(t, "dups.log", content)

	ix, err := Build(context.Background(), path, WithClock(clock))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	assertStrictlyIncreasing(t, ix)
	if ix.Bumped() != 3 {
		t.Errorf("Bumped() = %d, want 3", ix.Bumped())
	}

	base := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	if got := ix.At(1).Time; !got.Equal(base.Add(time.Millisecond)) {
		t.Errorf("At(1).Time = %v, want %v", got, base.Add(time.Millisecond))
	}
	if got := ix.At(3).Time; !got.Equal(base.Add(3 * time.Millisecond)) {
		t.Errorf("At(3).Time = %v, want %v", got, base.Add(3*time.Millisecond))
	}
	if got := ix.At(4).Time; !got.Equal(base.Add(5 * time.Second)) {
		t.Errorf("At(4).Time = %v, want %v", got, base.Add(5*time.Second))
	}
}

func TestBuild_SeedsReferenceFromClock(t *testing.T) {
	path := writeLog(t, "timeonly.log", "23:00:00 late yesterday\n")

	ix, err := Build(context.Background(), path, WithClock(func() time.Time {
		return time.Date(2024, 1, 10, 0, 30, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := time.Date(2024, 1, 9, 23, 0, 0, 0, time.UTC)
	if got := ix.At(0).Time; !got.Equal(want) {
		t.Errorf("At(0).Time = %v, want %v", got, want)
	}
}

func TestBuild_FileNotFound(t *testing.T) {
	_, err := Build(context.Background(), filepath.Join(t.TempDir(), "missing.log"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("Build() error = %v, want ErrFileNotFound", err)
	}
}

func TestBuild_Cancelled(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < cancelCheckInterval*2; i++ {
		sb.WriteString("10:00:00 line\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildFrom(ctx, "big.log", strings.NewReader(sb.String()), WithClock(clock))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("BuildFrom() error = %v, want context.Canceled", err)
	}
}

func TestBuild_EmptyFile(t *testing.T) {
	path := writeLog(t, "empty.log", "")

	ix, err := Build(context.Background(), path)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if ix.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ix.Len())
	}
	if _, ok := ix.First(); ok {
		t.Error("First() should report false on empty index")
	}
	if _, ok := ix.Last(); ok {
		t.Error("Last() should report false on empty index")
	}
}
