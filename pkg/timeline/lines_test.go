package timeline

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadLines(t *testing.T) {
	path := writeLog(t, "t.log", "one\ntwo\nthree\nfour\n")

	got, err := ReadLines(context.Background(), path, []int{2, 4, 9})
	if err != nil {
		t.Fatalf("ReadLines() error = %v", err)
	}
	want := map[int]string{2: "two", 4: "four"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadLines() = %v, want %v", got, want)
	}
}

func TestReadLines_Missing(t *testing.T) {
	_, err := ReadLines(context.Background(), filepath.Join(t.TempDir(), "x"), []int{1})
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("error = %v, want ErrFileNotFound", err)
	}
}

func TestAround(t *testing.T) {
	got := Around([]int{2, 4}, 1)
	want := []int{1, 2, 3, 4, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Around() = %v, want %v", got, want)
	}
	if got := Around([]int{1}, 0); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("Around() = %v", got)
	}
}
