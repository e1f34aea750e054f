// Package editor opens a file at a line in an external editor.
//
// The editor is described by an executable and an argument template in
// which {file} and {line} are replaced, for example "+{line} {file}" for vi
// or "-g {file}:{line}" for VS Code.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrEditorNotFound is returned when no editor executable can be located.
var ErrEditorNotFound = errors.New("editor not found")

// Find resolves the editor executable. It tries, in order:
//  1. name itself when it is a path to an executable
//  2. name looked up in PATH
//  3. $VISUAL and then $EDITOR looked up the same way
func Find(name string) (string, error) {
	for _, candidate := range []string{name, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if candidate == "" {
			continue
		}
		if strings.ContainsRune(candidate, filepath.Separator) {
			if isExecutable(candidate) {
				return candidate, nil
			}
			continue
		}
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", ErrEditorNotFound
}

// Expand splits template into arguments and substitutes the placeholders in
// each one. A file path containing spaces stays a single argument.
func Expand(template, file string, line int) []string {
	r := strings.NewReplacer("{file}", file, "{line}", strconv.Itoa(line))
	fields := strings.Fields(template)
	args := make([]string, len(fields))
	for i, field := range fields {
		args[i] = r.Replace(field)
	}
	return args
}

// Command builds the editor invocation for file at a 1-based line. The
// process is connected to the caller's terminal.
func Command(path, template, file string, line int) *exec.Cmd {
	// #nosec G204 -- the editor is chosen by the user
	cmd := exec.Command(path, Expand(template, file, line)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// Open finds the editor and runs it. With wait unset the editor is started
// and left running.
func Open(name, template, file string, line int, wait bool) error {
	path, err := Find(name)
	if err != nil {
		return err
	}

	cmd := Command(path, template, file, line)
	if wait {
		if err := cmd.Run(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return fmt.Errorf("editor exited with code %d", exitErr.ExitCode())
			}
			return fmt.Errorf("running editor: %w", err)
		}
		return nil
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting editor: %w", err)
	}
	return cmd.Process.Release()
}

// isExecutable checks if a file exists and is executable.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0o111 != 0
}
