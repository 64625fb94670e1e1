package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrNotFound is returned when a binary is neither in a well-known
// install location nor on PATH.
var ErrNotFound = errors.New("binary not found")

// searchDirs are checked before PATH. Homebrew installs are often missing
// from the PATH of GUI-launched processes.
var searchDirs = []string{"/opt/homebrew/bin", "/usr/local/bin"}

// Discover returns the absolute path of the named binary.
func Discover(name string) (string, error) {
	return discover(name, searchDirs, exec.LookPath)
}

func discover(name string, dirs []string, lookPath func(string) (string, error)) (string, error) {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	path, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return path, nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
