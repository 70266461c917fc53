package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound indicates the manifest file is absent.
// Callers must treat this as terminal: no removals may be attempted.
var ErrNotFound = errors.New("manifest not found")

// Entry is a single manifest line: the absolute path of an installed file.
type Entry string

// Load reads an install manifest and returns its entries in file order.
// The manifest is plain UTF-8 text, one path per line. Empty lines
// (including the trailing one a final newline produces) are discarded.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return parse(string(data)), nil
}

func parse(content string) []Entry {
	lines := strings.Split(content, "\n")
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		entries = append(entries, Entry(line))
	}
	return entries
}
