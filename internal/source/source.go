// Package source resolves kodit program files into readers, ahead of
// decomposition.
package source

import (
	"fmt"
	"os"
)

// Program is a loaded source file: its path (used as the Machine's File
// identifier for Coordinate tracking) and raw bytes.
type Program struct {
	Path string
	Text []byte
}

// Load reads path into a Program.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &Program{Path: path, Text: data}, nil
}
