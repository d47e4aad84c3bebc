package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fontspector/internal/config"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openDestination opens path for writing, creating parent directories.
// config.Stdout selects stdout, which is never closed.
func openDestination(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" {
		return nil, fmt.Errorf("output path required")
	}
	if path == config.Stdout {
		if stdout == nil {
			stdout = os.Stdout
		}
		return nopCloser{stdout}, nil
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
