package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"quoteboard/internal/logging"
	"quoteboard/internal/quote"
)

// FileSource reads a local CSV file.
type FileSource struct {
	Path string
}

// Describe returns the file's base name.
func (s *FileSource) Describe() string {
	return filepath.Base(s.Path)
}

// Load reads and parses the file. A missing file yields ErrNotFound.
func (s *FileSource) Load(ctx context.Context) (*quote.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timer := logging.StartTimer(logging.CategoryLoader, "load "+s.Path)
	defer timer.Stop()

	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	table, enc, err := decodeCSV(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, s.Path, err)
	}
	logging.Loader("read %s (%s): %d rows, %d columns", s.Path, enc, len(table.Rows), len(table.Header))
	return table, nil
}
