package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// FileFetcher reads a document from the local filesystem.
type FileFetcher struct {
	Path string
}

func (f *FileFetcher) Kind() string   { return "file" }
func (f *FileFetcher) String() string { return "file://" + f.Path }

// Fetch opens the file.
func (f *FileFetcher) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, f.Path)
		}
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	return file, nil
}
