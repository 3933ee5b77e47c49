package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/reportai/constants"
)

// File is one raw upload. Open is called at most once per ingest.
type File struct {
	Name      string
	MediaType string // MIME type or extension; empty means infer from Name
	Size      int64
	Open      func() (io.ReadCloser, error)
}

// FromBytes wraps an in-memory upload.
func FromBytes(name, mediaType string, b []byte) File {
	return File{
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(b)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		},
	}
}

// FileFromPath stats path and infers the media type from its extension.
func FileFromPath(path string) (File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Name:      filepath.Base(path),
		MediaType: constants.NormalizeExt(filepath.Ext(path)),
		Size:      st.Size(),
		Open:      func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// AllowedExt checks if a file extension is one of the supported formats.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// statConcurrency bounds parallel stat calls in FilesFromDir.
const statConcurrency = 8

// FilesFromDir walks root and returns every supported file in walk order.
// Hidden files and directories are skipped when skipHidden is set.
func FilesFromDir(ctx context.Context, root string, skipHidden bool) ([]File, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if AllowedExt(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	files := make([]File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statConcurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := FileFromPath(p)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
