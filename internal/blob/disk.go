package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abduss/docshelf/internal/apperr"
)

const tmpSuffix = ".tmp"

// DiskStore keeps blobs as flat files inside a content directory.
type DiskStore struct {
	dir string
	now func() time.Time
}

// NewDiskStore creates the content directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, apperr.Wrap(apperr.KindStorageWrite, "create content dir", err)
	}
	return &DiskStore{dir: dir, now: time.Now}, nil
}

// Dir returns the content directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Put writes to a temp file, fsyncs, then renames into place so a crash never
// leaves a half-written blob under its final name.
func (s *DiskStore) Put(ctx context.Context, r io.Reader, suggestedName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := newBlobName(suggestedName, s.now())
	fullPath := filepath.Join(s.dir, name)
	tmpPath := fullPath + tmpSuffix

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", apperr.Wrap(apperr.KindStorageWrite, "create blob", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", apperr.Wrap(apperr.KindStorageWrite, "write blob", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", apperr.Wrap(apperr.KindStorageWrite, "sync blob", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", apperr.Wrap(apperr.KindStorageWrite, "close blob", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", apperr.Wrap(apperr.KindStorageWrite, "commit blob", err)
	}

	return name, nil
}

// Get reads the whole blob.
func (s *DiskStore) Get(ctx context.Context, blobPath string) ([]byte, error) {
	if !validPath(blobPath) {
		return nil, ErrInvalidPath
	}
	data, err := os.ReadFile(filepath.Join(s.dir, blobPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", blobPath, ErrNotFound)
		}
		return nil, apperr.Wrap(apperr.KindStorageWrite, "read blob "+blobPath, err)
	}
	return data, nil
}

// Remove deletes the blob; it returns nil when the blob is already gone.
func (s *DiskStore) Remove(ctx context.Context, blobPath string) error {
	if !validPath(blobPath) {
		return ErrInvalidPath
	}
	err := os.Remove(filepath.Join(s.dir, blobPath))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Wrap(apperr.KindStorageWrite, "remove blob "+blobPath, err)
	}
	return nil
}

// List returns committed blob names; in-flight temp files are skipped.
func (s *DiskStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorageWrite, "list content dir", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), tmpSuffix) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
