// Package blob persists the raw bytes of uploaded documents. A blob is
// addressed by a generated path that never collides with another blob and is
// never shown to users.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/abduss/docshelf/internal/apperr"
	"github.com/google/uuid"
)

var (
	// ErrNotFound signals that no blob exists at the given path. Seen on reads
	// it means the catalog and the store have drifted apart.
	ErrNotFound = apperr.New(apperr.KindNotFound, "blob not found")
	// ErrInvalidPath rejects paths that would escape the content root.
	ErrInvalidPath = apperr.New(apperr.KindInvalidArgument, "invalid blob path")
)

// Store is implemented by DiskStore and MinIOStore.
type Store interface {
	// Put writes the reader's bytes under a fresh name derived from
	// suggestedName and returns the blob path.
	Put(ctx context.Context, r io.Reader, suggestedName string) (string, error)
	// Get returns the blob's bytes or ErrNotFound.
	Get(ctx context.Context, blobPath string) ([]byte, error)
	// Remove deletes the blob. A missing blob is not an error.
	Remove(ctx context.Context, blobPath string) error
	// List returns every blob path currently stored.
	List(ctx context.Context) ([]string, error)
}

const maxNameRunes = 80

// newBlobName builds <UTC timestamp>_<random token>_<sanitized name>.
func newBlobName(suggestedName string, now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s_%s_%s", now.UTC().Format("20060102T150405.000000000"), token, sanitize(suggestedName))
}

// sanitize keeps letters in any script, digits, '-', '_' and '.', replaces
// everything else with '_' and caps the length.
func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	n := 0
	for _, r := range name {
		if n == maxNameRunes {
			break
		}
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
		n++
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

func validPath(blobPath string) bool {
	if blobPath == "" || strings.ContainsAny(blobPath, "/\\") {
		return false
	}
	return blobPath != "." && blobPath != ".."
}
