package folder

import (
	"time"

	"github.com/google/uuid"
)

// Folder groups documents. It has no parent; the hierarchy is one level deep.
type Folder struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_date"`
}

// FileObject is the minimal view of a document needed to cascade a folder delete.
type FileObject struct {
	ID       uuid.UUID
	BlobPath string
}
