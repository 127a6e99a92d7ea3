package file

import (
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Type is the document kind, derived once from the upload's extension.
type Type string

const (
	TypeMarkdown Type = "md"
	TypePDF      Type = "pdf"
)

// TypeFromName returns the document type for name's extension, compared
// case-insensitively.
func TypeFromName(name string) (Type, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".md":
		return TypeMarkdown, true
	case ".pdf":
		return TypePDF, true
	default:
		return "", false
	}
}

// ContentType is the MIME type served for the document.
func (t Type) ContentType() string {
	if t == TypePDF {
		return "application/pdf"
	}
	return "text/markdown; charset=utf-8"
}

// Record is the catalog row describing one stored document.
type Record struct {
	ID           uuid.UUID  `json:"id"`
	StoredName   string     `json:"-"`
	OriginalName string     `json:"original_name"`
	DisplayName  string     `json:"display_name"`
	SizeBytes    int64      `json:"size"`
	Type         Type       `json:"type"`
	UploadedAt   time.Time  `json:"upload_date"`
	BlobPath     string     `json:"-"`
	FolderID     *uuid.UUID `json:"folder_id"`
}

// DownloadName is the suggested filename for downloads: the display name,
// with the type's extension appended when a rename dropped it.
func (r Record) DownloadName() string {
	ext := "." + string(r.Type)
	if strings.EqualFold(path.Ext(r.DisplayName), ext) {
		return r.DisplayName
	}
	return r.DisplayName + ext
}

// NameKey is the case-insensitive duplicate-detection key for an original name.
func NameKey(name string) string {
	return strings.ToLower(name)
}

// Content is a record together with its bytes.
type Content struct {
	Record Record
	Data   []byte
}

// Text returns the Markdown source. Invalid UTF-8 sequences are replaced.
func (c Content) Text() string {
	if utf8.Valid(c.Data) {
		return string(c.Data)
	}
	return strings.ToValidUTF8(string(c.Data), "�")
}

// ListFilter narrows List results. Zero value lists everything.
type ListFilter struct {
	// Query matches a case-insensitive substring of the display or original name.
	Query    string
	FolderID *uuid.UUID
}

// ConsistencyReport lists drift between the blob store and the catalog.
type ConsistencyReport struct {
	CheckedAt    time.Time   `json:"checked_at"`
	BlobCount    int         `json:"blob_count"`
	RecordCount  int         `json:"record_count"`
	OrphanBlobs  []string    `json:"orphan_blobs"`
	DanglingRows []uuid.UUID `json:"dangling_rows"`
}

// Consistent reports whether no drift was found.
func (r ConsistencyReport) Consistent() bool {
	return len(r.OrphanBlobs) == 0 && len(r.DanglingRows) == 0
}
