package file

import "github.com/abduss/docshelf/internal/apperr"

var (
	// ErrFileNotFound signals that the file could not be located.
	ErrFileNotFound = apperr.New(apperr.KindNotFound, "file not found")
	// ErrUnsupportedType rejects uploads that are neither .md nor .pdf.
	ErrUnsupportedType = apperr.New(apperr.KindUnsupportedType, "only .md and .pdf files are supported")
	// ErrFileTooLarge signals that the upload exceeds configured limits.
	ErrFileTooLarge = apperr.New(apperr.KindPayloadTooLarge, "file too large")
	// ErrInvalidName is returned for blank or oversized display names.
	ErrInvalidName = apperr.New(apperr.KindInvalidArgument, "name must be 1-255 characters after trimming")
	// ErrDuplicateID means a generated id collided with an existing row.
	ErrDuplicateID = apperr.New(apperr.KindCatalog, "duplicate file id")
)
