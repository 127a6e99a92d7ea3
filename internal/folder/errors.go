package folder

import "github.com/abduss/docshelf/internal/apperr"

var (
	// ErrFolderNotFound signals that the folder could not be located.
	ErrFolderNotFound = apperr.New(apperr.KindNotFound, "folder not found")
	// ErrInvalidName is returned for blank or oversized folder names.
	ErrInvalidName = apperr.New(apperr.KindInvalidArgument, "folder name must be 1-255 characters")
)
