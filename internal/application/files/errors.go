package files

import "errors"

// Validation errors (400).
var (
	ErrNoFilesUploaded = errors.New("No files uploaded. Use field name \"images\".")
	ErrAltTextRequired = errors.New("Each file must have altText indicating its type.")
	ErrOwnerRequired   = errors.New("Provide listing or agent")
	ErrURLRequired     = errors.New("url is required")
)

// Not-found errors (404). ErrFileIDMismatch guards against cross-owner
// writes when a caller supplies a fileId belonging to another listing.
var (
	ErrRecordNotFound = errors.New("File record not found")
	ErrFileIDMismatch = errors.New("fileId not found for the provided listing")
)
