package importers

import (
	"errors"
	"fmt"
)

var (
	// ErrUploadRejected marks failures detected before any parsing could
	// begin: wrong extension, unreadable upload, unreadable archive.
	ErrUploadRejected = errors.New("upload rejected")

	// ErrDocumentMalformed marks a single JSON document that cannot be used
	// at all. The whole import fails; there is no partial recovery.
	ErrDocumentMalformed = errors.New("document malformed")
)

// EncodingError reports bytes that are not valid UTF-8 text.
type EncodingError struct {
	Offset int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("invalid UTF-8 encoding at byte %d", e.Offset)
}

func (e *EncodingError) Is(target error) bool {
	return target == ErrDocumentMalformed
}

// SyntaxError reports text that is not syntactically valid JSON.
type SyntaxError struct {
	Offset int64
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid JSON at offset %d: %v", e.Offset, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrDocumentMalformed
}

// ShapeError reports valid JSON whose structure is neither a campaign object
// nor an array of sections.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "unsupported JSON structure: " + e.Reason
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrDocumentMalformed
}

// ArchiveError reports an upload that cannot be opened as a ZIP archive.
type ArchiveError struct {
	Err error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("unreadable ZIP archive: %v", e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

func (e *ArchiveError) Is(target error) bool {
	return target == ErrUploadRejected
}

// IsEncodingError reports whether err is, or wraps, an EncodingError.
func IsEncodingError(err error) bool {
	var encErr *EncodingError
	return errors.As(err, &encErr)
}
