package document

import "errors"

var (
	// ErrUnknownType indicates an unrecognized document type tag.
	ErrUnknownType = errors.New("unknown document type")
	// ErrDocumentNotFound indicates the document doesn't exist.
	ErrDocumentNotFound = errors.New("document not found")
)
