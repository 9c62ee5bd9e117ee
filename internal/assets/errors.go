package assets

import "errors"

// Sentinel errors for prelude operations.
var (
	// ErrPreludeNotFound indicates the referenced prelude does not exist.
	ErrPreludeNotFound = errors.New("prelude not found")

	// ErrInvalidAssetName indicates a built-in name or prelude path is
	// unusable, such as an empty name.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the book root is not a valid directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error occurred while reading a prelude.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrEmptyPrelude indicates the prelude has no content.
	ErrEmptyPrelude = errors.New("prelude is empty")

	// ErrMissingPreludeFunction indicates the prelude does not define a
	// function the generated document calls.
	ErrMissingPreludeFunction = errors.New("prelude missing required function")
)
