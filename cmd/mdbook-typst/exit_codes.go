package main

import (
	"errors"
	"os"

	mdtypst "github.com/alnah/go-mdbook-typst"
	"github.com/alnah/go-mdbook-typst/internal/config"
)

// Exit codes for mdbook-typst.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Document written
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags or configuration
	ExitIO      = 3 // Context unreadable, output not writable
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
// Configuration errors are checked first: a missing prelude file is a
// configuration problem, not an I/O one.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config errors (exit 2)
	if errors.Is(err, mdtypst.ErrConfig) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrUnsupportedFormat) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrInputTooLarge) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadContext) ||
		errors.Is(err, mdtypst.ErrWriteOutput) {
		return ExitIO
	}

	return ExitGeneral
}
