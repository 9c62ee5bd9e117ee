package mdtypst

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	// ErrConfig matches every *ConfigError.
	ErrConfig = errors.New("configuration error")

	// Prelude errors, wrapped in a *ConfigError.
	ErrEmptyPrelude           = errors.New("prelude is empty")
	ErrMissingPreludeFunction = errors.New("prelude missing required function")
	ErrPreludeRead            = errors.New("failed to read prelude")

	// Option validation errors, wrapped in a *ConfigError.
	ErrInvalidOutlineDepth = errors.New("invalid outline depth")

	// ErrDecodeContext indicates the host's render context is malformed.
	ErrDecodeContext = errors.New("invalid render context")

	// ErrWriteOutput indicates the document could not be written.
	ErrWriteOutput = errors.New("failed to write output")

	// ErrInternal indicates a recovered panic.
	ErrInternal = errors.New("internal error")
)

// ConfigError reports a configuration problem found before any chapter is
// converted. No output is produced when it is returned.
type ConfigError struct {
	Op   string // what was being configured, e.g. "read prelude"
	Path string // file or option involved; may be empty
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("config: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConfig) true for any *ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }
