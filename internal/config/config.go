// Package config holds the renderer options and loads them from the host's
// [output.typst] table and from YAML or TOML overlay files.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-mdbook-typst/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrConfigParse       = errors.New("failed to parse config")
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrInputTooLarge     = errors.New("config input exceeds maximum size")
	ErrInvalidValue      = errors.New("invalid config value")
)

// Option limits.
const (
	MinOutlineDepth = 1
	MaxOutlineDepth = 6
	MaxWorkers      = 64
	MaxPreludeBytes = 1 << 20 // prelude-str
)

// Defaults.
const (
	DefaultOutlineDepth = 2
	DefaultOutputFile   = "book.typ"
)

// Options are the renderer settings. Keys are kebab-case in every format,
// matching the host's book.toml.
type Options struct {
	// Prelude is a file relative to the book root, or "builtin:{name}".
	Prelude string `json:"prelude" yaml:"prelude" toml:"prelude"`
	// PreludeStr is literal prelude text. It wins over Prelude.
	PreludeStr   string `json:"prelude-str" yaml:"prelude-str" toml:"prelude-str"`
	Outline      bool   `json:"outline" yaml:"outline" toml:"outline"`
	OutlineDepth int    `json:"outline-depth" yaml:"outline-depth" toml:"outline-depth"`
	OutputFile   string `json:"output-file" yaml:"output-file" toml:"output-file"`
	// PreludeCheck requires the prelude to define the structural functions.
	PreludeCheck bool `json:"prelude-check" yaml:"prelude-check" toml:"prelude-check"`
	// Workers bounds parallel chapter conversion; 0 picks from the CPU count.
	Workers int `json:"workers" yaml:"workers" toml:"workers"`
}

// Default returns the options used when nothing is configured.
func Default() *Options {
	return &Options{
		Outline:      true,
		OutlineDepth: DefaultOutlineDepth,
		OutputFile:   DefaultOutputFile,
		PreludeCheck: true,
	}
}

// Validate checks value ranges. Called by the loaders, but available for
// callers that build Options by hand.
func (o *Options) Validate() error {
	if o.OutlineDepth < MinOutlineDepth || o.OutlineDepth > MaxOutlineDepth {
		return fmt.Errorf("%w: outline-depth: must be between %d and %d, got %d",
			ErrInvalidValue, MinOutlineDepth, MaxOutlineDepth, o.OutlineDepth)
	}
	if o.Workers < 0 || o.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers: must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, o.Workers)
	}
	if err := validateOutputFile(o.OutputFile); err != nil {
		return err
	}
	if len(o.PreludeStr) > MaxPreludeBytes {
		return fmt.Errorf("%w: prelude-str: %d bytes (max %d)", ErrInvalidValue, len(o.PreludeStr), MaxPreludeBytes)
	}
	return nil
}

// validateOutputFile accepts a bare file name only.
func validateOutputFile(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: output-file: empty", ErrInvalidValue)
	case name == "." || name == "..":
		return fmt.Errorf("%w: output-file: %q", ErrInvalidValue, name)
	case fileutil.IsFilePath(name):
		return fmt.Errorf("%w: output-file: %q must not contain path separators", ErrInvalidValue, name)
	}
	return nil
}
