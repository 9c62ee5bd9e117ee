package mdtypst

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-mdbook-typst/internal/assets"
)

// Prelude sources reported by ResolvePrelude.
const (
	SourcePreludeStr = "prelude-str"
	SourceDefault    = assets.BuiltinPrefix + assets.DefaultPreludeName
)

// ResolvePrelude picks the prelude for cfg: PreludeStr when set, otherwise
// the Prelude reference, otherwise the built-in default. A configured file
// that cannot be read is an error, never a fallback. The result is validated
// before it is returned. The second value names where the prelude came from.
func ResolvePrelude(cfg Config) (string, string, error) {
	var content, source string
	switch {
	case cfg.PreludeStr != "":
		content, source = cfg.PreludeStr, SourcePreludeStr
	case cfg.Prelude != "":
		var err error
		content, source, err = loadPrelude(cfg.Root, cfg.Prelude)
		if err != nil {
			return "", source, err
		}
	default:
		content, source = assets.DefaultPrelude(), SourceDefault
	}

	if err := assets.ValidatePrelude(content, !cfg.SkipPreludeCheck); err != nil {
		return "", source, &ConfigError{Op: "validate prelude", Path: source, Err: validationError(content, err)}
	}
	return content, source, nil
}

func loadPrelude(root, ref string) (string, string, error) {
	resolver, err := assets.NewPreludeResolver(rootFor(root, ref))
	if err != nil {
		return "", ref, &ConfigError{Op: "read prelude", Path: ref, Err: convertAssetError(err)}
	}
	source := resolver.Source(ref)
	content, err := resolver.LoadPrelude(ref)
	if err != nil {
		return "", source, &ConfigError{Op: "read prelude", Path: source, Err: convertAssetError(err)}
	}
	return content, source, nil
}

// rootFor skips opening the book root for built-in references.
func rootFor(root, ref string) string {
	if assets.IsBuiltin(ref) {
		return ""
	}
	if root == "" {
		return "."
	}
	return root
}

// convertAssetError maps a loader error to ErrPreludeRead, keeping the
// asset error in the chain.
func convertAssetError(err error) error {
	return fmt.Errorf("%w: %w", ErrPreludeRead, err)
}

// validationError maps a prelude validation failure to a public sentinel.
func validationError(content string, err error) error {
	if errors.Is(err, assets.ErrMissingPreludeFunction) {
		return fmt.Errorf("%w: %s", ErrMissingPreludeFunction, strings.Join(assets.MissingFunctions(content), ", "))
	}
	return ErrEmptyPrelude
}
