package assets

import (
	"fmt"
	"strings"
)

// BuiltinPrefix marks a prelude reference that names a built-in prelude.
const BuiltinPrefix = "builtin:"

// PreludeResolver routes prelude references to the embedded or the
// filesystem loader.
type PreludeResolver struct {
	files    *FilesystemLoader // nil if no book root configured
	embedded PreludeLoader
}

// NewPreludeResolver creates a PreludeResolver. If root is empty only
// built-in preludes can be loaded. Returns error if root is set but invalid.
func NewPreludeResolver(root string) (*PreludeResolver, error) {
	r := &PreludeResolver{embedded: NewEmbeddedLoader()}
	if root != "" {
		fsLoader, err := NewFilesystemLoader(root)
		if err != nil {
			return nil, err
		}
		r.files = fsLoader
	}
	return r, nil
}

// IsBuiltin reports whether ref names a built-in prelude.
func IsBuiltin(ref string) bool {
	return strings.HasPrefix(ref, BuiltinPrefix)
}

// LoadPrelude loads ref. A file that does not exist is an error, never a
// fallback to a built-in prelude.
func (r *PreludeResolver) LoadPrelude(ref string) (string, error) {
	if IsBuiltin(ref) {
		return r.embedded.LoadPrelude(strings.TrimPrefix(ref, BuiltinPrefix))
	}
	if r.files == nil {
		return "", fmt.Errorf("%w: no book root to resolve %q against", ErrInvalidBasePath, ref)
	}
	return r.files.LoadPrelude(ref)
}

// Source describes where ref is loaded from, for log lines and messages.
func (r *PreludeResolver) Source(ref string) string {
	if IsBuiltin(ref) || r.files == nil {
		return ref
	}
	return r.files.Path(ref)
}

// Compile-time interface check.
var _ PreludeLoader = (*PreludeResolver)(nil)
