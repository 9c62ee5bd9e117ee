package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed preludes/*.typ
var preludes embed.FS

// EmbeddedLoader loads built-in preludes by name.
// Implements PreludeLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadPrelude loads a built-in prelude by name, without the .typ extension.
func (e *EmbeddedLoader) LoadPrelude(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := preludes.ReadFile("preludes/" + name + ".typ")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrPreludeNotFound, BuiltinPrefix+name)
	}

	return string(content), nil
}

// BuiltinNames lists the built-in prelude names in sorted order.
func BuiltinNames() []string {
	entries, err := fs.ReadDir(preludes, "preludes")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".typ"))
	}
	sort.Strings(names)
	return names
}

// Compile-time interface check.
var _ PreludeLoader = (*EmbeddedLoader)(nil)
