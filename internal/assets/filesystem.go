package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader loads prelude files relative to the book root.
// Implements PreludeLoader interface.
type FilesystemLoader struct {
	basePath string
}

// NewFilesystemLoader creates a FilesystemLoader for the given book root.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}

	return &FilesystemLoader{basePath: absPath}, nil
}

// LoadPrelude reads the prelude at ref. Relative paths, slash or OS
// separated, are joined to the book root; absolute paths are used as is.
func (f *FilesystemLoader) LoadPrelude(ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidAssetName)
	}

	filePath := f.Path(ref)
	content, err := os.ReadFile(filePath) // #nosec G304 -- path comes from the book's own configuration
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrPreludeNotFound, filePath)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}

	return string(content), nil
}

// Path returns the path ref resolves to.
func (f *FilesystemLoader) Path(ref string) string {
	p := filepath.FromSlash(ref)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(f.basePath, p)
}

// Compile-time interface check.
var _ PreludeLoader = (*FilesystemLoader)(nil)
