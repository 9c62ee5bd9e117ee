package assets

import (
	"fmt"
	"strings"
)

// RequiredFunctions are the prelude functions the generated document calls.
var RequiredFunctions = []string{"unum_chap", "bookpart", "htmlblock"}

// ValidateAssetName checks that a built-in name is safe for use as a
// filename. Returns ErrInvalidAssetName if the name is empty or contains path
// separators, dots, or traversal characters.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

// ValidatePrelude checks that content is not blank and, when checkFunctions
// is set, that it defines every RequiredFunctions entry with "#let name(".
// The check is textual; Typst semantics are not validated.
func ValidatePrelude(content string, checkFunctions bool) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyPrelude
	}
	if !checkFunctions {
		return nil
	}
	if missing := MissingFunctions(content); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingPreludeFunction, strings.Join(missing, ", "))
	}
	return nil
}

// MissingFunctions returns the required functions content does not define.
func MissingFunctions(content string) []string {
	var missing []string
	for _, name := range RequiredFunctions {
		if !strings.Contains(content, "#let "+name+"(") {
			missing = append(missing, name)
		}
	}
	return missing
}
