// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"
)

// StdinIsTerminal reports whether stdin is an interactive terminal rather
// than a pipe from the book-build host.
var StdinIsTerminal = func() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// ForContextInput returns hints for a render context that could not be read.
// Run by hand, the renderer is usually waiting on a terminal instead of the
// host's JSON.
func ForContextInput(fromFile bool) string {
	var hints []string
	if !fromFile && StdinIsTerminal() {
		hints = append(hints, "mdbook-typst reads the book from stdin; run it through `mdbook build`")
	}
	hints = append(hints, "add an [output.typst] table to book.toml, or pass --context FILE")
	return formatHints(hints)
}

// ForPreludeNotFound returns hints for a prelude that could not be loaded.
func ForPreludeNotFound(builtins []string) string {
	hint := "prelude paths are relative to the book root"
	if len(builtins) > 0 {
		refs := make([]string, len(builtins))
		for i, name := range builtins {
			refs[i] = "builtin:" + name
		}
		hint += "; built-in: " + strings.Join(refs, ", ")
	}
	return format(hint)
}

// ForMissingPreludeFunction returns hints for a prelude lacking definitions
// the document calls.
func ForMissingPreludeFunction(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	defs := make([]string, len(missing))
	for i, name := range missing {
		defs[i] = "#let " + name + "(...)"
	}
	return formatHints([]string{
		"define " + strings.Join(defs, ", "),
		"or set prelude-check = false",
	})
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound() string {
	return format("use --config /path/to/typst.yaml or typst.toml")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
