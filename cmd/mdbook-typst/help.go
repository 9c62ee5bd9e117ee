package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdbook-typst [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render an mdbook book to a single Typst document. mdbook runs this")
	fmt.Fprintln(w, "command from `mdbook build` when book.toml contains:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  [output.typst]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "      --context <file>      Read the render context from a file, not stdin")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: <destination>/book.typ)")
	fmt.Fprintln(w, "      --stdout              Write the document to stdout")
	fmt.Fprintln(w, "  -c, --config <file>       YAML or TOML file overlaying [output.typst]")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel chapter conversions (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --prelude <ref>       Prelude file relative to the book root,")
	fmt.Fprintln(w, "                            or builtin:default, builtin:plain")
	fmt.Fprintln(w, "      --prelude-str <s>     Literal prelude text")
	fmt.Fprintln(w, "      --no-outline          Omit the table of contents")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w, "      --version             Print version and exit")
	fmt.Fprintln(w, "  -h, --help                Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[output.typst] keys:")
	fmt.Fprintln(w, "  prelude, prelude-str, outline (true), outline-depth (2),")
	fmt.Fprintln(w, "  output-file (book.typ), prelude-check (true), workers (0)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDBOOK_TYPST_CONFIG       Overlay file, when --config is not given")
	fmt.Fprintln(w, "  MDBOOK_TYPST_PRELUDE      Prelude reference")
	fmt.Fprintln(w, "  MDBOOK_TYPST_WORKERS      Parallel chapter conversions")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 success, 1 error, 2 usage or configuration, 3 I/O")
}
