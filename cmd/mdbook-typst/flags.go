package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage indicates invalid command-line arguments.
var ErrUsage = errors.New("invalid usage")

// cliFlags holds all command-line flags.
type cliFlags struct {
	contextFile string
	output      string
	stdout      bool
	prelude     string
	preludeStr  string
	config      string
	workers     int
	noOutline   bool
	quiet       bool
	verbose     bool
	version     bool
	help        bool

	// changed records which flags were set explicitly, so unset flags do
	// not override lower layers.
	changed func(name string) bool
}

// parseFlags parses args, excluding the program name.
func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet("mdbook-typst", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &cliFlags{}

	fs.StringVar(&f.contextFile, "context", "", "read the render context from FILE instead of stdin")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: <destination>/<output-file>)")
	fs.BoolVar(&f.stdout, "stdout", false, "write the document to stdout")
	fs.StringVar(&f.prelude, "prelude", "", "prelude file relative to the book root, or builtin:NAME")
	fs.StringVar(&f.preludeStr, "prelude-str", "", "literal prelude text")
	fs.StringVarP(&f.config, "config", "c", "", "YAML or TOML file overlaying [output.typst]")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel chapter conversions (0 = auto)")
	fs.BoolVar(&f.noOutline, "no-outline", false, "omit the table of contents")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")

	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			f.help = true
			f.changed = fs.Changed
			return f, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	if f.quiet && f.verbose {
		return nil, fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	if f.stdout && f.output != "" {
		return nil, fmt.Errorf("%w: --stdout and --output are mutually exclusive", ErrUsage)
	}

	f.changed = fs.Changed
	return f, nil
}
