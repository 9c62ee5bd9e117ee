package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	mdtypst "github.com/alnah/go-mdbook-typst"
	"github.com/alnah/go-mdbook-typst/internal/assets"
	"github.com/alnah/go-mdbook-typst/internal/config"
	"github.com/alnah/go-mdbook-typst/internal/fileutil"
	"github.com/alnah/go-mdbook-typst/internal/hints"
	"github.com/alnah/go-mdbook-typst/internal/logfields"
)

// ErrReadContext indicates the render context could not be read.
var ErrReadContext = errors.New("failed to read render context")

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	flags, err := parseFlags(args, env.Stderr)
	if err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		fmt.Fprintln(env.Stderr, "Run 'mdbook-typst --help' for usage.")
		return exitCodeFor(err)
	}
	if flags.help {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	if flags.version {
		fmt.Fprintln(env.Stdout, "mdbook-typst", Version)
		return ExitSuccess
	}

	logger := newLogger(env.Stderr, flags.quiet, flags.verbose)
	if flags.verbose {
		env.SetMaxProcs(stderrf(env.Stderr))
	} else {
		env.SetMaxProcs(discardf)
	}

	if err := render(ctx, flags, env, logger); err != nil {
		logger.Error("render failed", logfields.Error(err))
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, flags))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// newLogger builds the stderr text logger: -v shows debug, -q only errors.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// render reads the context, layers the configuration, renders and writes.
// Nothing is written unless rendering succeeds.
func render(ctx context.Context, flags *cliFlags, env *Environment, logger *slog.Logger) error {
	warnUnknownEnvVars(logger)

	rc, err := readContext(flags.contextFile, env.Stdin)
	if err != nil {
		return err
	}
	logger.Debug("render context decoded",
		logfields.Path(rc.Root),
		slog.String("host_version", rc.Version),
	)

	opts, err := resolveOptions(rc, flags, loadEnvConfig(logger), logger)
	if err != nil {
		return err
	}

	cfg := mdtypst.ConfigFromOptions(rc.Root, rc.Config.Book.SrcDir(), opts)
	renderer := mdtypst.NewRenderer(
		mdtypst.WithWorkers(opts.Workers),
		mdtypst.WithLogger(logger),
	)
	result, err := renderer.RenderContext(ctx, rc, cfg)
	if err != nil {
		return err
	}

	if flags.stdout {
		if _, err := io.WriteString(env.Stdout, result.Document); err != nil {
			return fmt.Errorf("%w: stdout: %v", mdtypst.ErrWriteOutput, err)
		}
		return nil
	}

	out := outputPath(flags.output, rc.Destination, opts.OutputFile)
	if err := fileutil.WriteAtomic(out, []byte(result.Document), 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", mdtypst.ErrWriteOutput, out, err)
	}
	logger.Info("document written", logfields.Path(out), logfields.Bytes(len(result.Document)))
	return nil
}

// readContext decodes the render context from file, or from stdin when
// file is empty.
func readContext(file string, stdin io.Reader) (*mdtypst.RenderContext, error) {
	r := stdin
	if file != "" {
		f, err := os.Open(file) // #nosec G304 -- path is user-provided
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadContext, err)
		}
		defer f.Close()
		r = f
	}
	return mdtypst.DecodeContext(r)
}

// resolveOptions layers, lowest first: defaults, [output.typst], overlay
// file, environment, flags.
func resolveOptions(rc *mdtypst.RenderContext, flags *cliFlags, envCfg *envConfig, logger *slog.Logger) (*config.Options, error) {
	opts := config.Default()
	if err := opts.FromJSON(rc.Config.RendererOptions()); err != nil {
		return nil, &mdtypst.ConfigError{Op: "read", Path: "output.typst", Err: err}
	}

	overlay := flags.config
	if overlay == "" {
		overlay = envCfg.ConfigPath
	}
	if overlay != "" {
		if err := opts.LoadFile(overlay); err != nil {
			return nil, &mdtypst.ConfigError{Op: "load", Path: overlay, Err: err}
		}
		logger.Debug("config overlay loaded", logfields.Path(overlay))
	}

	applyEnvConfig(envCfg, opts, logger)
	mergeFlags(flags, opts)

	if err := opts.Validate(); err != nil {
		return nil, &mdtypst.ConfigError{Op: "validate", Err: err}
	}
	return opts, nil
}

// mergeFlags applies explicitly set flags over opts.
func mergeFlags(flags *cliFlags, opts *config.Options) {
	if flags.changed("prelude") {
		opts.Prelude = flags.prelude
		opts.PreludeStr = ""
	}
	if flags.changed("prelude-str") {
		opts.PreludeStr = flags.preludeStr
	}
	if flags.changed("workers") {
		opts.Workers = flags.workers
	}
	if flags.noOutline {
		opts.Outline = false
	}
}

// outputPath picks the document path: --output as given, otherwise the
// configured file name under the host's destination directory.
func outputPath(flagOutput, destination, outputFile string) string {
	if flagOutput != "" {
		return flagOutput
	}
	if destination == "" {
		return outputFile
	}
	return filepath.Join(destination, outputFile)
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, flags *cliFlags) string {
	switch {
	case errors.Is(err, assets.ErrPreludeNotFound):
		return hints.ForPreludeNotFound(assets.BuiltinNames())
	case errors.Is(err, mdtypst.ErrMissingPreludeFunction):
		return hints.ForMissingPreludeFunction(assets.RequiredFunctions)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound()
	case errors.Is(err, mdtypst.ErrDecodeContext):
		return hints.ForContextInput(flags.contextFile != "")
	case errors.Is(err, mdtypst.ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
