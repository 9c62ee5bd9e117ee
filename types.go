package mdtypst

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/alnah/go-mdbook-typst/internal/book"
	"github.com/alnah/go-mdbook-typst/internal/config"
	"github.com/alnah/go-mdbook-typst/internal/typst"
)

// Book tree types. A Book is an ordered list of items: *Part, *Chapter and
// *Separator values, with sub-chapters nested under Chapter.Children.
type (
	Book      = book.Book
	Item      = book.Item
	Part      = book.Part
	Chapter   = book.Chapter
	Separator = book.Separator

	// RenderContext is the host's JSON handed to the renderer on stdin.
	RenderContext = book.RenderContext
)

// Warning is a non-fatal conversion problem, reported in document order.
type Warning = typst.Warning

// WarningKind classifies a Warning.
type WarningKind = typst.WarningKind

// Warning kinds.
const (
	WarnStructural = typst.WarnStructural
	WarnTableShape = typst.WarnTableShape
)

// Result holds the output of a render.
type Result struct {
	Document string    // complete Typst source: prelude, outline, body
	Warnings []Warning // non-fatal problems, in document order
}

// Config holds the per-book settings of a render.
type Config struct {
	// Root is the book root. Prelude files resolve against it.
	Root string
	// SrcDir is the chapter source directory relative to Root ("src" when
	// empty). Image paths are emitted relative to Root through it.
	SrcDir string
	// PreludeStr is literal prelude text; it wins over Prelude.
	PreludeStr string
	// Prelude is a file relative to Root, or "builtin:default" /
	// "builtin:plain". Empty means the built-in default.
	Prelude string
	// SkipPreludeCheck disables the check for the structural prelude
	// functions. A blank prelude is still rejected.
	SkipPreludeCheck bool
	// Outline adds a table of contents after the prelude. Nil disables it.
	Outline *Outline
}

// Outline configures the table of contents.
type Outline struct {
	Depth int // heading levels listed, 1-6
}

// DefaultConfig returns the settings used by the host integration: the
// default prelude and a two-level outline.
func DefaultConfig() Config {
	return Config{Outline: &Outline{Depth: config.DefaultOutlineDepth}}
}

// Validate checks the outline depth. A nil Outline is valid.
func (o *Outline) Validate() error {
	if o == nil {
		return nil
	}
	if o.Depth < config.MinOutlineDepth || o.Depth > config.MaxOutlineDepth {
		return &ConfigError{
			Op:  "outline",
			Err: fmt.Errorf("%w: must be between %d and %d, got %d", ErrInvalidOutlineDepth, config.MinOutlineDepth, config.MaxOutlineDepth, o.Depth),
		}
	}
	return nil
}

// ConfigFromOptions builds a Config from renderer options as found in the
// host's [output.typst] table.
func ConfigFromOptions(root, srcDir string, o *config.Options) Config {
	cfg := Config{
		Root:             root,
		SrcDir:           srcDir,
		PreludeStr:       o.PreludeStr,
		Prelude:          o.Prelude,
		SkipPreludeCheck: !o.PreludeCheck,
	}
	if o.Outline {
		cfg.Outline = &Outline{Depth: o.OutlineDepth}
	}
	return cfg
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWorkers bounds parallel chapter conversion. Zero or less picks a
// size from GOMAXPROCS (see ResolveWorkers).
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		r.workers = ResolveWorkers(n)
	}
}

// WithLogger sets the logger for progress and warnings. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
