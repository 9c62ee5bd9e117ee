package mdtypst

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdbook-typst/internal/book"
	"github.com/alnah/go-mdbook-typst/internal/logfields"
	"github.com/alnah/go-mdbook-typst/internal/pipeline"
)

// Renderer turns books into Typst documents. It holds no per-book state and
// is safe for concurrent use.
type Renderer struct {
	workers int
	logger  *slog.Logger
}

// NewRenderer creates a Renderer. By default chapters are converted by
// ResolveWorkers(0) goroutines and logs are discarded.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		workers: ResolveWorkers(0),
		logger:  discardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render converts b with the default Renderer.
func Render(ctx context.Context, b Book, cfg Config) (*Result, error) {
	return NewRenderer().Render(ctx, b, cfg)
}

// Render converts b into one Typst document. Configuration problems are
// returned as *ConfigError before any chapter is converted. Conversion
// problems inside chapters become Result.Warnings.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (r *Renderer) Render(ctx context.Context, b Book, cfg Config) (result *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result, err = nil, fmt.Errorf("%w: %v", ErrInternal, rec)
		}
	}()

	start := time.Now()
	if err := cfg.Outline.Validate(); err != nil {
		return nil, err
	}
	prelude, source, err := ResolvePrelude(cfg)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("prelude resolved", logfields.Source(source), logfields.Bytes(len(prelude)))

	srcDir := cfg.SrcDir
	if srcDir == "" {
		srcDir = "src"
	}
	asm := pipeline.NewAssembler(
		pipeline.WithWorkers(r.workers),
		pipeline.WithSrcDir(srcDir),
		pipeline.WithLogger(r.logger),
	)
	body, warnings, err := asm.Assemble(ctx, b.Items)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		r.logger.Warn(w.Message, logfields.Kind(w.Kind.String()), logfields.Chapter(w.Chapter))
	}

	doc := document(prelude, cfg.Outline, body)
	r.logger.Info("book rendered",
		logfields.Chapters(len(book.Chapters(b.Items))),
		logfields.Warnings(len(warnings)),
		logfields.Workers(r.workers),
		logfields.Bytes(len(doc)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
	)
	return &Result{Document: doc, Warnings: warnings}, nil
}

// RenderContext renders the book of a decoded host context with cfg.
func (r *Renderer) RenderContext(ctx context.Context, rc *RenderContext, cfg Config) (*Result, error) {
	if rc == nil {
		return nil, fmt.Errorf("%w: nil context", ErrDecodeContext)
	}
	return r.Render(ctx, rc.Book, cfg)
}

// DecodeContext reads the host's JSON render context.
func DecodeContext(rd io.Reader) (*RenderContext, error) {
	rc, err := book.Decode(rd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeContext, err)
	}
	return rc, nil
}

// document joins the prelude, the optional outline and the body.
func document(prelude string, outline *Outline, body string) string {
	var b strings.Builder
	b.Grow(len(prelude) + len(body) + 64)
	b.WriteString(strings.TrimRight(prelude, "\r\n"))
	b.WriteString("\n\n")
	if outline != nil {
		b.WriteString("#outline(depth: ")
		b.WriteString(strconv.Itoa(outline.Depth))
		b.WriteString(", indent: 2em)\n#pagebreak()\n\n")
	}
	b.WriteString(body)
	return b.String()
}
