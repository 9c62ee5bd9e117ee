// Package mdtypst renders an mdbook book into a single Typst document.
//
// # Quick Start
//
// Decode the context the host writes to stdin, render, and write the result:
//
//	rc, err := mdtypst.DecodeContext(os.Stdin)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := mdtypst.NewRenderer().RenderContext(ctx, rc, mdtypst.Config{
//	    Root:    rc.Root,
//	    SrcDir:  rc.Config.Book.SrcDir(),
//	    Outline: &mdtypst.Outline{Depth: 2},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("book.typ", []byte(result.Document), 0644)
//
// # Rendering Pipeline
//
//  1. Prelude resolution: prelude-str, then a prelude file under the book
//     root or a built-in ("builtin:default", "builtin:plain"), then the
//     built-in default. The prelude must define unum_chap, bookpart and
//     htmlblock.
//  2. Book traversal: parts, separators and chapters in summary order, each
//     chapter with a unique label (<chapter-guide-setup>).
//  3. Chapter conversion via Goldmark and the block and inline converters,
//     in parallel, joined in tree order.
//  4. Assembly: prelude, optional outline, body.
//
// # Errors and Warnings
//
// Configuration problems are returned as *ConfigError (errors.Is(err,
// ErrConfig)) before any chapter is converted. Markdown that has no clean
// Typst rendition is converted best-effort and reported in Result.Warnings.
//
// # Configuration
//
// Use functional options to customize the renderer:
//
//	r := mdtypst.NewRenderer(
//	    mdtypst.WithWorkers(4),
//	    mdtypst.WithLogger(slog.Default()),
//	)
package mdtypst
