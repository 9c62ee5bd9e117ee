package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-mdbook-typst/internal/book"
	"github.com/alnah/go-mdbook-typst/internal/logfields"
	"github.com/alnah/go-mdbook-typst/internal/markdown"
	"github.com/alnah/go-mdbook-typst/internal/mdast"
	"github.com/alnah/go-mdbook-typst/internal/typst"
)

// ErrChapterConversion indicates a chapter body could not be converted.
var ErrChapterConversion = errors.New("chapter conversion failed")

// Assembler walks a book tree and produces the Typst document body: part
// dividers, chapter headings and converted chapter bodies in tree order.
type Assembler struct {
	parser  *markdown.Parser
	blocks  typst.BlockConverter
	workers int
	srcDir  string
	logger  *slog.Logger
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithWorkers bounds how many chapters are converted at once. Values below
// one mean one.
func WithWorkers(n int) AssemblerOption {
	return func(a *Assembler) {
		a.workers = max(1, n)
	}
}

// WithSrcDir sets the book's source directory relative to the book root.
// Image paths are emitted relative to the root through it.
func WithSrcDir(dir string) AssemblerOption {
	return func(a *Assembler) {
		a.srcDir = dir
	}
}

// WithLogger sets the logger for per-chapter progress.
func WithLogger(l *slog.Logger) AssemblerOption {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAssembler creates an Assembler. By default it converts one chapter at a
// time, uses "src" as the source directory and discards logs.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		parser:  markdown.NewParser(),
		workers: 1,
		srcDir:  "src",
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type entryKind int

const (
	entryPart entryKind = iota
	entrySeparator
	entryChapter
)

// entry is one item of the flattened tree, in document order.
type entry struct {
	kind    entryKind
	title   string
	chapter *book.Chapter
	depth   int
	label   string
}

type chapterResult struct {
	body     string
	warnings []typst.Warning
}

// Assemble renders items. Chapters are converted concurrently and joined in
// tree order; the items are never modified.
func (a *Assembler) Assemble(ctx context.Context, items []book.Item) (string, []typst.Warning, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	entries := flatten(items)
	chapters := assignLabels(entries)

	results := make([]chapterResult, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range entries {
		i := i
		if entries[i].kind != entryChapter {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := a.convertChapter(&entries[i], chapters)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	var warnings []typst.Warning
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(heading(e))
		if body := results[i].body; body != "" {
			b.WriteString("\n\n")
			b.WriteString(body)
		}
		warnings = append(warnings, results[i].warnings...)
	}
	if len(entries) > 0 {
		b.WriteString("\n")
	}
	return b.String(), warnings, nil
}

// convertChapter converts one chapter body. A panic in the conversion is
// turned into an error naming the chapter.
func (a *Assembler) convertChapter(e *entry, chapters map[string]string) (res chapterResult, err error) {
	ch := e.chapter
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %q: panic: %v", ErrChapterConversion, ch.Title, r)
		}
	}()

	// Draft chapters have no file; only their heading is emitted.
	if ch.Draft() && ch.Body == nil {
		return chapterResult{}, nil
	}

	start := time.Now()
	body := ch.Body
	if body == nil {
		body = a.parser.Parse(ch.Content)
	}
	body, offset := dropTitleHeading(body, e.depth)

	out, warnings := a.blocks.Convert(body, typst.Options{
		Chapter:       ch.Title,
		Label:         e.label,
		Path:          slashPath(ch.Path),
		SrcDir:        a.srcDir,
		HeadingOffset: offset,
		Unnumbered:    !ch.Numbered(),
		Chapters:      chapters,
	})

	a.logger.Debug("chapter converted",
		logfields.Chapter(ch.Title),
		logfields.Path(ch.Path),
		logfields.Warnings(len(warnings)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
	)
	return chapterResult{body: out, warnings: warnings}, nil
}

// dropTitleHeading removes a leading level-1 heading when it is the only
// one: the chapter heading already carries the title, and the remaining
// headings move up one level. Otherwise in-chapter headings sit below the
// chapter heading.
func dropTitleHeading(body mdast.Blocks, depth int) (mdast.Blocks, int) {
	if len(body) == 0 {
		return body, depth
	}
	first, ok := body[0].(*mdast.Heading)
	if !ok || first.Level != 1 {
		return body, depth
	}
	for _, b := range body[1:] {
		if h, ok := b.(*mdast.Heading); ok && h.Level == 1 {
			return body, depth
		}
	}
	return body[1:], depth - 1
}

// flatten lists the tree in document order with each chapter's nesting
// depth, starting at 1. Parts and separators do not change the depth.
func flatten(items []book.Item) []entry {
	type cursor struct {
		items []book.Item
		next  int
		depth int
	}

	var entries []entry
	stack := []cursor{{items: items, depth: 1}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.items) {
			stack = stack[:len(stack)-1]
			continue
		}
		item := top.items[top.next]
		top.next++
		depth := top.depth

		switch it := item.(type) {
		case *book.Part:
			entries = append(entries, entry{kind: entryPart, title: it.Title})
		case *book.Separator:
			entries = append(entries, entry{kind: entrySeparator})
		case *book.Chapter:
			entries = append(entries, entry{kind: entryChapter, title: it.Title, chapter: it, depth: depth})
			if len(it.Children) > 0 {
				stack = append(stack, cursor{items: it.Children, depth: depth + 1})
			}
		}
	}
	return entries
}

// assignLabels gives every chapter a unique label and returns the map from
// chapter path to label used to resolve cross-chapter links.
func assignLabels(entries []entry) map[string]string {
	byPath := make(map[string]string)
	used := make(map[string]bool)
	for i := range entries {
		e := &entries[i]
		if e.kind != entryChapter {
			continue
		}
		p := slashPath(e.chapter.Path)
		base := ChapterLabel(p, e.chapter.Title)
		if base == "chapter" {
			base = "chapter-" + strconv.Itoa(i+1)
		}
		label := base
		for n := 2; used[label]; n++ {
			label = base + "-" + strconv.Itoa(n)
		}
		used[label] = true
		e.label = label
		if p != "" {
			byPath[p] = label
		}
	}
	return byPath
}

// ChapterLabel derives a chapter's label from its path, or from its title
// for draft chapters.
func ChapterLabel(chapterPath, title string) string {
	name := strings.TrimSuffix(chapterPath, ".md")
	if name == "" {
		name = title
	}
	if l := typst.Label(name); l != "" {
		return "chapter-" + l
	}
	return "chapter"
}

func slashPath(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

// heading renders the structural line that opens an entry.
func heading(e entry) string {
	switch e.kind {
	case entryPart:
		return "#pagebreak(weak: true)\n#bookpart()[" + typst.Escape(e.title) + "]"
	case entrySeparator:
		return "#pagebreak()"
	}

	title := typst.Escape(e.title)
	if !e.chapter.Numbered() {
		return "#unum_chap()[" + title + "] <" + e.label + ">"
	}
	level := min(max(1, e.depth), typst.MaxHeadingLevel)
	return strings.Repeat("=", level) + " " + title + " <" + e.label + ">"
}
