package typst

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-mdbook-typst/internal/mdast"
)

// MaxHeadingLevel is the deepest heading level emitted. Deeper headings are
// emitted at this level with bold text.
const MaxHeadingLevel = 6

// divOpen matches an HTML block opening a classed div, capturing the class
// and whatever follows the tag.
var divOpen = regexp.MustCompile(`(?is)^<div\s+class\s*=\s*["']([^"']*)["']\s*>(.*)$`)

// BlockConverter renders a chapter body as Typst markup. The zero value is
// ready to use and safe for concurrent use; all state lives in Convert.
type BlockConverter struct{}

// Convert renders blocks with the chapter context in opts. Nesting of
// lists, quotes and div wrappers is handled with an explicit frame stack,
// so depth is bounded by memory rather than the call stack.
func (BlockConverter) Convert(blocks mdast.Blocks, opts Options) (string, []Warning) {
	s := &session{opts: opts, inline: NewInlineConverter(opts)}
	s.inline.blocks = s.convert
	s.inline.defineFootnotes(blocks)

	out := s.convert(blocks)
	s.inline.reportUnusedFootnotes()
	return out, s.inline.Warnings()
}

type session struct {
	opts   Options
	inline *InlineConverter
}

// frame is a block sequence being converted, or a list whose items are.
type frame struct {
	blocks mdast.Blocks
	// cursor is shared with the parent for div wrappers, which consume
	// their parent's blocks until the closing tag.
	cursor *int
	parts  []string
	join   string
	finish func(body string) string

	list *mdast.List
	item int

	wrapper bool
	class   string
	closed  bool
}

func (f *frame) add(s string) {
	if s != "" {
		f.parts = append(f.parts, s)
	}
}

func (f *frame) exhausted() bool {
	if f.list != nil {
		return f.item >= len(f.list.Items)
	}
	return f.closed || *f.cursor >= len(f.blocks)
}

func (f *frame) close() string {
	body := strings.Join(f.parts, f.join)
	if f.finish != nil {
		return f.finish(body)
	}
	return body
}

func sequence(blocks mdast.Blocks, join string, finish func(string) string) *frame {
	return &frame{blocks: blocks, cursor: new(int), join: join, finish: finish}
}

func (s *session) convert(blocks mdast.Blocks) string {
	stack := []*frame{sequence(blocks, "\n\n", nil)}
	for {
		top := stack[len(stack)-1]

		if !top.exhausted() {
			var child *frame
			if top.list != nil {
				child = s.listItem(top)
			} else {
				b := top.blocks[*top.cursor]
				*top.cursor++
				child = s.block(top, b)
			}
			if child != nil {
				stack = append(stack, child)
			}
			continue
		}

		if top.wrapper && !top.closed {
			s.inline.warn(WarnStructural, "<div class=%q> is never closed; closed at end of chapter", top.class)
		}
		out := top.close()
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return out
		}
		stack[len(stack)-1].add(out)
	}
}

// block converts b into top, or returns a frame to push for containers.
func (s *session) block(top *frame, b mdast.Block) *frame {
	switch b := b.(type) {
	case *mdast.Heading:
		top.add(s.heading(b))
	case *mdast.Paragraph:
		top.add(s.paragraph(b))
	case *mdast.List:
		return s.list(b)
	case *mdast.BlockQuote:
		return sequence(b.Body, "\n\n", func(body string) string {
			if body == "" {
				return "#quote(block: true)[]"
			}
			return "#quote(block: true)[\n" + body + "\n]"
		})
	case *mdast.CodeFence:
		top.add(codeBlock(NormalizeLang(b.Lang), b.Text))
	case *mdast.Table:
		top.add(s.table(b))
	case *mdast.RawHTML:
		return s.html(top, b)
	case *mdast.ThematicBreak:
		top.add("#line(length: 100%)")
	case *mdast.FootnoteDefinition:
		// Emitted where it is first referenced.
	}
	return nil
}

func (s *session) heading(h *mdast.Heading) string {
	level := max(1, h.Level+s.opts.HeadingOffset)
	text := s.inline.Convert(h.Inline)
	if level > MaxHeadingLevel {
		level = MaxHeadingLevel
		text = "#strong[" + text + "]"
	}

	switch {
	case s.opts.Unnumbered:
		return fmt.Sprintf("#heading(level: %d, numbering: none)[%s]", level, text)
	case strings.Contains(text, "\n"):
		return fmt.Sprintf("#heading(level: %d)[%s]", level, text)
	default:
		return strings.Repeat("=", level) + " " + text
	}
}

func (s *session) paragraph(p *mdast.Paragraph) string {
	if len(p.Inline) == 1 {
		if img, ok := p.Inline[0].(*mdast.Image); ok {
			if fig, ok := s.inline.Figure(img); ok {
				return fig
			}
		}
	}
	return s.inline.Convert(p.Inline)
}

func (s *session) list(l *mdast.List) *frame {
	join := "\n\n"
	if l.Tight {
		join = "\n"
	}
	return &frame{list: l, join: join}
}

// listItem returns the frame converting the next item of a list frame.
func (s *session) listItem(lf *frame) *frame {
	l := lf.list
	n := lf.item
	lf.item++

	marker := "- "
	if l.Ordered {
		marker = strconv.Itoa(l.Start+n) + ". "
	}
	return sequence(l.Items[n], lf.join, func(body string) string {
		return indent(marker, body)
	})
}

// indent prefixes the first line of body with marker and indents the other
// non-empty lines to the marker's width.
func indent(marker, body string) string {
	if body == "" {
		return strings.TrimRight(marker, " ")
	}
	pad := strings.Repeat(" ", len(marker))
	lines := strings.Split(body, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}
	return marker + strings.Join(lines, "\n")
}

func codeBlock(lang, text string) string {
	fence := Fence(text)
	if text == "" {
		return fence + lang + "\n" + fence
	}
	return fence + lang + "\n" + text + "\n" + fence
}

func (s *session) table(t *mdast.Table) string {
	cols := len(t.Header)
	if cols == 0 {
		cols = max(1, len(t.Align))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "#table(\n  columns: %d,\n", cols)
	if align := alignTuple(t.Align, cols); align != "" {
		fmt.Fprintf(&b, "  align: %s,\n", align)
	}
	b.WriteString("  table.header(" + s.cells(s.fitRow(t.Header, cols, "header")) + "),\n")
	for i, row := range t.Rows {
		b.WriteString("  " + s.cells(s.fitRow(row, cols, "row "+strconv.Itoa(i+1))) + ",\n")
	}
	b.WriteString(")")
	return b.String()
}

// fitRow pads or truncates row to cols cells.
func (s *session) fitRow(row mdast.Row, cols int, name string) mdast.Row {
	switch {
	case len(row) < cols:
		s.inline.warn(WarnTableShape, "table %s has %d cells, padded to %d", name, len(row), cols)
		padded := make(mdast.Row, cols)
		copy(padded, row)
		return padded
	case len(row) > cols:
		s.inline.warn(WarnTableShape, "table %s has %d cells, truncated to %d", name, len(row), cols)
		return row[:cols]
	default:
		return row
	}
}

func (s *session) cells(row mdast.Row) string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = content(s.inline.Convert(cell))
	}
	return strings.Join(out, ", ")
}

// alignTuple renders column alignments, or "" when every column is auto.
func alignTuple(align []mdast.Alignment, cols int) string {
	set := false
	parts := make([]string, cols)
	for i := range parts {
		a := mdast.AlignNone
		if i < len(align) {
			a = align[i]
		}
		set = set || a != mdast.AlignNone
		parts[i] = a.String()
	}
	if !set {
		return ""
	}
	if cols == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// html converts an HTML block. Classed divs become htmlblock wrappers,
// comments and center tags are dropped, anything else is kept verbatim in a
// raw block.
func (s *session) html(top *frame, h *mdast.RawHTML) *frame {
	text := strings.TrimSpace(h.Text)
	lower := strings.ToLower(text)

	switch {
	case text == "", strings.HasPrefix(text, "<!--"):
		return nil
	case lower == "<center>", lower == "</center>":
		return nil
	case lower == "</div>":
		if top.wrapper {
			top.closed = true
		} else {
			s.inline.warn(WarnStructural, "</div> without a matching <div class=...> dropped")
		}
		return nil
	}

	if m := divOpen.FindStringSubmatch(text); m != nil {
		class, rest := m[1], strings.TrimSpace(m[2])
		if inner, ok := cutSuffixFold(rest, "</div>"); ok {
			top.add(inlineDiv(class, strings.TrimSpace(inner)))
			return nil
		}
		w := &frame{
			blocks:  top.blocks,
			cursor:  top.cursor,
			join:    "\n\n",
			wrapper: true,
			class:   class,
			finish: func(body string) string {
				return htmlBlock(class, body)
			},
		}
		if rest != "" {
			w.add(escapeText(rest))
		}
		return w
	}

	top.add(htmlBlock("html", codeBlock("html", h.Text)))
	return nil
}

// inlineDiv renders a div opened and closed in one HTML block.
func inlineDiv(class, inner string) string {
	return "#htmlblock(" + Quote(class) + ")" + content(escapeText(inner))
}

func htmlBlock(class, body string) string {
	if body == "" {
		return "#htmlblock(" + Quote(class) + ")[]"
	}
	return "#htmlblock(" + Quote(class) + ")[\n" + body + "\n]"
}

func cutSuffixFold(s, suffix string) (string, bool) {
	if len(s) < len(suffix) || !strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s, false
	}
	return s[:len(s)-len(suffix)], true
}
