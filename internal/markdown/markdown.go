// Package markdown parses chapter sources into the mdast block model.
//
// Parsing is done by goldmark with the GFM extensions (tables,
// strikethrough, autolinks, task lists) and footnotes enabled. The goldmark
// AST is then projected onto the smaller mdast model. Block containers are
// translated with an explicit work stack so arbitrarily deep list and quote
// nesting does not grow the Go call stack.
package markdown

import (
	"bytes"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-mdbook-typst/internal/mdast"
)

// Parser converts markdown to mdast. Safe for concurrent use: each call
// borrows its own goldmark instance from a pool.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a Parser with GFM and footnote support.
func NewParser() *Parser {
	p := &Parser{}
	p.pool.New = func() any {
		return goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,      // Tables, strikethrough, autolinks, task lists
				extension.Footnote, // [^1] footnotes
			),
		)
	}
	return p
}

// Parse converts one chapter's markdown. It never fails: anything goldmark
// produces that the model has no node for becomes an mdast.Unknown.
func (p *Parser) Parse(content string) mdast.Blocks {
	md := p.pool.Get().(goldmark.Markdown)
	defer p.pool.Put(md)

	src := []byte(Preprocess(content))
	doc := md.Parser().Parse(text.NewReader(src))

	t := &translator{src: src, footnotes: collectFootnotes(doc)}
	return t.document(doc)
}

// translator holds per-document state for the AST projection.
type translator struct {
	src       []byte
	footnotes map[int]string // goldmark footnote index -> label
}

// task is a pending container whose block children still need translating.
type task struct {
	parent ast.Node
	dest   *mdast.Blocks
}

func (t *translator) document(doc ast.Node) mdast.Blocks {
	var out mdast.Blocks
	stack := []task{{parent: doc, dest: &out}}
	for len(stack) > 0 {
		tk := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for c := tk.parent.FirstChild(); c != nil; c = c.NextSibling() {
			stack = t.block(c, tk.dest, stack)
		}
	}
	return out
}

// block appends the translation of n to dest. Containers are appended empty
// and scheduled on the stack; their destinations are stable pointers.
func (t *translator) block(n ast.Node, dest *mdast.Blocks, stack []task) []task {
	switch n := n.(type) {
	case *ast.Heading:
		*dest = append(*dest, &mdast.Heading{Level: n.Level, Inline: t.inlines(n)})
	case *ast.Paragraph:
		*dest = append(*dest, &mdast.Paragraph{Inline: t.inlines(n)})
	case *ast.TextBlock:
		*dest = append(*dest, &mdast.Paragraph{Inline: t.inlines(n)})
	case *ast.ThematicBreak:
		*dest = append(*dest, &mdast.ThematicBreak{})
	case *ast.FencedCodeBlock:
		*dest = append(*dest, &mdast.CodeFence{
			Lang: string(n.Language(t.src)),
			Text: t.lines(n),
		})
	case *ast.CodeBlock:
		*dest = append(*dest, &mdast.CodeFence{Text: t.lines(n)})
	case *ast.HTMLBlock:
		raw := t.rawLines(n)
		if n.HasClosure() {
			raw += string(n.ClosureLine.Value(t.src))
		}
		*dest = append(*dest, &mdast.RawHTML{Text: strings.TrimSuffix(raw, "\n")})
	case *ast.Blockquote:
		q := &mdast.BlockQuote{}
		*dest = append(*dest, q)
		stack = append(stack, task{parent: n, dest: &q.Body})
	case *ast.List:
		l := &mdast.List{Ordered: n.IsOrdered(), Start: n.Start, Tight: n.IsTight}
		l.Items = make([]mdast.Blocks, n.ChildCount())
		i := 0
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			stack = append(stack, task{parent: item, dest: &l.Items[i]})
			i++
		}
		*dest = append(*dest, l)
	case *east.Table:
		*dest = append(*dest, t.table(n))
	case *east.FootnoteList:
		for fn := n.FirstChild(); fn != nil; fn = fn.NextSibling() {
			f, ok := fn.(*east.Footnote)
			if !ok {
				continue
			}
			def := &mdast.FootnoteDefinition{Label: string(f.Ref)}
			*dest = append(*dest, def)
			stack = append(stack, task{parent: f, dest: &def.Body})
		}
	default:
		*dest = append(*dest, &mdast.Paragraph{Inline: mdast.Inlines{
			&mdast.Unknown{Kind: n.Kind().String(), Literal: t.literal(n)},
		}})
	}
	return stack
}

func (t *translator) table(n *east.Table) *mdast.Table {
	tbl := &mdast.Table{Align: make([]mdast.Alignment, 0, len(n.Alignments))}
	for _, a := range n.Alignments {
		tbl.Align = append(tbl.Align, alignment(a))
	}
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		cells := make(mdast.Row, 0, row.ChildCount())
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, t.inlines(cell))
		}
		if _, ok := row.(*east.TableHeader); ok {
			tbl.Header = cells
		} else {
			tbl.Rows = append(tbl.Rows, cells)
		}
	}
	return tbl
}

func alignment(a east.Alignment) mdast.Alignment {
	switch a {
	case east.AlignLeft:
		return mdast.AlignLeft
	case east.AlignCenter:
		return mdast.AlignCenter
	case east.AlignRight:
		return mdast.AlignRight
	default:
		return mdast.AlignNone
	}
}

func (t *translator) inlines(parent ast.Node) mdast.Inlines {
	var out mdast.Inlines
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		out = t.inline(c, out)
	}
	return out
}

func (t *translator) inline(n ast.Node, out mdast.Inlines) mdast.Inlines {
	switch n := n.(type) {
	case *ast.Text:
		value := n.Segment.Value(t.src)
		if !n.IsRaw() {
			value = unescape(value)
		}
		out = appendText(out, string(value))
		switch {
		case n.HardLineBreak():
			out = append(out, &mdast.HardBreak{})
		case n.SoftLineBreak():
			out = append(out, &mdast.SoftBreak{})
		}
	case *ast.String:
		out = appendText(out, string(n.Value))
	case *ast.Emphasis:
		children := t.inlines(n)
		if n.Level >= 2 {
			out = append(out, &mdast.Strong{Children: children})
		} else {
			out = append(out, &mdast.Emphasis{Children: children})
		}
	case *ast.CodeSpan:
		out = append(out, &mdast.Code{Value: t.codeSpan(n)})
	case *ast.Link:
		out = append(out, &mdast.Link{
			Target:   string(unescape(n.Destination)),
			Title:    string(n.Title),
			Children: t.inlines(n),
		})
	case *ast.AutoLink:
		url := string(n.URL(t.src))
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(url), "mailto:") {
			url = "mailto:" + url
		}
		out = append(out, &mdast.Link{
			Target:   url,
			Auto:     true,
			Children: mdast.Inlines{&mdast.Text{Value: string(n.Label(t.src))}},
		})
	case *ast.Image:
		out = append(out, &mdast.Image{
			Target: string(unescape(n.Destination)),
			Alt:    mdast.PlainText(t.inlines(n)),
		})
	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(t.src))
		}
		out = append(out, &mdast.RawInline{Value: b.String()})
	case *east.Strikethrough:
		out = append(out, &mdast.Strikethrough{Children: t.inlines(n)})
	case *east.TaskCheckBox:
		out = append(out, &mdast.TaskMarker{Checked: n.IsChecked})
	case *east.FootnoteLink:
		out = append(out, &mdast.FootnoteRef{Label: t.footnotes[n.Index]})
	case *east.FootnoteBacklink:
		// Added by goldmark for HTML output; meaningless here.
	default:
		out = append(out, &mdast.Unknown{Kind: n.Kind().String(), Literal: t.literal(n)})
	}
	return out
}

// appendText merges adjacent text runs; goldmark splits text at escapes.
func appendText(out mdast.Inlines, s string) mdast.Inlines {
	if s == "" {
		return out
	}
	if len(out) > 0 {
		if prev, ok := out[len(out)-1].(*mdast.Text); ok {
			prev.Value += s
			return out
		}
	}
	return append(out, &mdast.Text{Value: s})
}

// codeSpan mirrors goldmark's HTML renderer: line endings become spaces.
func (t *translator) codeSpan(n *ast.CodeSpan) string {
	var b bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			v := c.Segment.Value(t.src)
			if bytes.HasSuffix(v, []byte("\n")) {
				b.Write(v[:len(v)-1])
				b.WriteByte(' ')
			} else {
				b.Write(v)
			}
		case *ast.String:
			b.Write(c.Value)
		}
	}
	return b.String()
}

// lines joins a block's raw lines without the final line ending.
func (t *translator) lines(n ast.Node) string {
	return strings.TrimSuffix(t.rawLines(n), "\n")
}

func (t *translator) rawLines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(t.src))
	}
	return b.String()
}

// literal recovers the source text of a node the model cannot represent.
func (t *translator) literal(n ast.Node) string {
	var b strings.Builder
	if n.Type() == ast.TypeBlock {
		b.WriteString(t.lines(n))
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(t.src))
		case *ast.String:
			b.Write(c.Value)
		default:
			b.WriteString(t.literal(c))
		}
	}
	return b.String()
}

func collectFootnotes(doc ast.Node) map[int]string {
	labels := make(map[int]string)
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		list, ok := c.(*east.FootnoteList)
		if !ok {
			continue
		}
		for fn := list.FirstChild(); fn != nil; fn = fn.NextSibling() {
			if f, ok := fn.(*east.Footnote); ok {
				labels[f.Index] = string(f.Ref)
			}
		}
	}
	return labels
}

// unescape resolves backslash escapes and character references the way
// goldmark's HTML writer does when it emits text.
func unescape(b []byte) []byte {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	return util.ResolveEntityNames(b)
}
