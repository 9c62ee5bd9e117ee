// Package mdast defines the block and inline document model a chapter body is
// converted from.
//
// The model is deliberately smaller than a full CommonMark AST: it carries only
// what the Typst conversion needs. Nodes are plain structs behind two sealed
// interfaces, Block and Inline, so a type switch over them is exhaustive within
// this module. Nodes are built once per chapter and never mutated afterwards.
package mdast

// Blocks is an ordered sequence of block nodes. An empty sequence is valid.
type Blocks []Block

// Inlines is an ordered sequence of inline nodes.
type Inlines []Inline

// Block is a block-level node.
type Block interface {
	blockNode()
}

// Inline is an inline node.
type Inline interface {
	inlineNode()
}

// Alignment is a table column alignment.
type Alignment int

// Table column alignments.
const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// String returns the Typst alignment keyword ("auto" for AlignNone).
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "auto"
	}
}

// Heading is an ATX or setext heading. Level is 1..6.
type Heading struct {
	Level  int
	Inline Inlines
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Inline Inlines
}

// List is an ordered or bullet list. Start is the first item number of an
// ordered list. Tight lists separate items without blank lines.
type List struct {
	Ordered bool
	Start   int
	Tight   bool
	Items   []Blocks
}

// BlockQuote wraps a nested block sequence.
type BlockQuote struct {
	Body Blocks
}

// CodeFence is a fenced or indented code block. Text is emitted verbatim.
type CodeFence struct {
	Lang string
	Text string
}

// Row is one table row, one inline sequence per cell.
type Row []Inlines

// Table is a GFM table. The header determines the column count.
type Table struct {
	Align  []Alignment
	Header Row
	Rows   []Row
}

// RawHTML is an HTML block, kept verbatim.
type RawHTML struct {
	Text string
}

// ThematicBreak is a horizontal rule.
type ThematicBreak struct{}

// FootnoteDefinition holds the body a footnote reference with the same label
// expands to.
type FootnoteDefinition struct {
	Label string
	Body  Blocks
}

func (*Heading) blockNode()            {}
func (*Paragraph) blockNode()          {}
func (*List) blockNode()               {}
func (*BlockQuote) blockNode()         {}
func (*CodeFence) blockNode()          {}
func (*Table) blockNode()              {}
func (*RawHTML) blockNode()            {}
func (*ThematicBreak) blockNode()      {}
func (*FootnoteDefinition) blockNode() {}

// Text is literal text, not yet escaped.
type Text struct {
	Value string
}

// Emphasis is regular emphasis.
type Emphasis struct {
	Children Inlines
}

// Strong is strong emphasis.
type Strong struct {
	Children Inlines
}

// Strikethrough is GFM ~~deleted~~ text.
type Strikethrough struct {
	Children Inlines
}

// Code is an inline code span.
type Code struct {
	Value string
}

// Link is an inline link or an autolink. Auto marks bare-URL autolinks whose
// text is the target itself.
type Link struct {
	Target   string
	Title    string
	Auto     bool
	Children Inlines
}

// Image is an inline image.
type Image struct {
	Target string
	Alt    string
}

// FootnoteRef references a FootnoteDefinition by label.
type FootnoteRef struct {
	Label string
}

// SoftBreak is a soft line break inside a paragraph.
type SoftBreak struct{}

// HardBreak is a forced line break.
type HardBreak struct{}

// TaskMarker is a GFM task list checkbox.
type TaskMarker struct {
	Checked bool
}

// RawInline is inline HTML.
type RawInline struct {
	Value string
}

// Unknown carries a node the parser produced but the model has no type for.
// Kind names the original node; Literal is its source text.
type Unknown struct {
	Kind    string
	Literal string
}

func (*Text) inlineNode()          {}
func (*Emphasis) inlineNode()      {}
func (*Strong) inlineNode()        {}
func (*Strikethrough) inlineNode() {}
func (*Code) inlineNode()          {}
func (*Link) inlineNode()          {}
func (*Image) inlineNode()         {}
func (*FootnoteRef) inlineNode()   {}
func (*SoftBreak) inlineNode()     {}
func (*HardBreak) inlineNode()     {}
func (*TaskMarker) inlineNode()    {}
func (*RawInline) inlineNode()     {}
func (*Unknown) inlineNode()       {}

// PlainText returns the concatenated literal text of an inline sequence,
// dropping all formatting. Used for image alt text and labels.
func PlainText(in Inlines) string {
	var b []byte
	stack := []Inlines{in}
	idx := []int{0}
	for len(stack) > 0 {
		top := len(stack) - 1
		if idx[top] >= len(stack[top]) {
			stack = stack[:top]
			idx = idx[:top]
			continue
		}
		n := stack[top][idx[top]]
		idx[top]++
		switch n := n.(type) {
		case *Text:
			b = append(b, n.Value...)
		case *Code:
			b = append(b, n.Value...)
		case *Image:
			b = append(b, n.Alt...)
		case *SoftBreak, *HardBreak:
			b = append(b, ' ')
		case *Unknown:
			b = append(b, n.Literal...)
		case *Emphasis:
			stack, idx = append(stack, n.Children), append(idx, 0)
		case *Strong:
			stack, idx = append(stack, n.Children), append(idx, 0)
		case *Strikethrough:
			stack, idx = append(stack, n.Children), append(idx, 0)
		case *Link:
			stack, idx = append(stack, n.Children), append(idx, 0)
		}
	}
	return string(b)
}
