// Package book models the book tree the host hands to the renderer and decodes
// it from the host's JSON render context.
package book

import "github.com/alnah/go-mdbook-typst/internal/mdast"

// Item is one entry of the book tree: *Part, *Chapter or *Separator.
type Item interface {
	bookItem()
}

// Part is a part title dividing groups of chapters. It has no body.
type Part struct {
	Title string
}

// Separator is a spacer between chapters in the summary.
type Separator struct{}

// Chapter is a numbered or unnumbered chapter with nested sub-chapters.
type Chapter struct {
	Title string
	// Number is the section number ([2 1] for "2.1."); nil when unnumbered.
	Number []int
	// Content is the chapter's markdown source as delivered by the host.
	Content string
	// Body is the parsed form of Content.
	Body mdast.Blocks
	// Path is the chapter file relative to the book's src directory.
	// Empty for draft chapters.
	Path     string
	Children []Item
}

// Numbered reports whether the chapter takes part in automatic numbering.
func (c *Chapter) Numbered() bool {
	return len(c.Number) > 0
}

// Draft reports whether the chapter has no backing file.
func (c *Chapter) Draft() bool {
	return c.Path == ""
}

func (*Part) bookItem()      {}
func (*Separator) bookItem() {}
func (*Chapter) bookItem()   {}

// Book is the ordered list of top-level items.
type Book struct {
	Items []Item
}

// Chapters returns every chapter of the tree in document (pre-)order.
func Chapters(items []Item) []*Chapter {
	var out []*Chapter
	type cursor struct {
		items []Item
		next  int
	}
	stack := []cursor{{items: items}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.items) {
			stack = stack[:len(stack)-1]
			continue
		}
		item := top.items[top.next]
		top.next++
		if ch, ok := item.(*Chapter); ok {
			out = append(out, ch)
			if len(ch.Children) > 0 {
				stack = append(stack, cursor{items: ch.Children})
			}
		}
	}
	return out
}
