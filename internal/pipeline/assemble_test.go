package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alnah/go-mdbook-typst/internal/book"
	"github.com/alnah/go-mdbook-typst/internal/mdast"
	"github.com/alnah/go-mdbook-typst/internal/typst"
)

func chapter(title, path, content string, number []int, children ...book.Item) *book.Chapter {
	return &book.Chapter{Title: title, Path: path, Content: content, Number: number, Children: children}
}

// ---------------------------------------------------------------------------
// TestAssembler_Assemble - Structure of the document body
// ---------------------------------------------------------------------------

func TestAssembler_Assemble(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []book.Item
		want  string
	}{
		{
			name:  "empty book",
			items: nil,
			want:  "",
		},
		{
			name: "part numbered and unnumbered chapters",
			items: []book.Item{
				&book.Part{Title: "Intro"},
				chapter("Getting Started", "start.md", "# Getting Started\n\nHello *world*.\n", []int{1}),
				chapter("Notes", "notes.md", "Some notes.\n", nil),
			},
			want: "#pagebreak(weak: true)\n#bookpart()[Intro]\n\n" +
				"= Getting Started <chapter-start>\n\nHello #emph[world];.\n\n" +
				"#unum_chap()[Notes] <chapter-notes>\n\nSome notes.\n",
		},
		{
			name: "nested chapters and heading offsets",
			items: []book.Item{
				chapter("A", "a.md", "# A\n\n## Sub\n", []int{1},
					chapter("B", "a/b.md", "Body with ## no\n\n# B\n\n# B2\n", []int{1, 1}),
				),
			},
			want: "= A <chapter-a>\n\n== Sub\n\n" +
				"== B <chapter-a-b>\n\nBody with \\#\\# no\n\n=== B\n\n=== B2\n",
		},
		{
			name: "unnumbered chapter headings",
			items: []book.Item{
				chapter("Preface", "preface.md", "# Preface\n\n## Why\n", nil),
			},
			want: "#unum_chap()[Preface] <chapter-preface>\n\n" +
				"#heading(level: 2, numbering: none)[Why]\n",
		},
		{
			name: "separator and draft chapter",
			items: []book.Item{
				chapter("One", "one.md", "", []int{1}),
				&book.Separator{},
				chapter("Later", "", "", []int{2}),
			},
			want: "= One <chapter-one>\n\n#pagebreak()\n\n= Later <chapter-later>\n",
		},
		{
			name: "draft chapter ignores stray content",
			items: []book.Item{
				chapter("Draft", "", "stray text\n", nil),
			},
			want: "#unum_chap()[Draft] <chapter-draft>\n",
		},
		{
			name: "title is escaped",
			items: []book.Item{
				chapter("C# *Tips*", "csharp.md", "", []int{1}),
			},
			want: "= C\\# \\*Tips\\* <chapter-csharp>\n",
		},
		{
			name: "duplicate draft titles get distinct labels",
			items: []book.Item{
				chapter("Same", "", "", nil),
				chapter("Same", "", "", nil),
			},
			want: "#unum_chap()[Same] <chapter-same>\n\n#unum_chap()[Same] <chapter-same-2>\n",
		},
		{
			name: "cross chapter link",
			items: []book.Item{
				chapter("A", "a.md", "See [B](b.md).\n", []int{1}),
				chapter("B", "b.md", "", []int{2}),
			},
			want: "= A <chapter-a>\n\nSee #link(<chapter-b>)[B];.\n\n= B <chapter-b>\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, _, err := NewAssembler().Assemble(context.Background(), tt.items)
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Assemble() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestAssembler_PrefersParsedBody(t *testing.T) {
	t.Parallel()

	ch := chapter("A", "a.md", "ignored\n", []int{1})
	ch.Body = mdast.Blocks{&mdast.Paragraph{Inline: mdast.Inlines{&mdast.Text{Value: "parsed"}}}}

	got, _, err := NewAssembler().Assemble(context.Background(), []book.Item{ch})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "parsed") || strings.Contains(got, "ignored") {
		t.Errorf("Assemble() = %q, want the parsed body", got)
	}
}

func TestAssembler_DoesNotModifyItems(t *testing.T) {
	t.Parallel()

	ch := chapter("A", "a.md", "# A\n\ntext\n", []int{1})
	if _, _, err := NewAssembler().Assemble(context.Background(), []book.Item{ch}); err != nil {
		t.Fatal(err)
	}
	if ch.Body != nil {
		t.Error("Assemble() stored a parsed body on the chapter")
	}
}

// ---------------------------------------------------------------------------
// TestAssembler_Warnings - Warnings in document order
// ---------------------------------------------------------------------------

func TestAssembler_Warnings(t *testing.T) {
	t.Parallel()

	cell := func(s string) mdast.Inlines { return mdast.Inlines{&mdast.Text{Value: s}} }
	tables := chapter("Tables", "t.md", "", []int{1})
	tables.Body = mdast.Blocks{&mdast.Table{
		Header: mdast.Row{cell("a"), cell("b")},
		Rows:   []mdast.Row{{cell("1")}},
	}}
	items := []book.Item{
		tables,
		chapter("Links", "l.md", "[x](missing.md)\n", []int{2}),
	}

	_, warns, err := NewAssembler(WithWorkers(4)).Assemble(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 2 {
		t.Fatalf("len(warnings) = %d, want 2: %v", len(warns), warns)
	}
	if warns[0].Chapter != "Tables" || warns[0].Kind != typst.WarnTableShape {
		t.Errorf("warns[0] = %+v, want table-shape in Tables", warns[0])
	}
	if warns[1].Chapter != "Links" || warns[1].Kind != typst.WarnStructural {
		t.Errorf("warns[1] = %+v, want structural in Links", warns[1])
	}
}

// ---------------------------------------------------------------------------
// TestAssembler_Parallel - Concurrency keeps tree order
// ---------------------------------------------------------------------------

func TestAssembler_Parallel(t *testing.T) {
	t.Parallel()

	var items []book.Item
	for i := 1; i <= 50; i++ {
		content := fmt.Sprintf("# Chapter %d\n\nParagraph %d with *emphasis*.\n\n## Section\n", i, i)
		items = append(items, chapter(fmt.Sprintf("Chapter %d", i), fmt.Sprintf("ch%02d.md", i), content, []int{i}))
	}

	serial, _, err := NewAssembler(WithWorkers(1)).Assemble(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	parallel, _, err := NewAssembler(WithWorkers(8)).Assemble(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	if serial != parallel {
		t.Error("parallel output differs from serial output")
	}

	first := strings.Index(serial, "<chapter-ch01>")
	last := strings.Index(serial, "<chapter-ch50>")
	if first < 0 || last < first {
		t.Errorf("chapters out of order: ch01 at %d, ch50 at %d", first, last)
	}
}

func TestAssembler_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewAssembler().Assemble(ctx, []book.Item{chapter("A", "a.md", "x", []int{1})})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Assemble() error = %v, want context.Canceled", err)
	}
}

func TestAssembler_DeepTree(t *testing.T) {
	t.Parallel()

	const depth = 5000
	var items []book.Item
	for i := depth; i >= 1; i-- {
		items = []book.Item{chapter(fmt.Sprintf("L%d", i), fmt.Sprintf("l%d.md", i), "", []int{1}, items...)}
	}

	got, _, err := NewAssembler().Assemble(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "= L1 <chapter-l1>") {
		t.Errorf("first heading = %.30q", got)
	}
	if !strings.Contains(got, "====== L5000 <chapter-l5000>") {
		t.Error("deepest chapter heading should be clamped to level 6")
	}
}

// ---------------------------------------------------------------------------
// TestDropTitleHeading - Chapter title deduplication
// ---------------------------------------------------------------------------

func TestDropTitleHeading(t *testing.T) {
	t.Parallel()

	h := func(level int) *mdast.Heading { return &mdast.Heading{Level: level} }
	p := &mdast.Paragraph{}

	tests := []struct {
		name       string
		body       mdast.Blocks
		depth      int
		wantLen    int
		wantOffset int
	}{
		{name: "empty", body: nil, depth: 2, wantLen: 0, wantOffset: 2},
		{name: "single leading h1", body: mdast.Blocks{h(1), p, h(2)}, depth: 2, wantLen: 2, wantOffset: 1},
		{name: "two h1", body: mdast.Blocks{h(1), p, h(1)}, depth: 1, wantLen: 3, wantOffset: 1},
		{name: "h1 not first", body: mdast.Blocks{p, h(1)}, depth: 1, wantLen: 2, wantOffset: 1},
		{name: "leading h2", body: mdast.Blocks{h(2), p}, depth: 3, wantLen: 2, wantOffset: 3},
	}

	for _, tt := range tests {
		gotBody, gotOffset := dropTitleHeading(tt.body, tt.depth)
		if len(gotBody) != tt.wantLen || gotOffset != tt.wantOffset {
			t.Errorf("%s: got (%d blocks, offset %d), want (%d, %d)",
				tt.name, len(gotBody), gotOffset, tt.wantLen, tt.wantOffset)
		}
	}
}

func TestChapterLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path, title, want string
	}{
		{path: "intro.md", title: "X", want: "chapter-intro"},
		{path: "guide/Setup Steps.md", title: "X", want: "chapter-guide-setup-steps"},
		{path: "", title: "Draft Title", want: "chapter-draft-title"},
		{path: "", title: "日本", want: "chapter"},
	}

	for _, tt := range tests {
		if got := ChapterLabel(tt.path, tt.title); got != tt.want {
			t.Errorf("ChapterLabel(%q, %q) = %q, want %q", tt.path, tt.title, got, tt.want)
		}
	}
}
