package book

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestDecode_Fixture(t *testing.T) {
	t.Parallel()

	f, err := os.Open("testdata/context.json")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rc, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if rc.Root != "/books/demo" {
		t.Errorf("Root = %q", rc.Root)
	}
	if rc.Destination != "/books/demo/book/typst" {
		t.Errorf("Destination = %q", rc.Destination)
	}
	if rc.Config.Book.Title != "Demo" {
		t.Errorf("Book.Title = %q", rc.Config.Book.Title)
	}
	if got := string(rc.Config.RendererOptions()); !strings.Contains(got, "prelude-str") {
		t.Errorf("RendererOptions() = %s, want typst table", got)
	}

	items := rc.Book.Items
	if len(items) != 5 {
		t.Fatalf("len(Items) = %d, want 5", len(items))
	}

	part, ok := items[0].(*Part)
	if !ok || part.Title != "Intro" {
		t.Errorf("items[0] = %#v, want Part Intro", items[0])
	}

	ch, ok := items[1].(*Chapter)
	if !ok {
		t.Fatalf("items[1] = %T, want *Chapter", items[1])
	}
	if !ch.Numbered() || ch.Title != "Getting Started" || ch.Path != "start.md" {
		t.Errorf("chapter = %+v", ch)
	}
	if len(ch.Children) != 1 {
		t.Fatalf("len(Children) = %d, want 1", len(ch.Children))
	}
	sub := ch.Children[0].(*Chapter)
	if len(sub.Number) != 2 || sub.Path != "start/install.md" {
		t.Errorf("sub chapter = %+v", sub)
	}

	if _, ok := items[2].(*Separator); !ok {
		t.Errorf("items[2] = %T, want *Separator", items[2])
	}

	notes := items[3].(*Chapter)
	if notes.Numbered() {
		t.Error("Notes should be unnumbered")
	}

	draft := items[4].(*Chapter)
	if !draft.Draft() {
		t.Error("Draft chapter should report Draft()")
	}
}

func TestDecode_ItemsKey(t *testing.T) {
	t.Parallel()

	in := `{"root":"/r","destination":"/d","book":{"items":[{"PartTitle":"P"}]},"config":{}}`
	rc, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(rc.Book.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(rc.Book.Items))
	}
	if rc.Config.RendererOptions() != nil {
		t.Error("RendererOptions() should be nil without an output table")
	}
	if rc.Config.Book.SrcDir() != "src" {
		t.Errorf("SrcDir() = %q, want src", rc.Config.Book.SrcDir())
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "not json", in: "nope"},
		{name: "unknown string item", in: `{"book":{"sections":["Spacer"]}}`},
		{name: "unknown tagged item", in: `{"book":{"sections":[{"Appendix":{}}]}}`},
		{name: "two variants", in: `{"book":{"sections":[{"PartTitle":"a","Separator":null}]}}`},
		{name: "bad part title", in: `{"book":{"sections":[{"PartTitle":3}]}}`},
		{name: "bad nested chapter", in: `{"book":{"sections":[{"Chapter":{"name":"a","sub_items":[7]}}]}}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(strings.NewReader(tt.in))
			if !errors.Is(err, ErrDecode) {
				t.Errorf("Decode() error = %v, want ErrDecode", err)
			}
		})
	}
}

func TestChapters_PreOrder(t *testing.T) {
	t.Parallel()

	items, err := DecodeItems([]byte(`[
		{"Chapter":{"name":"a","number":[1],"sub_items":[
			{"Chapter":{"name":"a.1","number":[1,1],"sub_items":[
				{"Chapter":{"name":"a.1.1","number":[1,1,1],"sub_items":[]}}
			]}},
			{"Chapter":{"name":"a.2","number":[1,2],"sub_items":[]}}
		]}},
		{"PartTitle":"p"},
		{"Chapter":{"name":"b","number":null,"sub_items":[]}}
	]`))
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, ch := range Chapters(items) {
		names = append(names, ch.Title)
	}
	want := "a,a.1,a.1.1,a.2,b"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("Chapters() order = %s, want %s", got, want)
	}
}
