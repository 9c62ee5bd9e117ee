package book

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrDecode indicates the render context could not be decoded.
var ErrDecode = errors.New("invalid render context")

// RendererName is the key of this renderer's table under config.output.
const RendererName = "typst"

// RenderContext is what the host writes to the renderer's stdin.
type RenderContext struct {
	Version     string
	Root        string
	Destination string
	Book        Book
	Config      Config
}

// Config is the subset of the host's book configuration the renderer reads.
type Config struct {
	Book   BookConfig
	Output map[string]json.RawMessage
}

// BookConfig holds the [book] table.
type BookConfig struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Language string   `json:"language"`
	Src      string   `json:"src"`
}

// SrcDir returns the source directory relative to the book root.
func (c BookConfig) SrcDir() string {
	if c.Src == "" {
		return "src"
	}
	return c.Src
}

// RendererOptions returns the raw [output.typst] table, or nil when absent.
func (c Config) RendererOptions() json.RawMessage {
	return c.Output[RendererName]
}

type wireContext struct {
	Version     string     `json:"version"`
	Root        string     `json:"root"`
	Destination string     `json:"destination"`
	Book        wireBook   `json:"book"`
	Config      wireConfig `json:"config"`
}

type wireConfig struct {
	Book   BookConfig                 `json:"book"`
	Output map[string]json.RawMessage `json:"output"`
}

// wireBook accepts both the "sections" and the newer "items" key.
type wireBook struct {
	Sections []json.RawMessage `json:"sections"`
	Items    []json.RawMessage `json:"items"`
}

type wireChapter struct {
	Name     string            `json:"name"`
	Content  string            `json:"content"`
	Number   []int             `json:"number"`
	SubItems []json.RawMessage `json:"sub_items"`
	Path     *string           `json:"path"`
}

// Decode reads a render context from r.
func Decode(r io.Reader) (*RenderContext, error) {
	var w wireContext
	dec := json.NewDecoder(r)
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	raw := w.Book.Sections
	if raw == nil {
		raw = w.Book.Items
	}
	items, err := decodeItems(raw)
	if err != nil {
		return nil, err
	}

	return &RenderContext{
		Version:     w.Version,
		Root:        w.Root,
		Destination: w.Destination,
		Book:        Book{Items: items},
		Config:      Config{Book: w.Config.Book, Output: w.Config.Output},
	}, nil
}

// DecodeItems decodes a JSON array of externally tagged book items.
func DecodeItems(data []byte) ([]Item, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return decodeItems(raw)
}

func decodeItems(raw []json.RawMessage) ([]Item, error) {
	items := make([]Item, 0, len(raw))
	for i, msg := range raw {
		item, err := decodeItem(msg)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeItem(msg json.RawMessage) (Item, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) > 0 && msg[0] == '"' {
		var tag string
		if err := json.Unmarshal(msg, &tag); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if tag == "Separator" {
			return &Separator{}, nil
		}
		return nil, fmt.Errorf("%w: unknown item %q", ErrDecode, tag)
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(msg, &tagged); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("%w: item must have exactly one variant, got %d", ErrDecode, len(tagged))
	}

	var tag string
	var body json.RawMessage
	for k, v := range tagged {
		tag, body = k, v
	}

	switch tag {
	case "PartTitle":
		var title string
		if err := json.Unmarshal(body, &title); err != nil {
			return nil, fmt.Errorf("%w: part title: %v", ErrDecode, err)
		}
		return &Part{Title: title}, nil
	case "Chapter":
		return decodeChapter(body)
	case "Separator":
		return &Separator{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown item %q", ErrDecode, tag)
	}
}

func decodeChapter(body json.RawMessage) (*Chapter, error) {
	var wc wireChapter
	if err := json.Unmarshal(body, &wc); err != nil {
		return nil, fmt.Errorf("%w: chapter: %v", ErrDecode, err)
	}
	children, err := decodeItems(wc.SubItems)
	if err != nil {
		return nil, fmt.Errorf("chapter %q: %w", wc.Name, err)
	}
	ch := &Chapter{
		Title:    wc.Name,
		Number:   wc.Number,
		Content:  wc.Content,
		Children: children,
	}
	if wc.Path != nil {
		ch.Path = *wc.Path
	}
	return ch, nil
}
