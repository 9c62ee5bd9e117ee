package typst

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-mdbook-typst/internal/mdast"
)

// Options carries the per-chapter context of a conversion.
type Options struct {
	// Chapter names the chapter in warnings.
	Chapter string
	// Label is the chapter's Typst label, without angle brackets. It
	// scopes footnote labels and is the target of in-page links.
	Label string
	// Path is the chapter file relative to the book's src directory,
	// slash separated. Relative links and images resolve against its
	// directory.
	Path string
	// SrcDir is the book's src directory relative to the book root.
	SrcDir string
	// HeadingOffset is added to every in-chapter heading level.
	HeadingOffset int
	// Unnumbered emits headings without numbering.
	Unnumbered bool
	// Chapters maps chapter paths (relative to SrcDir) to their labels.
	Chapters map[string]string
}

// Task list markers. The parser consumes the space after "[ ]", so the
// marker carries its own.
const (
	taskOpen = "☐ "
	taskDone = "☒ "
)

var (
	// scheme matches URLs with a scheme ("https:", "mailto:") and
	// protocol-relative URLs.
	scheme = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.-]*:|//)`)
	brTag  = regexp.MustCompile(`(?i)^<br\s*/?>$`)
)

type footnoteState int

const (
	footnoteUnused footnoteState = iota
	footnoteExpanding
	footnoteEmitted
)

type footnote struct {
	body  mdast.Blocks
	index int
	state footnoteState
}

// InlineConverter renders inline sequences as Typst markup. It never fails:
// constructs without a Typst equivalent degrade to escaped text and a
// warning. Not safe for concurrent use; create one per chapter.
type InlineConverter struct {
	opts      Options
	footnotes map[string]*footnote
	order     []string
	blocks    func(mdast.Blocks) string
	warnings  []Warning
}

// NewInlineConverter creates an InlineConverter for one chapter.
func NewInlineConverter(opts Options) *InlineConverter {
	return &InlineConverter{opts: opts, footnotes: make(map[string]*footnote)}
}

// Warnings returns the warnings recorded so far.
func (c *InlineConverter) Warnings() []Warning {
	return c.warnings
}

func (c *InlineConverter) warn(kind WarningKind, format string, args ...any) {
	c.warnings = append(c.warnings, Warning{
		Kind:    kind,
		Chapter: c.opts.Chapter,
		Message: fmt.Sprintf(format, args...),
	})
}

// defineFootnotes registers the footnote definitions found in a chapter.
func (c *InlineConverter) defineFootnotes(blocks mdast.Blocks) {
	for _, b := range blocks {
		def, ok := b.(*mdast.FootnoteDefinition)
		if !ok {
			continue
		}
		if _, dup := c.footnotes[def.Label]; dup {
			c.warn(WarnStructural, "footnote [^%s] defined twice; first definition kept", def.Label)
			continue
		}
		c.footnotes[def.Label] = &footnote{body: def.Body, index: len(c.order) + 1}
		c.order = append(c.order, def.Label)
	}
}

func (c *InlineConverter) reportUnusedFootnotes() {
	for _, label := range c.order {
		if c.footnotes[label].state == footnoteUnused {
			c.warn(WarnStructural, "footnote [^%s] is never referenced", label)
		}
	}
}

// writer tracks whether the last thing written was an embedded call, so a
// following "(" or "." is not read as arguments or a field access, and
// whether output is in the middle of a line.
type writer struct {
	b         strings.Builder
	afterCall bool
	midLine   bool
}

func (w *writer) text(s string) {
	if s == "" {
		return
	}
	if w.afterCall && (s[0] == '(' || s[0] == '.') {
		w.b.WriteByte(';')
	}
	w.afterCall = false
	w.midLine = s[len(s)-1] != '\n'
	w.b.WriteString(s)
}

// escaped writes a text leaf. Only leaves are protected against being read
// as list items; converted markup such as a footnote body holding a raw
// block is written as is.
func (w *writer) escaped(s string) {
	s = Escape(s)
	if !w.midLine {
		s = protectLineStarts(s)
	} else if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i+1] + protectLineStarts(s[i+1:])
	}
	w.text(s)
}

func (w *writer) call(s string) {
	w.text(s)
	w.afterCall = true
}

// Convert renders in as Typst markup.
func (c *InlineConverter) Convert(in mdast.Inlines) string {
	s, _ := c.convert(in)
	return s
}

// convert also reports whether the markup ends with an embedded call.
func (c *InlineConverter) convert(in mdast.Inlines) (string, bool) {
	w := &writer{}
	for _, n := range in {
		c.inline(w, n)
	}
	return w.b.String(), w.afterCall
}

// splice writes markup produced by another writer, keeping its call state.
func (w *writer) splice(s string, afterCall bool) {
	w.text(s)
	w.afterCall = afterCall && s != ""
}

func (c *InlineConverter) inline(w *writer, n mdast.Inline) {
	switch n := n.(type) {
	case *mdast.Text:
		w.escaped(n.Value)
	case *mdast.Emphasis:
		w.call("#emph" + content(c.Convert(n.Children)))
	case *mdast.Strong:
		w.call("#strong" + content(c.Convert(n.Children)))
	case *mdast.Strikethrough:
		w.call("#strike" + content(c.Convert(n.Children)))
	case *mdast.Code:
		raw := InlineRaw(n.Value)
		if strings.HasPrefix(raw, "#") {
			w.call(raw)
		} else {
			w.text(raw)
		}
	case *mdast.Link:
		c.link(w, n)
	case *mdast.Image:
		c.image(w, n)
	case *mdast.FootnoteRef:
		c.footnoteRef(w, n.Label)
	case *mdast.SoftBreak:
		w.text(" ")
	case *mdast.HardBreak:
		w.text("\\\n")
	case *mdast.TaskMarker:
		if n.Checked {
			w.text(taskDone)
		} else {
			w.text(taskOpen)
		}
	case *mdast.RawInline:
		c.rawInline(w, n.Value)
	case *mdast.Unknown:
		c.warn(WarnStructural, "unsupported %s rendered as text", n.Kind)
		w.escaped(n.Literal)
	}
}

func (c *InlineConverter) link(w *writer, l *mdast.Link) {
	body, bodyCall := c.convert(l.Children)
	target := l.Target

	switch {
	case l.Auto || scheme.MatchString(target):
		c.linkTo(w, Quote(target), body, "")
	case strings.HasPrefix(target, "#"):
		if c.opts.Label == "" {
			w.splice(body, bodyCall)
			return
		}
		c.linkTo(w, "<"+c.opts.Label+">", body, escapeText(target))
	default:
		label, isChapter, ok := c.chapterLink(target)
		switch {
		case ok:
			c.linkTo(w, "<"+label+">", body, escapeText(target))
		case isChapter:
			c.warn(WarnStructural, "link target %q is not a chapter of this book; link text kept", target)
			w.splice(body, bodyCall)
		default:
			c.linkTo(w, Quote(target), body, "")
		}
	}
}

// linkTo writes a #link call. String destinations may omit the body; label
// destinations need one, so fallback is used when body is empty.
func (c *InlineConverter) linkTo(w *writer, dest, body, fallback string) {
	if body == "" {
		body = fallback
	}
	if body == "" {
		w.call("#link(" + dest + ")")
		return
	}
	w.call("#link(" + dest + ")" + content(body))
}

// chapterLink resolves a relative link to a chapter label. isChapter
// reports whether the target names a chapter file (.md or .html) at all.
func (c *InlineConverter) chapterLink(target string) (label string, isChapter, ok bool) {
	p := target
	if i := strings.IndexAny(p, "#?"); i >= 0 {
		p = p[:i]
	}
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}

	switch {
	case strings.HasSuffix(p, ".md"):
	case strings.HasSuffix(p, ".html"):
		p = strings.TrimSuffix(p, ".html") + ".md"
	default:
		return "", false, false
	}

	if strings.HasPrefix(p, "/") {
		p = path.Clean(strings.TrimPrefix(p, "/"))
	} else {
		p = path.Join(path.Dir(c.opts.Path), p)
	}
	label, ok = c.opts.Chapters[p]
	return label, true, ok
}

// imagePath returns the root-relative path Typst should load for target, or
// false when the image is remote.
func (c *InlineConverter) imagePath(target string) (string, bool) {
	if scheme.MatchString(target) {
		return "", false
	}
	p := target
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	if strings.HasPrefix(p, "/") {
		return path.Join("/", c.opts.SrcDir, p), true
	}
	return path.Join("/", c.opts.SrcDir, path.Dir(c.opts.Path), p), true
}

func imageCall(p, alt string) string {
	if alt == "" {
		return "image(" + Quote(p) + ")"
	}
	return "image(" + Quote(p) + ", alt: " + Quote(alt) + ")"
}

func (c *InlineConverter) image(w *writer, img *mdast.Image) {
	p, ok := c.imagePath(img.Target)
	if !ok {
		c.remoteImage(w, img)
		return
	}
	w.call("#box(" + imageCall(p, img.Alt) + ")")
}

func (c *InlineConverter) remoteImage(w *writer, img *mdast.Image) {
	c.warn(WarnStructural, "remote image %q cannot be embedded; emitted as a link", img.Target)
	c.linkTo(w, Quote(img.Target), escapeText(img.Alt), "")
}

// Figure renders a paragraph holding a single image as a figure captioned
// with the alt text. Remote images are not figures.
func (c *InlineConverter) Figure(img *mdast.Image) (string, bool) {
	p, ok := c.imagePath(img.Target)
	if !ok {
		return "", false
	}
	if img.Alt == "" {
		return "#figure(" + imageCall(p, "") + ")", true
	}
	return "#figure(" + imageCall(p, img.Alt) + ", caption: " + content(escapeText(img.Alt)) + ")", true
}

// footnoteLabel builds a label unique across the book.
func (c *InlineConverter) footnoteLabel(label string, fn *footnote) string {
	id := Label(label)
	if id == "" {
		id = strconv.Itoa(fn.index)
	}
	if c.opts.Label != "" {
		return "fn-" + strings.TrimPrefix(c.opts.Label, "chapter-") + "-" + id
	}
	return "fn-" + id
}

// footnoteRef emits the definition body at the first reference and a
// reference to its label afterwards.
func (c *InlineConverter) footnoteRef(w *writer, label string) {
	fn, ok := c.footnotes[label]
	if !ok || c.blocks == nil {
		c.warn(WarnStructural, "footnote [^%s] has no definition", label)
		w.call("#footnote" + content(escapeText(label)))
		return
	}

	id := c.footnoteLabel(label, fn)
	switch fn.state {
	case footnoteEmitted:
		w.call("#footnote(<" + id + ">)")
		return
	case footnoteExpanding:
		c.warn(WarnStructural, "footnote [^%s] references itself", label)
		w.text(Escape("[^" + label + "]"))
		return
	}

	fn.state = footnoteExpanding
	body := c.blocks(fn.body)
	fn.state = footnoteEmitted

	w.text("#footnote[" + body + "]<" + id + ">")
}

func (c *InlineConverter) rawInline(w *writer, html string) {
	trimmed := strings.TrimSpace(html)
	switch {
	case brTag.MatchString(trimmed):
		w.call("#linebreak()")
	case strings.HasPrefix(trimmed, "<!--"):
	default:
		c.warn(WarnStructural, "inline HTML %q rendered as text", trimmed)
		w.escaped(html)
	}
}
