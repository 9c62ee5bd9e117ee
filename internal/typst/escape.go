package typst

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// markupChars are the characters with markup meaning in Typst content.
const markupChars = "\\#*_`<>[]@$~/=-+"

func isMarkupChar(c byte) bool {
	return strings.IndexByte(markupChars, c) >= 0
}

// Escape backslash-escapes every Typst markup character in s so it renders
// as literal text. Apply it once per text leaf, never to generated markup.
func Escape(s string) string {
	if !strings.ContainsAny(s, markupChars) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	for i := 0; i < len(s); i++ {
		if isMarkupChar(s[i]) {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Unescape reverses Escape. Backslashes not followed by a markup character
// are kept.
func Unescape(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && isMarkupChar(s[i+1]) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Quote returns s as a Typst string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Label folds s to the character set of a Typst label: lower-case ASCII
// letters, digits, '_', '.', ':' and '-'. Accents are stripped, every other
// run of characters becomes a single '-'. The result may be empty.
func Label(s string) string {
	// A transform chain is stateful; build one per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == ':':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// longestRun returns the length of the longest run of c in s.
func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Fence returns the backtick fence for a raw block holding text: at least
// three backticks and always longer than any backtick run inside text.
func Fence(text string) string {
	return strings.Repeat("`", max(3, longestRun(text, '`')+1))
}

// InlineRaw renders code as inline raw text. Code without backticks uses a
// single backtick pair. Otherwise the delimiter is a run of at least three
// backticks, longer than any run inside code, with one padding space on each
// side so a leading word is not taken as a language tag. Empty code becomes
// #raw(""), since two adjacent backticks would open nothing.
func InlineRaw(code string) string {
	if code == "" {
		return `#raw("")`
	}
	n := longestRun(code, '`')
	if n == 0 {
		return "`" + code + "`"
	}
	delim := strings.Repeat("`", max(3, n+1))
	return delim + " " + code + " " + delim
}

// enumStart matches a line that Typst would read as a numbered list item.
var enumStart = regexp.MustCompile(`(?m)^([ \t]*[0-9]+)\.([ \t]|$)`)

// protectLineStarts escapes the dot of "12." at the start of a line.
func protectLineStarts(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	return enumStart.ReplaceAllString(s, `${1}\.${2}`)
}

// content wraps converted markup in a content block. Line starts inside s
// must already be protected.
func content(s string) string {
	return "[" + s + "]"
}

// escapeText escapes s for a content block in which it starts a line.
func escapeText(s string) string {
	return protectLineStarts(Escape(s))
}
