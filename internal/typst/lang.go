package typst

import (
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// langTag matches what Typst accepts as a raw block language tag.
var langTag = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// NormalizeLang turns a code fence info string into a Typst raw language
// tag. Only the first word is kept, so mdbook attributes such as
// "rust,ignore" or "toml {hidelines=#}" are dropped. A word that is already
// a valid tag is kept as written. Other words are looked up in chroma's
// lexer registry and replaced by the first usable alias ("c++" -> "cpp",
// "c#" -> "csharp"). Unusable tags yield "".
func NormalizeLang(info string) string {
	lang := strings.TrimSpace(info)
	if i := strings.IndexAny(lang, ", \t{"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "" || langTag.MatchString(lang) {
		return lang
	}

	l := lexers.Get(lang)
	if l == nil {
		return ""
	}
	cfg := l.Config()
	if cfg == nil {
		return ""
	}
	for _, alias := range cfg.Aliases {
		if langTag.MatchString(alias) {
			return alias
		}
	}
	return ""
}
