package markdown

import (
	"regexp"
	"strings"
)

// crlfOrCR matches Windows and old Mac line endings.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// byteOrderMark is stripped from the start of chapter sources.
const byteOrderMark = "\uFEFF"

// Preprocess normalizes chapter source before parsing: line endings become
// \n and a leading byte order mark is removed. Content is otherwise untouched
// so code blocks survive byte for byte.
func Preprocess(content string) string {
	content = strings.TrimPrefix(content, byteOrderMark)
	return crlfOrCR.ReplaceAllString(content, "\n")
}
