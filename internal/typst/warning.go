package typst

import "fmt"

// WarningKind classifies a non-fatal conversion problem.
type WarningKind int

const (
	// WarnStructural flags a construct that was degraded: an unresolvable
	// link, an unclosed wrapper, unsupported HTML.
	WarnStructural WarningKind = iota
	// WarnTableShape flags a table row padded or truncated to the header width.
	WarnTableShape
)

func (k WarningKind) String() string {
	switch k {
	case WarnStructural:
		return "structural"
	case WarnTableShape:
		return "table-shape"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// Warning is a recoverable problem found while converting a chapter.
type Warning struct {
	Kind    WarningKind
	Chapter string
	Message string
}

func (w Warning) String() string {
	if w.Chapter == "" {
		return w.Kind.String() + ": " + w.Message
	}
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Chapter, w.Message)
}
