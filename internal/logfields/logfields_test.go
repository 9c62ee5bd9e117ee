package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies helper keys stay stable.
func TestHelperKeyNames(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		key  string
		attr slog.Attr
	}{
		{"Chapter", KeyChapter, Chapter("Intro")},
		{"Kind", KeyKind, Kind("structural")},
		{"Path", KeyPath, Path("/tmp/book.typ")},
		{"Source", KeySource, Source("builtin:default")},
		{"DurationMS", KeyDurationMS, DurationMS(1.5)},
		{"Workers", KeyWorkers, Workers(4)},
		{"Chapters", KeyChapters, Chapters(12)},
		{"Warnings", KeyWarnings, Warnings(2)},
		{"Bytes", KeyBytes, Bytes(1024)},
		{"Error", KeyError, Error(errors.New("boom"))},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.key {
			t.Errorf("%s: key = %q, want %q", tc.name, tc.attr.Key, tc.key)
		}
	}
}

func TestError_Nil(t *testing.T) {
	t.Parallel()

	if got := Error(nil).Value.String(); got != "" {
		t.Errorf("Error(nil) value = %q, want empty", got)
	}
	if got := Error(errors.New("boom")).Value.String(); got != "boom" {
		t.Errorf("Error() value = %q, want boom", got)
	}
}
