// Package logfields holds the attribute keys and helpers shared by every
// structured log call, so field names stay stable across packages.
package logfields

import "log/slog"

// Canonical log field names.
const (
	KeyChapter    = "chapter"
	KeyKind       = "kind"
	KeyPath       = "path"
	KeySource     = "source"
	KeyDurationMS = "duration_ms"
	KeyWorkers    = "workers"
	KeyChapters   = "chapters"
	KeyWarnings   = "warnings"
	KeyBytes      = "bytes"
	KeyError      = "error"
)

func Chapter(name string) slog.Attr   { return slog.String(KeyChapter, name) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Workers(n int) slog.Attr         { return slog.Int(KeyWorkers, n) }
func Chapters(n int) slog.Attr        { return slog.Int(KeyChapters, n) }
func Warnings(n int) slog.Attr        { return slog.Int(KeyWarnings, n) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
