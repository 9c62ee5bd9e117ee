package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// SetMaxProcs adjusts GOMAXPROCS to the container CPU quota. logf
	// receives its messages.
	SetMaxProcs func(logf func(format string, args ...any))
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		SetMaxProcs: func(logf func(string, ...any)) {
			// maxprocs.Set only fails if GOMAXPROCS env is invalid, in which
			// case the Go runtime default applies.
			_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
				logf(format, args...)
			}))
		},
	}
}

// discardf is a printf-style sink.
func discardf(string, ...any) {}

// stderrf returns a printf-style logger writing lines to w.
func stderrf(w io.Writer) func(string, ...any) {
	return func(format string, args ...any) {
		fmt.Fprintf(w, format+"\n", args...)
	}
}
