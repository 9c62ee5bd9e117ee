// Command mdbook-typst is an mdbook renderer backend. mdbook runs it from
// `mdbook build` when book.toml has an [output.typst] table, writing the
// render context to stdin; the Typst document is written to the build
// destination.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	ctx, stop := notifyContext(context.Background())
	code := run(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}

// notifyContext returns a context that is canceled when an interrupt
// or termination signal is received. Call stop() to release resources.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
