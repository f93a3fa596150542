// Package main provides the CLI entrypoint for sqljob-generator.
//
// sqljob-generator turns a column-mapping sheet into, per target table:
//   - a SQL view definition (WITH … SELECT …;)
//   - a job manifest running that view as source → transform → load
//   - a markdown audit report of every interpretation decision
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
