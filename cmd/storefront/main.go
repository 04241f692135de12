// Command storefront is a terminal client for the Fake Store catalog with a
// locally persisted cart.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/fakestore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// printError reports a failed command. Catalog failures are transient, so
// they get a hint to rerun the command.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "error:", err)
	if errors.Is(err, fakestore.ErrFetch) {
		fmt.Fprintln(w, "The catalog could not be reached. Check your connection and try again.")
	}
}
