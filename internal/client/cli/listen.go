package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

// Listen holds a websocket open and prints every message the server pushes.
// Interrupt (Ctrl-C) or ctx cancellation ends it. The printed address is
// what POST /send/<addr> expects.
func (a *App) Listen(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	err := a.api.Listen(ctx,
		func(localAddr string) {
			fmt.Fprintf(a.out, "Listening as %s (Ctrl-C to stop)\n", localAddr)
		},
		func(msg string) {
			fmt.Fprintf(a.out, "<- %s\n", msg)
		})
	if err != nil {
		fmt.Fprintf(a.out, "Listen failed: %s\n", err.Error())
		return err
	}

	fmt.Fprintln(a.out, "Disconnected")
	return nil
}
