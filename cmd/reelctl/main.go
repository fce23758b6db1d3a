// Command reelctl is a command-line client for a reel server.
//
// Example usage:
//
//	REEL_SERVER=http://localhost:3000 reelctl list
//	reelctl create --id 1 --name "The Matrix" --year 1999 --was-good
//	reelctl update 1 --name "The Matrix" --year 1999
//	reelctl import movies.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dreamware/reel/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
