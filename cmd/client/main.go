// Command client is the jobhub command-line client.
//
// Usage:
//
//	client [register|login|listen|logo <file>] [-a addr] [-t seconds] [-c config.json]
//
// Without a subcommand it starts an interactive session.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/jobhub/internal/client/cli"
	"github.com/dmitrijs2005/jobhub/internal/client/config"
	"github.com/dmitrijs2005/jobhub/internal/flagx"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	args := os.Args[1:]
	command := flagx.Command(args)
	if command != "" {
		args = args[1:]
	}

	if err := app.Run(ctx, command, args); err != nil {
		log.Fatalf("%v", err)
	}

}
