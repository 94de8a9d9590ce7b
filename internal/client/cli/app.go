package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/jobhub/internal/client/client"
	"github.com/dmitrijs2005/jobhub/internal/client/config"
)

type App struct {
	config   *config.Config
	api      client.Client
	uploader *http.Client
	reader   *bufio.Reader
	out      io.Writer
	userName string
	token    string
}

func NewApp(c *config.Config) *App {
	return &App{
		config:   c,
		api:      client.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout),
		uploader: &http.Client{Timeout: c.RequestTimeout},
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
}

// Run executes command once, or starts the REPL when command is empty.
func (a *App) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "":
		fmt.Fprintln(a.out, "jobhub CLI (type 'help' for commands)")
		runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "listen":
		return a.Listen(ctx)
	case "logo":
		if len(args) == 0 {
			return fmt.Errorf("usage: logo <file>")
		}
		if err := a.Login(ctx); err != nil {
			return err
		}
		return a.UploadLogo(ctx, args[0])
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userName)
}
