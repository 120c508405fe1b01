package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/pinkeeper/internal/client/client"
	"github.com/dmitrijs2005/pinkeeper/internal/client/config"
)

var ErrUsage = errors.New("usage: pinctl [-a addr] [-t token] [-w seconds] verify|status|grant <token>|ping")

type App struct {
	config *config.Config
	client client.Client
	in     *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewStepUpClientService(c.ServerEndpointAddr, c.AccessToken)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, cl client.Client, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: cl, in: bufio.NewReader(in), out: out}
}

// Run executes one command and closes the connection.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.client.Close()

	if len(args) == 0 {
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help":
		fmt.Fprintln(a.out, ErrUsage.Error())
		return nil
	case "verify":
		return a.Verify(ctx)
	case "status":
		return a.Status(ctx)
	case "grant":
		if len(rest) != 1 {
			return ErrUsage
		}
		return a.CheckGrant(ctx, rest[0])
	case "ping":
		return a.Ping(ctx)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, ErrUsage)
	}
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
