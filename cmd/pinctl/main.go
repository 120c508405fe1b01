package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/pinkeeper/internal/client/cli"
	"github.com/dmitrijs2005/pinkeeper/internal/client/config"
	"github.com/dmitrijs2005/pinkeeper/internal/common"
)

func main() {

	ctx := context.Background()
	cfg, args, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := app.Run(ctx, args); err != nil {
		switch {
		case errors.Is(err, common.ErrLocked):
			os.Exit(3)
		case errors.Is(err, cli.ErrNotVerified):
		default:
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

}
