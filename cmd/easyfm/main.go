package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yi-nology/easy_fm/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		cli.PrintError(root.ErrOrStderr(), err)
		stop()
		os.Exit(cli.ExitCode(err))
	}
}
