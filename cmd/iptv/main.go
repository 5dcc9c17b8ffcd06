package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/biner/iptv-proxy/cmd/iptv/cmds"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cobra.CheckErr(cmds.NewRootCLI().ExecuteContext(ctx))
}
