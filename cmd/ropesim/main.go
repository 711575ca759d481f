// Package main replays a rope move script and reports how many cells the
// short and long tails visit.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ko-stant/rope-follow/internal/config"

	ropesimcmd "github.com/Ko-stant/rope-follow/internal/cmd/ropesim"
)

func main() {
	cfg, err := ropesimcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ropesimcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
