// Package ropesim wires the rope simulation to the command line.
package ropesim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Ko-stant/rope-follow/internal/moves"
	"github.com/Ko-stant/rope-follow/internal/simulation"
)

// Run executes the ropesim command. In file mode it prints the short and long
// tail counts to out; with ServeAddr set it serves until ctx is done.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	logger := log.New(errOut, "", 0)

	if cfg.ServeAddr != "" {
		return Serve(ctx, cfg, logger)
	}
	if cfg.ScriptPath == "" {
		return errors.New("script path is required")
	}

	contents, err := os.ReadFile(cfg.ScriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	script := string(contents)

	if cfg.Verbose {
		parsed, err := moves.ParseAll(script)
		if err != nil {
			return fmt.Errorf("replay script: %w", err)
		}
		for i, m := range parsed {
			logger.Printf("line %d: %s", i+1, m)
		}
	}

	short, err := simulation.Run(ctx, script, cfg.ShortLength, nil)
	if err != nil {
		return err
	}
	long, err := simulation.Run(ctx, script, cfg.LongLength, nil)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		for _, res := range []simulation.Result{short, long} {
			logger.Printf("length %d: %d steps, head %v, tail %v, %d tail positions",
				res.RopeLength, res.Steps, res.Head, res.Tail, res.Visited)
		}
	}

	fmt.Fprintf(out, "The short tail visited %d positions!\n", short.Visited)
	fmt.Fprintf(out, "The long tail visited %d positions!\n", long.Visited)
	return nil
}
