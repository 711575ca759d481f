package ropesim

import (
	"errors"
	"flag"
	"fmt"

	"github.com/Ko-stant/rope-follow/internal/config"
)

// Config holds ropesim command configuration.
type Config struct {
	ShortLength int    `env:"ROPESIM_SHORT_LENGTH" envDefault:"2"`
	LongLength  int    `env:"ROPESIM_LONG_LENGTH"  envDefault:"10"`
	Verbose     bool   `env:"ROPESIM_VERBOSE"`
	ServeAddr   string `env:"ROPESIM_SERVE_ADDR"`
	Profiling   bool   `env:"ROPESIM_ENABLE_PROFILING"`

	// ScriptPath is the positional argument.
	ScriptPath string
}

// ParseConfig reads the environment, then lets flags override it.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.IntVar(&cfg.ShortLength, "short", cfg.ShortLength, "segments in the short rope")
	fs.IntVar(&cfg.LongLength, "long", cfg.LongLength, "segments in the long rope (also the server default)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log run details to stderr")
	fs.StringVar(&cfg.ServeAddr, "serve", cfg.ServeAddr, "serve runs over websocket on this address instead of reading a file")
	fs.BoolVar(&cfg.Profiling, "pprof", cfg.Profiling, "expose /debug/pprof/ in server mode")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.ScriptPath = fs.Arg(0)
	default:
		return Config{}, fmt.Errorf("expected one script path, got %d arguments", fs.NArg())
	}

	if cfg.ShortLength < 1 || cfg.LongLength < 1 {
		return Config{}, errors.New("rope lengths must be at least 1")
	}
	return cfg, nil
}
