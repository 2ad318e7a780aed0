package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/TuSKan/zarr-divider/config"
	"github.com/TuSKan/zarr-divider/internal/logging"
)

func main() {
	input := flag.String("input", "", "URL of the source Zarr v2 array (file:///path/to/array.zarr, mem://, s3://...)")
	output := flag.String("output", "", "URL under which divided layers are written (default: next to the input)")
	name := flag.String("name", "", "Layer name of the source (default: last path element of -input)")
	splits := flag.String("splits", "", `Depth split positions, e.g. "2, 4" or "[2, 4]"`)
	boundaries := flag.Bool("boundaries", false, "Duplicate the slice at each split into both neighbouring layers")
	compressor := flag.String("compressor", "", "Chunk compressor for written layers: zstd, zlib, gzip or none")
	batch := flag.Int("batch", 0, "Stream the source this many time frames at a time (0: whole volume)")
	configPath := flag.String("config", "zarrdivide.yaml", "Path to YAML configuration")
	saveConfig := flag.Bool("save-config", false, "Write the effective configuration to -config and exit")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zarrdivide: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "boundaries":
			cfg.Divide.IncludeBoundaries = *boundaries
		case "compressor":
			cfg.Output.Compressor = *compressor
		case "batch":
			cfg.Output.BatchFrames = *batch
		case "v":
			cfg.Logging.Verbose = *verbose
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "zarrdivide: %v\n", err)
		os.Exit(1)
	}

	if *saveConfig {
		if err := config.SaveConfig(cfg, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "zarrdivide: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "zarrdivide: configuration written to %s\n", *configPath)
		return
	}
	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	writers := logging.Writers{Ops: os.Stderr}
	if cfg.Logging.Verbose {
		writers.Diag = os.Stderr
	}
	if cfg.Logging.Trace {
		writers.Trace = os.Stderr
	}
	logging.SetWriters(writers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := options{
		Input:  *input,
		Output: *output,
		Name:   *name,
		Splits: *splits,
	}
	if err := run(ctx, cfg, opts, os.Stdout); err != nil {
		logging.Opsf("divide failed: %v", err)
		os.Exit(1)
	}
}
