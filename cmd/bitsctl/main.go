package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/bitsctl/internal/config"
	"github.com/danmuck/bitsctl/internal/inspect"
	"github.com/danmuck/bitsctl/internal/logging"
	"github.com/danmuck/bitsctl/internal/observability"
	"github.com/danmuck/bitsctl/internal/protocol/bitbuf"
	"github.com/danmuck/bitsctl/internal/render"
	"github.com/rs/zerolog"
)

func main() {
	logging.ConfigureRuntime()
	logger := observability.InitLogger("bitsctl")
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, logger))
}

func run(args []string, stdout, stderr io.Writer, logger zerolog.Logger) int {
	fs := flag.NewFlagSet("bitsctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "optional bitsctl TOML config")
	input := fs.String("input", "", "file whose first line is the hex transmission")
	hex := fs.String("hex", "", "hex transmission given inline")
	format := fs.String("format", "", "tree format: text|json|yaml")
	tree := fs.Bool("tree", true, "print the decoded tree")
	sum := fs.Bool("sum", true, "print the summed packet versions")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "bitsctl: %v\n", err)
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = strings.TrimSpace(*input)
		case "tree":
			cfg.Tree = *tree
		case "sum":
			cfg.Sum = *sum
		}
	})
	if *format != "" {
		f, err := render.ParseFormat(*format)
		if err != nil {
			fmt.Fprintf(stderr, "bitsctl: %v\n", err)
			return 2
		}
		cfg.Format = f
	}
	if err := config.ValidateCLIConfig(cfg); err != nil {
		fmt.Fprintf(stderr, "bitsctl: %v\n", err)
		return 2
	}
	if os.Getenv(logging.EnvLogLevel) == "" {
		if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
			logger = logger.Level(lvl)
		}
	}

	source, transmission, err := readTransmission(*hex, cfg.Input)
	if err != nil {
		fmt.Fprintf(stderr, "bitsctl: %v\n", err)
		return 1
	}

	report, err := inspect.New(cfg.Decoder.Limits(), logger).Inspect(source, transmission)
	if err != nil {
		fmt.Fprintf(stderr, "bitsctl: decode %s: %v\n", source, err)
		return 1
	}

	if cfg.Tree {
		if err := render.Write(stdout, report.Root, cfg.Format); err != nil {
			fmt.Fprintf(stderr, "bitsctl: render: %v\n", err)
			return 1
		}
	}
	if cfg.Sum {
		if cfg.Tree {
			fmt.Fprintln(stdout)
		}
		fmt.Fprintf(stdout, "Summed version: %d\n", report.VersionSum)
	}
	return 0
}

func loadConfig(path string) (config.CLIConfig, error) {
	if path == "" {
		return config.DefaultCLIConfig(), nil
	}
	return config.LoadCLIConfig(path)
}

// readTransmission prefers inline hex over the input file. The first result
// labels the source for logs and metrics.
func readTransmission(inline, path string) (string, string, error) {
	if hex := strings.TrimSpace(inline); hex != "" {
		return "inline", hex, nil
	}
	if path == "" {
		return "", "", fmt.Errorf("no input: pass -hex, -input, or set input in config")
	}
	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	hex, err := bitbuf.ReadHexLine(f)
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", path, err)
	}
	return "file", hex, nil
}
