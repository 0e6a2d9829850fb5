package main

import (
	"flag"
	"log"

	"github.com/danmuck/bitsctl/internal/config"
)

var defaultPaths = map[string]string{
	"bitsctl": "cmd/bitsctl/config.toml",
	"bitsd":   "cmd/bitsd/config.toml",
}

func main() {
	kind := flag.String("kind", "bitsctl", "config kind: bitsctl|bitsd")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if _, ok := defaultPaths[*kind]; !ok {
		log.Fatalf("unknown kind: %s", *kind)
	}

	if *validate {
		path := *input
		if path == "" {
			path = defaultPaths[*kind]
		}
		if err := validateConfig(*kind, path); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPaths[*kind]
	}
	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}

func validateConfig(kind, path string) error {
	switch kind {
	case "bitsd":
		_, err := config.LoadServerConfig(path)
		return err
	default:
		_, err := config.LoadCLIConfig(path)
		return err
	}
}
