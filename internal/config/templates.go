package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "bitsctl":
		return cliTemplate, nil
	case "bitsd":
		return serverTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const cliTemplate = `input = "input.txt"
format = "text"
tree = true
sum = true
log_level = "info"

[decoder]
max_hex_chars = 1048576
max_depth = 0
`

const serverTemplate = `name = "bitsd"
addr = ":9400"
cors_origins = ["http://localhost:3000"]
max_body_bytes = 4194304
log_level = "info"

[decoder]
max_hex_chars = 1048576
max_depth = 0
`
