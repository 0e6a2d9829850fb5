package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/bitsctl/internal/render"
)

// DecoderConfig bounds a single decode. Zero values defer to the decoder.
type DecoderConfig struct {
	MaxHexChars int `toml:"max_hex_chars"`
	MaxDepth    int `toml:"max_depth"`
}

// CLIConfig drives bitsctl.
type CLIConfig struct {
	Input    string
	Format   render.Format
	Tree     bool
	Sum      bool
	LogLevel string
	Decoder  DecoderConfig
}

// ServerConfig drives bitsd.
type ServerConfig struct {
	Name         string
	Addr         string
	CorsOrigins  []string
	MaxBodyBytes int64
	LogLevel     string
	Decoder      DecoderConfig
}

type cliFile struct {
	Input    string        `toml:"input"`
	Format   string        `toml:"format"`
	Tree     bool          `toml:"tree"`
	Sum      bool          `toml:"sum"`
	LogLevel string        `toml:"log_level"`
	Decoder  DecoderConfig `toml:"decoder"`
}

type serverFile struct {
	Name         string        `toml:"name"`
	Addr         string        `toml:"addr"`
	CorsOrigins  []string      `toml:"cors_origins"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
	LogLevel     string        `toml:"log_level"`
	Decoder      DecoderConfig `toml:"decoder"`
}

func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{MaxHexChars: 1 << 20}
}

func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		Format:   render.FormatText,
		Tree:     true,
		Sum:      true,
		LogLevel: "info",
		Decoder:  DefaultDecoderConfig(),
	}
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Name:         "bitsd",
		Addr:         ":9400",
		CorsOrigins:  []string{"http://localhost:3000"},
		MaxBodyBytes: 4 << 20,
		LogLevel:     "info",
		Decoder:      DefaultDecoderConfig(),
	}
}

func LoadCLIConfig(path string) (CLIConfig, error) {
	cfg := DefaultCLIConfig()

	var raw cliFile
	meta, err := decodeFile(path, &raw)
	if err != nil {
		return CLIConfig{}, err
	}
	if meta.IsDefined("input") {
		cfg.Input = strings.TrimSpace(raw.Input)
	}
	if meta.IsDefined("format") {
		f, err := render.ParseFormat(raw.Format)
		if err != nil {
			return CLIConfig{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		cfg.Format = f
	}
	if meta.IsDefined("tree") {
		cfg.Tree = raw.Tree
	}
	if meta.IsDefined("sum") {
		cfg.Sum = raw.Sum
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	applyDecoder(meta, raw.Decoder, &cfg.Decoder)

	if err := ValidateCLIConfig(cfg); err != nil {
		return CLIConfig{}, err
	}
	return cfg, nil
}

func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	var raw serverFile
	meta, err := decodeFile(path, &raw)
	if err != nil {
		return ServerConfig{}, err
	}
	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeOrigins(raw.CorsOrigins)
	}
	if meta.IsDefined("max_body_bytes") {
		cfg.MaxBodyBytes = raw.MaxBodyBytes
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	applyDecoder(meta, raw.Decoder, &cfg.Decoder)

	if err := ValidateServerConfig(cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

func decodeFile(path string, out any) (toml.MetaData, error) {
	meta, err := toml.DecodeFile(path, out)
	if err != nil {
		return toml.MetaData{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return toml.MetaData{}, fmt.Errorf("config parse failed (%s): unknown keys %s", path, strings.Join(keys, ", "))
	}
	return meta, nil
}

func applyDecoder(meta toml.MetaData, raw DecoderConfig, cfg *DecoderConfig) {
	if meta.IsDefined("decoder", "max_hex_chars") {
		cfg.MaxHexChars = raw.MaxHexChars
	}
	if meta.IsDefined("decoder", "max_depth") {
		cfg.MaxDepth = raw.MaxDepth
	}
}

func ValidateDecoderConfig(cfg DecoderConfig) error {
	if cfg.MaxHexChars < 0 {
		return fmt.Errorf("decoder max_hex_chars must not be negative")
	}
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("decoder max_depth must not be negative")
	}
	return nil
}

func ValidateCLIConfig(cfg CLIConfig) error {
	if _, err := render.ParseFormat(string(cfg.Format)); err != nil {
		return fmt.Errorf("bitsctl config invalid: %w", err)
	}
	if !cfg.Tree && !cfg.Sum {
		return fmt.Errorf("bitsctl config prints nothing: enable tree or sum")
	}
	if err := ValidateDecoderConfig(cfg.Decoder); err != nil {
		return fmt.Errorf("bitsctl config invalid: %w", err)
	}
	return nil
}

func ValidateServerConfig(cfg ServerConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("bitsd config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("bitsd config missing addr")
	}
	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("bitsd config max_body_bytes must be positive")
	}
	if err := ValidateDecoderConfig(cfg.Decoder); err != nil {
		return fmt.Errorf("bitsd config invalid: %w", err)
	}
	return nil
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
