// Package config loads codec and logging settings for the packstream
// command from YAML or TOML files.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/justicz/packstream"
	"github.com/justicz/packstream/internal/logging"
)

// Config is the on-disk configuration.
type Config struct {
	Codec   Codec          `yaml:"codec" toml:"codec"`
	Logging logging.Config `yaml:"logging" toml:"logging"`
}

// Codec mirrors the decoder options that make sense in a file.
type Codec struct {
	MaxDepth         int    `yaml:"max_depth" toml:"max_depth"`
	Overflow         string `yaml:"overflow" toml:"overflow"`
	StrictStructures bool   `yaml:"strict_structures" toml:"strict_structures"`
	LenientMarkers   bool   `yaml:"lenient_markers" toml:"lenient_markers"`
}

func Default() *Config {
	return &Config{
		Codec: Codec{
			MaxDepth: packstream.DefaultMaxDepth,
			Overflow: packstream.OverflowNative.String(),
		},
		Logging: logging.DefaultConfig(),
	}
}

type format int

const (
	formatYAML format = iota
	formatTOML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".toml":
		return formatTOML, nil
	}
	return 0, fmt.Errorf("config %s: unknown extension, want .yaml, .yml or .toml", path)
}

// Load reads path over the defaults, so keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	cfg := Default()
	switch f {
	case formatYAML:
		err = yaml.Unmarshal(data, cfg)
	case formatTOML:
		_, err = toml.Decode(string(data), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path in the format its extension names.
func Save(cfg *Config, path string) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	var data []byte
	switch f {
	case formatYAML:
		data, err = yaml.Marshal(cfg)
	case formatTOML:
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Codec.MaxDepth < 0 {
		return fmt.Errorf("codec.max_depth must not be negative, got %d", c.Codec.MaxDepth)
	}
	if _, ok := packstream.ParseOverflowMode(c.Codec.Overflow); !ok {
		return fmt.Errorf("codec.overflow must be native or text, got %q", c.Codec.Overflow)
	}
	if c.Logging.Level != "" {
		if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
			return fmt.Errorf("logging.level %q is not a level", c.Logging.Level)
		}
	}
	return nil
}

// CodecOptions turns the codec section into decoder options that report
// soft failures to logger. Call Validate first.
func (c *Config) CodecOptions(logger zerolog.Logger) packstream.Options {
	overflow, _ := packstream.ParseOverflowMode(c.Codec.Overflow)
	return packstream.Options{
		MaxDepth:         c.Codec.MaxDepth,
		Overflow:         overflow,
		StrictStructures: c.Codec.StrictStructures,
		LenientMarkers:   c.Codec.LenientMarkers,
		Logger:           logger,
	}
}
