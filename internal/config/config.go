// Package config loads pinscan settings.
//
// Sources are layered, later ones winning:
//
//  1. built-in defaults
//  2. the config file (.pinscan.toml in the working directory, or --config)
//  3. PINSCAN_* environment variables
//  4. command-line flag overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

// FileName is the config file looked up in the working directory.
const FileName = ".pinscan.toml"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PINSCAN_"

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "sarif"}

// ColorModes lists the accepted values of the color setting.
var ColorModes = []string{"auto", "on", "off"}

// Config is the merged configuration.
type Config struct {
	Format    string            `koanf:"format"`
	Color     string            `koanf:"color"`
	LogLevel  string            `koanf:"log-level"`
	Exclude   []string          `koanf:"exclude"`
	BuildArgs map[string]string `koanf:"build-args"`
	Download  Download          `koanf:"download"`
}

// Download configures URL extraction.
type Download struct {
	// Commands are the words that start a download context.
	Commands []string `koanf:"commands"`
	// URLPrefix is the prefix a word needs to be reported as a URL.
	URLPrefix string `koanf:"url-prefix"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Format:   "text",
		Color:    "auto",
		LogLevel: "warn",
		Download: Download{
			Commands:  []string{"curl", "wget"},
			URLPrefix: "http",
		},
	}
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// Path is an explicit config file. It must exist.
	Path string
	// Dir is searched for FileName when Path is empty. Defaults to ".".
	Dir string
	// Overrides are flat koanf keys (e.g. "download.url-prefix") set from
	// command-line flags.
	Overrides map[string]any
}

// Load merges all configuration sources and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, err := configPath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		logrus.WithField("path", path).Debug("loaded config file")
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to apply flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func configPath(opts LoadOptions) (string, error) {
	if opts.Path != "" {
		if _, err := os.Stat(opts.Path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return opts.Path, nil
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return path, nil
}

// listKeys are split on commas when read from the environment.
var listKeys = []string{"exclude", "download.commands"}

// transformEnv maps PINSCAN_DOWNLOAD__URL_PREFIX to download.url-prefix:
// a double underscore separates sections and a single one becomes a dash.
func transformEnv(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	key = strings.ReplaceAll(key, "_", "-")

	switch {
	case slices.Contains(listKeys, key):
		return key, splitList(value)
	case key == "build-args":
		args := make(map[string]any)
		for _, item := range splitList(value) {
			if name, val, ok := strings.Cut(item, "="); ok {
				args[name] = val
			}
		}
		return key, args
	}
	return key, value
}

func splitList(value string) []string {
	var items []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseBuildArgs parses NAME=VALUE pairs. A pair without '=' takes its
// value from the environment, as docker build does.
func ParseBuildArgs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	args := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if name == "" {
			return nil, fmt.Errorf("invalid build argument %q", pair)
		}
		if !ok {
			v, set := os.LookupEnv(name)
			if !set {
				continue
			}
			value = v
		}
		args[name] = value
	}
	return args, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("invalid format %q (want one of %s)", c.Format, strings.Join(Formats, ", "))
	}
	if !slices.Contains(ColorModes, c.Color) {
		return fmt.Errorf("invalid color %q (want one of %s)", c.Color, strings.Join(ColorModes, ", "))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log-level: %w", err)
	}
	if len(c.Download.Commands) == 0 {
		return errors.New("download.commands must not be empty")
	}
	if c.Download.URLPrefix == "" {
		return errors.New("download.url-prefix must not be empty")
	}
	return nil
}

// Level returns the parsed log level. Validate must have succeeded.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}
