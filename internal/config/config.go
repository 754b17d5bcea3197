// Package config loads the modelsheet configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment overrides applied after the file is decoded.
const (
	EnvAddr     = "MODELSHEET_ADDR"
	EnvLogLevel = "MODELSHEET_LOG_LEVEL"
)

const defaultManifestVersion = "0.0.0"

type Config struct {
	Server  Server   `yaml:"server"`
	Models  []string `yaml:"models"`
	Watch   bool     `yaml:"watch"`
	Presets string   `yaml:"presets"`
	Theme   Theme    `yaml:"theme"`
	Log     Log      `yaml:"log"`
}

type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// Templates replaces the embedded page templates with a directory.
	Templates string `yaml:"templates"`
}

type Theme struct {
	Name      string          `yaml:"name"`
	Variant   string          `yaml:"variant"`
	Manifests []ThemeManifest `yaml:"manifests"`
}

// ThemeManifest is the YAML shape of a go-theme manifest.
type ThemeManifest struct {
	Name      string                  `yaml:"name"`
	Version   string                  `yaml:"version"`
	Tokens    map[string]string       `yaml:"tokens"`
	Templates map[string]string       `yaml:"templates"`
	Assets    ThemeAssets             `yaml:"assets"`
	Variants  map[string]ThemeVariant `yaml:"variants"`
}

type ThemeVariant struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
	Assets    ThemeAssets       `yaml:"assets"`
}

type ThemeAssets struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path yields the defaults with
// environment overrides applied.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays YAML data on cfg. Unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAddr); ok && strings.TrimSpace(v) != "" {
		c.Server.Addr = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.Log.Level = strings.TrimSpace(v)
	}
}

// Validate reports every problem in the configuration at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	for name, d := range map[string]time.Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	seen := make(map[string]struct{}, len(c.Theme.Manifests))
	for i, manifest := range c.Theme.Manifests {
		name := strings.TrimSpace(manifest.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("theme.manifests[%d].name is required", i))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("theme.manifests[%d]: duplicate theme %q", i, name))
		}
		seen[name] = struct{}{}
	}
	if name := strings.TrimSpace(c.Theme.Name); name != "" && len(c.Theme.Manifests) > 0 {
		if _, ok := seen[name]; !ok {
			errs = append(errs, fmt.Errorf("theme.name %q matches no manifest", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}

// ThemeManifests converts the configured manifests for the theme selector.
func (c Config) ThemeManifests() []*theme.Manifest {
	if len(c.Theme.Manifests) == 0 {
		return nil
	}
	out := make([]*theme.Manifest, 0, len(c.Theme.Manifests))
	for _, m := range c.Theme.Manifests {
		version := strings.TrimSpace(m.Version)
		if version == "" {
			version = defaultManifestVersion
		}
		manifest := &theme.Manifest{
			Name:      strings.TrimSpace(m.Name),
			Version:   version,
			Tokens:    m.Tokens,
			Templates: m.Templates,
			Assets:    theme.Assets{Prefix: m.Assets.Prefix, Files: m.Assets.Files},
		}
		if len(m.Variants) > 0 {
			manifest.Variants = make(map[string]theme.Variant, len(m.Variants))
			for name, v := range m.Variants {
				manifest.Variants[name] = theme.Variant{
					Tokens:    v.Tokens,
					Templates: v.Templates,
					Assets:    theme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
				}
			}
		}
		out = append(out, manifest)
	}
	return out
}
