package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/rivulet/pkg/trace"
	"github.com/go-go-golems/rivulet/pkg/transport"
)

// TraceConfig selects the persistence backend for the trace flag and sizes the
// ring buffer.
type TraceConfig struct {
	// Backend is "file" or "sqlite".
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path"`
	Capacity int    `yaml:"capacity"`
}

type Config struct {
	Topic string                  `yaml:"topic"`
	Trace TraceConfig             `yaml:"trace"`
	Redis transport.RedisSettings `yaml:"redis"`
}

func Default() Config {
	return Config{
		Topic: transport.DefaultTopic,
		Trace: TraceConfig{
			Backend:  "file",
			Capacity: trace.DefaultCapacity,
		},
		Redis: transport.DefaultRedisSettings(),
	}
}

// DefaultDir is where the config file, trace flag, and sqlite db live unless
// overridden.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, ".rivulet"), nil
}

// Load reads the yaml config at path, filling unset fields with defaults. A
// missing file is not an error; defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		dir, err := DefaultDir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if cfg.Topic == "" {
		cfg.Topic = transport.DefaultTopic
	}
	if cfg.Trace.Capacity <= 0 {
		cfg.Trace.Capacity = trace.DefaultCapacity
	}
	if cfg.Trace.Backend == "" {
		cfg.Trace.Backend = "file"
	}
	return cfg, nil
}

// FlagStore builds the trace flag store the config selects.
func (c Config) FlagStore() (trace.FlagStore, error) {
	path := c.Trace.Path
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		switch c.Trace.Backend {
		case "sqlite":
			path = filepath.Join(dir, "rivulet.db")
		default:
			path = filepath.Join(dir, "trace.flag")
		}
	}
	switch c.Trace.Backend {
	case "file":
		return trace.NewFileFlagStore(path)
	case "sqlite":
		return trace.NewSQLiteFlagStore(path)
	}
	return nil, errors.Errorf("unknown trace backend %q", c.Trace.Backend)
}
