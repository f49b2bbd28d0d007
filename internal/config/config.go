package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Mongo struct {
		URI       string        `koanf:"uri"`
		Database  string        `koanf:"database"`
		OpTimeout time.Duration `koanf:"op_timeout"`
	} `koanf:"mongo"`

	HTTP struct {
		Addr            string        `koanf:"addr"`
		Mode            string        `koanf:"mode"`
		ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	} `koanf:"http"`

	Log struct {
		Level string `koanf:"level"`
		File  string `koanf:"file"`
	} `koanf:"log"`
}

var defaults = map[string]any{
	"mongo.uri":             "mongodb://localhost:27017",
	"mongo.database":        "olivander_shop",
	"mongo.op_timeout":      "0s",
	"http.addr":             ":8000",
	"http.mode":             "release",
	"http.shutdown_timeout": "5s",
	"log.level":             "info",
	"log.file":              "",
}

// envKeys maps environment variables onto config keys. Anything else in the
// environment is ignored.
var envKeys = map[string]string{
	"MONGO_URI":             "mongo.uri",
	"MONGO_DB":              "mongo.database",
	"MONGO_OP_TIMEOUT":      "mongo.op_timeout",
	"HTTP_ADDR":             "http.addr",
	"GIN_MODE":              "http.mode",
	"HTTP_SHUTDOWN_TIMEOUT": "http.shutdown_timeout",
	"LOG_LEVEL":             "log.level",
	"LOG_FILE":              "log.file",
}

// Load layers defaults, the optional YAML file at path and the environment.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	// 1) defaults
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	// 2) file, only when asked for
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// 3) environment variables override
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri required")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo.database required")
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr required")
	}
	if c.Mongo.OpTimeout < 0 {
		return fmt.Errorf("mongo.op_timeout must not be negative")
	}
	switch c.HTTP.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("http.mode %q unknown", c.HTTP.Mode)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q unknown", c.Log.Level)
	}
	return nil
}
