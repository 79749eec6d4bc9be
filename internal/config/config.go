package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/btengine/internal/core/observability/log"
)

// Store drivers
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Evaluation engines
const (
	EngineNative = "native"
	EngineGoBT   = "gobt"
)

// Config holds application configuration
type Config struct {
	Log    LogConfig    `json:"log" yaml:"log"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Server ServerConfig `json:"server" yaml:"server"`
	Batch  BatchConfig  `json:"batch" yaml:"batch"`
	Runner RunnerConfig `json:"runner" yaml:"runner"`
}

type LogConfig struct {
	Level    string `json:"level" yaml:"level"`
	Encoding string `json:"encoding" yaml:"encoding"`
}

// StoreConfig selects where trees are persisted. For the file driver Path
// is a directory, for sqlite it is the database file.
type StoreConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	Path   string `json:"path" yaml:"path"`
}

type ServerConfig struct {
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	// Token, when set, must accompany every websocket connection.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// Addr is host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type BatchConfig struct {
	Workers int `json:"workers" yaml:"workers"`
}

// RunnerConfig picks how trees are evaluated: natively or compiled onto
// go-behaviortree.
type RunnerConfig struct {
	Engine string `json:"engine" yaml:"engine"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log:   LogConfig{Level: "info", Encoding: "console"},
		Store: StoreConfig{Driver: DriverFile, Path: "./trees"},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8088,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Batch:  BatchConfig{Workers: runtime.NumCPU()},
		Runner: RunnerConfig{Engine: EngineNative},
	}
}

// Load reads a YAML file over the defaults. An empty path yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate validates the configuration
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("log.encoding: unsupported %q", c.Log.Encoding)
	}

	switch c.Store.Driver {
	case DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("store.driver: unsupported %q", c.Store.Driver)
	}
	if c.Store.Path == "" {
		return errors.New("store.path is required")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d out of range", c.Server.Port)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers: must be positive, got %d", c.Batch.Workers)
	}
	switch c.Runner.Engine {
	case EngineNative, EngineGoBT:
	default:
		return fmt.Errorf("runner.engine: unsupported %q", c.Runner.Engine)
	}
	return nil
}

// LogOptions converts the log section for log.NewWithOptions.
func (c Config) LogOptions() log.Options {
	level, _ := log.ParseLevel(c.Log.Level)
	return log.Options{Level: level, Encoding: c.Log.Encoding}
}
