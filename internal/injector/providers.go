package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/btengine/internal/config"
	"github.com/zeusync/btengine/internal/core/observability/log"
	"github.com/zeusync/btengine/internal/core/runner"
	"github.com/zeusync/btengine/internal/core/storage"
)

// ConfigPath is the YAML config file; empty means defaults.
type ConfigPath string

// App bundles the long-lived components the CLI commands share.
type App struct {
	Config config.Config
	Logger log.Log
	Store  storage.TreeStore
	Runner *runner.Runner
}

// Engine is App without the tree store, for commands that only evaluate.
type Engine struct {
	Config config.Config
	Logger log.Log
	Runner *runner.Runner
}

var EngineSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideRunner,
)

var ProviderSet = wire.NewSet(
	EngineSet,
	ProvideStore,
	wire.Struct(new(App), "*"),
)

func ProvideConfig(path ConfigPath) (config.Config, error) {
	return config.Load(string(path))
}

func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	l, err := log.NewWithOptions(cfg.LogOptions())
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = l.Sync() }, nil
}

func ProvideRunner(cfg config.Config, logger log.Log) (*runner.Runner, error) {
	engine, err := runner.ParseEngine(cfg.Runner.Engine)
	if err != nil {
		return nil, err
	}
	return runner.New(logger).WithEngine(engine), nil
}

func ProvideStore(cfg config.Config) (storage.TreeStore, func(), error) {
	s, err := storage.Open(cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}
