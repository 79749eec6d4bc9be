package injector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/btengine/internal/core/bt"
	"github.com/zeusync/btengine/internal/core/observability/log"
	"github.com/zeusync/btengine/internal/core/runner"
	"github.com/zeusync/btengine/internal/core/storage"
)

func TestInitializeApp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "btree.yaml")
	cfg := "log: {level: warn, encoding: json}\nrunner: {engine: gobt}\nstore: {driver: sqlite, path: " + filepath.Join(dir, "trees.db") + "}\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	app, cleanup, err := InitializeApp(ConfigPath(path))
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &storage.SQLiteStore{}, app.Store)
	assert.False(t, app.Logger.Enabled(log.LevelInfo), "info is off at warn")
	require.NoError(t, app.Store.Save(context.Background(), "empty", bt.NewSequence()))
	entries, err := app.Store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	require.NotNil(t, app.Runner)
	assert.Equal(t, runner.EngineGoBT, app.Runner.Engine())
}

func TestInitializeAppBadConfig(t *testing.T) {
	_, _, err := InitializeApp(ConfigPath(filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}

func TestInitializeEngineOpensNoStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "btree.yaml")
	storeDir := filepath.Join(dir, "trees")
	require.NoError(t, os.WriteFile(path, []byte("store: {driver: file, path: "+storeDir+"}\n"), 0o600))

	engine, cleanup, err := InitializeEngine(ConfigPath(path))
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, engine.Runner)
	assert.Equal(t, runner.EngineNative, engine.Runner.Engine())
	assert.Equal(t, storeDir, engine.Config.Store.Path)
	assert.NoDirExists(t, storeDir)
}
