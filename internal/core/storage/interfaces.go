package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/btengine/internal/config"
	"github.com/zeusync/btengine/internal/core/bt"
	"github.com/zeusync/btengine/internal/core/bt/codec"
	"github.com/zeusync/btengine/pkg/encoding"
)

var (
	ErrNotFound    = errors.New("tree not found")
	ErrInvalidName = errors.New("invalid tree name")
)

// TreeStore persists trees by name in their codec form.
type TreeStore interface {
	// Save creates or replaces the tree stored under name.
	Save(ctx context.Context, name string, root bt.Task) error
	Load(ctx context.Context, name string) (bt.Task, error)
	// List returns entries sorted by name.
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// Entry describes one stored tree.
type Entry struct {
	Name string `json:"name"`
	// Version counts saves under this name. Stores that do not track
	// history report 1.
	Version   int       `json:"version"`
	Digest    string    `json:"digest"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

func checkName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Open builds the store selected by cfg.Driver.
func Open(cfg config.StoreConfig) (TreeStore, error) {
	switch cfg.Driver {
	case config.DriverFile:
		return NewFileStore(cfg.Path)
	case config.DriverSQLite:
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func marshal(s encoding.Serializable[codec.Tree]) ([]byte, error) {
	return s.Serialize()
}

func unmarshal(data []byte) (bt.Task, error) {
	var tree codec.Tree
	if err := tree.Deserialize(data); err != nil {
		return nil, err
	}
	return tree.Root, nil
}

func digest(payload []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(payload))
}
