package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeusync/btengine/internal/core/bt"
	"github.com/zeusync/btengine/internal/core/bt/codec"
	"github.com/zeusync/btengine/internal/core/world"
)

func isDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func loadTree(path string) (bt.Task, error) {
	if path == "" {
		return nil, fmt.Errorf("--tree is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !isDocument(path) {
		root, err := codec.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return root, nil
	}

	var doc *bt.Document
	if strings.EqualFold(filepath.Ext(path), ".json") {
		doc, err = bt.LoadJSON(bytes.NewReader(data))
	} else {
		doc, err = bt.LoadYAML(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	root, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// writeTree stores root as a document or in binary form, following the
// same extension rule as loadTree.
func writeTree(path string, root bt.Task) error {
	if !isDocument(path) {
		data, err := codec.Encode(root)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}
	if err := bt.Validate(root); err != nil {
		return err
	}
	doc := bt.Export(root)
	var buf bytes.Buffer
	if strings.EqualFold(filepath.Ext(path), ".json") {
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return err
		}
	} else if err := doc.WriteYAML(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// loadScenario reads a world snapshot; an empty path selects the castle.
func loadScenario(path string) (*world.State, error) {
	if path == "" {
		return world.Castle(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var s *world.State
	if strings.EqualFold(filepath.Ext(path), ".json") {
		s, err = world.LoadJSON(f)
	} else {
		s, err = world.LoadYAML(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
