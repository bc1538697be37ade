package httpapi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/core"
)

// WriteStateFile writes snap as indented JSON to path. The write is atomic:
// content goes to a temporary file first and is then renamed into place.
func WriteStateFile(path string, snap *core.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename state file: %w", err)
	}
	return nil
}

// ReadStateFile reads a snapshot written by WriteStateFile.
func ReadStateFile(path string) (*core.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal state file: %w", err)
	}
	return &snap, nil
}
