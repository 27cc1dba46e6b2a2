// Package ops moves snapshots between a store and portable files. An export
// is the lz4 blob plus a ".blake3" sidecar holding its hex digest.
package ops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"zenith/internal/game"
	"zenith/internal/store"
)

const SidecarExt = ".blake3"

type Loader interface {
	Load(ctx context.Context) (game.GameState, bool, error)
}

type Saver interface {
	Save(ctx context.Context, s game.GameState) error
}

// Manifest describes an export file.
type Manifest struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
	Bytes    int    `json:"bytes"`
}

// Export writes the store's current state to path. Missing state exports
// the initial state.
func Export(ctx context.Context, src Loader, path string) (Manifest, error) {
	path = filepath.Clean(strings.TrimSpace(path))
	if path == "" || path == "." {
		return Manifest{}, errors.New("export path is required")
	}
	s, _, err := src.Load(ctx)
	if err != nil {
		return Manifest{}, fmt.Errorf("load state: %w", err)
	}
	return WriteSnapshot(s, path)
}

// WriteSnapshot encodes s to path and its digest to the sidecar.
func WriteSnapshot(s game.GameState, path string) (Manifest, error) {
	blob, sum, err := store.Encode(s)
	if err != nil {
		return Manifest{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Manifest{}, err
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return Manifest{}, fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.WriteFile(path+SidecarExt, []byte(sum+"\n"), 0o644); err != nil {
		return Manifest{}, fmt.Errorf("write digest: %w", err)
	}
	return Manifest{Path: path, Checksum: sum, Bytes: len(blob)}, nil
}

// Inspect verifies an export against its sidecar and decodes it.
func Inspect(path string) (Manifest, game.GameState, error) {
	path = filepath.Clean(strings.TrimSpace(path))
	blob, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, game.GameState{}, fmt.Errorf("read snapshot: %w", err)
	}
	raw, err := os.ReadFile(path + SidecarExt)
	if err != nil {
		return Manifest{}, game.GameState{}, fmt.Errorf("read digest: %w", err)
	}
	sum := strings.TrimSpace(string(raw))
	s, err := store.Decode(blob, sum)
	if err != nil {
		return Manifest{}, game.GameState{}, err
	}
	return Manifest{Path: path, Checksum: sum, Bytes: len(blob)}, s, nil
}

// Import verifies path and saves it into dst. The decoded state is merged
// over the defaults, so older exports missing fields still load.
func Import(ctx context.Context, dst Saver, path string) (game.GameState, error) {
	_, s, err := Inspect(path)
	if err != nil {
		return game.GameState{}, err
	}
	if err := dst.Save(ctx, s); err != nil {
		return game.GameState{}, fmt.Errorf("save state: %w", err)
	}
	return s, nil
}
