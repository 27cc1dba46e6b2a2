package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"zenith/internal/game"
)

type fileState struct {
	State  json.RawMessage `json:"state,omitempty"`
	Claims []string        `json:"claims"`
}

// FileRepo keeps everything in one state.json under its directory. Every
// write rewrites the file through a temp file and a rename.
type FileRepo struct {
	mu     sync.Mutex
	path   string
	state  json.RawMessage
	claims map[string]bool
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{
		path:   filepath.Join(dataDir, "state.json"),
		claims: map[string]bool{},
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepo) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return fmt.Errorf("parse %s: %w", r.path, err)
	}
	r.state = loaded.State
	for _, k := range loaded.Claims {
		r.claims[k] = true
	}
	return nil
}

func (r *FileRepo) saveLocked() error {
	fs := fileState{State: r.state, Claims: make([]string, 0, len(r.claims))}
	for k := range r.claims {
		fs.Claims = append(fs.Claims, k)
	}
	sort.Strings(fs.Claims)

	b, err := json.MarshalIndent(fs, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

func (r *FileRepo) Load(ctx context.Context) (game.GameState, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.state) == 0 {
		return game.InitialState(), false, nil
	}
	s, err := game.Merge(r.state)
	if err != nil {
		return game.GameState{}, false, fmt.Errorf("decode state: %w", err)
	}
	return s, true, nil
}

func (r *FileRepo) Save(ctx context.Context, s game.GameState) error {
	_ = ctx
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.state
	r.state = b
	if err := r.saveLocked(); err != nil {
		r.state = prev
		return err
	}
	return nil
}

func (r *FileRepo) Claim(ctx context.Context, key string, granted game.GameState) (bool, error) {
	_ = ctx
	b, err := json.Marshal(granted)
	if err != nil {
		return false, fmt.Errorf("marshal state: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claims[key] {
		return false, nil
	}
	prev := r.state
	r.claims[key] = true
	r.state = b
	if err := r.saveLocked(); err != nil {
		delete(r.claims, key)
		r.state = prev
		return false, err
	}
	return true, nil
}

func (r *FileRepo) Close() error { return nil }
