package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/eringen/markpost/post"
)

// JSONFile stores the snapshot as one JSON document. Saves go to a
// temporary file that is renamed over the old one, so a crash mid-write
// leaves the previous snapshot intact.
type JSONFile struct {
	Path string
}

var _ post.Snapshotter = (*JSONFile)(nil)

// NewJSONFile returns a JSON snapshot at path, creating its directory.
func NewJSONFile(path string) (*JSONFile, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &JSONFile{Path: path}, nil
}

// Load reads the snapshot. A missing file yields an empty snapshot.
func (f *JSONFile) Load(ctx context.Context) (post.Snapshot, error) {
	var snap post.Snapshot
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snap, nil
		}
		return snap, err
	}
	if err := json.Unmarshal(b, &snap); err != nil {
		return post.Snapshot{}, err
	}
	return snap, nil
}

// Save writes snap atomically.
func (f *JSONFile) Save(ctx context.Context, snap post.Snapshot) error {
	if snap.Posts == nil {
		snap.Posts = []post.Post{}
	}
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

// Close is a no-op; the file is only open during Load and Save.
func (f *JSONFile) Close() error {
	return nil
}
