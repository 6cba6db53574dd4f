package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// WatchlistSource supplies the ordered list of coin ids the user follows.
// The order is caller-meaningful and must be preserved by consumers.
type WatchlistSource interface {
	Watchlist() ([]string, error)
}

// StaticWatchlist is a fixed WatchlistSource for tests and one-shot CLI use.
type StaticWatchlist []string

func (s StaticWatchlist) Watchlist() ([]string, error) {
	return append([]string(nil), s...), nil
}

// FileWatchlist persists the watchlist as a JSON array of coin ids. Writes
// go through a temp file and rename so a crash never truncates the list.
type FileWatchlist struct {
	mu   sync.Mutex
	path string
}

func NewFileWatchlist(path string) *FileWatchlist {
	return &FileWatchlist{path: path}
}

// Watchlist returns the stored ids in order. A missing file is an empty
// watchlist, not an error.
func (w *FileWatchlist) Watchlist() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load()
}

// Add appends a coin id, ignoring ids already present.
func (w *FileWatchlist) Add(coinID string) error {
	if coinID == "" {
		return fmt.Errorf("watchlist: empty coin id")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	ids, err := w.load()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == coinID {
			return nil
		}
	}
	return w.save(append(ids, coinID))
}

// Remove drops a coin id. Removing an absent id is a no-op.
func (w *FileWatchlist) Remove(coinID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids, err := w.load()
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, id := range ids {
		if id != coinID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(ids) {
		return nil
	}
	return w.save(kept)
}

func (w *FileWatchlist) load() ([]string, error) {
	data, err := os.ReadFile(w.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("watchlist: read %s: %w", w.path, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("watchlist: parse %s: %w", w.path, err)
	}

	// A hand-edited file may contain duplicates. First occurrence wins.
	seen := make(map[string]struct{}, len(ids))
	unique := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique, nil
}

func (w *FileWatchlist) save(ids []string) error {
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("watchlist: encode: %w", err)
	}

	tmp := w.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("watchlist: mkdir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("watchlist: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("watchlist: rename: %w", err)
	}
	return nil
}
