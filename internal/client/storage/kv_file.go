package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// DefaultFile is the file used when no store DSN is configured.
const DefaultFile = "familycart.json"

// Entry is a single value persisted by FileKV.
type Entry struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

func (e Entry) expired(now time.Time) bool {
	return e.ExpiresAt > 0 && e.ExpiresAt <= now.Unix()
}

// FileKV keeps all entries in memory and rewrites a JSON file on every change.
type FileKV struct {
	Entries map[string]Entry `json:"entries"`

	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileKV opens the store at path, loading existing entries if the file exists.
func NewFileKV(path string) (*FileKV, error) {
	if path == "" {
		path = DefaultFile
	}
	f := &FileKV{path: path, now: time.Now}
	if err := f.Load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Load replaces the in-memory entries with the file contents.
// A missing file yields an empty store.
func (f *FileKV) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.Entries = make(map[string]Entry)
			return nil
		}
		return fmt.Errorf("read store: %w", err)
	}
	if err := json.Unmarshal(data, f); err != nil {
		return fmt.Errorf("decode store: %w", err)
	}
	if f.Entries == nil {
		f.Entries = make(map[string]Entry)
	}
	return nil
}

// save writes the entries to disk, dropping expired ones. Callers hold mu.
func (f *FileKV) save() error {
	now := f.now()
	for k, e := range f.Entries {
		if e.expired(now) {
			delete(f.Entries, k)
		}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

func (f *FileKV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.Entries[key]
	if !ok || e.expired(f.now()) {
		return "", ErrNotFound
	}
	return e.Value, nil
}

func (f *FileKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Entries[key] = Entry{Value: value, ExpiresAt: expiresAt(f.now(), ttl)}
	return f.save()
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.Entries[key]; !ok {
		return nil
	}
	delete(f.Entries, key)
	return f.save()
}
