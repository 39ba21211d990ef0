package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	fileExt           = ".json"
	selfWriteQuietFor = time.Second
)

var ownerPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type fileRecord struct {
	Stations  json.RawMessage `json:"stations"`
	Favorites json.RawMessage `json:"favorites"`
	Recent    json.RawMessage `json:"recent"`
	Settings  json.RawMessage `json:"settings"`
}

// FileStore keeps one JSON document per owner inside dir.
type FileStore struct {
	dir string

	mu         sync.Mutex
	selfWrites map[string]time.Time
	watcher    *fsnotify.Watcher
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{
		dir:        dir,
		selfWrites: make(map[string]time.Time),
	}, nil
}

func (f *FileStore) path(owner string) (string, error) {
	if owner == "" {
		return "", ErrOwnerRequired
	}
	if !ownerPattern.MatchString(owner) {
		return "", fmt.Errorf("invalid owner id %q", owner)
	}
	return filepath.Join(f.dir, owner+fileExt), nil
}

func (f *FileStore) Load(_ context.Context, owner string) (State, bool, error) {
	path, err := f.path(owner)
	if err != nil {
		return State{}, false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, false, nil
		}
		return State{}, false, err
	}

	var raw fileRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, false, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	state, err := Record{
		Stations:  string(raw.Stations),
		Favorites: string(raw.Favorites),
		Recent:    string(raw.Recent),
		Settings:  string(raw.Settings),
	}.Decode()
	if err != nil {
		return State{}, false, err
	}
	return state, true, nil
}

func (f *FileStore) Save(_ context.Context, owner string, state State) error {
	path, err := f.path(owner)
	if err != nil {
		return err
	}

	rec, err := EncodeRecord(state)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileRecord{
		Stations:  json.RawMessage(rec.Stations),
		Favorites: json.RawMessage(rec.Favorites),
		Recent:    json.RawMessage(rec.Recent),
		Settings:  json.RawMessage(rec.Settings),
	}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+owner+fileExt+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	f.mu.Lock()
	f.selfWrites[owner] = time.Now().Add(selfWriteQuietFor)
	f.mu.Unlock()

	return os.Rename(tmpName, path)
}

// Watch calls onChange with the owner whose document was modified by
// something other than this store. It returns once the watcher is running.
func (f *FileStore) Watch(onChange func(owner string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(f.dir); err != nil {
		_ = watcher.Close()
		return err
	}
	f.watcher = watcher

	go f.watchLoop(watcher, onChange)
	return nil
}

func (f *FileStore) watchLoop(watcher *fsnotify.Watcher, onChange func(owner string)) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			owner, ok := f.ownerFromPath(event.Name)
			if !ok || f.isSelfWrite(owner) {
				continue
			}
			onChange(owner)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: data directory watcher error: %v", err)
		}
	}
}

func (f *FileStore) ownerFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	owner := strings.TrimSuffix(name, fileExt)
	return owner, ownerPattern.MatchString(owner)
}

func (f *FileStore) isSelfWrite(owner string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	until, ok := f.selfWrites[owner]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(f.selfWrites, owner)
		return false
	}
	return true
}

func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.watcher == nil {
		return nil
	}
	err := f.watcher.Close()
	f.watcher = nil
	return err
}
