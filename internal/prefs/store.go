package prefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"typograf-live/internal/schedule"
)

const reloadDelay = 100 * time.Millisecond

// Store keeps the current preferences, persists them as YAML and notifies
// subscribers after every change. An empty path keeps everything in memory.
type Store struct {
	path     string
	defaults Prefs
	logger   *slog.Logger

	// writeMu serializes changes so a save and its commit are one step.
	writeMu sync.Mutex

	mu     sync.RWMutex
	prefs  Prefs
	subs   map[int]func(Prefs)
	nextID int
}

// NewStore creates a store seeded with defaults. Call Load to read path.
func NewStore(path string, defaults Prefs, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:     path,
		defaults: defaults,
		logger:   logger,
		prefs:    defaults.clone(),
		subs:     make(map[int]func(Prefs)),
	}
}

// Path returns the backing file, or "" for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

// Load reads the backing file. A missing file leaves the defaults in place.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}

	p, err := s.read()
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.prefs = p
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the current preferences.
func (s *Store) Get() Prefs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.clone()
}

// Update applies fn to a copy of the preferences, saves the result and
// notifies subscribers if anything changed. Nothing changes in memory unless
// the save succeeds.
func (s *Store) Update(fn func(*Prefs)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.Get()
	next := cur.clone()
	fn(&next)
	next = next.normalized(s.defaults)
	if next.Equal(cur) {
		return nil
	}

	if err := s.save(next); err != nil {
		return err
	}

	s.mu.Lock()
	s.prefs = next
	s.mu.Unlock()

	s.notify(next)
	return nil
}

// Replace swaps in p wholesale.
func (s *Store) Replace(p Prefs) error {
	return s.Update(func(cur *Prefs) {
		*cur = p.clone()
	})
}

// Subscribe registers fn for change notifications. fn runs on the goroutine
// that made the change and must not block or change the store. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Prefs)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Watch reloads the backing file when another process edits it, until ctx
// is done. Bursts of filesystem events are coalesced.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		watcher.Close()
		return fmt.Errorf("create prefs dir: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	reload := schedule.NewDebouncer(reloadDelay, s.reload)

	go func() {
		defer watcher.Close()
		defer reload.Stop()

		target := filepath.Clean(s.path)
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				reload.Trigger()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("prefs watcher error", "error", err)
			}
		}
	}()

	return nil
}

func (s *Store) reload() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	p, err := s.read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("reload prefs", "path", s.path, "error", err)
		}
		return
	}

	s.mu.Lock()
	if p.Equal(s.prefs) {
		s.mu.Unlock()
		return
	}
	s.prefs = p
	s.mu.Unlock()

	s.logger.Info("prefs reloaded", "path", s.path)
	s.notify(p)
}

func (s *Store) read() (Prefs, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Prefs{}, err
	}

	p := s.defaults.clone()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("parse prefs %s: %w", s.path, err)
	}
	return p.normalized(s.defaults), nil
}

func (s *Store) save(p Prefs) error {
	if s.path == "" {
		return nil
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func (s *Store) notify(p Prefs) {
	s.mu.RLock()
	subs := make([]func(Prefs), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(p.clone())
	}
}
