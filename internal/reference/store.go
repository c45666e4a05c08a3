package reference

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/neuroview/internal/assets"
)

// DefaultName is the asset name of the reference document.
const DefaultName = "reference.json"

// Store publishes the current table. Lookups are safe from any goroutine
// and return nothing until a table has been loaded.
type Store struct {
	table atomic.Pointer[Table]
	log   *zap.Logger
}

// NewStore creates an empty store. A nil logger disables logging.
func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{log: log}
}

// Load fetches and parses name from src and replaces the table.
func (s *Store) Load(ctx context.Context, src assets.Source, name string) error {
	data, err := src.Fetch(ctx, name)
	if err != nil {
		return fmt.Errorf("fetching reference: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return err
	}
	s.Replace(t)
	s.log.Info("reference loaded", zap.String("source", src.String()), zap.Int("entries", len(t)))
	return nil
}

// Replace publishes t.
func (s *Store) Replace(t Table) {
	s.table.Store(&t)
}

// Lookup returns the entry for a base region id.
func (s *Store) Lookup(base string) (*Entry, bool) {
	t := s.table.Load()
	if t == nil {
		return nil, false
	}
	e, ok := (*t)[base]
	return e, ok
}

// Loaded reports whether a table has been published.
func (s *Store) Loaded() bool {
	return s.table.Load() != nil
}

// Len returns the number of entries.
func (s *Store) Len() int {
	t := s.table.Load()
	if t == nil {
		return 0
	}
	return len(*t)
}

// Watch reloads the table from path whenever the file is written or
// replaced, until ctx is done. A document that fails to parse keeps the
// previous table. onReload, if not nil, runs after each successful reload.
func (s *Store) Watch(ctx context.Context, path string, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating reference watcher: %w", err)
	}
	// Watch the directory: editors often replace files by rename.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", path, err)
	}
	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()
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
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := s.reload(path); err != nil {
					s.log.Warn("reference reload failed", zap.String("path", path), zap.Error(err))
					continue
				}
				if onReload != nil {
					onReload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("reference watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (s *Store) reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	t, err := Parse(data)
	if err != nil {
		return err
	}
	s.Replace(t)
	s.log.Info("reference reloaded", zap.String("path", path), zap.Int("entries", len(t)))
	return nil
}
