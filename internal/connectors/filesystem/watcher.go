// Package filesystem watches the local corpus for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/logger"
)

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// Watcher reports changes to files matching a set of corpus patterns.
// fsnotify is not recursive, so directories under a "**" pattern are
// added one by one, including ones created later.
type Watcher struct {
	patterns []string
	log      *logger.Logger

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a watcher for the given paths or doublestar patterns.
// A nil log discards watch errors.
func New(patterns []string, log *logger.Logger) *Watcher {
	if log == nil {
		log = logger.Nop()
	}
	clean := make([]string, 0, len(patterns))
	for _, p := range patterns {
		clean = append(clean, filepath.Clean(LocalPath(p)))
	}
	return &Watcher{patterns: clean, log: log}
}

// Dirs returns the directories that must be watched, sorted and without
// duplicates.
func (w *Watcher) Dirs() ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}

	for _, p := range w.patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(p))
		base = filepath.FromSlash(base)
		info, err := os.Stat(base)
		if err != nil {
			return nil, fmt.Errorf("root path error: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("root path error: %s is not a directory", base)
		}
		if !strings.Contains(p, "**") {
			add(base)
			continue
		}
		err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != base && isHidden(path) {
					return filepath.SkipDir
				}
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("root path error: %w", err)
		}
	}
	return dirs, nil
}

// Watch starts watching and returns a channel of changes. The channel is
// closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.CorpusChange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWatcherClosed
	}
	if w.watcher != nil {
		return nil, errors.New("watcher already started")
	}

	dirs, err := w.Dirs()
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, d := range dirs {
		if err := fw.Add(d); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", d, err)
		}
	}
	w.watcher = fw

	changes := make(chan domain.CorpusChange)
	go w.loop(ctx, fw, changes)
	return changes, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, changes chan<- domain.CorpusChange) {
	defer close(changes)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.followNewDir(fw, event)
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch: %v", err)
		}
	}
}

// followNewDir adds directories created under a recursive pattern.
func (w *Watcher) followNewDir(fw *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) || isHidden(event.Name) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}
	for _, p := range w.patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(p))
		if strings.Contains(p, "**") && isUnder(event.Name, filepath.FromSlash(base)) {
			if err := fw.Add(event.Name); err != nil {
				w.log.Warn("watch %s: %v", event.Name, err)
			}
			return
		}
	}
}

// handleFsEvent converts an fsnotify event into a corpus change, or nil
// when the event is irrelevant.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *domain.CorpusChange {
	path := filepath.Clean(event.Name)
	if isHidden(path) || !w.matches(path) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.CorpusChange{Type: domain.ChangeDeleted, Path: path}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil
		}
		typ := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			typ = domain.ChangeCreated
		}
		return &domain.CorpusChange{Type: typ, Path: path}
	default:
		return nil
	}
}

// matches reports whether path is one of the corpus files.
func (w *Watcher) matches(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, p := range w.patterns {
		if ok, err := doublestar.Match(filepath.ToSlash(p), slashed); err == nil && ok {
			return true
		}
	}
	return false
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func isUnder(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
