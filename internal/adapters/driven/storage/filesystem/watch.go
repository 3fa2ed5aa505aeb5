package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/logger"
)

// Watch emits the key of every selected artifact created, written or
// renamed into place until ctx is cancelled. New directories are watched
// as they appear. The channel is closed when watching stops.
func (s *Store) Watch(ctx context.Context, selector domain.Selector) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: create watcher: %w", domain.ErrIO, err)
	}
	if err := s.addTree(watcher, s.root); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				key, ok := s.eventKey(watcher, event)
				if !ok || (selector != nil && !selector.Match(key)) {
					continue
				}
				select {
				case out <- key:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch: %v", err)
			}
		}
	}()
	return out, nil
}

// eventKey maps an fsnotify event to an artifact key. Directory creations
// are registered with the watcher and produce no key.
func (s *Store) eventKey(watcher *fsnotify.Watcher, event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	rel, err := filepath.Rel(s.root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	key := filepath.ToSlash(rel)
	for _, part := range strings.Split(key, "/") {
		if strings.HasPrefix(part, ".") {
			return "", false
		}
	}
	if key == s.backupDir || strings.HasPrefix(key, s.backupDir+"/") {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := s.addTree(watcher, event.Name); err != nil {
				logger.Warn("watch %s: %v", key, err)
			}
		}
		return "", false
	}
	return key, info.Mode().IsRegular()
}

// addTree registers dir and every non-hidden subdirectory except backups.
func (s *Store) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != s.root {
			rel, _ := filepath.Rel(s.root, p)
			if s.skip(filepath.ToSlash(rel), d.Name()) {
				return filepath.SkipDir
			}
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("%w: watch %s: %w", domain.ErrIO, p, err)
		}
		return nil
	})
}
