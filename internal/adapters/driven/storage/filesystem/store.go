// Package filesystem provides the on-disk ArtifactStore. Keys are
// slash-separated paths relative to the corpus root and backups live in a
// flat directory under the root.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.ArtifactStore   = (*Store)(nil)
	_ driven.ArtifactWatcher = (*Store)(nil)
)

// Store reads and writes artifacts below a corpus root.
type Store struct {
	root      string
	backupDir string
}

// NewStore creates a store rooted at root. backupDir is relative to root.
func NewStore(root, backupDir string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve corpus root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: corpus root %s is not a directory", domain.ErrInvalidInput, abs)
	}
	if backupDir == "" {
		backupDir = domain.DefaultBackupDir
	}
	return &Store{
		root:      abs,
		backupDir: path.Clean(filepath.ToSlash(backupDir)),
	}, nil
}

// Root returns the absolute corpus root.
func (s *Store) Root() string {
	return s.root
}

// Path returns the absolute file path of key.
func (s *Store) Path(key string) (string, error) {
	clean := path.Clean(key)
	if key == "" || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: key %q escapes the corpus root", domain.ErrInvalidInput, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// List walks the corpus in lexical order, skipping hidden entries and the
// backup directory.
func (s *Store) List(ctx context.Context, selector domain.Selector) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == s.root {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		if s.skip(key, d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if selector == nil || selector.Match(key) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %w", domain.ErrIO, s.root, err)
	}
	return keys, nil
}

// Read returns the artifact stored under key.
func (s *Store) Read(ctx context.Context, key string) (domain.Artifact, error) {
	p, err := s.Path(key)
	if err != nil {
		return domain.Artifact{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return domain.Artifact{}, wrapPathError(key, err)
	}
	return domain.Artifact{Key: key, Content: string(data)}, nil
}

// Write replaces the artifact through a temp file and rename in the same
// directory, keeping the original file mode.
func (s *Store) Write(ctx context.Context, key, content string) error {
	p, err := s.Path(key)
	if err != nil {
		return err
	}
	info, err := os.Stat(p)
	if err != nil {
		return wrapPathError(key, err)
	}
	if err := atomicWriteFile(p, []byte(content), info.Mode().Perm()); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrIO, key, err)
	}
	return nil
}

// Backup copies the current bytes of key into the backup directory. Names
// that already exist get a numeric suffix; existing backups are never
// overwritten.
func (s *Store) Backup(ctx context.Context, key, tag string, at time.Time) (string, error) {
	p, err := s.Path(key)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(p)
	if err != nil {
		return "", wrapPathError(key, err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", wrapPathError(key, err)
	}

	dir := filepath.Join(s.root, filepath.FromSlash(s.backupDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create backup dir: %w", domain.ErrIO, err)
	}

	base := domain.BackupName(key, tag, at)
	name := base
	for n := 1; ; n++ {
		err := writeExclusive(filepath.Join(dir, name), data, info.Mode().Perm())
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: backup %s: %w", domain.ErrIO, key, err)
		}
		name = base + "_" + strconv.Itoa(n)
	}
	return s.backupDir + "/" + name, nil
}

// ReadBackup returns the bytes stored at a backup location.
func (s *Store) ReadBackup(ctx context.Context, location string) (string, error) {
	p, err := s.Path(location)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", wrapPathError(location, err)
	}
	return string(data), nil
}

// skip reports whether a walked entry is hidden or is the backup directory.
func (s *Store) skip(key, name string) bool {
	return strings.HasPrefix(name, ".") || key == s.backupDir
}

func wrapPathError(key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrIO, key, err)
}

// atomicWriteFile writes content to a hidden temp file next to target and
// renames it over the destination.
func atomicWriteFile(target string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(target)
	base := filepath.Base(target)

	tmp, err := os.CreateTemp(dir, "."+base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, target)
}

func writeExclusive(target string, content []byte, perm os.FileMode) error {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return err
	}
	return f.Close()
}
