package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is an in-memory implementation of driven.ArtifactStore.
// It backs tests and dry runs, and can inject write and backup faults.
type ArtifactStore struct {
	mu        sync.RWMutex
	artifacts map[string]string
	backups   map[string]string
	backupDir string

	// Writes counts successful Write calls per key.
	writes map[string]int

	failWrites  map[string]error
	failBackups map[string]error
	failList    error
}

// NewArtifactStore creates a new in-memory artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		artifacts:   make(map[string]string),
		backups:     make(map[string]string),
		backupDir:   domain.DefaultBackupDir,
		writes:      make(map[string]int),
		failWrites:  make(map[string]error),
		failBackups: make(map[string]error),
	}
}

// Put seeds an artifact without counting it as a write.
func (s *ArtifactStore) Put(key, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[key] = content
}

// Content returns the stored text for key.
func (s *ArtifactStore) Content(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.artifacts[key]
}

// WriteCount returns the number of successful writes to key.
func (s *ArtifactStore) WriteCount(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[key]
}

// Backups returns a copy of every stored backup keyed by location.
func (s *ArtifactStore) Backups() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.backups))
	for k, v := range s.backups {
		out[k] = v
	}
	return out
}

// FailWrites makes every Write to key fail with err. A nil err clears it.
func (s *ArtifactStore) FailWrites(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failWrites, key)
		return
	}
	s.failWrites[key] = err
}

// FailBackups makes every Backup of key fail with err. A nil err clears it.
func (s *ArtifactStore) FailBackups(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failBackups, key)
		return
	}
	s.failBackups[key] = err
}

// FailList makes List fail with err. A nil err clears it.
func (s *ArtifactStore) FailList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList = err
}

// List returns the selected keys in lexical order.
func (s *ArtifactStore) List(ctx context.Context, selector domain.Selector) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failList != nil {
		return nil, s.failList
	}

	keys := make([]string, 0, len(s.artifacts))
	for key := range s.artifacts {
		if selector == nil || selector.Match(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Read returns the artifact stored under key.
func (s *ArtifactStore) Read(ctx context.Context, key string) (domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.artifacts[key]
	if !ok {
		return domain.Artifact{}, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	return domain.Artifact{Key: key, Content: content}, nil
}

// Write replaces the content of an existing artifact.
func (s *ArtifactStore) Write(ctx context.Context, key, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artifacts[key]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err := s.failWrites[key]; err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrIO, key, err)
	}
	s.artifacts[key] = content
	s.writes[key]++
	return nil
}

// Backup copies the current content of key under a tagged, timestamped name.
func (s *ArtifactStore) Backup(ctx context.Context, key, tag string, at time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, ok := s.artifacts[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err := s.failBackups[key]; err != nil {
		return "", fmt.Errorf("%w: backup %s: %w", domain.ErrIO, key, err)
	}

	base := s.backupDir + "/" + domain.BackupName(key, tag, at)
	location := base
	for n := 1; ; n++ {
		if _, taken := s.backups[location]; !taken {
			break
		}
		location = base + "_" + strconv.Itoa(n)
	}
	s.backups[location] = content
	return location, nil
}

// ReadBackup returns the content stored at a backup location.
func (s *ArtifactStore) ReadBackup(ctx context.Context, location string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.backups[location]
	if !ok {
		return "", fmt.Errorf("%w: backup %s", domain.ErrNotFound, location)
	}
	return content, nil
}

// SetBackup overwrites a stored backup. Used to simulate tampering.
func (s *ArtifactStore) SetBackup(location, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backups[location] = content
}
