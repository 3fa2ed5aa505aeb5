package domain

import (
	"path"
	"strings"
	"time"
)

// Artifact is a named, mutable unit of text in the corpus.
type Artifact struct {
	// Key is the stable identifier, a slash-separated path relative to the corpus root.
	Key string

	// Content is the artifact's full text.
	Content string
}

// Folder returns the name of the folder holding the artifact.
// Artifacts at the corpus root return an empty string.
func (a Artifact) Folder() string {
	return KeyFolder(a.Key)
}

// KeyFolder returns the immediate parent folder name of an artifact key.
func KeyFolder(key string) string {
	dir := path.Dir(key)
	if dir == "." || dir == "/" {
		return ""
	}
	return path.Base(dir)
}

// KeyName returns the file name portion of an artifact key.
func KeyName(key string) string {
	return path.Base(key)
}

// KeyStem returns the file name of an artifact key without its extension.
func KeyStem(key string) string {
	name := KeyName(key)
	return strings.TrimSuffix(name, path.Ext(name))
}

// Selector decides which artifact keys belong to a corpus run.
type Selector interface {
	// Match reports whether the key is selected.
	Match(key string) bool
}

// SelectorFunc adapts a plain function to the Selector interface.
type SelectorFunc func(key string) bool

// Match calls f(key).
func (f SelectorFunc) Match(key string) bool {
	return f(key)
}

// BackupTimeFormat is the timestamp layout embedded in backup names.
const BackupTimeFormat = "20060102_150405"

// BackupName returns the file name used for a backup of key taken at the
// given time. Path separators in the key are flattened to underscores so
// every backup lives directly in the backup directory.
func BackupName(key, tag string, at time.Time) string {
	flat := strings.ReplaceAll(strings.Trim(key, "/"), "/", "_")
	return flat + ".backup_" + tag + "_" + at.UTC().Format(BackupTimeFormat)
}
