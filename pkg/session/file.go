package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/typeviz/pkg/errors"
)

// FileStore keeps one JSON file per session in a private directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns $XDG_CONFIG_HOME/typeviz/sessions, falling back to
// the platform user config directory.
func DefaultDir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "locate config directory")
		}
	}
	return filepath.Join(dir, "typeviz", "sessions"), nil
}

// NewFileStore creates a file-based session store. An empty baseDir means
// [DefaultDir].
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		var err error
		if baseDir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create session dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read session")
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		_ = os.Remove(path)
		return nil, nil
	}
	if sess.IsExpired() {
		_ = os.Remove(path)
		return nil, nil
	}
	return &sess, nil
}

func (s *FileStore) Set(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode session")
	}
	if err := os.WriteFile(s.path(sess.ID), data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write session")
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "remove session")
	}
	return nil
}

// Cleanup removes expired and unreadable session files.
func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "read session dir")
	}

	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil || now.After(sess.ExpiresAt) {
			_ = os.Remove(path)
		}
	}
	return nil
}

// List returns the ids of the stored sessions, expired ones included.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read session dir")
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// Dir returns the directory holding the session files.
func (s *FileStore) Dir() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
