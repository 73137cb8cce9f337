package session

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	perr "stridekit/internal/platform/errors"
)

// MemStore keeps the credential in process memory
type MemStore struct {
	mu   sync.Mutex
	cred Credential
}

// NewMemStore returns an empty in-memory store
func NewMemStore() *MemStore { return &MemStore{} }

// Load implements Store
func (s *MemStore) Load(_ context.Context) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred.Empty() {
		return Credential{}, ErrNoSession
	}
	return s.cred, nil
}

// Save implements Store
func (s *MemStore) Save(_ context.Context, c Credential) error {
	s.mu.Lock()
	s.cred = c
	s.mu.Unlock()
	return nil
}

// Clear implements Store
func (s *MemStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.cred = Credential{}
	s.mu.Unlock()
	return nil
}

// FileStore keeps the credential in a JSON file readable only by the owner.
// Writes go to a temp file in the same directory and are renamed into place,
// so a reader never sees a half-written credential.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path; the directory is created on first save
func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

// DefaultPath returns $XDG_CONFIG_HOME/stridekit/session.json or the OS equivalent
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "resolve config dir")
	}
	return filepath.Join(dir, "stridekit", "session.json"), nil
}

// Path returns the backing file
func (s *FileStore) Path() string { return s.path }

// Load implements Store
func (s *FileStore) Load(_ context.Context) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Credential{}, ErrNoSession
	}
	if err != nil {
		return Credential{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "read %s", s.path)
	}
	var c Credential
	if err := json.Unmarshal(b, &c); err != nil {
		return Credential{}, perr.Wrapf(err, perr.ErrorCodeJSON, "decode %s", s.path)
	}
	if c.Empty() {
		return Credential{}, ErrNoSession
	}
	return c, nil
}

// Save implements Store
func (s *FileStore) Save(_ context.Context, c Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode session")
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "create temp in %s", dir)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return perr.Wrap(err, perr.ErrorCodeUnknown, "chmod session file")
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return perr.Wrap(err, perr.ErrorCodeUnknown, "write session file")
	}
	if err := tmp.Close(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "close session file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "replace %s", s.path)
	}
	return nil
}

// Clear implements Store
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "remove %s", s.path)
	}
	return nil
}
