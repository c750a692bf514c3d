package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store keys used by the guard.
const (
	KeyToken         = "token"
	KeyRefreshFailed = "refreshFailed"
)

// ErrNotFound is returned by Store.Get when the key holds no value.
var ErrNotFound = errors.New("session: value not found")

// Store is a key-value slot for session state.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Clear(key string) error
}

// MemoryStore keeps values for the lifetime of the process. It backs the
// session-scoped refresh-failure flag.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// FileStore persists each key as a 0600 file under dir, e.g. ~/.moneta/token.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a store rooted at dir. The directory is created lazily
// on the first Set.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("session: invalid key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

func (s *FileStore) Get(key string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session: read %s: %w", key, err)
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *FileStore) Set(key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("session: create %s: %w", s.dir, err)
	}
	if err := os.WriteFile(p, []byte(value), 0600); err != nil {
		return fmt.Errorf("session: write %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Clear(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: remove %s: %w", key, err)
	}
	return nil
}

// EnvStore layers an environment override on top of another store for a
// single key. MONETA_TOKEN takes precedence over the token file until the
// guard writes or clears that key.
type EnvStore struct {
	Store
	key    string
	envVar string

	mu       sync.Mutex
	consumed bool
}

// WithEnvOverride wraps s so that Get(key) returns the value of envVar when set.
func WithEnvOverride(s Store, key, envVar string) *EnvStore {
	return &EnvStore{Store: s, key: key, envVar: envVar}
}

func (s *EnvStore) Get(key string) (string, error) {
	if key == s.key {
		s.mu.Lock()
		consumed := s.consumed
		s.mu.Unlock()
		if v := os.Getenv(s.envVar); v != "" && !consumed {
			return v, nil
		}
	}
	return s.Store.Get(key)
}

func (s *EnvStore) Set(key, value string) error {
	s.consume(key)
	return s.Store.Set(key, value)
}

func (s *EnvStore) Clear(key string) error {
	s.consume(key)
	return s.Store.Clear(key)
}

func (s *EnvStore) consume(key string) {
	if key != s.key {
		return
	}
	s.mu.Lock()
	s.consumed = true
	s.mu.Unlock()
}
