package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core/guardian"
)

// Credentials is the persisted session state: the bearer token, the account
// id, and a JSON snapshot of the account record. It is a cache, not a source
// of truth.
type Credentials struct {
	Token      string             `json:"token"`
	GuardianID string             `json:"parentId"`
	Snapshot   *guardian.Guardian `json:"parent,omitempty"`
}

func (c Credentials) IsZero() bool { return c.Token == "" }

// Store persists session credentials between runs.
type Store interface {
	Save(c Credentials) error
	Load() (Credentials, error)
	Clear() error
}

// fileStore keeps credentials in a JSON file, the closest equivalent of the
// browser's local storage.
type fileStore struct {
	path  string
	mutex sync.Mutex
}

var _ Store = (*fileStore)(nil)

func NewFileStore(path string) Store {
	return &fileStore{path: path}
}

func (s *fileStore) Save(c Credentials) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encoding credentials")
	}
	if err = os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating credentials dir")
	}
	return errors.Wrap(os.WriteFile(s.path, data, 0o600), "writing credentials")
}

func (s *fileStore) Load() (Credentials, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}
		return Credentials{}, errors.Wrap(err, "reading credentials")
	}
	var c Credentials
	if err = json.Unmarshal(data, &c); err != nil {
		// a corrupt cache is treated as absent
		return Credentials{}, nil
	}
	return c, nil
}

func (s *fileStore) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing credentials")
	}
	return nil
}

// memStore keeps credentials in memory, for tests.
type memStore struct {
	creds Credentials
	mutex sync.Mutex
}

var _ Store = (*memStore)(nil)

func NewMemStore() Store {
	return &memStore{}
}

func (s *memStore) Save(c Credentials) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.creds = c
	return nil
}

func (s *memStore) Load() (Credentials, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.creds, nil
}

func (s *memStore) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.creds = Credentials{}
	return nil
}
