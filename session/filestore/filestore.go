// Package filestore persists the session token and role in a JSON file,
// the CLI's stand-in for the browser's local storage.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-lms-client/session"
	"github.com/pkg/errors"
)

var _ session.Store = (*FileStore)(nil)

type storedSession struct {
	Token string `json:"token,omitempty"`
	Role  string `json:"role,omitempty"`
}

// FileStore reads and writes the session file atomically under a lock so a
// capture and a clear racing each other cannot interleave partial writes.
type FileStore struct {
	path string
	lock sync.Mutex
}

// New creates a FileStore at path. The file does not have to exist yet.
func New(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Read() (string, string, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return "", "", nil
	}
	if err != nil {
		return "", "", errors.Wrap(err, "[FileStore.Read] ReadFile")
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		// A corrupt session file is the same as no session.
		return "", "", nil
	}
	return stored.Token, stored.Role, nil
}

func (fs *FileStore) Write(token, role string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := json.Marshal(storedSession{Token: token, Role: role})
	if err != nil {
		return errors.Wrap(err, "[FileStore.Write] Marshal")
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileStore.Write] MkdirAll")
	}
	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.Write] WriteFile")
	}
	return nil
}

func (fs *FileStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] Remove")
	}
	return nil
}
