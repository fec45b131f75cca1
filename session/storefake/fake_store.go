package storefake

import (
	"sync"

	"github.com/jrsteele09/go-lms-client/session"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore is an in-memory session store for tests.
type FakeStore struct {
	token string
	role  string
	lock  sync.RWMutex

	ReadErr  error // Injected errors for failure-path tests
	WriteErr error
	ClearErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (fs *FakeStore) Read() (string, string, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	if fs.ReadErr != nil {
		return "", "", fs.ReadErr
	}
	return fs.token, fs.role, nil
}

func (fs *FakeStore) Write(token, role string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if fs.WriteErr != nil {
		return fs.WriteErr
	}
	fs.token = token
	fs.role = role
	return nil
}

func (fs *FakeStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if fs.ClearErr != nil {
		return fs.ClearErr
	}
	fs.token = ""
	fs.role = ""
	return nil
}
