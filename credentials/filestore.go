package credentials

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keyFileName  = "credential.key"
	keySize      = 32
	nonceSize    = 24
	recordPerm   = 0o600
	credDirPerm  = 0o700
)

// FileStore keeps one principal's Record in a secretbox-encrypted file under
// dir. The encryption key is generated on first use and shared by both
// principals' files; the record files themselves are disjoint per principal.
//
// A FileStore constructed with an empty or uncreatable directory is
// "unavailable": every operation is a no-op per the Store contract.
type FileStore struct {
	mu        sync.RWMutex
	path      string
	key       *[keySize]byte
	available bool
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the store for principal under dir. An empty dir yields
// an unavailable store rather than an error, so callers can construct stores
// unconditionally and let the no-op contract absorb missing storage.
func NewFileStore(dir string, principal Principal) *FileStore {
	if dir == "" {
		return &FileStore{}
	}
	if err := os.MkdirAll(dir, credDirPerm); err != nil {
		return &FileStore{}
	}
	key, err := loadOrCreateKey(filepath.Join(dir, keyFileName))
	if err != nil {
		return &FileStore{}
	}
	return &FileStore{
		path:      filepath.Join(dir, fmt.Sprintf("%s.cred", principal)),
		key:       key,
		available: true,
	}
}

func (s *FileStore) SetAccess(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return nil
	}
	rec := s.read()
	rec.AccessToken = token
	return s.write(rec)
}

func (s *FileStore) SetRefresh(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return nil
	}
	rec := s.read()
	rec.RefreshToken = token
	return s.write(rec)
}

func (s *FileStore) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.available {
		return ""
	}
	return s.read().AccessToken
}

func (s *FileStore) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.available {
		return ""
	}
	return s.read().RefreshToken
}

// Clear removes the record file. Both tokens live in one file, so the removal
// is atomic.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] os.Remove")
	}
	return nil
}

func (s *FileStore) IsAuthenticated() bool {
	return s.Access() != ""
}

// read returns the decrypted record, or the zero Record when the file is
// missing or undecipherable. Callers hold s.mu.
func (s *FileStore) read() Record {
	raw, err := os.ReadFile(s.path)
	if err != nil || len(raw) <= nonceSize {
		return Record{}
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, s.key)
	if !ok {
		return Record{}
	}

	var rec Record
	if err := json.Unmarshal(plain, &rec); err != nil {
		return Record{}
	}
	return rec
}

func (s *FileStore) write(rec Record) error {
	plain, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "[FileStore.write] json.Marshal")
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return errors.Wrap(err, "[FileStore.write] rand.Read")
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, s.key)

	// Write-then-rename so a crash mid-write never leaves a torn record.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, recordPerm); err != nil {
		return errors.Wrap(err, "[FileStore.write] os.WriteFile")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "[FileStore.write] os.Rename")
	}
	return nil
}

func loadOrCreateKey(path string) (*[keySize]byte, error) {
	var key [keySize]byte

	raw, err := os.ReadFile(path)
	if err == nil && len(raw) == keySize {
		copy(key[:], raw)
		return &key, nil
	}

	if _, err := rand.Read(key[:]); err != nil {
		return nil, errors.Wrap(err, "loadOrCreateKey rand.Read")
	}
	if err := os.WriteFile(path, key[:], recordPerm); err != nil {
		return nil, errors.Wrap(err, "loadOrCreateKey os.WriteFile")
	}
	return &key, nil
}
