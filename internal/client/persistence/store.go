// Package persistence owns the encrypted credential file and its salt.
//
// A store directory contains two files:
//
//	salt.bin     16 random bytes, unencrypted, created once
//	storage.enc  base64( nonce || AES-256-GCM(JSON snapshot) )
//
// The encryption key is derived once per Store from the passphrase and the
// salt and lives only in memory. The data file is always replaced through a
// temporary sibling and an atomic rename.
package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/skykeeper/internal/client/models"
	"github.com/dmitrijs2005/skykeeper/internal/common"
	"github.com/dmitrijs2005/skykeeper/internal/cryptox"
	"github.com/dmitrijs2005/skykeeper/internal/filex"
)

const (
	DataFileName = "storage.enc"
	SaltFileName = "salt.bin"

	filePerm = 0o600
)

// Store is the durable, encrypted home of a models.Snapshot.
type Store struct {
	dataFile string
	saltFile string

	mu   sync.Mutex
	salt []byte
	key  []byte
}

// Open prepares the store under dir, creating the directory and the salt
// file on first use, and derives the encryption key from passphrase. The data
// file is not read until Load.
func Open(dir string, passphrase []byte) (*Store, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, common.StorageError("create data directory", err)
	}

	s := &Store{
		dataFile: filepath.Join(abs, DataFileName),
		saltFile: filepath.Join(abs, SaltFileName),
	}

	salt, err := s.loadOrCreateSalt()
	if err != nil {
		return nil, err
	}

	key, err := cryptox.DeriveKey(passphrase, salt)
	if err != nil {
		return nil, common.StorageError("derive key", err)
	}

	s.salt = salt
	s.key = key
	return s, nil
}

func (s *Store) loadOrCreateSalt() ([]byte, error) {
	salt, err := os.ReadFile(s.saltFile)
	if err == nil {
		if len(salt) == 0 {
			return nil, common.StorageError("read salt file", errors.New("salt file is empty"))
		}
		return salt, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, common.StorageError("read salt file", err)
	}

	salt, err = cryptox.GenerateSalt()
	if err != nil {
		return nil, common.StorageError("generate salt", err)
	}
	if err := filex.WriteFileAtomic(s.saltFile, salt, filePerm); err != nil {
		return nil, common.StorageError("write salt file", err)
	}
	return salt, nil
}

// Exists reports whether an encrypted data file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.dataFile)
	return err == nil
}

// Load reads and decrypts the snapshot. A missing data file yields an empty
// snapshot; any read, decrypt or decode failure is returned as
// common.ErrStorage and never replaced by an empty snapshot.
func (s *Store) Load() (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return nil, common.StorageError("load", errors.New("store is closed"))
	}

	blob, err := os.ReadFile(s.dataFile)
	if errors.Is(err, os.ErrNotExist) {
		return models.NewSnapshot(), nil
	}
	if err != nil {
		return nil, common.StorageError("read storage file", err)
	}

	plaintext, err := cryptox.Decrypt(string(bytes.TrimSpace(blob)), s.key)
	if err != nil {
		return nil, common.StorageError("decrypt storage file", err)
	}
	defer cryptox.Wipe(plaintext)

	var snap models.Snapshot
	if err := json.Unmarshal(plaintext, &snap); err != nil {
		return nil, common.StorageError("parse storage data", err)
	}
	snap.Normalize()
	return &snap, nil
}

// Save encrypts snap and atomically replaces the data file. If the salt file
// was removed by Clear it is written back first, so the new blob remains
// decryptable after a restart.
func (s *Store) Save(snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return common.StorageError("save", errors.New("store is closed"))
	}

	plaintext, err := json.Marshal(snap)
	if err != nil {
		return common.StorageError("serialize storage data", err)
	}
	defer cryptox.Wipe(plaintext)

	blob, err := cryptox.Encrypt(plaintext, s.key)
	if err != nil {
		return common.StorageError("encrypt storage data", err)
	}

	if _, err := os.Stat(s.saltFile); errors.Is(err, os.ErrNotExist) {
		if err := filex.WriteFileAtomic(s.saltFile, s.salt, filePerm); err != nil {
			return common.StorageError("restore salt file", err)
		}
	}

	if err := filex.WriteFileAtomic(s.dataFile, []byte(blob), filePerm); err != nil {
		return common.StorageError("write storage file", err)
	}
	return nil
}

// Clear deletes the data and salt files. Missing files are not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := filex.RemoveIfExists(s.dataFile); err != nil {
		return common.StorageError("delete storage file", err)
	}
	if err := filex.RemoveIfExists(s.saltFile); err != nil {
		return common.StorageError("delete salt file", err)
	}
	return nil
}

// Close wipes the in-memory key. The store cannot be used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cryptox.Wipe(s.key)
	s.key = nil
	return nil
}

// String describes the store location without exposing key material.
func (s *Store) String() string {
	return fmt.Sprintf("persistence.Store(%s)", filepath.Dir(s.dataFile))
}
