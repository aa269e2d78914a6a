package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrenko/passlock/internal/common"
	"github.com/dmitrenko/passlock/internal/cryptox"
	"github.com/dmitrenko/passlock/internal/filex"
)

// FileExt is the extension of encrypted vault files.
const FileExt = ".psdb"

// Store maps vault names to encrypted files under one directory and
// performs create/read/write/delete of the blobs. The file is the sole
// persisted representation of a vault: its absence means the vault does
// not exist, and its contents are opaque authenticated-encrypted bytes.
type Store struct {
	dir string
}

// NewStore creates the vaults directory if needed and returns a store
// rooted there.
func NewStore(dir string) (*Store, error) {
	if err := filex.EnsureDir(dir); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Path returns the file path a vault name maps to.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+FileExt)
}

func (s *Store) VaultExists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Initialize produces an empty in-memory vault. It writes no file: the
// vault is first persisted on close/save, which is the point where it gets
// paired with a master password.
func (s *Store) Initialize(name string) (*Vault, error) {
	if s.VaultExists(name) {
		return nil, common.ErrVaultExists
	}
	return New(name), nil
}

// Open reads, decrypts and parses a vault file. Every decryption failure —
// wrong password, tampered file, garbled plaintext — is collapsed into
// common.ErrInvalidKey so a caller cannot tell which step failed.
// Malformed JSON inside a correctly decrypted blob is
// common.ErrDecodingFailed.
func (s *Store) Open(name string, password []byte) (*Vault, error) {
	blob, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.ErrVaultDoesNotExist
		}
		return nil, fmt.Errorf("read vault file: %w", err)
	}

	plaintext, err := cryptox.Decrypt(password, blob)
	if err != nil {
		return nil, common.ErrInvalidKey
	}

	v, err := FromJSON(plaintext)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Close serializes, encrypts and atomically overwrites the vault's file.
// It backs both "save while keeping the vault open" and the final persist
// on session end; the distinction lives at the session layer.
func (s *Store) Close(v *Vault, password []byte) error {
	plaintext, err := v.ToJSON()
	if err != nil {
		return err
	}

	blob, err := cryptox.Encrypt(password, plaintext)
	if err != nil {
		return err
	}

	if err := filex.WriteFileAtomic(s.Path(v.Name), blob, 0o600); err != nil {
		return fmt.Errorf("write vault file: %w", err)
	}
	return nil
}

// Delete removes a vault's file.
func (s *Store) Delete(name string) error {
	path := s.Path(name)
	if _, err := os.Stat(path); err != nil {
		return common.ErrVaultDoesNotExist
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete vault file: %w", err)
	}
	return nil
}

// ListVaultNames returns the names of all vault files in the store's
// directory.
func (s *Store) ListVaultNames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read vaults dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), FileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), FileExt))
	}
	return names, nil
}
