// Package cryptox implements the authenticated-encryption layer for vault
// files: Argon2id key derivation plus XChaCha20-Poly1305.
//
// The encrypted blob is self-contained:
//
//	salt (32) | nonce (24) | ciphertext+tag
//
// A fresh random salt and nonce are generated per encryption, so the master
// password alone is sufficient for decryption. There is no cleartext header;
// the Poly1305 tag is the only integrity check on a vault file.
package cryptox

import (
	"crypto/rand"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/dmitrenko/passlock/internal/common"
	"github.com/dmitrenko/passlock/internal/shared"
)

const (
	saltSize = 32
	keySize  = chacha20poly1305.KeySize

	// Argon2id parameters: 3 passes over 64 MiB with 4 lanes.
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// minBlobSize is the smallest well-formed blob: salt, nonce and the tag of
// an empty plaintext.
const minBlobSize = saltSize + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, keySize)
}

// Encrypt derives a key from password and seals plaintext into a
// self-contained blob. It fails with common.ErrEncryptionFailed only on
// RNG or cipher construction failure.
func Encrypt(password, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncryptionFailed, err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncryptionFailed, err)
	}

	key := deriveKey(password, salt)
	defer shared.WipeByteArray(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncryptionFailed, err)
	}

	blob := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+aead.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = aead.Seal(blob, nonce, plaintext, nil)

	return blob, nil
}

// Decrypt recovers salt and nonce from blob, derives the key and performs
// authenticated decryption. Authentication failure is reported as
// common.ErrDecryptionFailed regardless of whether the password was wrong
// or the blob was tampered with; the two cases must stay indistinguishable.
// A plaintext that is not valid UTF-8 fails with common.ErrDecodingFailed.
func Decrypt(password, blob []byte) ([]byte, error) {
	if len(blob) < minBlobSize {
		return nil, common.ErrDecryptionFailed
	}

	salt := blob[:saltSize]
	nonce := blob[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	ciphertext := blob[saltSize+chacha20poly1305.NonceSizeX:]

	key := deriveKey(password, salt)
	defer shared.WipeByteArray(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}

	if !utf8.Valid(plaintext) {
		return nil, common.ErrDecodingFailed
	}

	return plaintext, nil
}
