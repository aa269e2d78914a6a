// Package common defines shared sentinel errors used across the passlock
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Crypto errors. Fatal to the operation; retrying with the same
	// password and blob cannot succeed.
	ErrEncryptionFailed = errors.New("encryption failed")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrDecodingFailed   = errors.New("decoding failed")

	// Vault errors. ErrInvalidKey covers both a wrong master password and
	// a tampered vault file; the two are indistinguishable on purpose.
	ErrInvalidKey        = errors.New("invalid password")
	ErrNameExists        = errors.New("name already exists")
	ErrEntryNotFound     = errors.New("entry not found")
	ErrVaultExists       = errors.New("vault already exists")
	ErrVaultDoesNotExist = errors.New("vault does not exist")

	// Session errors. Caller-recoverable illegal state transitions; safe
	// to surface directly to the user.
	ErrSessionActive   = errors.New("session already active")
	ErrSessionInactive = errors.New("no active session")
)
