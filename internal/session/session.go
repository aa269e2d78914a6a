// Package session implements the open-vault state machine, the shared
// handle every thread reaches it through, and the inactivity auto-lock.
package session

import (
	"crypto/subtle"
	"time"

	"github.com/dmitrenko/passlock/internal/common"
	"github.com/dmitrenko/passlock/internal/shared"
	"github.com/dmitrenko/passlock/internal/vault"
)

// DefaultTimeout is the inactivity timeout applied when the caller does not
// choose one at open time.
const DefaultTimeout = 5 * time.Minute

// Session custodies one open vault together with its master password for a
// bounded, activity-tracked duration.
//
// A session is active iff both the vault and the master password are
// present. The two are always set together (on a successful start) and
// cleared together (on end): the password is needed to re-encrypt on
// close, and the vault is meaningless without it. There is no observable
// in-between state.
type Session struct {
	VaultName      string
	WishedTimeout  time.Duration
	store          *vault.Store
	openedVault    *vault.Vault
	masterPassword []byte
	lastActivity   time.Time
}

// New constructs an inactive session naming a target vault.
func New(store *vault.Store, vaultName string, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Session{
		VaultName:     vaultName,
		WishedTimeout: timeout,
		store:         store,
		lastActivity:  time.Now(),
	}
}

// Active reports whether a vault is currently open.
func (s *Session) Active() bool {
	return s.openedVault != nil && s.masterPassword != nil
}

// Vault exposes the open vault for the dispatcher, or nil when inactive.
func (s *Session) Vault() *vault.Vault {
	return s.openedVault
}

// StartSession opens the target vault and takes custody of the master
// password. Calling it on an already-active session fails with
// common.ErrSessionActive without touching the open vault; the caller must
// end the session first. On any open failure the session stays inactive.
func (s *Session) StartSession(password []byte) error {
	if s.Active() {
		return common.ErrSessionActive
	}

	v, err := s.store.Open(s.VaultName, password)
	if err != nil {
		return err
	}

	s.openedVault = v
	s.masterPassword = append([]byte(nil), password...)
	s.lastActivity = time.Now()
	return nil
}

// VerifyMasterPassword compares candidate against the custodied password in
// constant time. It gates sensitive actions (revealing a password, deleting
// a vault) without re-deriving the encryption key.
func (s *Session) VerifyMasterPassword(candidate []byte) error {
	if !s.Active() {
		return common.ErrSessionInactive
	}
	if subtle.ConstantTimeCompare(s.masterPassword, candidate) != 1 {
		return common.ErrInvalidKey
	}
	return nil
}

// ChangeMasterPassword replaces the custodied password in memory. It does
// not persist: the caller must follow up with Save or EndSession so the
// on-disk encryption key never observably diverges from the in-memory one.
func (s *Session) ChangeMasterPassword(newPassword []byte) error {
	if !s.Active() {
		return common.ErrSessionInactive
	}
	shared.WipeByteArray(s.masterPassword)
	s.masterPassword = append([]byte(nil), newPassword...)
	return nil
}

// Save re-encrypts and persists the vault without clearing state.
func (s *Session) Save() error {
	if !s.Active() {
		return common.ErrSessionInactive
	}
	return s.store.Close(s.openedVault, s.masterPassword)
}

// EndSession persists the vault, then clears both the vault and the master
// password, returning the session to the inactive state. The state is
// cleared even when the persist fails, so the secrets do not outlive the
// session; the write error is still reported. A second EndSession fails
// with common.ErrSessionInactive and must not touch the file again —
// callers treat that as non-fatal on quit-then-cleanup paths.
func (s *Session) EndSession() error {
	if !s.Active() {
		return common.ErrSessionInactive
	}

	err := s.store.Close(s.openedVault, s.masterPassword)

	shared.WipeByteArray(s.masterPassword)
	s.masterPassword = nil
	s.openedVault = nil

	return err
}

// UpdateActivity stamps the activity clock. It is called after every
// completed user command, not before, so a long-running prompt does not
// itself reset the timeout.
func (s *Session) UpdateActivity() {
	s.lastActivity = time.Now()
}

// CheckTimeout reports whether the inactivity threshold has elapsed. Pure
// query, no side effect.
func (s *Session) CheckTimeout(threshold time.Duration) bool {
	return time.Since(s.lastActivity) >= threshold
}
