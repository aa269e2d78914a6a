package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrenko/passlock/internal/common"
	"github.com/dmitrenko/passlock/internal/session"
	"github.com/dmitrenko/passlock/internal/shared"
)

// InitVault creates a new, empty vault file encrypted under a freshly
// chosen master password. It does not open a session; use open for that.
func (a *App) InitVault(ctx context.Context, name string) error {
	v, err := a.store.Initialize(name)
	if err != nil {
		return err
	}

	password, err := GetNewPassword("Choose a master password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if err := a.store.Close(v, password); err != nil {
		return err
	}

	a.logger.Info(ctx, "vault created", "vault", name)
	printlnFn(fmt.Sprintf("Vault %q created. Use 'open %s' to unlock it.", name, name))
	return nil
}

// OpenVault unlocks a vault and installs the session in the shared handle,
// making it visible to the bridge, the auto-lock monitor and the REPL alike.
func (a *App) OpenVault(ctx context.Context, name string) error {
	if a.isUnlocked() {
		return errors.New("a vault is already open, close it first")
	}

	password, err := GetPassword("Master password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	s := session.New(a.store, name, a.config.SessionTimeout)
	if err := s.StartSession(password); err != nil {
		return err
	}

	a.handle.Swap(s)
	a.logger.Info(ctx, "vault opened", "vault", name)
	printlnFn(fmt.Sprintf("Vault %q unlocked.", name))
	return nil
}

// CloseVault persists the open vault and locks it.
func (a *App) CloseVault(ctx context.Context) error {
	var endErr error
	closed := false

	a.handle.Visit(func(s *session.Session) {
		if s == nil || !s.Active() {
			return
		}
		endErr = s.EndSession()
		closed = true
	})

	if !closed {
		return common.ErrSessionInactive
	}
	if endErr != nil {
		return endErr
	}

	a.handle.Swap(nil)
	a.logger.Info(ctx, "vault closed")
	printlnFn("Vault locked.")
	return nil
}

// SaveVault persists the open vault without locking it.
func (a *App) SaveVault(ctx context.Context) error {
	var saveErr error
	saved := false

	a.handle.Visit(func(s *session.Session) {
		if s == nil || !s.Active() {
			return
		}
		saveErr = s.Save()
		saved = true
	})

	if !saved {
		return common.ErrSessionInactive
	}
	if saveErr != nil {
		return saveErr
	}

	printlnFn("Saved.")
	return nil
}

// ChangeMaster re-keys the open vault: the current master password is
// verified, the replacement is chosen, and the vault is re-encrypted and
// persisted immediately so the key on disk never diverges from the one in
// memory.
func (a *App) ChangeMaster(ctx context.Context) error {
	if !a.isUnlocked() {
		return common.ErrSessionInactive
	}

	current, err := GetPassword("Current master password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(current)

	replacement, err := GetNewPassword("New master password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(replacement)

	var opErr error
	a.handle.Visit(func(s *session.Session) {
		if s == nil || !s.Active() {
			opErr = common.ErrSessionInactive
			return
		}
		if opErr = s.VerifyMasterPassword(current); opErr != nil {
			return
		}
		if opErr = s.ChangeMasterPassword(replacement); opErr != nil {
			return
		}
		opErr = s.Save()
	})
	if opErr != nil {
		return opErr
	}

	a.logger.Info(ctx, "master password changed")
	printlnFn("Master password changed.")
	return nil
}

// ListVaults prints the vault files present in the configured directory.
func (a *App) ListVaults(ctx context.Context) error {
	names, err := a.store.ListVaultNames()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		printlnFn("No vaults yet. Use 'init <name>' to create one.")
		return nil
	}
	for _, n := range names {
		printlnFn(n)
	}
	return nil
}

// DeleteVault removes a vault file permanently. The vault must be locked,
// and the caller has to prove knowledge of its master password by decrypting
// it once before the file is deleted.
func (a *App) DeleteVault(ctx context.Context, name string) error {
	open := false
	a.handle.Visit(func(s *session.Session) {
		open = s != nil && s.Active() && s.VaultName == name
	})
	if open {
		return errors.New("vault is open, close it first")
	}

	password, err := GetPassword("Master password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if _, err := a.store.Open(name, password); err != nil {
		return err
	}
	if err := a.store.Delete(name); err != nil {
		return err
	}

	a.logger.Info(ctx, "vault deleted", "vault", name)
	printlnFn(fmt.Sprintf("Vault %q deleted.", name))
	return nil
}

// ShowToken prints the per-process pairing token the browser extension must
// present on every bridge request.
func (a *App) ShowToken(ctx context.Context) error {
	printlnFn("Pairing token:", a.token)
	return nil
}
