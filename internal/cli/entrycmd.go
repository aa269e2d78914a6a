package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrenko/passlock/internal/common"
	"github.com/dmitrenko/passlock/internal/session"
	"github.com/dmitrenko/passlock/internal/shared"
	"github.com/dmitrenko/passlock/internal/vault"
)

const defaultGeneratedLength = 20

// withOpenVault runs fn against the open vault under the session lock, or
// fails with common.ErrSessionInactive when no vault is open.
func (a *App) withOpenVault(fn func(s *session.Session, v *vault.Vault) error) error {
	err := common.ErrSessionInactive
	a.handle.Visit(func(s *session.Session) {
		if s == nil || !s.Active() {
			return
		}
		err = fn(s, s.Vault())
	})
	return err
}

// ListEntries prints the entry names of the open vault.
func (a *App) ListEntries(ctx context.Context) error {
	return a.withOpenVault(func(_ *session.Session, v *vault.Vault) error {
		entries := v.ListEntries()
		if len(entries) == 0 {
			printlnFn("Vault is empty.")
			return nil
		}
		for _, e := range entries {
			printlnFn(e.Name)
		}
		return nil
	})
}

// AddEntry interactively collects a new entry. An empty password answer
// generates one instead, since that is the common case for new accounts.
func (a *App) AddEntry(ctx context.Context) error {
	if !a.isUnlocked() {
		return common.ErrSessionInactive
	}

	name, err := GetSimpleText(a.reader, "Entry name", a.out)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("entry name must not be empty")
	}

	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := GetSimpleText(a.reader, "Password (leave empty to generate)", a.out)
	if err != nil {
		return err
	}
	if password == "" {
		password, err = shared.GeneratePassword(defaultGeneratedLength)
		if err != nil {
			return err
		}
		printlnFn("Generated password:", password)
	}
	url, err := GetSimpleText(a.reader, "URL", a.out)
	if err != nil {
		return err
	}
	notes, err := GetSimpleText(a.reader, "Notes", a.out)
	if err != nil {
		return err
	}

	return a.withOpenVault(func(_ *session.Session, v *vault.Vault) error {
		err := v.AddEntry(&vault.Entry{
			Name:     name,
			Username: username,
			Password: password,
			URL:      url,
			Notes:    notes,
		})
		if err != nil {
			return err
		}
		printlnFn(fmt.Sprintf("Entry %q added. Use 'save' or 'close' to persist.", name))
		return nil
	})
}

// ShowEntry prints an entry with the password masked. The password itself
// is revealed only after the master password is re-entered.
func (a *App) ShowEntry(ctx context.Context, name string) error {
	var entry vault.Entry
	err := a.withOpenVault(func(_ *session.Session, v *vault.Vault) error {
		e := v.GetEntry(name)
		if e == nil {
			return common.ErrEntryNotFound
		}
		entry = *e
		return nil
	})
	if err != nil {
		return err
	}

	printlnFn("Name:    ", entry.Name)
	printlnFn("Username:", entry.Username)
	printlnFn("Password: ********")
	printlnFn("URL:     ", entry.URL)
	printlnFn("Notes:   ", entry.Notes)

	answer, err := GetSimpleText(a.reader, "Reveal password? (y/N)", a.out)
	if err != nil || !strings.EqualFold(answer, "y") {
		return nil
	}

	candidate, err := GetPassword("Master password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(candidate)

	err = a.withOpenVault(func(s *session.Session, _ *vault.Vault) error {
		return s.VerifyMasterPassword(candidate)
	})
	if err != nil {
		return err
	}

	printlnFn("Password:", entry.Password)
	return nil
}

// RemoveEntry deletes an entry by name.
func (a *App) RemoveEntry(ctx context.Context, name string) error {
	return a.withOpenVault(func(_ *session.Session, v *vault.Vault) error {
		if !v.NameExists(name) {
			return common.ErrEntryNotFound
		}
		v.RemoveEntry(name)
		printlnFn(fmt.Sprintf("Entry %q removed.", name))
		return nil
	})
}

// RenameEntry renames an entry, refusing to clobber an existing name.
func (a *App) RenameEntry(ctx context.Context, oldName, newName string) error {
	return a.withOpenVault(func(_ *session.Session, v *vault.Vault) error {
		if err := v.RenameEntry(oldName, newName); err != nil {
			return err
		}
		printlnFn(fmt.Sprintf("Entry %q renamed to %q.", oldName, newName))
		return nil
	})
}

// ModifyEntry edits an entry in place. An empty answer keeps the current
// value of that field.
func (a *App) ModifyEntry(ctx context.Context, name string) error {
	var current vault.Entry
	err := a.withOpenVault(func(_ *session.Session, v *vault.Vault) error {
		e := v.GetEntry(name)
		if e == nil {
			return common.ErrEntryNotFound
		}
		current = *e
		return nil
	})
	if err != nil {
		return err
	}

	username, err := GetSimpleText(a.reader, fmt.Sprintf("Username [%s] (empty keeps current)", current.Username), a.out)
	if err != nil {
		return err
	}
	password, err := GetSimpleText(a.reader, "Password (empty keeps current)", a.out)
	if err != nil {
		return err
	}
	url, err := GetSimpleText(a.reader, fmt.Sprintf("URL [%s] (empty keeps current)", current.URL), a.out)
	if err != nil {
		return err
	}
	notes, err := GetSimpleText(a.reader, "Notes (empty keeps current)", a.out)
	if err != nil {
		return err
	}

	return a.withOpenVault(func(_ *session.Session, v *vault.Vault) error {
		e := v.GetEntry(name)
		if e == nil {
			return common.ErrEntryNotFound
		}
		if username != "" {
			e.Username = username
		}
		if password != "" {
			e.Password = password
		}
		if url != "" {
			e.URL = url
		}
		if notes != "" {
			e.Notes = notes
		}
		printlnFn(fmt.Sprintf("Entry %q updated. Use 'save' or 'close' to persist.", name))
		return nil
	})
}

// CopyEntry puts an entry's password on the clipboard with the configured
// auto-clear delay.
func (a *App) CopyEntry(ctx context.Context, name string) error {
	var password string
	err := a.withOpenVault(func(_ *session.Session, v *vault.Vault) error {
		e := v.GetEntry(name)
		if e == nil {
			return common.ErrEntryNotFound
		}
		password = e.Password
		return nil
	})
	if err != nil {
		return err
	}

	if err := a.clip.Copy(password, a.config.ClipboardClearDelay); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Password copied, clipboard clears in %s.", a.config.ClipboardClearDelay))
	return nil
}

// Generate prints a random password. It works with or without an open vault.
func (a *App) Generate(ctx context.Context, lengthArg string) error {
	length := defaultGeneratedLength
	if lengthArg != "" {
		n, err := strconv.Atoi(lengthArg)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid length %q", lengthArg)
		}
		length = n
	}

	password, err := shared.GeneratePassword(length)
	if err != nil {
		return err
	}
	printlnFn(password)
	return nil
}
