// Package vault holds the in-memory credential model and the encrypted
// file store that persists it.
package vault

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrenko/passlock/internal/common"
)

// Entry is one credential record. Only Name is required; identity within a
// vault is the exact, case-sensitive Name.
type Entry struct {
	Name     string `json:"entryname"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	URL      string `json:"url,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Vault is a named collection of entries in insertion order. It never holds
// its own master password; pairing the two is the session's job.
type Vault struct {
	Name    string   `json:"name"`
	Entries []*Entry `json:"entries"`
}

func New(name string) *Vault {
	return &Vault{Name: name, Entries: []*Entry{}}
}

// AddEntry appends e, failing with common.ErrNameExists if a sibling entry
// already carries that name.
func (v *Vault) AddEntry(e *Entry) error {
	if v.NameExists(e.Name) {
		return common.ErrNameExists
	}
	v.Entries = append(v.Entries, e)
	return nil
}

// GetEntry returns the entry with the given name, or nil. The returned
// pointer is owned by the vault; mutations through it are visible to every
// reader.
func (v *Vault) GetEntry(name string) *Entry {
	for _, e := range v.Entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// RemoveEntry deletes the entry with the given name. Removing an absent
// name is a no-op; callers that need to distinguish should check
// NameExists first.
func (v *Vault) RemoveEntry(name string) {
	for i, e := range v.Entries {
		if e.Name == name {
			v.Entries = append(v.Entries[:i], v.Entries[i+1:]...)
			return
		}
	}
}

// RenameEntry changes an entry's name after checking uniqueness against its
// siblings.
func (v *Vault) RenameEntry(oldName, newName string) error {
	e := v.GetEntry(oldName)
	if e == nil {
		return common.ErrEntryNotFound
	}
	if oldName != newName && v.NameExists(newName) {
		return common.ErrNameExists
	}
	e.Name = newName
	return nil
}

// ListEntries returns the entries in insertion order.
func (v *Vault) ListEntries() []*Entry {
	return v.Entries
}

func (v *Vault) NameExists(name string) bool {
	return v.GetEntry(name) != nil
}

// ToJSON serializes the vault to its canonical indented JSON form.
func (v *Vault) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecodingFailed, err)
	}
	return data, nil
}

// FromJSON parses a vault from its canonical JSON form, failing with
// common.ErrDecodingFailed on malformed structure.
func FromJSON(data []byte) (*Vault, error) {
	var v Vault
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecodingFailed, err)
	}
	if v.Entries == nil {
		v.Entries = []*Entry{}
	}
	return &v, nil
}
