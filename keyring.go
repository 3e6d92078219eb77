package vsmark

import (
	"crypto"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrSignerMismatch is returned by Keyring.Add when a signer ID is
// already bound to a different public key.
var ErrSignerMismatch = errors.New("signer is bound to a different key")

// KeyEntry records a known signer's public key.
type KeyEntry struct {
	PublicKey string `yaml:"public_key"` // base64-encoded, 32 bytes
	Comment   string `yaml:"comment,omitempty"`
	FirstSeen string `yaml:"first_seen"`
	LastSeen  string `yaml:"last_seen"`
}

// Keyring is a yaml-backed store of trusted signer public keys, keyed
// by signer ID. It implements KeyResolver so a loaded ring can be
// handed straight to VerifyMetadata.
type Keyring struct {
	Keys map[string]*KeyEntry `yaml:"keys"`
}

// NewKeyring returns an empty keyring.
func NewKeyring() *Keyring {
	return &Keyring{Keys: make(map[string]*KeyEntry)}
}

// LoadKeyring reads a keyring from disk. Returns an empty ring if the
// file does not exist.
func LoadKeyring(path string) (*Keyring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewKeyring(), nil
		}
		return nil, err
	}
	var k Keyring
	if err := yaml.Unmarshal(data, &k); err != nil {
		return nil, err
	}
	if k.Keys == nil {
		k.Keys = make(map[string]*KeyEntry)
	}
	return &k, nil
}

// Save writes the keyring to disk atomically. Creates parent
// directories if needed. The file is written with 0600 permissions.
func (k *Keyring) Save(path string) error {
	data, err := yaml.Marshal(k)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	defer os.Remove(tmp)
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Add records or refreshes a signer's key. A repeat add with the same
// key only bumps last_seen; a different key for an existing signer is
// rejected with ErrSignerMismatch so an established binding cannot be
// silently replaced.
func (k *Keyring) Add(signerID string, pub ed25519.PublicKey, comment string) error {
	encoded := base64.StdEncoding.EncodeToString(pub)
	now := time.Now().UTC().Format(time.RFC3339)
	if existing, ok := k.Keys[signerID]; ok {
		if existing.PublicKey != encoded {
			return fmt.Errorf("%w: %s", ErrSignerMismatch, signerID)
		}
		existing.LastSeen = now
		if comment != "" {
			existing.Comment = comment
		}
		return nil
	}
	k.Keys[signerID] = &KeyEntry{
		PublicKey: encoded,
		Comment:   comment,
		FirstSeen: now,
		LastSeen:  now,
	}
	return nil
}

// Remove deletes a signer binding. Removing an unknown signer is a
// no-op.
func (k *Keyring) Remove(signerID string) {
	delete(k.Keys, signerID)
}

// ResolvePublicKey implements KeyResolver.
func (k *Keyring) ResolvePublicKey(signerID string) (crypto.PublicKey, error) {
	entry, ok := k.Keys[signerID]
	if !ok {
		return nil, &ResolverError{SignerID: signerID, Reason: "not in keyring"}
	}
	raw, err := base64.StdEncoding.DecodeString(entry.PublicKey)
	if err != nil {
		return nil, &ResolverError{SignerID: signerID, Reason: "stored key is not valid base64"}
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, &ResolverError{SignerID: signerID, Reason: fmt.Sprintf("stored key has %d bytes, want %d", len(raw), ed25519.PublicKeySize)}
	}
	return ed25519.PublicKey(raw), nil
}
