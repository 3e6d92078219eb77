// Package vsconfig manages the CLI's configuration and on-disk key
// material: Ed25519 PEM keypairs and the yaml config file.
package vsconfig

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateKeypair creates a new Ed25519 keypair using crypto/rand.
func GenerateKeypair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate ed25519 keypair: %w", err)
	}
	return pub, priv, nil
}

// SaveKeypair writes a keypair to keysDir as PEM files named by signer
// ID. Private key: 0600. Public key: 0644.
func SaveKeypair(keysDir, signerID string, pub ed25519.PublicKey, priv ed25519.PrivateKey) error {
	base := signerToFileBase(signerID)
	keyPath := filepath.Join(keysDir, base+".signing.key")
	pubPath := filepath.Join(keysDir, base+".signing.pub")

	if err := writePrivateKey(keyPath, priv); err != nil {
		return err
	}
	return writePublicKey(pubPath, pub)
}

// KeypairPaths returns the PEM file paths SaveKeypair uses for signerID.
func KeypairPaths(keysDir, signerID string) (keyPath, pubPath string) {
	base := signerToFileBase(signerID)
	return filepath.Join(keysDir, base+".signing.key"), filepath.Join(keysDir, base+".signing.pub")
}

// LoadSigningKey reads an Ed25519 private key from a PEM file.
func LoadSigningKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	if block.Type != "ED25519 PRIVATE KEY" {
		return nil, fmt.Errorf("unexpected PEM type %q in %s", block.Type, path)
	}
	if len(block.Bytes) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid seed size %d in %s", len(block.Bytes), path)
	}
	return ed25519.NewKeyFromSeed(block.Bytes), nil
}

// LoadPublicKey reads an Ed25519 public key from a PEM file.
func LoadPublicKey(path string) (ed25519.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	if block.Type != "ED25519 PUBLIC KEY" {
		return nil, fmt.Errorf("unexpected PEM type %q in %s", block.Type, path)
	}
	if len(block.Bytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key size %d in %s", len(block.Bytes), path)
	}
	return ed25519.PublicKey(block.Bytes), nil
}

func writePrivateKey(path string, priv ed25519.PrivateKey) error {
	data := pem.EncodeToMemory(&pem.Block{
		Type:  "ED25519 PRIVATE KEY",
		Bytes: priv.Seed(),
	})
	if err := atomicWriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write private key %s: %w", path, err)
	}
	return nil
}

func writePublicKey(path string, pub ed25519.PublicKey) error {
	data := pem.EncodeToMemory(&pem.Block{
		Type:  "ED25519 PUBLIC KEY",
		Bytes: []byte(pub),
	})
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write public key %s: %w", path, err)
	}
	return nil
}

// signerToFileBase converts a signer ID (which may contain separators
// like "org/model" or "did:key:z...") to a filesystem-safe base name.
func signerToFileBase(signerID string) string {
	replacer := strings.NewReplacer("/", "-", ":", "-")
	return replacer.Replace(signerID)
}

// atomicWriteFile writes data to path via a temp file and rename,
// creating parent directories as needed.
func atomicWriteFile(path string, data []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	defer os.Remove(tmp)
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
