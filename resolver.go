package vsmark

import (
	"crypto"
	"fmt"
)

// KeyResolver maps a signer ID to its public key. Implementations may
// block (keystore or network lookups happen on the calling goroutine);
// returning a nil key or an error both mean the key is unavailable.
type KeyResolver interface {
	ResolvePublicKey(signerID string) (crypto.PublicKey, error)
}

// KeyResolverFunc adapts a plain function to the KeyResolver interface.
type KeyResolverFunc func(signerID string) (crypto.PublicKey, error)

func (f KeyResolverFunc) ResolvePublicKey(signerID string) (crypto.PublicKey, error) {
	return f(signerID)
}

// ResolverError reports an unavailable key.
type ResolverError struct {
	SignerID string
	Reason   string
}

func (e *ResolverError) Error() string {
	return fmt.Sprintf("resolve key for %q: %s", e.SignerID, e.Reason)
}

// KeyTypeError reports a resolved key that is not an Ed25519 public
// key. Verification requires Ed25519; other asymmetric key types are
// rejected with a false verdict rather than attempted.
type KeyTypeError struct {
	SignerID string
	Key      crypto.PublicKey
}

func (e *KeyTypeError) Error() string {
	return fmt.Sprintf("key for %q has unsupported type %T, need ed25519.PublicKey", e.SignerID, e.Key)
}

// StaticResolver resolves from a fixed in-memory map. Handy for tests
// and single-tenant setups.
type StaticResolver struct {
	Keys map[string]crypto.PublicKey
}

func (r *StaticResolver) ResolvePublicKey(signerID string) (crypto.PublicKey, error) {
	key, ok := r.Keys[signerID]
	if !ok {
		return nil, &ResolverError{SignerID: signerID, Reason: "unknown signer"}
	}
	return key, nil
}

// ChainResolver tries each resolver in order and returns the first key
// found. Unavailability moves on to the next resolver; only when every
// link fails is the key reported unavailable.
type ChainResolver struct {
	Resolvers []KeyResolver
}

func (r *ChainResolver) ResolvePublicKey(signerID string) (crypto.PublicKey, error) {
	for _, resolver := range r.Resolvers {
		key, err := resolver.ResolvePublicKey(signerID)
		if err == nil && key != nil {
			return key, nil
		}
	}
	return nil, &ResolverError{SignerID: signerID, Reason: "no resolver in chain has the key"}
}
