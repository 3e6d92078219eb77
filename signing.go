package vsmark

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"
)

// Sign signs message with priv and returns the raw 64-byte signature.
func Sign(priv ed25519.PrivateKey, message []byte) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: private key: expected %d bytes, got %d", ErrInput, ed25519.PrivateKeySize, len(priv))
	}
	return ed25519.Sign(priv, message), nil
}

// VerifySignature reports whether sig is a valid signature of message
// under pub. A malformed key or signature simply verifies false.
func VerifySignature(pub ed25519.PublicKey, message, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, message, sig)
}

// encodeSignature renders a raw signature for transport: URL-safe base64
// with padding stripped.
func encodeSignature(sig []byte) string {
	return base64.RawURLEncoding.EncodeToString(sig)
}

// decodeSignature reverses encodeSignature. Padded input is accepted:
// trailing '=' is stripped before decoding, so signatures produced by
// padding-emitting encoders still round-trip.
func decodeSignature(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	sig, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	return sig, nil
}
