package vsmark

import (
	"crypto/ed25519"
)

// VerifyOptions tunes VerifyMetadata. The zero value is the default
// behavior: no payload is returned on verification failure.
type VerifyOptions struct {
	// ReturnPayloadOnFailure returns the recovered (unauthenticated)
	// payload alongside a false verdict instead of nil.
	ReturnPayloadOnFailure bool
}

// ExtractMetadata recovers the inner payload from text without checking
// its signature. Returns nil when text carries no parseable envelope.
// Useful for inspection and debugging; authenticity requires
// VerifyMetadata.
func ExtractMetadata(text string) *Payload {
	env := extractEnvelope(text)
	if env == nil {
		return nil
	}
	p, err := env.parsePayload()
	if err != nil {
		logger.Debug().Err(err).Msg("embedded payload is not a mapping")
		return nil
	}
	return p
}

// VerifyMetadata extracts the embedded envelope from text, resolves the
// signer's public key, and checks the signature over the canonical form
// of the recovered payload.
//
// The verdict is returned as (payload, valid, signerID). Authentication
// failures never produce an error: an unresolvable key, a non-Ed25519
// key, a malformed signature, or a signature mismatch all yield a false
// verdict, with the signer ID when it was recovered. Payload return on
// failure is gated by opts.ReturnPayloadOnFailure; opts may be nil.
func VerifyMetadata(text string, resolver KeyResolver, opts *VerifyOptions) (*Payload, bool, string) {
	if opts == nil {
		opts = &VerifyOptions{}
	}
	if text == "" || resolver == nil {
		return nil, false, ""
	}

	env := extractEnvelope(text)
	if env == nil {
		return nil, false, ""
	}
	signerID := env.SignerID
	payload, err := env.parsePayload()
	if err != nil {
		logger.Warn().Err(err).Str("signer_id", signerID).Msg("embedded payload is not a mapping")
		return nil, false, signerID
	}
	fail := func() (*Payload, bool, string) {
		if opts.ReturnPayloadOnFailure {
			return payload, false, signerID
		}
		return nil, false, signerID
	}

	pub, err := resolveEd25519Key(resolver, signerID)
	if err != nil {
		logger.Warn().Err(err).Str("signer_id", signerID).Msg("public key unavailable")
		return fail()
	}

	// Re-derive the exact bytes the signer signed from the payload as
	// it arrived.
	canonical, err := canonicalJSON(env.Payload)
	if err != nil {
		logger.Warn().Err(err).Str("signer_id", signerID).Msg("payload canonicalization failed")
		return fail()
	}
	sig, err := decodeSignature(env.Signature)
	if err != nil {
		logger.Warn().Err(err).Str("signer_id", signerID).Msg("signature decode failed")
		return fail()
	}
	if !VerifySignature(pub, canonical, sig) {
		logger.Warn().Str("signer_id", signerID).Msg("signature verification failed")
		return fail()
	}

	logger.Debug().Str("signer_id", signerID).Msg("signature verified")
	return payload, true, signerID
}

// extractEnvelope scans text for a selector run and decodes it into an
// outer envelope. Nil when no run is present or the bytes do not parse.
func extractEnvelope(text string) *envelope {
	raw := DecodeBytes(text)
	if len(raw) == 0 {
		return nil
	}
	env, err := deserializeEnvelope(raw)
	if err != nil {
		logger.Debug().Err(err).Int("bytes", len(raw)).Msg("selector run does not decode to an envelope")
		return nil
	}
	return env
}

// resolveEd25519Key asks the resolver for signerID's key and enforces
// the Ed25519 requirement. Resolver panics are treated as key
// unavailable, matching the resolver contract that a throwing provider
// means "no key".
func resolveEd25519Key(resolver KeyResolver, signerID string) (pub ed25519.PublicKey, err error) {
	defer func() {
		if r := recover(); r != nil {
			pub, err = nil, &ResolverError{SignerID: signerID, Reason: "resolver panicked"}
		}
	}()

	key, err := resolver.ResolvePublicKey(signerID)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, &ResolverError{SignerID: signerID, Reason: "no key found"}
	}
	edKey, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, &KeyTypeError{SignerID: signerID, Key: key}
	}
	if len(edKey) != ed25519.PublicKeySize {
		return nil, &KeyTypeError{SignerID: signerID, Key: key}
	}
	return edKey, nil
}
