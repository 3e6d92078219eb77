package vsmark

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"strings"
)

// EmbedOptions carries everything EmbedMetadata needs beyond the host
// text and the signing key. SignerID and Timestamp are required; zero
// values select the defaults everywhere else.
type EmbedOptions struct {
	// SignerID identifies the key pair; the verifier hands it to its
	// key resolver. Required, non-empty.
	SignerID string

	// Timestamp is the content generation time. Required. Accepted
	// types: ISO 8601 string, time.Time, or int/int64/float64 epoch
	// seconds. Normalized to second-precision UTC before signing.
	Timestamp any

	// MetadataFormat is the inner payload shape. Default FormatBasic.
	MetadataFormat MetadataFormat

	// Serialization is the envelope transport encoding. Default
	// SerializationJSON.
	Serialization SerializationFormat

	// Target picks the anchor policy. Default TargetWhitespace.
	Target Target

	// DistributeAcrossTargets spreads the run one selector per anchor
	// instead of placing it contiguously after the first anchor. Texts
	// embedded this way cannot be read back by ExtractMetadata or
	// VerifyMetadata, whose scanner recovers only a contiguous run.
	DistributeAcrossTargets bool

	// Basic-format fields.
	ModelID        string
	GenerationID   string
	CustomMetadata map[string]any

	// Manifest-format fields. ModelID, when set, is merged under
	// ai_info.model_id.
	ClaimGenerator string
	Actions        []map[string]any
	AIInfo         map[string]any
	CustomClaims   map[string]any
}

// EmbedMetadata builds a signed provenance payload and splices it into
// text as a run of Unicode variation selectors. The visible character
// sequence of text is preserved.
//
// Failures are precondition violations and never partial writes: the
// returned error wraps ErrInput, ErrValue, ErrCapacity, or ErrFatal.
func EmbedMetadata(text string, priv ed25519.PrivateKey, opts EmbedOptions) (string, error) {
	payload, err := buildPayload(&opts)
	if err != nil {
		return "", err
	}
	serialization := opts.Serialization
	if serialization == "" {
		serialization = SerializationJSON
	}
	if !serialization.valid() {
		return "", fmt.Errorf("%w: invalid serialization format %q", ErrValue, serialization)
	}
	// Validate the target before doing any cryptographic work.
	if _, err := normalizeTarget(opts.Target); err != nil {
		return "", err
	}

	logger.Debug().
		Str("signer_id", payload.SignerID).
		Str("format", string(payload.Format)).
		Str("serialization", string(serialization)).
		Bool("distribute", opts.DistributeAcrossTargets).
		Msg("embedding metadata")

	outerBytes, err := buildEnvelopeBytes(payload, priv, serialization)
	if err != nil {
		return "", err
	}

	selectors := EncodeBytes(outerBytes)
	if selectors == "" {
		return text, nil
	}

	return splice(text, selectors, opts.Target, opts.DistributeAcrossTargets)
}

// buildPayload validates the option set and constructs the inner payload.
func buildPayload(opts *EmbedOptions) (*Payload, error) {
	if opts.SignerID == "" {
		return nil, fmt.Errorf("%w: a non-empty signer_id must be provided", ErrValue)
	}
	format := opts.MetadataFormat
	if format == "" {
		format = FormatBasic
	}
	if !format.valid() {
		return nil, fmt.Errorf("%w: metadata format must be %q or %q, got %q", ErrValue, FormatBasic, FormatManifest, format)
	}
	ts, err := NormalizeTimestamp(opts.Timestamp)
	if err != nil {
		return nil, err
	}

	p := &Payload{
		SignerID:  opts.SignerID,
		Timestamp: ts,
		Format:    format,
	}
	switch format {
	case FormatBasic:
		p.ModelID = opts.ModelID
		p.GenerationID = opts.GenerationID
		p.CustomMetadata = filterCustomMetadata(opts.CustomMetadata)
	case FormatManifest:
		m := &Manifest{
			ClaimGenerator: opts.ClaimGenerator,
			Actions:        opts.Actions,
			CustomClaims:   opts.CustomClaims,
		}
		if len(opts.AIInfo) > 0 || opts.ModelID != "" {
			aiInfo := make(map[string]any, len(opts.AIInfo)+1)
			for k, v := range opts.AIInfo {
				aiInfo[k] = v
			}
			if opts.ModelID != "" {
				aiInfo["model_id"] = opts.ModelID
			}
			m.AIInfo = aiInfo
		}
		p.Manifest = m
	}
	return p, nil
}

// buildEnvelopeBytes signs the payload and serializes the outer
// envelope for transport.
func buildEnvelopeBytes(p *Payload, priv ed25519.PrivateKey, serialization SerializationFormat) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: private key: expected %d bytes, got %d", ErrInput, ed25519.PrivateKeySize, len(priv))
	}

	payloadJSON, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal payload: %v", ErrFatal, err)
	}
	canonical, err := canonicalJSON(payloadJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFatal, err)
	}
	sig, err := Sign(priv, canonical)
	if err != nil {
		return nil, err
	}

	env := &envelope{
		Payload:   payloadJSON,
		Signature: encodeSignature(sig),
		SignerID:  p.SignerID,
		Format:    string(p.Format),
	}
	outerBytes, err := serializeEnvelope(env, serialization)
	if err != nil {
		return nil, fmt.Errorf("%w: serialize envelope: %v", ErrFatal, err)
	}
	logger.Debug().Int("envelope_bytes", len(outerBytes)).Msg("envelope serialized")
	return outerBytes, nil
}

// splice inserts the selector run into text at anchor positions chosen
// by the target policy.
func splice(text, selectors string, target Target, distribute bool) (string, error) {
	indices, err := FindTargets(text, target)
	if err != nil {
		return "", err
	}
	selectorRunes := []rune(selectors)
	if len(indices) == 0 {
		return "", fmt.Errorf("%w: no anchors found with target %q for %d selectors",
			ErrCapacity, targetOrDefault(target), len(selectorRunes))
	}

	runes := []rune(text)
	if !distribute {
		// Single-point mode: the whole run goes immediately after the
		// first anchor character.
		idx := indices[0]
		var sb strings.Builder
		sb.Grow(len(text) + len(selectors))
		sb.WriteString(string(runes[:idx+1]))
		sb.WriteString(selectors)
		sb.WriteString(string(runes[idx+1:]))
		return sb.String(), nil
	}

	if len(indices) < len(selectorRunes) {
		return "", fmt.Errorf("%w: %d anchors found with target %q, need %d",
			ErrCapacity, len(indices), targetOrDefault(target), len(selectorRunes))
	}

	// One selector after each anchor, in text order, until the run is
	// exhausted; remaining anchors are left untouched.
	var sb strings.Builder
	sb.Grow(len(text) + len(selectors))
	last := 0
	for i, idx := range indices[:len(selectorRunes)] {
		sb.WriteString(string(runes[last : idx+1]))
		sb.WriteRune(selectorRunes[i])
		last = idx + 1
	}
	sb.WriteString(string(runes[last:]))
	return sb.String(), nil
}

func targetOrDefault(t Target) Target {
	if t == "" {
		return TargetWhitespace
	}
	return t
}
